package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vibelink/vibelink-server/internal/assistant"
	"github.com/vibelink/vibelink-server/internal/auth"
	"github.com/vibelink/vibelink-server/internal/config"
	"github.com/vibelink/vibelink-server/internal/core"
	"github.com/vibelink/vibelink-server/internal/stats"
	"github.com/vibelink/vibelink-server/internal/store"
	"github.com/vibelink/vibelink-server/internal/store/sqlite"
	transporthttp "github.com/vibelink/vibelink-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	stats           *stats.Aggregator
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      24 * time.Hour,
	}
	authService := auth.NewService(st, jwtConfig)

	if cfg.GeminiAPIKey == "" {
		logger.Warn().Msg("no gemini api key configured, bot replies will be the fallback text")
	}
	responder := assistant.New(assistant.Config{
		APIKey:    cfg.GeminiAPIKey,
		Model:     cfg.GeminiModel,
		Timeout:   cfg.AssistantTimeout,
		PerMinute: cfg.AssistantPerMinute,
	}, logger)

	hub := core.NewHub(st, responder, logger)
	aggregator := stats.New(st, hub, cfg.StatsInterval, logger)
	hub.SetStatsRefresh(aggregator.Refresh)

	server := transporthttp.NewServer(hub, authService, st, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		stats:           aggregator,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the hub, the stats aggregator, and the HTTP server, and
// blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)
	go a.stats.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
