package http

import (
	"context"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vibelink/vibelink-server/internal/auth"
	"github.com/vibelink/vibelink-server/internal/config"
	"github.com/vibelink/vibelink-server/internal/core"
	"github.com/vibelink/vibelink-server/internal/store/sqlite"
)

type testEnv struct {
	server *stdhttp.Server
	ts     *httptest.Server
	store  *sqlite.SQLiteStore
	auth   *auth.Service
	hub    *core.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	}
	authService := auth.NewService(st, jwtConfig)

	hub := core.NewHub(st, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	logger := zerolog.Nop()
	cfg := config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}

	server := NewServer(hub, authService, st, cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{server: server, ts: ts, store: st, auth: authService, hub: hub}
}

// signupAndLogin registers a user and returns a valid bearer token.
func (e *testEnv) signupAndLogin(t *testing.T, username, email string) string {
	t.Helper()

	if err := e.auth.Signup(context.Background(), username, email, "password123"); err != nil {
		t.Fatalf("signup %s: %v", username, err)
	}
	token, _, err := e.auth.Login(context.Background(), email, "password123")
	if err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	return token
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.ts.Client().Get(env.ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}
