package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vibelink/vibelink-server/internal/auth"
	"github.com/vibelink/vibelink-server/internal/config"
	"github.com/vibelink/vibelink-server/internal/core"
	"github.com/vibelink/vibelink-server/internal/store"
)

// authRequestsPerMinute caps signup/login attempts per minute.
const authRequestsPerMinute = 30

// NewServer builds the HTTP server: health check, websocket endpoint,
// and the REST API.
func NewServer(hub *core.Hub, authService *auth.Service, st store.Store, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, logger)))

	authHandlers := NewAuthHandlers(authService, logger)
	community := NewCommunityHandlers(st, logger)
	requireAuth := AuthMiddleware(authService, logger)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth", RateLimitMiddleware(authRequestsPerMinute))
		authGroup.POST("/signup", authHandlers.Signup)
		authGroup.POST("/login", authHandlers.Login)

		api.GET("/posts", community.ListPosts)
		api.POST("/posts", requireAuth, community.CreatePost)

		api.GET("/groups", community.ListGroups)
		api.POST("/groups", community.CreateGroup)

		api.GET("/vibes", community.ListVibes)

		api.GET("/progress", community.ListProgress)
		api.POST("/progress", community.SaveProgress)

		api.GET("/time", community.ListTimeSpent)
		api.POST("/time", community.SaveTimeSpent)

		api.GET("/resources", community.ListResources)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
