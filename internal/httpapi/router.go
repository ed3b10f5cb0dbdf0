package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/astromatch/astromatch/internal/middleware"
	"github.com/astromatch/astromatch/internal/monitoring"
)

// NewRouter assembles the engine's HTTP surface. The /api group
// requires a caller identity; health stays open for probes.
func NewRouter(h *Handlers, health *monitoring.HealthChecker, development bool) *gin.Engine {
	if !development {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		otelgin.Middleware("astromatch"),
		middleware.Logging(),
		middleware.Recovery(),
	)

	router.GET("/health", func(c *gin.Context) {
		status := health.Check(c.Request.Context())
		code := http.StatusOK
		if status.Status == "unhealthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})

	api := router.Group("/api", middleware.RequireUser())

	matching := api.Group("/matching")
	{
		matching.POST("/swipe", h.Swipe)
		matching.GET("/candidates", h.Candidates)
		matching.GET("/matches", h.Matches)
		matching.GET("/likes-received", h.LikesReceived)
		matching.GET("/stats", h.Stats)
		matching.GET("/matches/:userId", h.MatchState)
		matching.DELETE("/matches/:userId", h.Unmatch)
	}

	moderation := api.Group("/moderation")
	{
		moderation.POST("/block", h.Block)
		moderation.DELETE("/block/:userId", h.Unblock)
		moderation.GET("/blocked", h.Blocked)
	}

	return router
}
