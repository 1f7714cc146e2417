package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sporthub-api/internal/config"
	"github.com/sporthub-api/internal/metrics"
	"github.com/sporthub-api/internal/service"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter creates and configures the Gin router.
// /health fails while any of checks fails.
func NewRouter(services *service.Services, m *metrics.Metrics, cfg *config.Config, log zerolog.Logger, checks ...HealthChecker) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if m == nil {
		m = metrics.New(nil)
	}

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log, m))
	router.Use(corsMiddleware())
	router.Use(viewerMiddleware())

	// Handlers
	articleHandler := NewArticleHandler(services, log)
	commentHandler := NewCommentHandler(services, cfg, log)
	userHandler := NewUserHandler(services, log)

	writes := rateLimitMiddleware(newLimiterPool(cfg.RateLimit))

	router.GET("/health", healthCheck(checks))
	router.GET("/stats", statsHandler(services))
	router.GET("/metrics", gin.WrapH(m.Handler()))

	// API v1
	v1 := router.Group("/v1")
	{
		v1.POST("/sessions", writes, userHandler.Login)

		me := v1.Group("/users/me", requireUser())
		{
			me.GET("", userHandler.GetProfile)
			me.PUT("", writes, userHandler.UpdateProfile)
		}

		articles := v1.Group("/articles/:article_id")
		{
			articles.GET("", articleHandler.GetArticle)
			articles.GET("/comments", commentHandler.ListComments)
			articles.POST("/comments", requireUser(), writes, commentHandler.PostComment)
		}

		comments := v1.Group("/comments/:comment_id")
		{
			comments.GET("/replies", commentHandler.ListReplies)
			comments.POST("/replies", requireUser(), writes, commentHandler.PostReply)
			comments.POST("/like", requireUser(), writes, commentHandler.ToggleLike)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(checks []HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, check := range checks {
			if err := check.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":    "unhealthy",
					"error":     err.Error(),
					"timestamp": time.Now().Format(time.RFC3339),
					"service":   "sporthub-api",
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "sporthub-api",
		})
	}
}

// statsHandler returns row counts
func statsHandler(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCount, _ := services.User.Count(ctx)
		articlesCount, _ := services.Article.Count(ctx)
		commentsCount, _ := services.Comment.Count(ctx)

		c.JSON(http.StatusOK, gin.H{
			"database": gin.H{
				"users":    usersCount,
				"articles": articlesCount,
				"comments": commentsCount,
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// contextWithTimeout creates a context with timeout for handlers
func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}
