// api/router.go
package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"querygate/api/handlers"
	"querygate/api/middleware"
	"querygate/config"
)

// SetupRouter initializes the Gin router and sets up all routes. The
// access gate (IP allow-list, then API key) wraps every request except
// the exempted health and admin paths, ahead of any route resolution.
func SetupRouter(settings *config.Settings, snapshot *config.Snapshot, h *handlers.QueryHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())

	if settings.Security.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(settings.Security.RateLimit, settings.Security.RateWindow())
		router.Use(middleware.RateLimit(limiter))
	}

	// Gate order matters: IP check first, then API key, both before routing.
	router.Use(middleware.IPAllowlist(settings.Service.ListenAddr, settings.Security.IPAllowList))
	router.Use(middleware.APIKeyAuth(settings.Security.RequireAPIKey, snapshot.APIKey))

	router.Use(middleware.ErrorHandler())

	if len(settings.Service.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = settings.Service.AllowedOrigins
		router.Use(cors.New(corsConfig))
	}

	router.GET("/health", h.Health)

	apiRoutes := router.Group("/api")
	{
		apiRoutes.GET("/queries", h.ListQueries)
		apiRoutes.GET("/queries/:endpoint", h.Execute)
		apiRoutes.POST("/queries/:endpoint/execute", h.Execute)
	}

	return router
}
