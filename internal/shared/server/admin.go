package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"career-backend/internal/cache"
	"career-backend/internal/shared/auth"
	"career-backend/internal/shared/metrics"
	"career-backend/internal/shared/server/middleware"
	"career-backend/internal/shared/server/respond"
	"career-backend/internal/shared/telemetry"
)

func registerAdminRoutes(rg *gin.RouterGroup, caches *cache.Registry) {
	rg.Use(middleware.RequireRole(auth.RoleAdmin))
	rg.GET("/metrics", metrics.Handler())
	rg.POST("/cache/purge", func(c *gin.Context) {
		caches.PurgeAll(c.Request.Context())
		telemetry.Info("cache.purged", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"user_id":    middleware.UserIDFromContext(c),
		})
		respond.JSON(c, http.StatusOK, gin.H{"purged": true})
	})
}
