package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"career-backend/internal/shared/server/middleware"
	"career-backend/internal/shared/server/respond"
)

func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", func(c *gin.Context) {
		id := middleware.IdentityFromContext(c)
		if id.UserID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		respond.OK(c, id)
	})
}
