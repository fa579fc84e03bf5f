package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"career-backend/internal/shared/server/respond"
	"career-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 envelope. A response that has
// already started is only aborted.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			telemetry.Error("http.panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"user_id":    UserIDFromContext(c),
				"route":      c.FullPath(),
				"method":     c.Request.Method,
				"error":      rec,
				"stack":      string(debug.Stack()),
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
		}()
		c.Next()
	}
}
