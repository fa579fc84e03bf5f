package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"career-backend/internal/shared/telemetry"
)

// Logging emits one structured line per request. Server errors log at error
// level and client errors at warn so rejected generations stand out.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		id := IdentityFromContext(c)
		status := c.Writer.Status()
		fields := map[string]any{
			"request_id":        RequestIDFromContext(c),
			"method":            c.Request.Method,
			"route":             c.FullPath(),
			"path":              c.Request.URL.Path,
			"status":            status,
			"status_transition": c.GetString(StatusTransitionKey),
			"duration_ms":       float64(time.Since(start).Microseconds()) / 1000.0,
			"user_id":           id.UserID,
			"job_id":            c.GetString(JobIDKey),
			"rate_group":        GroupFromContext(c),
			"is_guest":          id.IsGuest,
			"client_ip":         c.ClientIP(),
		}

		switch {
		case status >= http.StatusInternalServerError:
			telemetry.Error("request.complete", fields)
		case status >= http.StatusBadRequest:
			telemetry.Warn("request.complete", fields)
		default:
			telemetry.Info("request.complete", fields)
		}
	}
}
