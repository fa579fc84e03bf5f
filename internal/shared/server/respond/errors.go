package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"career-backend/internal/shared/telemetry"
)

// ErrorBody is the error object every handler returns.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse wraps ErrorBody as {"error": {...}}.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error logs the failure and aborts with the error envelope. 5xx responses
// log at error level; 4xx at warn.
func Error(c *gin.Context, status int, code, message string, details any) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"route":      c.FullPath(),
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
		"user_id":    c.GetString("userId"),
	}
	if jobID := c.GetString("jobId"); jobID != "" {
		fields["job_id"] = jobID
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{Code: code, Message: message, Details: details},
	})
}
