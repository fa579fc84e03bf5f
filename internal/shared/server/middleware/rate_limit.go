package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"career-backend/internal/ratelimit"
	"career-backend/internal/shared/metrics"
	"career-backend/internal/shared/telemetry"
)

const defaultRateLimitGroup = "DEFAULT"

// RateLimitConfig selects a limiter per request. GroupFor returning "" (or
// being nil) selects DefaultGroup.
type RateLimitConfig struct {
	Limiters     map[string]*ratelimit.Limiter
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	Now          func() time.Time
}

// GroupFromContext returns the limiter group RateLimit resolved for the
// request.
func GroupFromContext(c *gin.Context) string {
	return c.GetString(rateLimitGroupKey)
}

func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = defaultRateLimitGroup
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return func(c *gin.Context) {
		group := cfg.DefaultGroup
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		c.Set(rateLimitGroupKey, group)
		limiter, ok := cfg.Limiters[group]
		if !ok || limiter == nil {
			c.Next()
			return
		}
		principal := strings.TrimSpace(UserIDFromContext(c))
		if principal == "" {
			principal = strings.TrimSpace(c.ClientIP())
		}
		res := limiter.Check(c.Request.Context(), principal)
		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.IsLimited {
			c.Next()
			return
		}
		metrics.IncRateLimited()
		telemetry.Info("ratelimit.rejected", map[string]any{
			"request_id": RequestIDFromContext(c),
			"user_id":    principal,
			"group":      group,
			"usage":      res.CurrentUsage,
			"limit":      res.Limit,
		})
		retryAfterMs := int(res.RetryAfter(cfg.Now()) / time.Millisecond)
		if retryAfterMs <= 0 {
			retryAfterMs = 1000
		}
		retryAfterSeconds := int(math.Ceil(float64(retryAfterMs) / 1000.0))
		if retryAfterSeconds <= 0 {
			retryAfterSeconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":        "rate_limited",
			"retryAfterMs": retryAfterMs,
		})
		c.Abort()
	}
}
