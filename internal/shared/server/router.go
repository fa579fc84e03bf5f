package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"career-backend/internal/cache"
	"career-backend/internal/ratelimit"
	"career-backend/internal/resumes"
	"career-backend/internal/services/health"
	"career-backend/internal/session"
	"career-backend/internal/shared/auth"
	"career-backend/internal/shared/config"
	"career-backend/internal/shared/server/middleware"
	"career-backend/internal/shared/server/respond"
)

// Rate limit groups.
const (
	GroupGeneration = "GENERATION"
	GroupExtraction = "EXTRACTION"
	GroupUpload     = "UPLOAD"
	GroupDefault    = "DEFAULT"
	groupNone       = "NONE"
)

// routeGroups maps "METHOD /full/path" to a limiter group. Unlisted routes
// use DEFAULT.
var routeGroups = map[string]string{
	"GET /api/v1/health":                  groupNone,
	"POST /api/v1/jobs/extract":           GroupExtraction,
	"POST /api/v1/workspace/generate":     GroupGeneration,
	"POST /api/v1/workspace/cover-letter": GroupGeneration,
	"POST /api/v1/workspace/linkedin":     GroupGeneration,
	"POST /api/v1/workspace/interview":    GroupGeneration,
	"POST /api/v1/resumes":                GroupUpload,
	"GET /api/v1/admin/metrics":           groupNone,
	"POST /api/v1/admin/cache/purge":      groupNone,
}

// RouterDeps holds what the router wires into routes.
type RouterDeps struct {
	Config   config.Config
	Health   *health.Service
	Sessions *session.Handler
	Resumes  *resumes.Handler
	Caches   *cache.Registry
	Limiters map[string]*ratelimit.Limiter
	Now      func() time.Time
}

// NewLimiters builds one limiter per group over a shared counter store.
func NewLimiters(cfg config.Config, store ratelimit.Store, now func() time.Time) map[string]*ratelimit.Limiter {
	window := cfg.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	return map[string]*ratelimit.Limiter{
		GroupGeneration: ratelimit.New("generation", orDefault(cfg.GenerationLimit, 10), window, store, now),
		GroupExtraction: ratelimit.New("extraction", orDefault(cfg.ExtractionLimit, 20), window, store, now),
		GroupUpload:     ratelimit.New("upload", orDefault(cfg.UploadLimit, 5), window, store, now),
		GroupDefault:    ratelimit.New("default", orDefault(cfg.DefaultLimit, 120), window, store, now),
	}
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(auth.NewVerifier(deps.Config.JWTSecret, deps.Now)),
	)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Limiters:     deps.Limiters,
		DefaultGroup: GroupDefault,
		GroupFor:     routeGroup,
		Now:          deps.Now,
	}))

	api.GET("/health", func(c *gin.Context) {
		report := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
	registerMeRoutes(api)
	if deps.Sessions != nil {
		deps.Sessions.RegisterRoutes(api)
	}
	if deps.Resumes != nil {
		deps.Resumes.RegisterRoutes(api)
	}
	registerAdminRoutes(api.Group("/admin"), deps.Caches)

	return r
}

func routeGroup(c *gin.Context) string {
	return routeGroups[c.Request.Method+" "+c.FullPath()]
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
