package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"career-backend/internal/cache"
	"career-backend/internal/generation"
	"career-backend/internal/jobs"
	"career-backend/internal/llm"
	"career-backend/internal/llm/gemini"
	openai "career-backend/internal/llm/openai"
	"career-backend/internal/orchestrator"
	"career-backend/internal/ratelimit"
	"career-backend/internal/resumes"
	"career-backend/internal/services/health"
	"career-backend/internal/session"
	"career-backend/internal/shared/config"
	"career-backend/internal/shared/server"
	"career-backend/internal/shared/storage/db"
	"career-backend/internal/shared/storage/object"
	localstore "career-backend/internal/shared/storage/object/local"
	s3store "career-backend/internal/shared/storage/object/s3"
	"career-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	Redis          *redis.Client
	Store          object.ObjectStore
	Caches         *cache.Registry
	LimiterStore   ratelimit.Store
	JobsRepo       jobs.JobsRepo
	ResumesRepo    resumes.ResumesRepo
	ResumesService *resumes.Service
	Orchestrator   *orchestrator.Orchestrator
	Sessions       *session.Manager
}

// Build prepares dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := buildRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	completer, err := buildCompleter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Redis:  redisClient,
		Store:  store,
	}

	if redisClient != nil {
		app.Caches = cache.NewRedisRegistry(redisClient)
		app.LimiterStore = ratelimit.NewRedisStore(redisClient, "career:rl:", time.Now)
	} else {
		app.Caches = cache.NewMemoryRegistry(cfg.CacheCapacity, time.Now)
		app.LimiterStore = ratelimit.NewMemoryStore(time.Now)
	}

	if sqlDB != nil {
		app.JobsRepo = &jobs.PGRepo{DB: sqlDB}
		app.ResumesRepo = &resumes.PGRepo{DB: sqlDB}
	} else {
		app.JobsRepo = jobs.NewMemoryRepo()
		app.ResumesRepo = resumes.NewMemoryRepo()
	}

	app.ResumesService = &resumes.Service{Store: store, Repo: app.ResumesRepo}

	backend := generation.NewCached(generation.NewLLMBackend(llm.WithRetry(completer, 0)), app.Caches)
	app.Orchestrator = orchestrator.New(backend)

	tone, ok := generation.ParseTone(cfg.DefaultTone)
	if !ok {
		telemetry.Warn("bootstrap.unknown_tone", map[string]any{"value": cfg.DefaultTone, "default": string(generation.DefaultTone)})
		tone = generation.DefaultTone
	}
	app.Sessions = session.NewManager(session.Deps{
		Jobs:        app.JobsRepo,
		Generator:   app.Orchestrator,
		Resumes:     app.ResumesService,
		DefaultTone: tone,
		IdleTTL:     cfg.SessionIdleTTL,
	})

	checks := map[string]health.Check{}
	if sqlDB != nil {
		checks["database"] = sqlDB.PingContext
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Health:   health.NewService(checks),
		Sessions: session.NewHandler(app.Sessions),
		Resumes:  resumes.NewHandler(app.ResumesService),
		Caches:   app.Caches,
		Limiters: server.NewLimiters(cfg, app.LimiterStore, time.Now),
	})

	return app, nil
}

// Close releases pooled connections.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "database connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		telemetry.Info("bootstrap.memory_counters", map[string]any{"reason": "REDIS_URL empty"})
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_counters", map[string]any{"reason": "redis ping failed", "error": err.Error()})
			return nil, nil
		}
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildCompleter(ctx context.Context, cfg config.Config) (llm.Completer, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" && isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.generation_disabled", map[string]any{"provider": "openai"})
			return llm.PlaceholderClient{}, nil
		}
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	case "gemini":
		if cfg.GeminiAPIKey == "" && isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.generation_disabled", map[string]any{"provider": "gemini"})
			return llm.PlaceholderClient{}, nil
		}
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	default:
		return llm.PlaceholderClient{}, nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
