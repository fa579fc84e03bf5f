package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"career-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	LLMProvider     string
	LLMModel        string
	LLMTimeout      time.Duration
	OpenAIAPIKey    string
	GeminiAPIKey    string
	DatabaseURL     string
	Env             string
	RedisURL        string
	RedisPassword   string
	CacheCapacity   int
	DefaultTone     string
	RateLimitWindow time.Duration
	GenerationLimit int
	ExtractionLimit int
	UploadLimit     int
	DefaultLimit    int
	SessionIdleTTL  time.Duration
	OTLPEndpoint    string
	JWTSecret       string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.missing", map[string]any{"key": "DATABASE_URL", "env": env})
	}
	if env == "production" && jwtSecret == "" {
		telemetry.Warn("config.missing", map[string]any{"key": "JWT_SECRET", "env": env})
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),
		LLMProvider:     normalizeProvider(getEnv("LLM_PROVIDER", "openai")),
		LLMModel:        getEnv("LLM_MODEL", ""),
		LLMTimeout:      getEnvDuration("LLM_TIMEOUT", 120*time.Second),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		DatabaseURL:     dbURL,
		Env:             env,
		RedisURL:        getEnv("REDIS_URL", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		CacheCapacity:   getEnvInt("CACHE_CAPACITY", 500),
		DefaultTone:     getEnv("DEFAULT_TONE", "Professional"),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		GenerationLimit: getEnvInt("RATE_LIMIT_GENERATION", 10),
		ExtractionLimit: getEnvInt("RATE_LIMIT_EXTRACTION", 20),
		UploadLimit:     getEnvInt("RATE_LIMIT_UPLOAD", 5),
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT", 120),
		SessionIdleTTL:  getEnvDuration("SESSION_IDLE_TTL", 2*time.Hour),
		OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		JWTSecret:       jwtSecret,
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "value": raw, "default": def})
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		telemetry.Warn("config.invalid_duration", map[string]any{"key": key, "value": raw, "default": def.String()})
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "gemini", "google", "googleai":
		return "gemini"
	default:
		return "none"
	}
}
