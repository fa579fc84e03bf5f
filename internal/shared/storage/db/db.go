// Package db opens the Postgres pool behind the jobs and resumes repos and
// applies their schema.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"career-backend/internal/shared/telemetry"
)

// Options controls the pool and how hard Connect tries to reach the server.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	// ConnectAttempts bounds the initial pings; the server may still be
	// starting when the API boots next to it.
	ConnectAttempts int
	RetryDelay      time.Duration
}

var openDB = sql.Open

// DefaultServerOptions suits the API: a small shared pool, a few attempts.
func DefaultServerOptions() Options {
	return Options{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxIdleTime: 2 * time.Minute,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
		ConnectAttempts: 3,
		RetryDelay:      time.Second,
	}
}

// DefaultMigrateOptions suits cmd/migrate: one connection, one attempt.
func DefaultMigrateOptions() Options {
	return Options{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
		ConnectAttempts: 1,
	}
}

// OptionsFromEnv overrides defaults with DB_* variables when set.
func OptionsFromEnv(defaults Options) Options {
	opts := defaults
	if v, ok := readEnvInt("DB_MAX_OPEN_CONNS"); ok {
		opts.MaxOpenConns = v
	}
	if v, ok := readEnvInt("DB_MAX_IDLE_CONNS"); ok {
		opts.MaxIdleConns = v
	}
	if v, ok := readEnvInt("DB_CONNECT_ATTEMPTS"); ok {
		opts.ConnectAttempts = v
	}
	if v, ok := readEnvDuration("DB_CONN_MAX_LIFETIME"); ok {
		opts.ConnMaxLifetime = v
	}
	if v, ok := readEnvDuration("DB_CONN_MAX_IDLE_TIME"); ok {
		opts.ConnMaxIdleTime = v
	}
	if v, ok := readEnvDuration("DB_PING_TIMEOUT"); ok {
		opts.PingTimeout = v
	}
	if v, ok := readEnvDuration("DB_RETRY_DELAY"); ok {
		opts.RetryDelay = v
	}
	return opts
}

// Connect opens the pgx pool for databaseURL and pings it until it answers
// or the attempts run out.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	applyOptions(db, opts)

	if err := pingWithRetry(ctx, db, opts); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	stats := db.Stats()
	telemetry.Info("db.connected", map[string]any{
		"open":     stats.OpenConnections,
		"idle":     stats.Idle,
		"max_open": stats.MaxOpenConnections,
	})
	return db, nil
}

func pingWithRetry(ctx context.Context, db *sql.DB, opts Options) error {
	attempts := opts.ConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}
	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		telemetry.Warn("db.ping_failed", map[string]any{
			"attempt": attempt,
			"of":      attempts,
			"error":   err,
		})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(opts.RetryDelay):
		}
	}
	return err
}

func applyOptions(db *sql.DB, opts Options) {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 5
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = time.Hour
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}

func readEnvInt(key string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"key": key, "error": err})
		return 0, false
	}
	return val, true
}

func readEnvDuration(key string) (time.Duration, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"key": key, "error": err})
		return 0, false
	}
	return val, true
}
