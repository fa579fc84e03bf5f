package main

// Apply the resumes and jobs schema:
//   go run ./cmd/migrate

import (
	"context"
	"os"
	"time"

	"career-backend/internal/shared/config"
	"career-backend/internal/shared/storage/db"
	"career-backend/internal/shared/telemetry"
)

const migrateTimeout = 2 * time.Minute

func main() {
	defer telemetry.Sync()

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		telemetry.Error("migrate.no_database", map[string]any{"env": cfg.Env})
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err})
		os.Exit(1)
	}
}
