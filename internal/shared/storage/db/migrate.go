package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	"career-backend/internal/shared/telemetry"
)

// MigrationsTable records applied schema versions.
const MigrationsTable = "career_schema_migrations"

//go:embed migrations/*.sql
var migrationFiles embed.FS

// RunMigrations applies the embedded resumes and jobs migrations. A nil
// database is a no-op so memory-backed deployments can call it safely.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	goose.SetBaseFS(migrationFiles)
	goose.SetTableName(MigrationsTable)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	before, err := goose.GetDBVersionContext(ctx, database)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if err := goose.UpContext(ctx, database, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	after, err := goose.GetDBVersionContext(ctx, database)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	telemetry.Info("db.migrated", map[string]any{
		"from_version": before,
		"to_version":   after,
		"table":        MigrationsTable,
	})
	return nil
}
