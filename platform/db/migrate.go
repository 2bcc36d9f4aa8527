package db

import (
	"context"
	"database/sql"
	"strings"

	"salesorch_backend/platform/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies pending goose migrations from migrationsDir. An
// empty dir disables migrations, for deployments that run them out of band.
// Goose needs database/sql, so this opens its own short-lived connection
// through the pgx stdlib driver instead of reusing the pool.
func RunMigrations(ctx context.Context, cfg config.DatabaseConfig, migrationsDir string) error {
	if strings.TrimSpace(migrationsDir) == "" {
		return nil
	}

	sqlDB, err := sql.Open("pgx", cfg.GetDatabaseURL())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, sqlDB, migrationsDir)
}
