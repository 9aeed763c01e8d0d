package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"

	"github.com/angelmondragon/inventory-backend/pkg/config"
	"github.com/angelmondragon/inventory-backend/pkg/db/models"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

const DefaultDir = "pkg/migrate/migrations"

const embeddedDir = "migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// DialectFor maps the configured DB driver onto a goose dialect.
func DialectFor(driver string) string {
	if driver == config.DBDriverSQLite {
		return "sqlite3"
	}
	return "postgres"
}

// Run executes a standard goose command against migrations read from dir.
func Run(ctx context.Context, db *sql.DB, dialect, dir, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// RunEmbedded executes a goose command against the migrations compiled into the binary.
func RunEmbedded(ctx context.Context, db *sql.DB, dialect, command string, args ...string) error {
	goose.SetBaseFS(embedded)
	defer goose.SetBaseFS(nil)
	return Run(ctx, db, dialect, embeddedDir, command, args...)
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, dialect, dir, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
		return nil
	default:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
		return nil
	}
}

// AutoMigrate creates the schema from the GORM models. The SQL migrations are
// written for Postgres, so sqlite databases (dev and tests) are built this way.
func AutoMigrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&models.Item{}, &models.User{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
