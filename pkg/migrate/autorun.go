package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/inventory-backend/pkg/config"
	"github.com/angelmondragon/inventory-backend/pkg/db"
	"github.com/angelmondragon/inventory-backend/pkg/logger"
)

// MaybeRunDev brings the schema up to date when the app runs in dev mode with
// the auto-migrate flag enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": cfg.DB.Driver})

	if cfg.DB.IsSQLite() {
		logg.Info(ctx, "auto-migrating sqlite schema")
		return AutoMigrate(client.DB().WithContext(ctx))
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	if err := ValidateEmbedded(); err != nil {
		return fmt.Errorf("validating embedded migrations: %w", err)
	}
	logg.Info(ctx, "running Goose migrations (dev auto-run)")
	if err := RunEmbedded(ctx, sqlDB, DialectFor(cfg.DB.Driver), "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	logg.Info(ctx, "Goose migrations completed")
	return nil
}
