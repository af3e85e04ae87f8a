package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/fiskora/fiskora/internal/config"
	"github.com/fiskora/fiskora/internal/seed"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Embedded migrations target postgres; other dialects (tests)
		// migrate through gorm directly.
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		}

		return seed.EnsureDefaults(conn)
	}),
)
