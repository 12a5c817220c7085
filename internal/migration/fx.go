package migration

import (
	"github.com/smallbiznis/shipmentdna/internal/config"
	detectiondomain "github.com/smallbiznis/shipmentdna/internal/detection/domain"
	invoicedomain "github.com/smallbiznis/shipmentdna/internal/invoice/domain"
	"github.com/smallbiznis/shipmentdna/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// SQLite and MySQL are dev-mode dialects; the versioned
			// migrations target Postgres only.
			if err := conn.AutoMigrate(
				&invoicedomain.Invoice{},
				&detectiondomain.ScanRun{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedSampleData {
			return seed.EnsureSampleInvoices(conn)
		}
		return nil
	}),
)
