package migration

import (
	catalogdomain "github.com/invopad/invopad/internal/catalog/domain"
	clientdomain "github.com/invopad/invopad/internal/client/domain"
	"github.com/invopad/invopad/internal/config"
	invoicedomain "github.com/invopad/invopad/internal/invoice/domain"
	subscriptiondomain "github.com/invopad/invopad/internal/subscription/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Versioned SQL migrations cover postgres deployments. Other
		// dialects (sqlite in tests, mysql) rely on AutoMigrate.
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		return conn.AutoMigrate(
			&clientdomain.Client{},
			&catalogdomain.BillableService{},
			&invoicedomain.Invoice{},
			&invoicedomain.InvoiceItem{},
			&invoicedomain.InvoiceSequence{},
			&subscriptiondomain.Subscription{},
		)
	}),
)
