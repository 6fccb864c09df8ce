// Package migration applies the schema on startup. Postgres gets
// versioned SQL migrations; other dialects fall back to AutoMigrate.
package migration

import (
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/smallbiznis/quotient/internal/config"
	customerdomain "github.com/smallbiznis/quotient/internal/customer/domain"
	idempotencydomain "github.com/smallbiznis/quotient/internal/idempotency/domain"
	quotedomain "github.com/smallbiznis/quotient/internal/quote/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrations embed.FS

var Module = fx.Module("migration",
	fx.Invoke(Run),
)

func Run(cfg config.Config, db *gorm.DB, log *zap.Logger) error {
	log = log.Named("migration")

	if cfg.DBType == "postgres" {
		return runVersioned(db, log)
	}
	return autoMigrate(db, log)
}

func runVersioned(db *gorm.DB, log *zap.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return err
	}
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}
	log.Info("schema migrated", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func autoMigrate(db *gorm.DB, log *zap.Logger) error {
	err := db.AutoMigrate(
		&customerdomain.Customer{},
		&quotedomain.Quote{},
		&quotedomain.QuoteLineItem{},
		&quotedomain.QuoteVersion{},
		&quotedomain.QuoteLineItemVersion{},
		&idempotencydomain.Record{},
	)
	if err != nil {
		return err
	}
	log.Info("schema auto-migrated")
	return nil
}
