package migrator

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/m04kA/SMC-CourtBooking/migrations"
)

// ErrMigration возвращается при ошибке применения миграций
var ErrMigration = errors.New("migrator: failed to apply migrations")

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
}

// Up применяет все встроенные миграции к базе
func Up(db *sql.DB, dbName string, log Logger) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("%w: open source: %w", ErrMigration, err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{DatabaseName: dbName})
	if err != nil {
		return fmt.Errorf("%w: init driver: %w", ErrMigration, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("%w: init migrate: %w", ErrMigration, err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("Migrations: schema is up to date")
			return nil
		}
		return fmt.Errorf("%w: %w", ErrMigration, err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		log.Warn("Migrations: applied, but version is unknown: %v", err)
		return nil
	}
	log.Info("Migrations: schema migrated to version=%d dirty=%t", version, dirty)
	return nil
}
