package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/sqlite/*.sql sql/postgres/*.sql
var migrationsFS embed.FS

// newMigrate builds a migrator on top of an existing pool. The returned
// instance must not be closed: its database driver would close db with it.
func newMigrate(db *sql.DB, driver string) (*migrate.Migrate, error) {
	var (
		dbDriver database.Driver
		dir      string
		err      error
	)

	switch driver {
	case "sqlite3", "":
		dir = "sql/sqlite"
		dbDriver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	case "postgres":
		dir = "sql/postgres"
		dbDriver, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s driver: %w", driver, err)
	}

	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, dbDriver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}

// RunMigrations applies every pending up migration.
func RunMigrations(db *sql.DB, driver string) error {
	m, err := newMigrate(db, driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Rollback undoes the given number of migrations.
func Rollback(db *sql.DB, driver string, steps int) error {
	if steps < 1 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	m, err := newMigrate(db, driver)
	if err != nil {
		return err
	}
	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback migrations: %w", err)
	}
	return nil
}

// Version reports the applied schema version. dirty is true when a previous
// migration failed halfway.
func Version(db *sql.DB, driver string) (version uint, dirty bool, err error) {
	m, err := newMigrate(db, driver)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}
