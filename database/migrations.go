package database

import (
	"database/sql"
	"fmt"

	"farmfinance/backend/logger"
	"farmfinance/backend/migrations"
)

// RequiredTables are the tables the application cannot start without.
var RequiredTables = []string{"users", "expenses", "incomes", "feedback", "settings"}

// RunMigrations applies pending migrations and checks the resulting schema.
func RunMigrations(db *sql.DB, driver string) error {
	log := logger.Default()
	log.Info().Str("driver", driver).Msg("Running database migrations")

	if err := migrations.RunMigrations(db, driver); err != nil {
		log.Error().Err(err).Msg("Error running migrations")
		return err
	}

	version, dirty, err := migrations.Version(db, driver)
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("schema version %d is dirty", version)
	}
	if err := VerifySchema(db, driver); err != nil {
		return err
	}
	log.Info().Uint("version", version).Msg("Database migrations completed")
	return nil
}

// VerifySchema returns an error naming the first required table that is missing.
func VerifySchema(db *sql.DB, driver string) error {
	for _, table := range RequiredTables {
		exists, err := TableExists(db, driver, table)
		if err != nil {
			return fmt.Errorf("check table %s: %w", table, err)
		}
		if !exists {
			return fmt.Errorf("table %s is missing after migrations", table)
		}
	}
	return nil
}
