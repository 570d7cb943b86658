package main

import (
	"flag"
	"fmt"
	"os"

	"farmfinance/backend/config"
	"farmfinance/backend/database"
	"farmfinance/backend/logger"
	"farmfinance/backend/migrations"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "Optional config file (env vars still win)")
	down := flag.Int("down", 0, "Roll back this many migrations instead of migrating up")
	version := flag.Bool("version", false, "Print the applied schema version and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail(err)
	}
	log := logger.New(cfg.LogLevel, cfg.IsDevelopment())
	logger.SetDefault(log)

	db, err := database.Open(database.Options{
		Driver:      cfg.DBDriver,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		fail(err)
	}
	defer db.Close()

	switch {
	case *version:
		v, dirty, err := migrations.Version(db, cfg.DBDriver)
		if err != nil {
			fail(err)
		}
		fmt.Printf("version %d (dirty: %t)\n", v, dirty)
	case *down > 0:
		if err := migrations.Rollback(db, cfg.DBDriver, *down); err != nil {
			fail(err)
		}
		log.Info().Int("steps", *down).Msg("Rolled back migrations")
	default:
		if err := database.RunMigrations(db, cfg.DBDriver); err != nil {
			fail(err)
		}
		fmt.Println("Migrations completed successfully!")
	}
}

func fail(err error) {
	log := logger.Default()
	log.Error().Err(err).Msg("Migration command failed")
	os.Exit(1)
}
