package database

import (
	"database/sql"
	"fmt"
	"net/url"

	"farmfinance/backend/logger"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresConfig holds database connection parameters. URL, when set, wins
// over the individual fields.
type PostgresConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ConnectionString builds a PostgreSQL connection string
func (cfg PostgresConfig) ConnectionString() string {
	if cfg.URL != "" {
		return cfg.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host + ":" + cfg.Port,
		Path:     "/" + cfg.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(cfg.SSLMode),
	}
	return u.String()
}

// OpenPostgres opens and pings a PostgreSQL connection pool.
func OpenPostgres(cfg PostgresConfig) (*sql.DB, error) {
	log := logger.Default()
	connectionString := cfg.ConnectionString()
	if connectionString == "" {
		return nil, fmt.Errorf("postgres connection string is empty")
	}

	log.Info().Str("dsn", MaskPassword(connectionString)).Msg("Connecting to PostgreSQL")

	db, err := sql.Open(DriverPostgres, connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	log.Info().Msg("Successfully connected to PostgreSQL")
	return db, nil
}

// MaskPassword masks the password in a connection URL for logging
func MaskPassword(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil || u.User == nil {
		return connStr
	}
	if _, ok := u.User.Password(); !ok {
		return connStr
	}
	u.User = url.UserPassword(u.User.Username(), "xxxxx")
	return u.String()
}
