package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"farmfinance/backend/logger"

	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Options selects the backing database.
type Options struct {
	Driver      string
	SQLitePath  string
	DatabaseURL string
}

// Open connects to the configured database and verifies the connection.
func Open(opts Options) (*sql.DB, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		return OpenSQLite(opts.SQLitePath)
	case DriverPostgres:
		return OpenPostgres(PostgresConfig{URL: opts.DatabaseURL})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// OpenSQLite opens a sqlite database file in WAL mode. ":memory:" yields a
// private in-memory database limited to a single connection.
func OpenSQLite(path string) (*sql.DB, error) {
	log := logger.Default()
	memory := path == ":memory:"

	dsn := path
	if !memory {
		dsn += "?_journal=WAL&_timeout=10000&_busy_timeout=10000"
	}
	db, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if memory {
		// every new connection would see an empty database
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
		if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set busy timeout: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	log.Info().Str("path", path).Msg("Connected to SQLite")
	return db, nil
}

// Ping reports whether the database answers within the context deadline.
func Ping(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return db.PingContext(ctx)
}

// Rebind rewrites "?" placeholders to "$1".."$n" for postgres. Queries for
// other drivers are returned unchanged. Placeholders inside single-quoted
// literals are left alone.
func Rebind(driver, query string) string {
	if driver != DriverPostgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
