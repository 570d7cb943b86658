// Package store persists the application's records in SQL. Every query is
// written with "?" placeholders and rebound for the configured driver.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"farmfinance/backend/database"
	"farmfinance/backend/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Cipher encrypts sensitive columns at rest.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type Store struct {
	db     *sql.DB
	driver string
	cipher Cipher
	now    func() time.Time
}

type Option func(*Store)

// WithCipher encrypts user phone numbers with c.
func WithCipher(c Cipher) Option {
	return func(s *Store) { s.cipher = c }
}

// WithClock overrides the clock used for audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(db *sql.DB, driver string, opts ...Option) *Store {
	s := &Store{db: db, driver: driver, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Driver() string {
	return s.driver
}

// Ping checks the underlying connection.
func (s *Store) Ping(ctx context.Context) error {
	return database.Ping(ctx, s.db)
}

func (s *Store) rebind(query string) string {
	return database.Rebind(s.driver, query)
}

func (s *Store) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

func (s *Store) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	if err := s.queryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

func newID() string {
	return uuid.NewString()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// utc normalizes times before they reach the database so that sqlite's
// text timestamps compare correctly.
func utc(t time.Time) time.Time {
	return t.UTC()
}

func encodeJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeTags(raw string) []string {
	tags := []string{}
	if raw == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// tagClause matches rows whose JSON tag array contains any of tags.
func tagClause(column string, tags []string) (string, []interface{}) {
	var (
		parts []string
		args  []interface{}
	)
	for _, tag := range models.NormalizeTags(tags) {
		quoted, _ := json.Marshal(tag)
		parts = append(parts, column+` LIKE ? ESCAPE '\'`)
		args = append(args, "%"+likeEscaper.Replace(string(quoted))+"%")
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

// dateRange appends open-ended bounds on column. Zero times are ignored.
func dateRange(column string, start, end time.Time) (string, []interface{}) {
	var (
		clause string
		args   []interface{}
	)
	if !start.IsZero() {
		clause += " AND " + column + " >= ?"
		args = append(args, utc(start))
	}
	if !end.IsZero() {
		clause += " AND " + column + " <= ?"
		args = append(args, utc(end))
	}
	return clause, args
}

// orderBy resolves a client sort key against a whitelist of columns.
func orderBy(q models.ListQuery, columns map[string]string, fallback string) string {
	field, desc := q.SortField()
	column, ok := columns[field]
	if !ok {
		return fallback
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return column + " " + dir + ", id " + dir
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return nil
}
