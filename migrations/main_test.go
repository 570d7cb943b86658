package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	require.NoError(t, err)
	return count == 1
}

func TestRunMigrations(t *testing.T) {
	db := openMemoryDB(t)

	require.NoError(t, RunMigrations(db, "sqlite3"))

	for _, table := range []string{"users", "expenses", "incomes", "feedback", "settings"} {
		assert.True(t, tableExists(t, db, table), "table %s", table)
	}

	version, dirty, err := Version(db, "sqlite3")
	require.NoError(t, err)
	assert.Equal(t, uint(3), version)
	assert.False(t, dirty)

	// applying twice is a no-op
	require.NoError(t, RunMigrations(db, "sqlite3"))
}

func TestRollback(t *testing.T) {
	db := openMemoryDB(t)
	require.NoError(t, RunMigrations(db, "sqlite3"))

	require.NoError(t, Rollback(db, "sqlite3", 1))
	assert.False(t, tableExists(t, db, "settings"))
	assert.True(t, tableExists(t, db, "expenses"))

	version, _, err := Version(db, "sqlite3")
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)

	assert.Error(t, Rollback(db, "sqlite3", 0))
}

func TestUnknownDriver(t *testing.T) {
	db := openMemoryDB(t)
	assert.Error(t, RunMigrations(db, "mysql"))
}

func TestExpenseAmountMustBePositive(t *testing.T) {
	db := openMemoryDB(t)
	require.NoError(t, RunMigrations(db, "sqlite3"))

	_, err := db.Exec(`INSERT INTO expenses (id, user_id, amount, category, date, created_at, updated_at)
		VALUES ('e1', 'u1', -5, 'Seeds', '2024-03-10 00:00:00+00:00', '2024-03-10 00:00:00+00:00', '2024-03-10 00:00:00+00:00')`)
	assert.Error(t, err)
}
