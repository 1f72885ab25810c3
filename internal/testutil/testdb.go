package testutil

import (
	"database/sql"
	"testing"

	"github.com/tempora-app/tempora/internal/db"
)

// NewTestDB opens a migrated in-memory database that lives until the test
// ends. With ":memory:" each pool connection gets its own state, which is
// fine for the single-connection repository and service tests; concurrency
// tests open a file-backed database instead.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// NewTestUoW wraps the test database in the unit of work the services expect.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
