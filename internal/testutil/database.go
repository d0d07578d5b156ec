package testutil

import (
	"database/sql"
	"testing"

	"moviedb/internal/database"
)

// NewTestDB creates a new in-memory SQLite database with the schema applied
// and foreign keys enforced. The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.NewSQLite(":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// IntPtr returns a pointer to n, for nullable reference fields.
func IntPtr(n int) *int {
	return &n
}
