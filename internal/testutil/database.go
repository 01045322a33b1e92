package testutil

import (
	"database/sql"
	"testing"

	"subtool/internal/database"
)

// NewTestDatabase creates an in-memory SQLite database that is closed
// when the test finishes. No migrations are applied.
func NewTestDatabase(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}
