package db

import (
	"database/sql"
	"testing"
)

// NewTestDB returns a fresh in-memory items database with the schema applied,
// closed when the test ends. Each call is fully isolated; tests never share
// listings.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := EnsureSchema(db); err != nil {
		db.Close()
		t.Fatalf("creating items schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}
