package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Items are append-only apart from the
// status column; created_at is epoch milliseconds and is never updated.
const schema = `
CREATE TABLE IF NOT EXISTS items (
    id          TEXT PRIMARY KEY,
    type        TEXT NOT NULL CHECK (type IN ('LOST', 'FOUND')),
    title       TEXT NOT NULL,
    category    TEXT NOT NULL DEFAULT '기타',
    description TEXT,
    location    TEXT NOT NULL,
    date        TEXT,
    contact     TEXT NOT NULL,
    tags        TEXT NOT NULL DEFAULT '[]',
    image_url   TEXT,
    image       BLOB,
    image_mime  TEXT,
    status      TEXT NOT NULL DEFAULT 'ACTIVE' CHECK (status IN ('ACTIVE', 'RESOLVED')),
    created_at  INTEGER NOT NULL
);
`

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: listings are always served newest-first, optionally
	// filtered by type and status.
	`CREATE INDEX IF NOT EXISTS idx_items_created ON items(created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_items_type_status ON items(type, status)`,
}

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
