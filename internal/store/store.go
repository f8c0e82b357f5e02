// Package store is the local SQLite cache: the persisted bearer token and
// roadmaps kept on this machine without an account.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS auth_token (
	id    INTEGER PRIMARY KEY CHECK (id = 1),
	token TEXT NOT NULL,
	saved_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS drafts (
	id           TEXT PRIMARY KEY,
	course_name  TEXT NOT NULL,
	deadline     TEXT,
	deadline_note TEXT,
	roadmap_data TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);
`

// DB is the local cache
type DB struct {
	*sql.DB
	now func() time.Time
}

// Open opens a SQLite database at the given path. ":memory:" keeps
// everything in memory.
func Open(path string) (*DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// one connection: a single writer, and :memory: stays one database
	db.SetMaxOpenConns(1)

	return &DB{DB: db, now: time.Now}, nil
}

// Init creates the schema
func (db *DB) Init(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func (db *DB) timestamp() string {
	return db.now().UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
