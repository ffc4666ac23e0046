// Package sqlite provides the SQLite-backed offline cache of the last
// notifications view per tenant.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS cached_notifications (
	tenant_id  TEXT    NOT NULL,
	stream     TEXT    NOT NULL,
	id         TEXT    NOT NULL,
	position   INTEGER NOT NULL,
	payload    TEXT    NOT NULL,
	is_read    INTEGER NOT NULL DEFAULT 0,
	created_at TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (tenant_id, stream, id)
);
CREATE INDEX IF NOT EXISTS idx_cached_notifications_order
	ON cached_notifications (tenant_id, stream, position);
CREATE TABLE IF NOT EXISTS cached_streams (
	tenant_id TEXT NOT NULL,
	stream    TEXT NOT NULL,
	saved_at  TEXT NOT NULL,
	PRIMARY KEY (tenant_id, stream)
);
`

// DefaultFileName is the cache file created under the state directory.
const DefaultFileName = "cache.db"

// SQLiteStorage is the offline cache.
type SQLiteStorage struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

// NewSQLiteStorage opens (creating if needed) the cache at dbPath.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("sqlite storage: db path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("sqlite storage: create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: open db: %w", err)
	}

	storage := &SQLiteStorage{db: db, queries: New(db), now: time.Now}
	if err := storage.init(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return storage, nil
}

// Close closes the underlying SQLite connection.
func (s *SQLiteStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStorage) init() error {
	if _, err := s.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("sqlite storage: set busy timeout: %w", err)
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("sqlite storage: create schema: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) withTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite storage: begin transaction: %w", err)
	}
	if err := fn(s.queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite storage: commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) utcNow() string {
	return s.now().UTC().Format(time.RFC3339)
}
