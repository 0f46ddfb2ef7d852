package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS ledger_snapshots (
    name TEXT PRIMARY KEY,
    payload BLOB NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

// SQLiteStore keeps the snapshot in one row of ledger_snapshots. The row is
// replaced inside a transaction, so a failed write rolls back to the prior
// payload.
type SQLiteStore struct {
	db   *sql.DB
	name string
}

// OpenSQLite opens the database at dsn and applies the schema
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, ErrPathRequired
	}
	if path, ok := dsnPath(trimmed); ok {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", trimmed)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db, name: DefaultSnapshotKey}, nil
}

// dsnPath extracts the filesystem path of a "file:" DSN
func dsnPath(dsn string) (string, bool) {
	if !strings.HasPrefix(dsn, "file:") {
		return "", false
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || strings.Contains(dsn, "mode=memory") {
		return "", false
	}
	return path, true
}

// Read returns the current snapshot
func (s *SQLiteStore) Read(ctx context.Context) ([]byte, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT payload FROM ledger_snapshots WHERE name = ?
    `, s.name)
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	return payload, nil
}

// Write replaces the snapshot in a single transaction
func (s *SQLiteStore) Write(ctx context.Context, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO ledger_snapshots(name, payload, updated_at)
        VALUES(?, ?, ?)
        ON CONFLICT(name) DO UPDATE SET
            payload=excluded.payload,
            updated_at=excluded.updated_at
    `, s.name, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Close releases database resources
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
