// Package sqlite provides a SQLite-backed implementation of the
// storage.KV interface using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk, with no separate
// server process. Each slot is one row of the kv table.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.KV.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at cfg.Storage.Path, creates the kv
// table if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	// sql.Open only validates the driver name and DSN; the first real
	// connection happens on the first query.
	db, err := sql.Open("sqlite3", cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Schema:
	//   key   — slot name, one row per slot
	//   value — opaque payload (the JSON collection)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Get reads the value stored under key.
//
// QueryRow returns exactly one row. If the query finds no match the
// error surfaces only when Scan is called, as sql.ErrNoRows.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Get(key string) (string, error) {
	stmt, err := s.Db.Prepare("SELECT value FROM kv WHERE key = ? LIMIT 1")
	if err != nil {
		return "", fmt.Errorf("Get: prepare: %w: %w", storage.ErrUnavailable, err)
	}
	defer stmt.Close()

	var value string
	if err := stmt.QueryRow(key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", storage.ErrNoValue
		}
		return "", fmt.Errorf("Get: scan: %w: %w", storage.ErrUnavailable, err)
	}

	return value, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Set writes value under key, inserting the row or replacing its value.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Set(key, value string) error {
	stmt, err := s.Db.Prepare(
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
	)
	if err != nil {
		return fmt.Errorf("Set: prepare: %w: %w", storage.ErrUnavailable, err)
	}
	defer stmt.Close()

	// Argument order matches the ? order in the SQL: key, value
	if _, err := stmt.Exec(key, value); err != nil {
		return fmt.Errorf("Set: exec: %w: %w", storage.ErrUnavailable, err)
	}

	return nil
}

// Close releases the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}
