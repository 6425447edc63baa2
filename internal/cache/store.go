// Package cache persists parsed files in SQLite so unchanged files are not
// parsed again on the next run.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/conneroisu/frontnote/internal/types"
)

// Store wraps a SQLite database of parsed file entries. Rows are keyed by
// path; a lookup only hits when modification time, size and variant all
// match what was stored.
type Store struct {
	db      *sql.DB
	variant string
}

// Open opens (or creates) the cache at dbPath. Use ":memory:" for an
// in-memory database. Entries written under a different variant, for
// example another line-break marker, never hit.
func Open(dbPath, variant string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Every :memory: connection is its own database.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db, variant: variant}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS file_entries (
		path      TEXT PRIMARY KEY,
		mod_time  INTEGER NOT NULL,
		size      INTEGER NOT NULL,
		variant   TEXT NOT NULL,
		entry     TEXT NOT NULL,
		cached_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	return err
}

// Get returns the cached entry for path when it is still fresh.
func (s *Store) Get(path string, modTime time.Time, size int64) (*types.FileEntry, bool, error) {
	var data string
	err := s.db.QueryRow(
		`SELECT entry FROM file_entries
		 WHERE path = ? AND mod_time = ? AND size = ? AND variant = ?`,
		path, modTime.UnixNano(), size, s.variant,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query entry: %w", err)
	}

	var entry types.FileEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, false, fmt.Errorf("decode entry %s: %w", path, err)
	}
	return &entry, true, nil
}

// Put stores entry, replacing any previous row for the same path.
func (s *Store) Put(entry *types.FileEntry, size int64) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry %s: %w", entry.File, err)
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO file_entries (path, mod_time, size, variant, entry, cached_at)
		 VALUES (?, ?, ?, ?, ?, datetime('now'))`,
		entry.File, entry.ModTime.UnixNano(), size, s.variant, string(data),
	)
	if err != nil {
		return fmt.Errorf("put entry: %w", err)
	}
	return nil
}

// Delete removes the row for path.
func (s *Store) Delete(path string) error {
	if _, err := s.db.Exec(`DELETE FROM file_entries WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// Clear removes every row.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM file_entries`); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Len returns the number of cached rows.
func (s *Store) Len() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM file_entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}
