package links

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteCache persists results in a local SQLite database.
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache opens (or creates) the database at dbPath. Use ":memory:" in tests.
func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	const schema = `
	CREATE TABLE IF NOT EXISTS link_results (
		url TEXT PRIMARY KEY,
		status INTEGER NOT NULL,
		ok INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		checked_at INTEGER NOT NULL,
		failure_count INTEGER NOT NULL DEFAULT 0
	);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Get(ctx context.Context, url string) (*Entry, error) {
	row := c.db.QueryRowContext(ctx,
		"SELECT status, ok, error, checked_at, failure_count FROM link_results WHERE url = ?", url)
	var (
		e       = Entry{URL: url}
		ok      int
		checked int64
	)
	if err := row.Scan(&e.Status, &ok, &e.Error, &checked, &e.FailureCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query link result: %w", err)
	}
	e.OK = ok == 1
	e.CheckedAt = time.UnixMilli(checked).UTC()
	return &e, nil
}

func (c *SQLiteCache) Put(ctx context.Context, e *Entry) error {
	ok := 0
	if e.OK {
		ok = 1
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO link_results (url, status, ok, error, checked_at, failure_count)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			status = excluded.status, ok = excluded.ok, error = excluded.error,
			checked_at = excluded.checked_at, failure_count = excluded.failure_count`,
		e.URL, e.Status, ok, e.Error, e.CheckedAt.UnixMilli(), e.FailureCount)
	if err != nil {
		return fmt.Errorf("store link result: %w", err)
	}
	return nil
}

func (c *SQLiteCache) Close() error { return c.db.Close() }
