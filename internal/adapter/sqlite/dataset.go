package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Dataset is the local SQLite store for emitted records and failed requests.
type Dataset struct {
	db *sql.DB
}

// Open opens or creates the dataset file at path.
func Open(ctx context.Context, path string) (*Dataset, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create dataset directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &Dataset{db: db}, nil
}

func (d *Dataset) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close closes the database connection.
func (d *Dataset) Close() error {
	return d.db.Close()
}

// Results returns the record sink backed by this dataset.
func (d *Dataset) Results() *ResultRepoImpl {
	return &ResultRepoImpl{db: d.db}
}

// FailedRequests returns the failed-request store backed by this dataset.
func (d *Dataset) FailedRequests() *FailedRequestRepoImpl {
	return &FailedRequestRepoImpl{db: d.db}
}

const schema = `
CREATE TABLE IF NOT EXISTS playlist_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	url TEXT NOT NULL,
	playlist_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	owner TEXT NOT NULL,
	image_url TEXT NOT NULL,
	followers_text TEXT NOT NULL,
	track_count INTEGER NOT NULL,
	emails TEXT NOT NULL,
	has_email INTEGER NOT NULL,
	follower_count INTEGER,
	scraped_at TEXT NOT NULL,
	UNIQUE(run_id, url)
);

CREATE INDEX IF NOT EXISTS idx_results_run ON playlist_results(run_id);

CREATE TABLE IF NOT EXISTS failed_requests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	url TEXT NOT NULL,
	tag TEXT NOT NULL,
	attempts INTEGER NOT NULL,
	failure_reason TEXT NOT NULL,
	last_attempt_at TEXT NOT NULL
);
`
