package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool used by the repositories.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schema = `
CREATE TABLE IF NOT EXISTS playlist_results (
	id             BIGSERIAL PRIMARY KEY,
	run_id         TEXT        NOT NULL,
	url            TEXT        NOT NULL,
	playlist_id    TEXT        NOT NULL,
	title          TEXT        NOT NULL,
	description    TEXT        NOT NULL,
	owner          TEXT        NOT NULL,
	image_url      TEXT        NOT NULL,
	followers_text TEXT        NOT NULL,
	track_count    INTEGER     NOT NULL,
	emails         TEXT[]      NOT NULL,
	has_email      BOOLEAN     NOT NULL,
	follower_count BIGINT,
	scraped_at     TIMESTAMPTZ NOT NULL,
	UNIQUE (run_id, url)
);

CREATE TABLE IF NOT EXISTS failed_requests (
	id              BIGSERIAL PRIMARY KEY,
	run_id          TEXT        NOT NULL,
	url             TEXT        NOT NULL,
	tag             TEXT        NOT NULL,
	attempts        INTEGER     NOT NULL,
	failure_reason  TEXT        NOT NULL,
	last_attempt_at TIMESTAMPTZ NOT NULL
);`

// EnsureSchema creates the tables used by the repositories if they are missing.
func EnsureSchema(ctx context.Context, db DB) error {
	_, err := db.Exec(ctx, schema)
	return err
}
