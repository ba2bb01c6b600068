package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/user/playlist-scraper/internal/entity"
)

// FailedRequestRepoImpl implements FailedRequestRepository on the local dataset.
type FailedRequestRepoImpl struct {
	db *sql.DB
}

func (r *FailedRequestRepoImpl) Save(ctx context.Context, failed *entity.FailedRequest) error {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO failed_requests (run_id, url, tag, attempts, failure_reason, last_attempt_at)
	VALUES (?, ?, ?, ?, ?, ?)`,
		failed.RunID, failed.URL, string(failed.Tag), failed.Attempts, failed.FailureReason,
		failed.LastAttemptAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert failed request: %w", err)
	}
	failed.ID, err = res.LastInsertId()
	return err
}

func (r *FailedRequestRepoImpl) ListByRun(ctx context.Context, runID string) ([]*entity.FailedRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, run_id, url, tag, attempts, failure_reason, last_attempt_at
	FROM failed_requests
	WHERE run_id = ?
	ORDER BY id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query failed requests: %w", err)
	}
	defer rows.Close()

	var failed []*entity.FailedRequest
	for rows.Next() {
		var (
			f       entity.FailedRequest
			tag     string
			attempt string
		)
		if err := rows.Scan(&f.ID, &f.RunID, &f.URL, &tag, &f.Attempts, &f.FailureReason, &attempt); err != nil {
			return nil, fmt.Errorf("failed to scan failed request: %w", err)
		}
		f.Tag = entity.Tag(tag)
		if f.LastAttemptAt, err = time.Parse(time.RFC3339Nano, attempt); err != nil {
			return nil, fmt.Errorf("failed to parse last_attempt_at: %w", err)
		}
		failed = append(failed, &f)
	}
	return failed, rows.Err()
}
