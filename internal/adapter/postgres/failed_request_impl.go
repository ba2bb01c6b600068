package postgres

import (
	"context"

	"github.com/user/playlist-scraper/internal/entity"
)

// FailedRequestRepoImpl provides a concrete implementation for the FailedRequestRepository interface using PostgreSQL.
type FailedRequestRepoImpl struct {
	db DB
}

// NewFailedRequestRepo creates a new instance of FailedRequestRepoImpl.
func NewFailedRequestRepo(db DB) *FailedRequestRepoImpl {
	return &FailedRequestRepoImpl{db: db}
}

// Save records a request that exhausted its retry budget and sets its ID.
func (r *FailedRequestRepoImpl) Save(ctx context.Context, failed *entity.FailedRequest) error {
	query := `
		INSERT INTO failed_requests (run_id, url, tag, attempts, failure_reason, last_attempt_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;
	`
	return r.db.QueryRow(ctx, query,
		failed.RunID,
		failed.URL,
		string(failed.Tag),
		failed.Attempts,
		failed.FailureReason,
		failed.LastAttemptAt,
	).Scan(&failed.ID)
}

// ListByRun retrieves the failed requests of a run.
func (r *FailedRequestRepoImpl) ListByRun(ctx context.Context, runID string) ([]*entity.FailedRequest, error) {
	query := `
		SELECT id, run_id, url, tag, attempts, failure_reason, last_attempt_at
		FROM failed_requests
		WHERE run_id = $1
		ORDER BY id ASC;
	`
	rows, err := r.db.Query(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var failed []*entity.FailedRequest
	for rows.Next() {
		var f entity.FailedRequest
		var tag string
		if err := rows.Scan(
			&f.ID,
			&f.RunID,
			&f.URL,
			&tag,
			&f.Attempts,
			&f.FailureReason,
			&f.LastAttemptAt,
		); err != nil {
			return nil, err
		}
		f.Tag = entity.Tag(tag)
		failed = append(failed, &f)
	}

	return failed, rows.Err()
}
