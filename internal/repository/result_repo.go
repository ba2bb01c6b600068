package repository

import (
	"context"

	"github.com/user/playlist-scraper/internal/entity"
)

// ResultRepository is the append-only sink for emitted records.
type ResultRepository interface {
	// Save appends a record. Records keep their append order.
	Save(ctx context.Context, rec *entity.ResultRecord) error
	// ListByRun returns the records of a run in append order.
	ListByRun(ctx context.Context, runID string) ([]*entity.ResultRecord, error)
}

// FailedRequestRepository stores requests that exhausted their retry budget.
type FailedRequestRepository interface {
	Save(ctx context.Context, failed *entity.FailedRequest) error
	ListByRun(ctx context.Context, runID string) ([]*entity.FailedRequest, error)
}
