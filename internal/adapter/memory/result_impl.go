package memory

import (
	"context"
	"sync"

	"github.com/user/playlist-scraper/internal/entity"
)

// ResultRepoImpl keeps emitted records in memory, in append order.
type ResultRepoImpl struct {
	mu      sync.RWMutex
	records []*entity.ResultRecord
}

func NewResultRepo() *ResultRepoImpl {
	return &ResultRepoImpl{}
}

func (r *ResultRepoImpl) Save(ctx context.Context, rec *entity.ResultRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *ResultRepoImpl) ListByRun(ctx context.Context, runID string) ([]*entity.ResultRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.ResultRecord, 0, len(r.records))
	for _, rec := range r.records {
		if rec.RunID == runID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// FailedRequestRepoImpl keeps failed-request reports in memory.
type FailedRequestRepoImpl struct {
	mu     sync.RWMutex
	nextID int64
	failed []*entity.FailedRequest
}

func NewFailedRequestRepo() *FailedRequestRepoImpl {
	return &FailedRequestRepoImpl{}
}

func (r *FailedRequestRepoImpl) Save(ctx context.Context, failed *entity.FailedRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	failed.ID = r.nextID
	r.failed = append(r.failed, failed)
	return nil
}

func (r *FailedRequestRepoImpl) ListByRun(ctx context.Context, runID string) ([]*entity.FailedRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.FailedRequest, 0, len(r.failed))
	for _, f := range r.failed {
		if f.RunID == runID {
			out = append(out, f)
		}
	}
	return out, nil
}
