package memory

import (
	"context"
	"sync"

	"github.com/user/playlist-scraper/internal/entity"
)

// QueueRepoImpl is an in-process FIFO queue used when no Redis is configured.
type QueueRepoImpl struct {
	mu    sync.Mutex
	items []entity.CrawlRequest
}

// NewQueueRepo creates an empty in-memory queue.
func NewQueueRepo() *QueueRepoImpl {
	return &QueueRepoImpl{}
}

func (q *QueueRepoImpl) Push(ctx context.Context, req entity.CrawlRequest) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, req)
	return nil
}

func (q *QueueRepoImpl) Pop(ctx context.Context) (entity.CrawlRequest, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return entity.CrawlRequest{}, false, nil
	}
	req := q.items[0]
	q.items[0] = entity.CrawlRequest{}
	q.items = q.items[1:]
	return req, true, nil
}

func (q *QueueRepoImpl) Size(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.items)), nil
}

// VisitedRepoImpl is an in-process set of seen request identities.
type VisitedRepoImpl struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewVisitedRepo creates an empty in-memory visited set.
func NewVisitedRepo() *VisitedRepoImpl {
	return &VisitedRepoImpl{seen: make(map[string]struct{})}
}

func (v *VisitedRepoImpl) MarkIfNew(ctx context.Context, key string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.seen[key]; ok {
		return false, nil
	}
	v.seen[key] = struct{}{}
	return true, nil
}
