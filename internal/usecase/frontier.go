package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/user/playlist-scraper/internal/entity"
	"github.com/user/playlist-scraper/internal/repository"
	"github.com/user/playlist-scraper/pkg/utils"
)

// Frontier admits requests into the queue. A request is admitted once per
// normalized URL and only while the run's request budget and the per-tag
// limits allow it.
type Frontier struct {
	queueRepo   repository.QueueRepository
	visitedRepo repository.VisitedRepository
	maxRequests int
	tagLimits   map[entity.Tag]int

	mu       sync.Mutex
	total    int
	enqueued map[entity.Tag]int
}

// NewFrontier creates a Frontier. A maxRequests of 0 disables the budget.
func NewFrontier(
	queueRepo repository.QueueRepository,
	visitedRepo repository.VisitedRepository,
	maxRequests int,
	tagLimits map[entity.Tag]int,
) *Frontier {
	return &Frontier{
		queueRepo:   queueRepo,
		visitedRepo: visitedRepo,
		maxRequests: maxRequests,
		tagLimits:   tagLimits,
		enqueued:    make(map[entity.Tag]int),
	}
}

// Enqueue pushes req unless it is a duplicate or a limit is reached. It reports
// whether the request was admitted.
func (f *Frontier) Enqueue(ctx context.Context, req entity.CrawlRequest) (bool, error) {
	if !req.Tag.Valid() {
		return false, fmt.Errorf("%w: %q", ErrUnknownTag, req.Tag)
	}
	key, err := utils.NormalizeURL(req.URL)
	if err != nil {
		return false, fmt.Errorf("failed to normalize %q: %w", req.URL, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.maxRequests > 0 && f.total >= f.maxRequests {
		return false, nil
	}
	if limit, ok := f.tagLimits[req.Tag]; ok && f.enqueued[req.Tag] >= limit {
		return false, nil
	}

	isNew, err := f.visitedRepo.MarkIfNew(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to check visited state of %s: %w", req.URL, err)
	}
	if !isNew {
		return false, nil
	}

	if err := f.queueRepo.Push(ctx, req); err != nil {
		return false, fmt.Errorf("failed to push %s: %w", req.URL, err)
	}
	f.total++
	f.enqueued[req.Tag]++
	return true, nil
}

// Enqueued returns how many requests with tag were admitted so far.
func (f *Frontier) Enqueued(tag entity.Tag) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enqueued[tag]
}

// Remaining returns how many more requests with tag may be admitted.
// It returns -1 when tag is unlimited.
func (f *Frontier) Remaining(tag entity.Tag) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	remaining := -1
	if limit, ok := f.tagLimits[tag]; ok {
		remaining = max(limit-f.enqueued[tag], 0)
	}
	if f.maxRequests > 0 {
		left := max(f.maxRequests-f.total, 0)
		if remaining < 0 || left < remaining {
			remaining = left
		}
	}
	return remaining
}

// Total returns how many requests were admitted so far.
func (f *Frontier) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}
