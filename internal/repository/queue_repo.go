package repository

import (
	"context"

	"github.com/user/playlist-scraper/internal/entity"
)

// QueueRepository defines the interface for a FIFO queue of crawl requests.
type QueueRepository interface {
	// Push adds a request to the end of the queue.
	Push(ctx context.Context, req entity.CrawlRequest) error
	// Pop removes and returns the request at the front of the queue.
	// ok is false when the queue is empty.
	Pop(ctx context.Context) (req entity.CrawlRequest, ok bool, err error)
	// Size returns the current number of items in the queue.
	Size(ctx context.Context) (int64, error)
}
