package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/user/playlist-scraper/internal/entity"
)

// QueueRepoImpl provides a concrete implementation for the QueueRepository interface using Redis Lists.
// Each crawl run owns its own list.
type QueueRepoImpl struct {
	client *redis.Client
	key    string
}

// NewQueueRepo creates a queue scoped to runID.
func NewQueueRepo(client *redis.Client, runID string) *QueueRepoImpl {
	return &QueueRepoImpl{client: client, key: fmt.Sprintf("crawler:%s:queue", runID)}
}

// Push adds a request to the left side of the Redis list (acting as a queue).
func (r *QueueRepoImpl) Push(ctx context.Context, req entity.CrawlRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return r.client.LPush(ctx, r.key, payload).Err()
}

// Pop removes and returns a request from the right side of the Redis list.
// RPop returns redis.Nil when the list is empty, which is reported as ok=false.
func (r *QueueRepoImpl) Pop(ctx context.Context) (entity.CrawlRequest, bool, error) {
	payload, err := r.client.RPop(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return entity.CrawlRequest{}, false, nil
		}
		return entity.CrawlRequest{}, false, err
	}

	var req entity.CrawlRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return entity.CrawlRequest{}, false, fmt.Errorf("decode queued request: %w", err)
	}
	return req, true, nil
}

// Size returns the current number of items in the queue.
func (r *QueueRepoImpl) Size(ctx context.Context) (int64, error) {
	return r.client.LLen(ctx, r.key).Result()
}
