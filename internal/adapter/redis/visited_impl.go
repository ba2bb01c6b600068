package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/playlist-scraper/pkg/utils"
)

const visitedExpiry = 48 * time.Hour

// VisitedRepoImpl provides a concrete implementation for the VisitedRepository interface using Redis.
type VisitedRepoImpl struct {
	client *redis.Client
	prefix string
}

// NewVisitedRepo creates a visited set scoped to runID.
func NewVisitedRepo(client *redis.Client, runID string) *VisitedRepoImpl {
	return &VisitedRepoImpl{client: client, prefix: fmt.Sprintf("crawler:%s:visited:", runID)}
}

// generateKey creates a consistent Redis key for a given identity by hashing it.
func (r *VisitedRepoImpl) generateKey(key string) string {
	return r.prefix + utils.HashURL(key)
}

// MarkIfNew sets the key only if it does not exist yet. SETNX is atomic, so
// two workers enqueuing the same URL cannot both see it as new.
func (r *VisitedRepoImpl) MarkIfNew(ctx context.Context, key string) (bool, error) {
	return r.client.SetNX(ctx, r.generateKey(key), "1", visitedExpiry).Result()
}
