package repository

import "context"

// VisitedRepository deduplicates requests by their normalized URL within a run.
type VisitedRepository interface {
	// MarkIfNew records key as seen. It returns false if key was already seen.
	MarkIfNew(ctx context.Context, key string) (bool, error)
}
