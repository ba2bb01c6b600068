package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/user/playlist-scraper/internal/adapter/memory"
	"github.com/user/playlist-scraper/internal/adapter/postgres"
	redis_adapter "github.com/user/playlist-scraper/internal/adapter/redis"
	"github.com/user/playlist-scraper/internal/adapter/sqlite"
	"github.com/user/playlist-scraper/internal/delivery/http/handler"
	"github.com/user/playlist-scraper/internal/repository"
	"github.com/user/playlist-scraper/pkg/config"
	"go.uber.org/zap"
)

// backends holds the stores a command works with.
type backends struct {
	queueRepo   repository.QueueRepository
	visitedRepo repository.VisitedRepository
	resultRepo  repository.ResultRepository
	failedRepo  repository.FailedRequestRepository
	pingers     map[string]handler.Pinger
	closers     []func()
}

func newBackends() *backends {
	return &backends{pingers: make(map[string]handler.Pinger)}
}

// Close releases the stores in reverse order of opening.
func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openSinks opens the result and failed-request stores: PostgreSQL when
// postgres_url is set, the SQLite dataset file otherwise.
func (b *backends) openSinks(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.PostgresURL != "" {
		dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return fmt.Errorf("unable to connect to database: %w", err)
		}
		b.closers = append(b.closers, dbpool.Close)
		if err := dbpool.Ping(ctx); err != nil {
			return fmt.Errorf("unable to reach database: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, dbpool); err != nil {
			return err
		}
		b.resultRepo = postgres.NewResultRepo(dbpool)
		b.failedRepo = postgres.NewFailedRequestRepo(dbpool)
		b.pingers["postgres"] = dbpool
		logger.Info("PostgreSQL connection pool established")
		return nil
	}

	dataset, err := sqlite.Open(ctx, cfg.DatasetPath)
	if err != nil {
		return err
	}
	b.closers = append(b.closers, func() {
		if err := dataset.Close(); err != nil {
			logger.Warn("Failed to close dataset", zap.Error(err))
		}
	})
	b.resultRepo = dataset.Results()
	b.failedRepo = dataset.FailedRequests()
	b.pingers["dataset"] = dataset
	logger.Info("Dataset opened", zap.String("path", cfg.DatasetPath))
	return nil
}

// openQueue opens the request queue and its dedup set: Redis when redis_addr
// is set, in-process memory otherwise.
func (b *backends) openQueue(ctx context.Context, cfg *config.Config, runID string, logger *zap.Logger) error {
	if cfg.RedisAddr == "" {
		b.queueRepo = memory.NewQueueRepo()
		b.visitedRepo = memory.NewVisitedRepo()
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	b.closers = append(b.closers, func() { _ = rdb.Close() })
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("unable to connect to redis: %w", err)
	}
	b.queueRepo = redis_adapter.NewQueueRepo(rdb, runID)
	b.visitedRepo = redis_adapter.NewVisitedRepo(rdb, runID)
	b.pingers["redis"] = handler.PingFunc(func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	logger.Info("Redis connection established", zap.String("addr", cfg.RedisAddr))
	return nil
}
