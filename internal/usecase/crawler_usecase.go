package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/user/playlist-scraper/internal/entity"
	"github.com/user/playlist-scraper/internal/repository"
	"github.com/user/playlist-scraper/pkg/metrics"
	"github.com/user/playlist-scraper/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	initialBackoff = 5 * time.Second
	jitterFactor   = 0.2 // +/- 20%
	pollInterval   = 200 * time.Millisecond
)

var (
	// ErrUnknownTag is reported for a request whose tag has no handler.
	ErrUnknownTag = errors.New("unknown request tag")

	errSinkFailed = errors.New("result sink failed")
)

// Options configures a crawl run.
type Options struct {
	RunID        string
	SearchQuery  string
	BaseURL      string
	MaxPlaylists int
	EmailPattern *regexp.Regexp
	DebugMode    bool

	Concurrency       int
	MaxAttempts       int
	RequestTimeout    time.Duration
	WaitTimeout       time.Duration
	SettleTimeout     time.Duration
	RequestsPerSecond float64

	// Zero values fall back to the package defaults.
	InitialBackoff time.Duration
	PollInterval   time.Duration
	Now            func() time.Time
}

// MaxRequests is the budget of requests a run may enqueue.
func (o Options) MaxRequests() int {
	return 2 * o.MaxPlaylists
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 120 * time.Second
	}
	if o.WaitTimeout <= 0 {
		o.WaitTimeout = 30 * time.Second
	}
	if o.SettleTimeout <= 0 {
		o.SettleTimeout = 10 * time.Second
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = initialBackoff
	}
	if o.PollInterval <= 0 {
		o.PollInterval = pollInterval
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Dependencies are the collaborators of a Crawler.
type Dependencies struct {
	Browser     repository.Browser
	QueueRepo   repository.QueueRepository
	VisitedRepo repository.VisitedRepository
	ResultRepo  repository.ResultRepository
	FailedRepo  repository.FailedRequestRepository
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
}

type runStats struct {
	playlistsVisited   atomic.Int64
	playlistsWithEmail atomic.Int64
	recordsEmitted     atomic.Int64
	requestsFailed     atomic.Int64
}

// Crawler runs a search crawl with a pool of workers over a shared queue.
type Crawler struct {
	opts       Options
	browser    repository.Browser
	queueRepo  repository.QueueRepository
	failedRepo repository.FailedRequestRepository
	frontier   *Frontier
	search     *SearchHandler
	playlist   *PlaylistHandler
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
	logger     *zap.Logger

	stats     runStats
	inFlight  atomic.Int64
	startedAt time.Time
}

// NewCrawler creates a Crawler for a single run.
func NewCrawler(opts Options, deps Dependencies) *Crawler {
	opts = opts.withDefaults()

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	frontier := NewFrontier(deps.QueueRepo, deps.VisitedRepo, opts.MaxRequests(), map[entity.Tag]int{
		entity.TagPlaylist: opts.MaxPlaylists,
	})
	logger := deps.Logger.With(zap.String("run_id", opts.RunID))

	c := &Crawler{
		opts:       opts,
		browser:    deps.Browser,
		queueRepo:  deps.QueueRepo,
		failedRepo: deps.FailedRepo,
		frontier:   frontier,
		limiter:    rate.NewLimiter(limit, 1),
		metrics:    deps.Metrics,
		logger:     logger,
	}
	c.search = NewSearchHandler(frontier, opts.MaxPlaylists, opts.WaitTimeout, opts.SettleTimeout, logger)
	c.playlist = NewPlaylistHandler(deps.ResultRepo, opts.EmailPattern, opts.DebugMode, opts.WaitTimeout, opts.RunID, opts.Now, deps.Metrics, logger)
	return c
}

// Run seeds the search request and processes the queue until it is drained
// and no request is in flight, or until ctx is cancelled. The summary is
// returned in both cases.
func (c *Crawler) Run(ctx context.Context) (*entity.RunSummary, error) {
	c.startedAt = c.opts.Now().UTC()
	c.logger.Info("Starting playlist email scraper",
		zap.String("query", c.opts.SearchQuery),
		zap.Int("max_playlists", c.opts.MaxPlaylists),
		zap.Bool("debug_mode", c.opts.DebugMode),
	)

	seed := entity.NewSearchRequest(utils.SearchURL(c.opts.BaseURL, c.opts.SearchQuery))
	if _, err := c.frontier.Enqueue(ctx, seed); err != nil {
		return c.finish(), fmt.Errorf("failed to enqueue search request: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < c.opts.Concurrency; i++ {
		g.Go(func() error {
			return c.worker(gctx)
		})
	}
	err := g.Wait()

	summary := c.finish()
	c.logger.Info("Scraping completed",
		zap.Int64("playlists_visited", summary.PlaylistsVisited),
		zap.Int64("playlists_with_email", summary.PlaylistsWithEmail),
		zap.Int64("records_emitted", summary.RecordsEmitted),
		zap.Int64("requests_failed", summary.RequestsFailed),
	)
	return summary, err
}

func (c *Crawler) finish() *entity.RunSummary {
	summary := c.Stats()
	finishedAt := c.opts.Now().UTC()
	summary.FinishedAt = &finishedAt
	return summary
}

// Stats returns a snapshot of the run counters. It is safe to call while the
// crawl is running.
func (c *Crawler) Stats() *entity.RunSummary {
	return &entity.RunSummary{
		RunID:              c.opts.RunID,
		SearchQuery:        c.opts.SearchQuery,
		PlaylistsVisited:   c.playlist.stats.playlistsVisited.Load(),
		PlaylistsWithEmail: c.playlist.stats.playlistsWithEmail.Load(),
		RecordsEmitted:     c.playlist.stats.recordsEmitted.Load(),
		RequestsEnqueued:   int64(c.frontier.Total()),
		RequestsFailed:     c.stats.requestsFailed.Load(),
		StartedAt:          c.startedAt,
	}
}

func (c *Crawler) worker(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		// A worker counts as busy from before its pop until its request is
		// done, so an empty queue with nothing in flight means the run is over.
		c.inFlight.Add(1)
		req, ok, err := c.queueRepo.Pop(ctx)
		if err != nil {
			c.inFlight.Add(-1)
			return fmt.Errorf("failed to pop request from queue: %w", err)
		}
		if ok {
			c.processRequest(ctx, req)
			c.inFlight.Add(-1)
			c.updateQueueGauge(ctx)
			continue
		}

		if c.inFlight.Add(-1) == 0 {
			size, err := c.queueRepo.Size(ctx)
			if err != nil {
				return fmt.Errorf("failed to read queue size: %w", err)
			}
			if size == 0 {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.opts.PollInterval):
		}
	}
}

func (c *Crawler) updateQueueGauge(ctx context.Context) {
	if size, err := c.queueRepo.Size(ctx); err == nil {
		c.metrics.RequestsInQueue.Set(float64(size))
	}
}

// processRequest runs req with retries. Exhausted requests are reported and
// never stop the run.
func (c *Crawler) processRequest(ctx context.Context, req entity.CrawlRequest) {
	tag := req.Tag.String()
	var lastErr error
	attempts := 0

	for attempts < c.opts.MaxAttempts {
		attempts++
		startTime := time.Now()
		lastErr = c.attempt(ctx, req)
		c.metrics.CrawlDuration.WithLabelValues(tag).Observe(time.Since(startTime).Seconds())

		if lastErr == nil {
			c.metrics.CrawlsTotal.WithLabelValues(tag, "success").Inc()
			return
		}
		if ctx.Err() != nil {
			return
		}
		c.metrics.IncErrors(errorType(lastErr))
		if errors.Is(lastErr, ErrUnknownTag) || attempts == c.opts.MaxAttempts {
			break
		}

		delay := c.backoff(attempts)
		c.metrics.CrawlsTotal.WithLabelValues(tag, "retry").Inc()
		c.logger.Warn("Request failed, retrying",
			zap.String("url", req.URL),
			zap.String("tag", tag),
			zap.Int("attempt", attempts),
			zap.Duration("backoff", delay),
			zap.Error(lastErr),
		)
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}

	c.handleFailure(ctx, req, attempts, lastErr)
}

func (c *Crawler) attempt(ctx context.Context, req entity.CrawlRequest) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
	defer cancel()

	handler, err := c.handlerFor(req.Tag)
	if err != nil {
		return err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	page, err := c.browser.Open(ctx, req.URL)
	if err != nil {
		return err
	}
	defer func() {
		if err := page.Close(); err != nil {
			c.logger.Warn("Failed to close page", zap.String("url", req.URL), zap.Error(err))
		}
	}()

	return handler.Handle(ctx, req, page)
}

func (c *Crawler) handlerFor(tag entity.Tag) (PageHandler, error) {
	switch tag {
	case entity.TagSearch:
		return c.search, nil
	case entity.TagPlaylist:
		return c.playlist, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
}

func (c *Crawler) handleFailure(ctx context.Context, req entity.CrawlRequest, attempts int, crawlErr error) {
	c.stats.requestsFailed.Add(1)
	c.metrics.CrawlsTotal.WithLabelValues(req.Tag.String(), "failure").Inc()
	c.logger.Error("Request failed too many times",
		zap.String("url", req.URL),
		zap.String("tag", req.Tag.String()),
		zap.Int("attempts", attempts),
		zap.Error(crawlErr),
	)

	failed := &entity.FailedRequest{
		RunID:         c.opts.RunID,
		URL:           req.URL,
		Tag:           req.Tag,
		Attempts:      attempts,
		FailureReason: crawlErr.Error(),
		LastAttemptAt: c.opts.Now().UTC(),
	}
	if err := c.failedRepo.Save(ctx, failed); err != nil {
		c.logger.Error("Failed to save failed request", zap.String("url", req.URL), zap.Error(err))
	}
}

// backoff returns the delay before the retry following attempt.
func (c *Crawler) backoff(attempt int) time.Duration {
	delay := c.opts.InitialBackoff << (attempt - 1)
	jitter := (rand.Float64()*2 - 1) * jitterFactor * float64(delay)
	return delay + time.Duration(jitter)
}

func errorType(err error) string {
	switch {
	case errors.Is(err, repository.ErrPageLoadTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, repository.ErrNavigationFailed):
		return "navigation"
	case errors.Is(err, repository.ErrExtractionFailed):
		return "extraction"
	case errors.Is(err, errSinkFailed):
		return "sink"
	case errors.Is(err, ErrUnknownTag):
		return "unknown_tag"
	default:
		return "unknown"
	}
}
