package usecase

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/user/playlist-scraper/internal/entity"
	"github.com/user/playlist-scraper/internal/extractor"
	"github.com/user/playlist-scraper/internal/repository"
	"github.com/user/playlist-scraper/pkg/metrics"
	"go.uber.org/zap"
)

// PlaylistHandler extracts a playlist page into a ResultRecord and saves it
// when it carries an email, or always in debug mode. It never fails the request.
type PlaylistHandler struct {
	resultRepo   repository.ResultRepository
	emailPattern *regexp.Regexp
	debugMode    bool
	waitTimeout  time.Duration
	runID        string
	now          func() time.Time
	stats        *runStats
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

func NewPlaylistHandler(
	resultRepo repository.ResultRepository,
	emailPattern *regexp.Regexp,
	debugMode bool,
	waitTimeout time.Duration,
	runID string,
	now func() time.Time,
	m *metrics.Metrics,
	logger *zap.Logger,
) *PlaylistHandler {
	return &PlaylistHandler{
		resultRepo:   resultRepo,
		emailPattern: emailPattern,
		debugMode:    debugMode,
		waitTimeout:  waitTimeout,
		runID:        runID,
		now:          now,
		stats:        &runStats{},
		metrics:      m,
		logger:       logger,
	}
}

func (h *PlaylistHandler) Handle(ctx context.Context, req entity.CrawlRequest, page repository.Page) error {
	logger := h.logger.With(zap.String("url", req.URL))
	if req.CarriedTitle != "" {
		logger = logger.With(zap.String("title", req.CarriedTitle))
	}
	logger.Info("Processing playlist page")

	if err := h.process(ctx, req, page, logger); err != nil {
		logger.Error("Error processing playlist", zap.Error(err))
		h.metrics.IncErrors(errorType(err))
	}
	return nil
}

func (h *PlaylistHandler) process(ctx context.Context, req entity.CrawlRequest, page repository.Page, logger *zap.Logger) error {
	h.stats.playlistsVisited.Add(1)

	if err := page.WaitForSelector(ctx, extractor.PlaylistPageSelector, h.waitTimeout); err != nil {
		return err
	}
	content, err := page.Content(ctx)
	if err != nil {
		return err
	}
	snap, err := extractor.ParsePlaylistSnapshot(content)
	if err != nil {
		return fmt.Errorf("%w: %w", repository.ErrExtractionFailed, err)
	}

	rec := extractor.NewResultRecord(req.URL, snap, h.emailPattern, h.now())
	h.metrics.IncPlaylist(rec.HasEmail)

	if !shouldEmit(rec, h.debugMode) {
		logger.Debug("No email found in playlist description")
		return nil
	}

	rec.RunID = h.runID
	if err := h.resultRepo.Save(ctx, rec); err != nil {
		return fmt.Errorf("%w: %w", errSinkFailed, err)
	}
	h.stats.recordsEmitted.Add(1)
	if rec.HasEmail {
		h.stats.playlistsWithEmail.Add(1)
		logger.Info(fmt.Sprintf("Found playlist with %d email(s)", len(rec.Emails)),
			zap.String("playlist", rec.Title),
			zap.Strings("emails", rec.Emails),
		)
	}
	return nil
}

func shouldEmit(rec *entity.ResultRecord, debugMode bool) bool {
	return rec.HasEmail || debugMode
}
