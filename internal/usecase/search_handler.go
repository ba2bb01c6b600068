package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/user/playlist-scraper/internal/entity"
	"github.com/user/playlist-scraper/internal/extractor"
	"github.com/user/playlist-scraper/internal/repository"
	"go.uber.org/zap"
)

// PageHandler processes one rendered page of a request.
type PageHandler interface {
	Handle(ctx context.Context, req entity.CrawlRequest, page repository.Page) error
}

// SearchHandler turns a search results page into PLAYLIST requests and, while
// more playlists are wanted, a SEARCH request for the next results page.
type SearchHandler struct {
	frontier      *Frontier
	maxPlaylists  int
	waitTimeout   time.Duration
	settleTimeout time.Duration
	logger        *zap.Logger
}

func NewSearchHandler(frontier *Frontier, maxPlaylists int, waitTimeout, settleTimeout time.Duration, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		frontier:      frontier,
		maxPlaylists:  maxPlaylists,
		waitTimeout:   waitTimeout,
		settleTimeout: settleTimeout,
		logger:        logger,
	}
}

// Handle returns an error wrapping repository.ErrPageLoadTimeout when the
// results never render, so that the request is retried.
func (h *SearchHandler) Handle(ctx context.Context, req entity.CrawlRequest, page repository.Page) error {
	h.logger.Info("Processing search results page", zap.String("url", req.URL))

	if err := page.WaitForSelector(ctx, extractor.SearchResultsSelector, h.waitTimeout); err != nil {
		return fmt.Errorf("search results of %s: %w", req.URL, err)
	}

	pageURL, err := page.URL(ctx)
	if err != nil {
		return err
	}
	content, err := page.Content(ctx)
	if err != nil {
		return err
	}
	result, err := extractor.ParseSearchPage(pageURL, content)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", repository.ErrExtractionFailed, req.URL, err)
	}

	found := len(result.Links)
	h.logger.Info("Found playlists on this page", zap.String("url", req.URL), zap.Int("count", found))

	links := result.Links
	if len(links) > h.maxPlaylists {
		links = links[:h.maxPlaylists]
	}
	added := 0
	for _, link := range links {
		if h.frontier.Remaining(entity.TagPlaylist) == 0 {
			break
		}
		ok, err := h.frontier.Enqueue(ctx, entity.NewPlaylistRequest(link.URL, link.Title))
		if err != nil {
			return err
		}
		if ok {
			added++
		}
	}
	h.logger.Debug("Enqueued playlist requests", zap.Int("added", added), zap.Int("total", h.frontier.Enqueued(entity.TagPlaylist)))

	if !result.HasNext || found >= h.maxPlaylists || h.frontier.Remaining(entity.TagPlaylist) == 0 {
		return nil
	}

	nextURL, err := page.ClickAndWaitForNavigation(ctx, extractor.NextButtonSelector, h.settleTimeout)
	if err != nil {
		return fmt.Errorf("failed to open next results page of %s: %w", req.URL, err)
	}
	ok, err := h.frontier.Enqueue(ctx, entity.NewSearchRequest(nextURL))
	if err != nil {
		return err
	}
	if ok {
		h.logger.Info("Enqueued next search results page", zap.String("url", nextURL))
	}
	return nil
}
