package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/playlist-scraper/internal/entity"
	"github.com/user/playlist-scraper/pkg/utils"
)

// Selectors of the streaming site's web player.
const (
	SearchResultsSelector   = `[data-testid="search-results"]`
	PlaylistAnchorSelector  = `a[href*="/playlist/"]`
	EntityTitleLineSelector = `[data-testid="entity-title-line"]`
	NextButtonSelector      = `button[aria-label="Next"]`

	PlaylistPageSelector      = `[data-testid="playlist-page"]`
	EntityTitleSelector       = `[data-testid="entity-title"]`
	EntityDescriptionSelector = `[data-testid="entity-description"]`
	EntitySubtitleSelector    = `[data-testid="entity-subtitle"]`
	EntityOwnerSelector       = `[data-testid="entity-subtitle"] a`
	EntityImageSelector       = `img[data-testid="entity-image"], [data-testid="entity-image"] img`
	TrackRowSelector          = `[data-testid="track-row"]`
)

// PlaylistLink is a playlist anchor found on a search results page.
type PlaylistLink struct {
	URL   string
	Title string
}

// SearchPage is what a search results page yields.
type SearchPage struct {
	Links   []PlaylistLink
	HasNext bool
}

// ParseSearchPage extracts playlist anchors, in document order, and the presence
// of a next-page control. Relative hrefs are resolved against pageURL.
func ParseSearchPage(pageURL, htmlContent string) (*SearchPage, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url %q: %w", pageURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	page := &SearchPage{Links: []PlaylistLink{}}
	doc.Find(PlaylistAnchorSelector).Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		abs, err := utils.ToAbsoluteURL(base, href)
		if err != nil {
			return
		}
		page.Links = append(page.Links, PlaylistLink{
			URL:   abs,
			Title: strings.TrimSpace(s.Find(EntityTitleLineSelector).First().Text()),
		})
	})
	page.HasNext = doc.Find(NextButtonSelector).Length() > 0

	return page, nil
}

// ParsePlaylistSnapshot reads playlist fields from a rendered playlist page.
// Each field comes from its primary selector and falls back to the page's
// social-preview metadata when the primary is empty.
func ParsePlaylistSnapshot(htmlContent string) (entity.PlaylistSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return entity.PlaylistSnapshot{}, err
	}

	meta := make(map[string]string)
	doc.Find("meta").Each(func(i int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		property, _ := s.Attr("property")
		content, _ := s.Attr("content")
		key := name
		if property != "" {
			key = property
		}
		if _, seen := meta[key]; key != "" && !seen {
			meta[key] = content
		}
	})

	text := func(selector string) string {
		return strings.TrimSpace(doc.Find(selector).First().Text())
	}
	image, _ := doc.Find(EntityImageSelector).First().Attr("src")

	return entity.PlaylistSnapshot{
		Title:         firstNonEmpty(text(EntityTitleSelector), meta["og:title"]),
		Description:   firstNonEmpty(text(EntityDescriptionSelector), meta["og:description"]),
		Owner:         text(EntityOwnerSelector),
		ImageURL:      firstNonEmpty(meta["og:image"], image),
		FollowersText: text(EntitySubtitleSelector),
		TrackCount:    doc.Find(TrackRowSelector).Length(),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
