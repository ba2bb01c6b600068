package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/user/playlist-scraper/internal/repository"
)

const testBaseURL = "https://open.spotify.com"

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakePage struct {
	url      string
	html     string
	waitErr  error
	nextURL  string
	clickErr error
}

func (p *fakePage) URL(ctx context.Context) (string, error) { return p.url, nil }

func (p *fakePage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	return p.waitErr
}

func (p *fakePage) Content(ctx context.Context) (string, error) { return p.html, nil }

func (p *fakePage) ClickAndWaitForNavigation(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	if p.clickErr != nil {
		return "", p.clickErr
	}
	if p.nextURL == "" {
		return "", errors.New("no next page")
	}
	return p.nextURL, nil
}

func (p *fakePage) Close() error { return nil }

// fakeBrowser serves canned pages by URL and counts how often each was opened.
type fakeBrowser struct {
	mu     sync.Mutex
	pages  map[string]*fakePage
	opened map[string]int
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{
		pages:  make(map[string]*fakePage),
		opened: make(map[string]int),
	}
}

func (b *fakeBrowser) add(p *fakePage) *fakeBrowser {
	b.pages[p.url] = p
	return b
}

func (b *fakeBrowser) Open(ctx context.Context, url string) (repository.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opened[url]++
	p, ok := b.pages[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrNavigationFailed, url)
	}
	cp := *p
	return &cp, nil
}

func (b *fakeBrowser) openCount(url string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened[url]
}

func searchHTML(hasNext bool, hrefs ...string) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><div data-testid="search-results">`)
	for i, href := range hrefs {
		fmt.Fprintf(&sb, `<a href="%s"><span data-testid="entity-title-line">Playlist %d</span></a>`, href, i+1)
	}
	sb.WriteString(`</div>`)
	if hasNext {
		sb.WriteString(`<button aria-label="Next">Next</button>`)
	}
	sb.WriteString(`</body></html>`)
	return sb.String()
}

func playlistHTML(title, description string) string {
	return fmt.Sprintf(`<html><head><meta property="og:image" content="https://i.scdn.co/image/cover"></head>
<body><div data-testid="playlist-page">
<h1 data-testid="entity-title">%s</h1>
<p data-testid="entity-description">%s</p>
<div data-testid="entity-subtitle"><a href="/user/curator">curator</a> · 1,234 likes</div>
<div data-testid="track-row"></div><div data-testid="track-row"></div>
</div></body></html>`, title, description)
}

func playlistURL(id string) string {
	return testBaseURL + "/playlist/" + id
}
