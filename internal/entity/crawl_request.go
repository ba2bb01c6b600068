package entity

import "fmt"

// Tag selects the handler that processes a queued request.
type Tag string

const (
	TagSearch   Tag = "SEARCH"
	TagPlaylist Tag = "PLAYLIST"
)

// Valid reports whether t is one of the known tags.
func (t Tag) Valid() bool {
	switch t {
	case TagSearch, TagPlaylist:
		return true
	}
	return false
}

func (t Tag) String() string { return string(t) }

// CrawlRequest is a unit of work on the crawl queue. It is never mutated once enqueued.
type CrawlRequest struct {
	URL          string `json:"url"`
	Tag          Tag    `json:"tag"`
	CarriedTitle string `json:"carried_title,omitempty"`
}

// NewSearchRequest builds a SEARCH-tagged request.
func NewSearchRequest(url string) CrawlRequest {
	return CrawlRequest{URL: url, Tag: TagSearch}
}

// NewPlaylistRequest builds a PLAYLIST-tagged request carrying the title seen on the search page.
func NewPlaylistRequest(url, title string) CrawlRequest {
	return CrawlRequest{URL: url, Tag: TagPlaylist, CarriedTitle: title}
}

func (r CrawlRequest) String() string {
	return fmt.Sprintf("%s %s", r.Tag, r.URL)
}
