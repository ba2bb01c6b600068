package entity

import "time"

// PlaylistSnapshot holds the fields scraped from one rendered playlist page.
type PlaylistSnapshot struct {
	Title         string
	Description   string
	Owner         string
	ImageURL      string
	FollowersText string
	TrackCount    int
}

// ResultRecord is the structured output emitted for a playlist.
// JSON field names match the dataset format consumed downstream.
type ResultRecord struct {
	RunID         string    `json:"-"`
	URL           string    `json:"url"`
	PlaylistID    string    `json:"playlistId"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Owner         string    `json:"owner"`
	ImageURL      string    `json:"imageUrl"`
	FollowersText string    `json:"followersText"`
	TrackCount    int       `json:"trackCount"`
	Emails        []string  `json:"emails"`
	HasEmail      bool      `json:"hasEmail"`
	FollowerCount *int64    `json:"followerCount,omitempty"`
	ScrapedAt     time.Time `json:"scrapedAt"`
}
