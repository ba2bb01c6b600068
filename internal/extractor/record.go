package extractor

import (
	"regexp"
	"time"

	"github.com/user/playlist-scraper/internal/entity"
	"github.com/user/playlist-scraper/pkg/utils"
)

// NewResultRecord builds the output record for a playlist page. For the same
// inputs it always produces the same record.
func NewResultRecord(pageURL string, snap entity.PlaylistSnapshot, emailPattern *regexp.Regexp, scrapedAt time.Time) *entity.ResultRecord {
	emails := ExtractEmails(snap.Description, emailPattern)
	rec := &entity.ResultRecord{
		URL:           pageURL,
		PlaylistID:    utils.PlaylistID(pageURL),
		Title:         snap.Title,
		Description:   snap.Description,
		Owner:         snap.Owner,
		ImageURL:      snap.ImageURL,
		FollowersText: snap.FollowersText,
		TrackCount:    snap.TrackCount,
		Emails:        emails,
		HasEmail:      len(emails) > 0,
		ScrapedAt:     scrapedAt.UTC(),
	}
	if n, ok := ParseFollowerCount(snap.FollowersText); ok {
		rec.FollowerCount = &n
	}
	return rec
}
