package entity

import "time"

// RunSummary aggregates the counters of a single crawl run.
type RunSummary struct {
	RunID              string     `json:"run_id"`
	SearchQuery        string     `json:"search_query"`
	PlaylistsVisited   int64      `json:"playlists_visited"`
	PlaylistsWithEmail int64      `json:"playlists_with_email"`
	RecordsEmitted     int64      `json:"records_emitted"`
	RequestsEnqueued   int64      `json:"requests_enqueued"`
	RequestsFailed     int64      `json:"requests_failed"`
	StartedAt          time.Time  `json:"started_at"`
	FinishedAt         *time.Time `json:"finished_at,omitempty"`
}
