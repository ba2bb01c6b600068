package response

import (
	"time"

	"github.com/user/playlist-scraper/internal/entity"
)

type ResultsResponse struct {
	RunID   string                 `json:"run_id"`
	Count   int                    `json:"count"`
	Results []*entity.ResultRecord `json:"results"`
}

// FailedRequest is a DTO for entity.FailedRequest
type FailedRequest struct {
	URL           string    `json:"url"`
	Tag           string    `json:"tag"`
	Attempts      int       `json:"attempts"`
	FailureReason string    `json:"failure_reason"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
}

type FailedResponse struct {
	RunID  string          `json:"run_id"`
	Failed []FailedRequest `json:"failed"`
}
