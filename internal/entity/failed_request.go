package entity

import "time"

// FailedRequest records a request that exhausted its retry budget.
type FailedRequest struct {
	ID            int64     `json:"id"`
	RunID         string    `json:"run_id"`
	URL           string    `json:"url"`
	Tag           Tag       `json:"tag"`
	Attempts      int       `json:"attempts"`
	FailureReason string    `json:"failure_reason"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
}
