package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/user/playlist-scraper/internal/delivery/http/response"
	"github.com/user/playlist-scraper/internal/entity"
	"github.com/user/playlist-scraper/internal/repository"
	"go.uber.org/zap"
)

// StatsProvider exposes the live counters of a crawl run.
type StatsProvider interface {
	Stats() *entity.RunSummary
}

// Pinger is a backing store whose reachability is reported by the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Handler struct {
	runID      string
	stats      StatsProvider
	resultRepo repository.ResultRepository
	failedRepo repository.FailedRequestRepository
	stores     map[string]Pinger
	logger     *zap.Logger
}

func NewHandler(
	runID string,
	stats StatsProvider,
	resultRepo repository.ResultRepository,
	failedRepo repository.FailedRequestRepository,
	stores map[string]Pinger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		runID:      runID,
		stats:      stats,
		resultRepo: resultRepo,
		failedRepo: failedRepo,
		stores:     stores,
		logger:     logger,
	}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := map[string]string{"status": "ok"}
	code := http.StatusOK
	for name, store := range h.stores {
		if err := store.Ping(ctx); err != nil {
			healthStatus[name] = "unhealthy"
			healthStatus["status"] = "degraded"
			code = http.StatusServiceUnavailable
			h.logger.Error("Health check failed", zap.String("store", name), zap.Error(err))
			continue
		}
		healthStatus[name] = "healthy"
	}

	h.writeJSON(w, code, healthStatus)
}

func (h *Handler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.stats.Stats())
}

// HandleListResults returns the records of a run. The run_id query parameter
// defaults to the current run.
func (h *Handler) HandleListResults(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		runID = h.runID
	}

	records, err := h.resultRepo.ListByRun(r.Context(), runID)
	if err != nil {
		h.logger.Error("Failed to list results", zap.String("run_id", runID), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*entity.ResultRecord{}
	}

	h.writeJSON(w, http.StatusOK, response.ResultsResponse{
		RunID:   runID,
		Count:   len(records),
		Results: records,
	})
}

func (h *Handler) HandleListFailed(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		runID = h.runID
	}

	failed, err := h.failedRepo.ListByRun(r.Context(), runID)
	if err != nil {
		h.logger.Error("Failed to list failed requests", zap.String("run_id", runID), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := response.FailedResponse{RunID: runID, Failed: make([]response.FailedRequest, 0, len(failed))}
	for _, f := range failed {
		resp.Failed = append(resp.Failed, response.FailedRequest{
			URL:           f.URL,
			Tag:           f.Tag.String(),
			Attempts:      f.Attempts,
			FailureReason: f.FailureReason,
			LastAttemptAt: f.LastAttemptAt,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
