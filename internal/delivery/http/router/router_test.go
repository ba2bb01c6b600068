package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/user/playlist-scraper/internal/adapter/memory"
	"github.com/user/playlist-scraper/internal/delivery/http/handler"
	"github.com/user/playlist-scraper/internal/delivery/http/response"
	"github.com/user/playlist-scraper/internal/entity"
	"github.com/user/playlist-scraper/pkg/metrics"
	"go.uber.org/zap"
)

type staticStats struct {
	summary *entity.RunSummary
}

func (s staticStats) Stats() *entity.RunSummary { return s.summary }

type mockPinger struct {
	mock.Mock
}

func (m *mockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type fixture struct {
	router  http.Handler
	results *memory.ResultRepoImpl
	failed  *memory.FailedRequestRepoImpl
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, stores map[string]handler.Pinger) *fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	f := &fixture{
		results: memory.NewResultRepo(),
		failed:  memory.NewFailedRequestRepo(),
		metrics: metrics.New(reg),
	}
	stats := staticStats{summary: &entity.RunSummary{RunID: "run-1", SearchQuery: "lofi", PlaylistsVisited: 7}}
	h := handler.NewHandler("run-1", stats, f.results, f.failed, stores, zap.NewNop())
	f.router = New(h, f.metrics, reg, zap.NewNop())
	return f
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	redisPinger := new(mockPinger)
	redisPinger.On("Ping", mock.Anything).Return(nil)
	f := newFixture(t, map[string]handler.Pinger{"redis": redisPinger})

	rec := f.get("/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","redis":"healthy"}`, rec.Body.String())
	redisPinger.AssertExpectations(t)
}

func TestHealth_Unhealthy(t *testing.T) {
	pgPinger := new(mockPinger)
	pgPinger.On("Ping", mock.Anything).Return(errors.New("connection refused"))
	f := newFixture(t, map[string]handler.Pinger{"postgres": pgPinger})

	rec := f.get("/api/health")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","postgres":"unhealthy"}`, rec.Body.String())
}

func TestStats(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.get("/api/stats")

	require.Equal(t, http.StatusOK, rec.Code)
	var got entity.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, int64(7), got.PlaylistsVisited)
}

func TestResults(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.results.Save(ctx, &entity.ResultRecord{RunID: "run-1", URL: "https://open.spotify.com/playlist/a", Emails: []string{"a@b.co"}, HasEmail: true}))
	require.NoError(t, f.results.Save(ctx, &entity.ResultRecord{RunID: "run-0", URL: "https://open.spotify.com/playlist/old", Emails: []string{}}))

	rec := f.get("/api/results")
	require.Equal(t, http.StatusOK, rec.Code)
	var got response.ResultsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	require.Equal(t, 1, got.Count)
	assert.Equal(t, "https://open.spotify.com/playlist/a", got.Results[0].URL)

	rec = f.get("/api/results?run_id=run-0")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "run-0", got.RunID)
	assert.Equal(t, 1, got.Count)

	rec = f.get("/api/results?run_id=none")
	assert.JSONEq(t, `{"run_id":"none","count":0,"results":[]}`, rec.Body.String())
}

func TestFailed(t *testing.T) {
	f := newFixture(t, nil)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.failed.Save(context.Background(), &entity.FailedRequest{
		RunID:         "run-1",
		URL:           "https://open.spotify.com/search/lofi/playlists",
		Tag:           entity.TagSearch,
		Attempts:      3,
		FailureReason: "page load timeout",
		LastAttemptAt: at,
	}))

	rec := f.get("/api/failed")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"run_id":"run-1","failed":[{
		"url":"https://open.spotify.com/search/lofi/playlists",
		"tag":"SEARCH",
		"attempts":3,
		"failure_reason":"page load timeout",
		"last_attempt_at":"2026-03-01T12:00:00Z"}]}`, rec.Body.String())
}

func TestMetricsEndpointAndMiddleware(t *testing.T) {
	f := newFixture(t, nil)
	f.get("/api/stats")

	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/stats", "200")))

	rec := f.get("/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestNotFound(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.get("/api/crawl")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
