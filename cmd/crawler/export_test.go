package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/playlist-scraper/internal/adapter/sqlite"
	"github.com/user/playlist-scraper/internal/entity"
)

func seedDataset(t *testing.T, path string) {
	t.Helper()
	ctx := context.Background()
	dataset, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer dataset.Close()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, rec := range []*entity.ResultRecord{
		{RunID: "run-1", URL: "https://open.spotify.com/playlist/a", PlaylistID: "a", Emails: []string{"a@label.com"}, HasEmail: true, ScrapedAt: at},
		{RunID: "run-1", URL: "https://open.spotify.com/playlist/b", PlaylistID: "b", Emails: []string{"b@label.com"}, HasEmail: true, ScrapedAt: at},
		{RunID: "run-2", URL: "https://open.spotify.com/playlist/c", PlaylistID: "c", Emails: []string{}, ScrapedAt: at},
	} {
		require.NoError(t, dataset.Results().Save(ctx, rec))
	}
	require.NoError(t, dataset.FailedRequests().Save(ctx, &entity.FailedRequest{
		RunID:         "run-1",
		URL:           "https://open.spotify.com/search/lofi/playlists",
		Tag:           entity.TagSearch,
		Attempts:      3,
		FailureReason: "page load timeout",
		LastAttemptAt: at,
	}))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExportCmd_Records(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "dataset.db")
	seedDataset(t, path)

	out, err := execute(t, "export", "--run-id", "run-1", "--dataset", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "https://open.spotify.com/playlist/a", first["url"])
	assert.Equal(t, []any{"a@label.com"}, first["emails"])
	assert.NotContains(t, first, "followerCount")
	assert.Contains(t, lines[1], `"playlistId":"b"`)
}

func TestExportCmd_Failed(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "dataset.db")
	seedDataset(t, path)

	out, err := execute(t, "export", "--run-id", "run-1", "--failed", "--dataset", path)
	require.NoError(t, err)

	var failed entity.FailedRequest
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &failed))
	assert.Equal(t, entity.TagSearch, failed.Tag)
	assert.Equal(t, 3, failed.Attempts)
}

func TestExportCmd_RequiresRunID(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := execute(t, "export")
	assert.EqualError(t, err, "--run-id is required")
}
