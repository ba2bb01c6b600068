package main

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/playlist-scraper/pkg/config"
)

func TestRunCmd_MissingQuery(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := NewRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"run"})

	err := cmd.Execute()
	assert.ErrorIs(t, err, config.ErrInvalidInput)
}

func TestRunCmd_InvalidEmailRegex(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := NewRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"run", "-q", "lofi", "--email-regex", "(["})

	err := cmd.Execute()
	assert.ErrorIs(t, err, config.ErrInvalidInput)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SEARCH_QUERY", "from-env")
	t.Setenv("MAX_PLAYLISTS", "7")

	cmd := NewRootCmd()
	run, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)
	require.NoError(t, run.ParseFlags([]string{"--query", "from-flag", "--debug", "--proxy", "http://p1:8000", "--proxy", "http://p2:8000"}))

	cfg, err := loadConfig(run)
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.SearchQuery)
	assert.Equal(t, 7, cfg.MaxPlaylists)
	assert.True(t, cfg.DebugMode)
	assert.Equal(t, []string{"http://p1:8000", "http://p2:8000"}, cfg.ProxyURLs)
}

func TestLoadConfig_TimeoutFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WAIT_TIMEOUT", "1m")

	cmd := NewRootCmd()
	run, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)
	require.NoError(t, run.ParseFlags([]string{"-q", "lofi", "--request-timeout", "45s", "--wait-timeout", "5s", "--settle-timeout", "2s"}))

	cfg, err := loadConfig(run)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5*time.Second, cfg.WaitTimeout)
	assert.Equal(t, 2*time.Second, cfg.SettleTimeout)
}

func TestLoadConfig_TimeoutDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := NewRootCmd()
	run, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)
	require.NoError(t, run.ParseFlags([]string{"-q", "lofi"}))

	cfg, err := loadConfig(run)
	require.NoError(t, err)
	assert.Equal(t, 120*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.WaitTimeout)
	assert.Equal(t, 10*time.Second, cfg.SettleTimeout)
}

func TestCrawlOptions(t *testing.T) {
	cfg := &config.Config{
		SearchQuery:       "lofi",
		BaseURL:           "https://open.spotify.com",
		MaxPlaylists:      20,
		DebugMode:         true,
		Concurrency:       2,
		MaxAttempts:       3,
		RequestTimeout:    time.Minute,
		WaitTimeout:       30 * time.Second,
		SettleTimeout:     10 * time.Second,
		RequestsPerSecond: 1.5,
	}

	opts := crawlOptions(cfg, "run-1")

	assert.Equal(t, "run-1", opts.RunID)
	assert.Equal(t, "lofi", opts.SearchQuery)
	assert.Equal(t, 20, opts.MaxPlaylists)
	assert.Equal(t, 40, opts.MaxRequests())
	assert.True(t, opts.DebugMode)
	assert.Equal(t, 1.5, opts.RequestsPerSecond)
	require.NotNil(t, opts.EmailPattern)
	assert.True(t, opts.EmailPattern.MatchString("a@b.co"))
}

func TestExecute_UnknownCommand(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"crawl"})
	assert.Error(t, cmd.Execute())
}
