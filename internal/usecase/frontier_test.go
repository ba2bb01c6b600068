package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/playlist-scraper/internal/adapter/memory"
	"github.com/user/playlist-scraper/internal/entity"
)

func TestFrontier_DeduplicatesByNormalizedURL(t *testing.T) {
	ctx := context.Background()
	queue := memory.NewQueueRepo()
	f := NewFrontier(queue, memory.NewVisitedRepo(), 0, nil)

	ok, err := f.Enqueue(ctx, entity.NewPlaylistRequest("https://open.spotify.com/playlist/abc", "A"))
	require.NoError(t, err)
	assert.True(t, ok)

	for _, dup := range []string{
		"https://OPEN.spotify.com/playlist/abc",
		"https://open.spotify.com/playlist/abc/",
		"https://open.spotify.com/playlist/abc#tracks",
	} {
		ok, err := f.Enqueue(ctx, entity.NewPlaylistRequest(dup, "A"))
		require.NoError(t, err)
		assert.False(t, ok, dup)
	}

	size, err := queue.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)
	assert.Equal(t, 1, f.Total())
}

func TestFrontier_RequestBudget(t *testing.T) {
	ctx := context.Background()
	f := NewFrontier(memory.NewQueueRepo(), memory.NewVisitedRepo(), 2, nil)

	for i, id := range []string{"a", "b", "c"} {
		ok, err := f.Enqueue(ctx, entity.NewPlaylistRequest(playlistURL(id), ""))
		require.NoError(t, err)
		assert.Equal(t, i < 2, ok)
	}
	assert.Equal(t, 2, f.Total())
	assert.Equal(t, 0, f.Remaining(entity.TagSearch))
}

func TestFrontier_DuplicatesDoNotConsumeBudget(t *testing.T) {
	ctx := context.Background()
	f := NewFrontier(memory.NewQueueRepo(), memory.NewVisitedRepo(), 2, nil)

	_, err := f.Enqueue(ctx, entity.NewPlaylistRequest(playlistURL("a"), ""))
	require.NoError(t, err)
	_, err = f.Enqueue(ctx, entity.NewPlaylistRequest(playlistURL("a"), ""))
	require.NoError(t, err)

	ok, err := f.Enqueue(ctx, entity.NewPlaylistRequest(playlistURL("b"), ""))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFrontier_TagLimit(t *testing.T) {
	ctx := context.Background()
	f := NewFrontier(memory.NewQueueRepo(), memory.NewVisitedRepo(), 10, map[entity.Tag]int{
		entity.TagPlaylist: 1,
	})

	assert.Equal(t, 1, f.Remaining(entity.TagPlaylist))
	assert.Equal(t, 10, f.Remaining(entity.TagSearch))

	ok, err := f.Enqueue(ctx, entity.NewPlaylistRequest(playlistURL("a"), ""))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.Enqueue(ctx, entity.NewPlaylistRequest(playlistURL("b"), ""))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.Enqueue(ctx, entity.NewSearchRequest(testBaseURL+"/search/x/playlists"))
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, 1, f.Enqueued(entity.TagPlaylist))
	assert.Equal(t, 1, f.Enqueued(entity.TagSearch))
	assert.Equal(t, 0, f.Remaining(entity.TagPlaylist))
}

func TestFrontier_Unlimited(t *testing.T) {
	f := NewFrontier(memory.NewQueueRepo(), memory.NewVisitedRepo(), 0, nil)
	assert.Equal(t, -1, f.Remaining(entity.TagPlaylist))
}

func TestFrontier_InvalidURL(t *testing.T) {
	f := NewFrontier(memory.NewQueueRepo(), memory.NewVisitedRepo(), 0, nil)
	_, err := f.Enqueue(context.Background(), entity.NewSearchRequest("http://[::1"))
	assert.Error(t, err)
	assert.Equal(t, 0, f.Total())
}

func TestFrontier_RejectsUnknownTag(t *testing.T) {
	f := NewFrontier(memory.NewQueueRepo(), memory.NewVisitedRepo(), 0, nil)
	_, err := f.Enqueue(context.Background(), entity.CrawlRequest{URL: playlistURL("a"), Tag: "ARTIST"})
	assert.ErrorIs(t, err, ErrUnknownTag)
}
