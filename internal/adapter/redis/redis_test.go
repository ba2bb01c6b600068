package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/playlist-scraper/internal/entity"
	"github.com/user/playlist-scraper/pkg/utils"
)

func TestQueueRepo_Push(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := NewQueueRepo(db, "run1")
	ctx := context.TODO()

	req := entity.NewPlaylistRequest("https://x/playlist/A", "Title")
	payload, err := json.Marshal(req)
	require.NoError(t, err)

	mock.ExpectLPush("crawler:run1:queue", payload).SetVal(1)
	assert.NoError(t, repo.Push(ctx, req))

	mock.ExpectLPush("crawler:run1:queue", payload).SetErr(errors.New("redis down"))
	assert.Error(t, repo.Push(ctx, req))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepo_Pop(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := NewQueueRepo(db, "run1")
	ctx := context.TODO()

	mock.ExpectRPop("crawler:run1:queue").SetVal(`{"url":"https://x/search/q/playlists","tag":"SEARCH"}`)
	req, ok, err := repo.Pop(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entity.NewSearchRequest("https://x/search/q/playlists"), req)

	mock.ExpectRPop("crawler:run1:queue").RedisNil()
	_, ok, err = repo.Pop(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectRPop("crawler:run1:queue").SetVal("not json")
	_, _, err = repo.Pop(ctx)
	assert.Error(t, err)

	mock.ExpectRPop("crawler:run1:queue").SetErr(errors.New("redis down"))
	_, _, err = repo.Pop(ctx)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepo_Size(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := NewQueueRepo(db, "run1")

	mock.ExpectLLen("crawler:run1:queue").SetVal(7)
	size, err := repo.Size(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, int64(7), size)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitedRepo_MarkIfNew(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := NewVisitedRepo(db, "run1")
	ctx := context.TODO()
	key := "crawler:run1:visited:" + utils.HashURL("https://x/playlist/A")

	mock.ExpectSetNX(key, "1", visitedExpiry).SetVal(true)
	isNew, err := repo.MarkIfNew(ctx, "https://x/playlist/A")
	require.NoError(t, err)
	assert.True(t, isNew)

	mock.ExpectSetNX(key, "1", visitedExpiry).SetVal(false)
	isNew, err = repo.MarkIfNew(ctx, "https://x/playlist/A")
	require.NoError(t, err)
	assert.False(t, isNew)

	mock.ExpectSetNX(key, "1", visitedExpiry).SetErr(errors.New("redis down"))
	_, err = repo.MarkIfNew(ctx, "https://x/playlist/A")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
