package cache

import (
	"context"
	"testing"
	"time"

	"thisisjapan-backend/internal/models"
	"thisisjapan-backend/internal/ranking"
	"thisisjapan-backend/internal/repository"
	"thisisjapan-backend/internal/repository/memory"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RankingCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRankingCache(client, time.Minute), mr
}

func TestRankingCache_MissThenHit(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, ok, err := c.GetPhotos(ctx, 0, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	photos := []*models.Photo{
		{ID: 2, Title: "東京の夜景", ImageURL: "u2", UserID: 1, Likes: 7},
		{ID: 1, Title: "秋の清水寺", ImageURL: "u1", UserID: 1, Likes: 3},
	}
	require.NoError(t, c.SetPhotos(ctx, 0, 10, photos))

	got, ok, err := c.GetPhotos(ctx, 0, 10)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(7), got[0].Likes)
	assert.Equal(t, "東京の夜景", got[0].Title)

	// other limits are independent entries
	_, ok, err = c.GetPhotos(ctx, 0, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRankingCache_InvalidateOnlyTouchesKind(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetPhotos(ctx, 0, 10, []*models.Photo{{ID: 1}}))
	require.NoError(t, c.SetWords(ctx, 0, 5, []*models.Word{{ID: 4}}))

	require.NoError(t, c.Invalidate(ctx, models.KindPhoto))

	photoGen, err := c.Generation(ctx, models.KindPhoto)
	require.NoError(t, err)
	assert.EqualValues(t, 1, photoGen)
	wordGen, err := c.Generation(ctx, models.KindWord)
	require.NoError(t, err)
	assert.Zero(t, wordGen)

	_, ok, err := c.GetPhotos(ctx, photoGen, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	// a write for the superseded generation is unreachable
	require.NoError(t, c.SetPhotos(ctx, 0, 10, []*models.Photo{{ID: 9}}))
	_, ok, err = c.GetPhotos(ctx, photoGen, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	words, ok, err := c.GetWords(ctx, wordGen, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(4), words[0].ID)
	assert.True(t, mr.Exists(RankingKey(models.KindWord, 0, 5)))
}

func TestRankingCache_EntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetWords(ctx, 0, 5, []*models.Word{{ID: 1}}))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.GetWords(ctx, 0, 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRankingCache_ServerDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, _, err := c.GetPhotos(context.Background(), 0, 10)
	assert.Error(t, err)
	_, err = c.Generation(context.Background(), models.KindPhoto)
	assert.Error(t, err)
}

// likeDuringRead likes a photo after the engine has taken its snapshot of
// the store but before it writes the ranking to the cache.
type likeDuringRead struct {
	repository.PhotoStore
	engine *ranking.Engine
	target int64
	fired  bool
}

func (s *likeDuringRead) GetAll(ctx context.Context) ([]*models.Photo, error) {
	photos, err := s.PhotoStore.GetAll(ctx)
	if err != nil || s.fired {
		return photos, err
	}
	s.fired = true
	if _, err := s.PhotoStore.IncrementLikes(ctx, s.target); err != nil {
		return nil, err
	}
	s.engine.Invalidate(ctx, models.KindPhoto)
	return photos, nil
}

func TestRankingCache_LikeDuringRebuildIsNotServedStale(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	store := memory.New()
	owner, err := store.Users().Create(ctx, models.NewUser{Username: "owner", Password: "hash"})
	require.NoError(t, err)
	photo, err := store.Photos().Create(ctx, models.NewPhoto{Title: "p", ImageURL: "u", UserID: owner.ID})
	require.NoError(t, err)

	photos := &likeDuringRead{PhotoStore: store.Photos(), target: photo.ID}
	engine := ranking.NewEngine(photos, store.Words(), c)
	photos.engine = engine

	// the first read returns the snapshot taken before the like
	_, err = engine.TopPhotos(ctx, 1)
	require.NoError(t, err)

	top, err := engine.TopPhotos(ctx, 1)
	require.NoError(t, err)
	all, err := engine.AllPhotos(ctx)
	require.NoError(t, err)

	require.Len(t, top, 1)
	require.Len(t, all, 1)
	assert.EqualValues(t, 1, all[0].Likes)
	assert.Equal(t, all[0].Likes, top[0].Likes)
}

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	defer client.Close()

	_, err = NewRedisClient(context.Background(), "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
