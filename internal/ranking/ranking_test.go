package ranking_test

import (
	"context"
	"errors"
	"testing"

	"thisisjapan-backend/internal/models"
	"thisisjapan-backend/internal/ranking"
	"thisisjapan-backend/internal/repository"
	"thisisjapan-backend/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids[T interface{ RankKey() (int64, int64) }](items []T) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		_, id := item.RankKey()
		out = append(out, id)
	}
	return out
}

func TestSort_LikesDescThenIDAsc(t *testing.T) {
	photos := []*models.Photo{
		{ID: 4, Likes: 1},
		{ID: 2, Likes: 5},
		{ID: 3, Likes: 1},
		{ID: 1, Likes: 0},
		{ID: 5, Likes: 5},
	}
	ranking.Sort(photos)
	assert.Equal(t, []int64{2, 5, 3, 4, 1}, ids(photos))
}

func TestTop(t *testing.T) {
	words := []*models.Word{
		{ID: 1, Likes: 3},
		{ID: 2, Likes: 9},
		{ID: 3, Likes: 3},
	}

	tests := []struct {
		name  string
		limit int
		want  []int64
	}{
		{"zero", 0, []int64{}},
		{"negative clamps to zero", -3, []int64{}},
		{"one", 1, []int64{2}},
		{"tie broken by id", 2, []int64{2, 1}},
		{"exact", 3, []int64{2, 1, 3}},
		{"beyond total", 10, []int64{2, 1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ranking.Top(words, tt.limit)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	// input is left untouched
	assert.Equal(t, []int64{1, 2, 3}, ids(words))
}

func TestTop_NilInput(t *testing.T) {
	got := ranking.Top[*models.Photo](nil, 5)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func seedPhotos(t *testing.T, store *memory.Store, likes ...int) []int64 {
	t.Helper()
	ctx := context.Background()
	owner, err := store.Users().Create(ctx, models.NewUser{Username: "owner", Password: "hash"})
	require.NoError(t, err)

	var out []int64
	for _, n := range likes {
		photo, err := store.Photos().Create(ctx, models.NewPhoto{Title: "p", ImageURL: "u", UserID: owner.ID})
		require.NoError(t, err)
		for i := 0; i < n; i++ {
			_, err := store.Photos().IncrementLikes(ctx, photo.ID)
			require.NoError(t, err)
		}
		out = append(out, photo.ID)
	}
	return out
}

func TestEngine_TopAndAllAgree(t *testing.T) {
	store := memory.New()
	photoIDs := seedPhotos(t, store, 2, 7, 2, 0)
	engine := ranking.NewEngine(store.Photos(), store.Words(), nil)
	ctx := context.Background()

	all, err := engine.AllPhotos(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{photoIDs[1], photoIDs[0], photoIDs[2], photoIDs[3]}, ids(all))

	top, err := engine.TopPhotos(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, ids(all)[:2], ids(top))

	none, err := engine.TopPhotos(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	everything, err := engine.TopPhotos(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, ids(all), ids(everything))
}

func TestEngine_TopDoesNotMutate(t *testing.T) {
	store := memory.New()
	photoIDs := seedPhotos(t, store, 1, 3)
	engine := ranking.NewEngine(store.Photos(), store.Words(), nil)
	ctx := context.Background()

	_, err := engine.TopPhotos(ctx, 1)
	require.NoError(t, err)

	first, err := store.Photos().GetByID(ctx, photoIDs[0])
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.Likes)
}

func TestEngine_WordsEmpty(t *testing.T) {
	store := memory.New()
	engine := ranking.NewEngine(store.Photos(), store.Words(), nil)

	words, err := engine.TopWords(context.Background(), ranking.DefaultWordLimit)
	require.NoError(t, err)
	assert.NotNil(t, words)
	assert.Empty(t, words)
}

type cacheKey struct {
	gen   int64
	limit int
}

// cacheStub is a stub for ranking.Cache.
type cacheStub struct {
	gen         int64
	photos      map[cacheKey][]*models.Photo
	getErr      error
	genErr      error
	sets        int
	invalidated []models.Kind
	invalidCtx  error
}

func newCacheStub() *cacheStub {
	return &cacheStub{photos: map[cacheKey][]*models.Photo{}}
}

func (c *cacheStub) Generation(context.Context, models.Kind) (int64, error) {
	return c.gen, c.genErr
}
func (c *cacheStub) GetPhotos(_ context.Context, gen int64, limit int) ([]*models.Photo, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	photos, ok := c.photos[cacheKey{gen, limit}]
	return photos, ok, nil
}
func (c *cacheStub) SetPhotos(_ context.Context, gen int64, limit int, photos []*models.Photo) error {
	c.sets++
	c.photos[cacheKey{gen, limit}] = photos
	return nil
}
func (c *cacheStub) GetWords(context.Context, int64, int) ([]*models.Word, bool, error) {
	return nil, false, nil
}
func (c *cacheStub) SetWords(context.Context, int64, int, []*models.Word) error { return nil }
func (c *cacheStub) Invalidate(ctx context.Context, kind models.Kind) error {
	c.invalidated = append(c.invalidated, kind)
	c.invalidCtx = ctx.Err()
	c.gen++
	return nil
}

func TestEngine_UsesCache(t *testing.T) {
	store := memory.New()
	seedPhotos(t, store, 5)
	cache := newCacheStub()
	engine := ranking.NewEngine(store.Photos(), store.Words(), cache)
	ctx := context.Background()

	first, err := engine.TopPhotos(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	second, err := engine.TopPhotos(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets, "second read should be served from cache")
	assert.Equal(t, ids(first), ids(second))

	engine.Invalidate(ctx, models.KindPhoto)
	assert.Equal(t, []models.Kind{models.KindPhoto}, cache.invalidated)

	_, err = engine.TopPhotos(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.sets)
}

func TestEngine_LargeLimitSkipsCache(t *testing.T) {
	store := memory.New()
	seedPhotos(t, store, 1, 2)
	cache := newCacheStub()
	engine := ranking.NewEngine(store.Photos(), store.Words(), cache)
	ctx := context.Background()

	for _, limit := range []int{ranking.MaxCachedLimit + 1, 1000, 1 << 30} {
		top, err := engine.TopPhotos(ctx, limit)
		require.NoError(t, err)
		assert.Len(t, top, 2)
	}
	assert.Zero(t, cache.sets)
	assert.Empty(t, cache.photos)

	_, err := engine.TopPhotos(ctx, ranking.MaxCachedLimit)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
}

func TestEngine_InvalidateIgnoresCancellation(t *testing.T) {
	store := memory.New()
	cache := newCacheStub()
	engine := ranking.NewEngine(store.Photos(), store.Words(), cache)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine.Invalidate(ctx, models.KindWord)
	assert.Equal(t, []models.Kind{models.KindWord}, cache.invalidated)
	assert.NoError(t, cache.invalidCtx)
	assert.EqualValues(t, 1, cache.gen)
}

func TestEngine_CacheFailureFallsBackToStore(t *testing.T) {
	store := memory.New()
	photoIDs := seedPhotos(t, store, 1)

	tests := []struct {
		name  string
		cache *cacheStub
	}{
		{"read", &cacheStub{photos: map[cacheKey][]*models.Photo{}, getErr: errors.New("connection refused")}},
		{"generation", &cacheStub{photos: map[cacheKey][]*models.Photo{}, genErr: errors.New("connection refused")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := ranking.NewEngine(store.Photos(), store.Words(), tt.cache)
			top, err := engine.TopPhotos(context.Background(), 3)
			require.NoError(t, err)
			assert.Equal(t, photoIDs, ids(top))
		})
	}
}

func TestEngine_StoreUnavailable(t *testing.T) {
	store := memory.New()
	engine := ranking.NewEngine(store.Photos(), store.Words(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.AllWords(ctx)
	assert.ErrorIs(t, err, repository.ErrUnavailable)
}
