// Package ranking builds like-ordered views over the entity store.
package ranking

import (
	"context"
	"fmt"

	"thisisjapan-backend/internal/models"
	"thisisjapan-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	DefaultPhotoLimit = 10
	DefaultWordLimit  = 5

	// MaxCachedLimit is the largest limit whose result is cached. Larger
	// requests are served from the store.
	MaxCachedLimit = 50
)

// Cache stores top-N results between likes. Entries are scoped to a
// per-kind generation; Invalidate advances it, so an entry written for an
// older generation is never served.
type Cache interface {
	Generation(ctx context.Context, kind models.Kind) (int64, error)
	GetPhotos(ctx context.Context, gen int64, limit int) ([]*models.Photo, bool, error)
	SetPhotos(ctx context.Context, gen int64, limit int, photos []*models.Photo) error
	GetWords(ctx context.Context, gen int64, limit int) ([]*models.Word, bool, error)
	SetWords(ctx context.Context, gen int64, limit int, words []*models.Word) error
	Invalidate(ctx context.Context, kind models.Kind) error
}

// Engine serves ranked photo and word views. It never mutates the store.
type Engine struct {
	photos repository.PhotoStore
	words  repository.WordStore
	cache  Cache
}

// NewEngine creates a ranking engine. cache may be nil.
func NewEngine(photos repository.PhotoStore, words repository.WordStore, cache Cache) *Engine {
	return &Engine{
		photos: photos,
		words:  words,
		cache:  cache,
	}
}

// AllPhotos returns every photo ranked by likes
func (e *Engine) AllPhotos(ctx context.Context) ([]*models.Photo, error) {
	photos, err := e.photos.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get photos: %w", err)
	}
	return Top(photos, len(photos)), nil
}

// AllWords returns every word ranked by likes
func (e *Engine) AllWords(ctx context.Context) ([]*models.Word, error) {
	words, err := e.words.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get words: %w", err)
	}
	return Top(words, len(words)), nil
}

// TopPhotos returns at most limit photos ranked by likes
func (e *Engine) TopPhotos(ctx context.Context, limit int) ([]*models.Photo, error) {
	var get func(context.Context, int64, int) ([]*models.Photo, bool, error)
	var set func(context.Context, int64, int, []*models.Photo) error
	if e.cache != nil {
		get, set = e.cache.GetPhotos, e.cache.SetPhotos
	}
	top, err := cachedTop(ctx, e, models.KindPhoto, limit, e.photos.GetAll, get, set)
	if err != nil {
		return nil, fmt.Errorf("failed to get photos: %w", err)
	}
	return top, nil
}

// TopWords returns at most limit words ranked by likes
func (e *Engine) TopWords(ctx context.Context, limit int) ([]*models.Word, error) {
	var get func(context.Context, int64, int) ([]*models.Word, bool, error)
	var set func(context.Context, int64, int, []*models.Word) error
	if e.cache != nil {
		get, set = e.cache.GetWords, e.cache.SetWords
	}
	top, err := cachedTop(ctx, e, models.KindWord, limit, e.words.GetAll, get, set)
	if err != nil {
		return nil, fmt.Errorf("failed to get words: %w", err)
	}
	return top, nil
}

// cachedTop reads the generation before the store so that a result computed
// from a snapshot older than the latest invalidation lands in a dead generation.
func cachedTop[T Rankable](
	ctx context.Context,
	e *Engine,
	kind models.Kind,
	limit int,
	getAll func(context.Context) ([]T, error),
	get func(context.Context, int64, int) ([]T, bool, error),
	set func(context.Context, int64, int, []T) error,
) ([]T, error) {
	limit = max(limit, 0)
	if limit == 0 {
		return []T{}, nil
	}

	useCache := e.cache != nil && limit <= MaxCachedLimit
	var gen int64
	if useCache {
		var err error
		gen, err = e.cache.Generation(ctx, kind)
		if err != nil {
			log.Warn().Err(err).Str("kind", string(kind)).Msg("Ranking cache generation read failed")
			useCache = false
		}
	}

	if useCache {
		cached, ok, err := get(ctx, gen, limit)
		if err != nil {
			log.Warn().Err(err).Str("kind", string(kind)).Int("limit", limit).Msg("Ranking cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	items, err := getAll(ctx)
	if err != nil {
		return nil, err
	}
	top := Top(items, limit)

	if useCache {
		if err := set(ctx, gen, limit, top); err != nil {
			log.Warn().Err(err).Str("kind", string(kind)).Int("limit", limit).Msg("Ranking cache write failed")
		}
	}
	return top, nil
}

// Invalidate drops cached rankings for kind. It runs even when ctx has been
// cancelled, since the change it follows has already been stored.
func (e *Engine) Invalidate(ctx context.Context, kind models.Kind) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Invalidate(context.WithoutCancel(ctx), kind); err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Msg("Ranking cache invalidation failed")
	}
}
