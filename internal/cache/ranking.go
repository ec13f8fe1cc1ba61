package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"thisisjapan-backend/internal/models"
	"thisisjapan-backend/internal/ranking"

	"github.com/redis/go-redis/v9"
)

const (
	rankingKeyFormat        = "ranking:%s:g%d:top:%d"
	rankingGenerationFormat = "ranking:%s:gen"

	DefaultRankingTTL = 30 * time.Second
)

// RankingKey returns the cache key for the top limit entries of kind in generation gen
func RankingKey(kind models.Kind, gen int64, limit int) string {
	return fmt.Sprintf(rankingKeyFormat, kind, gen, limit)
}

// GenerationKey returns the counter bumped on every invalidation of kind
func GenerationKey(kind models.Kind) string {
	return fmt.Sprintf(rankingGenerationFormat, kind)
}

// RankingCache caches top-N rankings as JSON. Entries of a superseded
// generation are never read again and expire with their TTL.
type RankingCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ranking.Cache = (*RankingCache)(nil)

// NewRankingCache creates a ranking cache; ttl <= 0 uses DefaultRankingTTL
func NewRankingCache(client *redis.Client, ttl time.Duration) *RankingCache {
	if ttl <= 0 {
		ttl = DefaultRankingTTL
	}
	return &RankingCache{client: client, ttl: ttl}
}

// Generation returns the current generation of kind, zero if never invalidated
func (c *RankingCache) Generation(ctx context.Context, kind models.Kind) (int64, error) {
	gen, err := c.client.Get(ctx, GenerationKey(kind)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s generation: %w", kind, err)
	}
	return gen, nil
}

func (c *RankingCache) GetPhotos(ctx context.Context, gen int64, limit int) ([]*models.Photo, bool, error) {
	var photos []*models.Photo
	ok, err := c.get(ctx, RankingKey(models.KindPhoto, gen, limit), &photos)
	return photos, ok, err
}

func (c *RankingCache) SetPhotos(ctx context.Context, gen int64, limit int, photos []*models.Photo) error {
	return c.set(ctx, RankingKey(models.KindPhoto, gen, limit), photos)
}

func (c *RankingCache) GetWords(ctx context.Context, gen int64, limit int) ([]*models.Word, bool, error) {
	var words []*models.Word
	ok, err := c.get(ctx, RankingKey(models.KindWord, gen, limit), &words)
	return words, ok, err
}

func (c *RankingCache) SetWords(ctx context.Context, gen int64, limit int, words []*models.Word) error {
	return c.set(ctx, RankingKey(models.KindWord, gen, limit), words)
}

// Invalidate advances the generation of kind
func (c *RankingCache) Invalidate(ctx context.Context, kind models.Kind) error {
	if err := c.client.Incr(ctx, GenerationKey(kind)).Err(); err != nil {
		return fmt.Errorf("failed to advance %s generation: %w", kind, err)
	}
	return nil
}

func (c *RankingCache) get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (c *RankingCache) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
