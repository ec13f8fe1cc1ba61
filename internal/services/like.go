package services

import (
	"context"
	"fmt"

	"thisisjapan-backend/internal/metrics"
	"thisisjapan-backend/internal/models"
	"thisisjapan-backend/internal/ranking"
	"thisisjapan-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// LikeEvent describes a like that has been recorded
type LikeEvent struct {
	Kind  models.Kind
	ID    int64
	Likes int64
}

// LikeNotifier is told about every recorded like
type LikeNotifier interface {
	PublishLike(event LikeEvent)
}

// LikeService records likes on photos and words
type LikeService struct {
	photos   repository.PhotoStore
	words    repository.WordStore
	rankings *ranking.Engine
	notifier LikeNotifier
}

// NewLikeService creates a new like service. notifier may be nil.
func NewLikeService(photos repository.PhotoStore, words repository.WordStore, rankings *ranking.Engine, notifier LikeNotifier) *LikeService {
	return &LikeService{
		photos:   photos,
		words:    words,
		rankings: rankings,
		notifier: notifier,
	}
}

// LikePhoto adds one like to a photo and returns the updated photo
func (s *LikeService) LikePhoto(ctx context.Context, id int64) (*models.Photo, error) {
	photo, err := s.photos.IncrementLikes(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to like photo: %w", err)
	}
	s.liked(ctx, LikeEvent{Kind: models.KindPhoto, ID: photo.ID, Likes: photo.Likes})
	return photo, nil
}

// LikeWord adds one like to a word and returns the updated word
func (s *LikeService) LikeWord(ctx context.Context, id int64) (*models.Word, error) {
	word, err := s.words.IncrementLikes(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to like word: %w", err)
	}
	s.liked(ctx, LikeEvent{Kind: models.KindWord, ID: word.ID, Likes: word.Likes})
	return word, nil
}

func (s *LikeService) liked(ctx context.Context, event LikeEvent) {
	metrics.LikesTotal.WithLabelValues(string(event.Kind)).Inc()
	s.rankings.Invalidate(ctx, event.Kind)
	if s.notifier != nil {
		s.notifier.PublishLike(event)
	}

	log.Debug().
		Str("kind", string(event.Kind)).
		Int64("id", event.ID).
		Int64("likes", event.Likes).
		Msg("Like recorded")
}
