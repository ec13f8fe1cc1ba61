package services

import (
	"context"
	"fmt"
	"strings"

	"thisisjapan-backend/internal/models"
	"thisisjapan-backend/internal/ranking"
	"thisisjapan-backend/internal/repository"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CreateWordRequest is the body of POST /api/words
type CreateWordRequest struct {
	Original    string `json:"original"`
	Translation string `json:"translation"`
	Description string `json:"description"`
}

func (r CreateWordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Original,
			validation.Required.Error("original is required"),
			validation.RuneLength(1, 140).Error("original must be at most 140 characters"),
		),
		validation.Field(&r.Translation,
			validation.RuneLength(0, 140).Error("translation must be at most 140 characters"),
		),
		validation.Field(&r.Description,
			validation.Required.Error("description is required"),
			validation.RuneLength(10, 500).Error("description must be 10-500 characters"),
		),
	)
}

// WordService handles word browsing and posting
type WordService struct {
	words    repository.WordStore
	rankings *ranking.Engine
}

// NewWordService creates a new word service
func NewWordService(words repository.WordStore, rankings *ranking.Engine) *WordService {
	return &WordService{
		words:    words,
		rankings: rankings,
	}
}

// List returns all words ranked by likes
func (s *WordService) List(ctx context.Context) ([]*models.Word, error) {
	return s.rankings.AllWords(ctx)
}

// Top returns the most liked words
func (s *WordService) Top(ctx context.Context, limit int) ([]*models.Word, error) {
	return s.rankings.TopWords(ctx, limit)
}

// Get returns a single word
func (s *WordService) Get(ctx context.Context, id int64) (*models.Word, error) {
	word, err := s.words.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get word: %w", err)
	}
	return word, nil
}

// Create stores a word owned by userID
func (s *WordService) Create(ctx context.Context, userID int64, req CreateWordRequest) (*models.Word, error) {
	req.Original = strings.TrimSpace(req.Original)
	req.Translation = strings.TrimSpace(req.Translation)
	req.Description = strings.TrimSpace(req.Description)

	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	word, err := s.words.Create(ctx, models.NewWord{
		Original:    req.Original,
		Translation: optional(req.Translation),
		Description: req.Description,
		UserID:      userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create word: %w", err)
	}

	s.rankings.Invalidate(ctx, models.KindWord)
	return word, nil
}
