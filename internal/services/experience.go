package services

import (
	"context"
	"fmt"

	"thisisjapan-backend/internal/models"
	"thisisjapan-backend/internal/repository"
)

// ExperienceService serves the curated experiences
type ExperienceService struct {
	experiences repository.ExperienceStore
}

// NewExperienceService creates a new experience service
func NewExperienceService(experiences repository.ExperienceStore) *ExperienceService {
	return &ExperienceService{experiences: experiences}
}

// List returns experiences in insertion order
func (s *ExperienceService) List(ctx context.Context) ([]*models.Experience, error) {
	experiences, err := s.experiences.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get experiences: %w", err)
	}
	return experiences, nil
}

// Get returns a single experience
func (s *ExperienceService) Get(ctx context.Context, id int64) (*models.Experience, error) {
	experience, err := s.experiences.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get experience: %w", err)
	}
	return experience, nil
}
