// Package repository defines the entity store contract shared by the
// in-memory and PostgreSQL implementations.
package repository

import (
	"context"

	"thisisjapan-backend/internal/models"
)

// UserStore persists users
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// Create fails with ErrConflict when the username is taken.
	Create(ctx context.Context, user models.NewUser) (*models.User, error)
}

// PhotoStore persists photos
type PhotoStore interface {
	GetByID(ctx context.Context, id int64) (*models.Photo, error)
	// GetAll returns every photo ordered by likes desc, then id asc.
	GetAll(ctx context.Context) ([]*models.Photo, error)
	Create(ctx context.Context, photo models.NewPhoto) (*models.Photo, error)
	// IncrementLikes atomically adds one like and returns the updated photo.
	IncrementLikes(ctx context.Context, id int64) (*models.Photo, error)
	Count(ctx context.Context) (int64, error)
}

// WordStore persists words
type WordStore interface {
	GetByID(ctx context.Context, id int64) (*models.Word, error)
	// GetAll returns every word ordered by likes desc, then id asc.
	GetAll(ctx context.Context) ([]*models.Word, error)
	Create(ctx context.Context, word models.NewWord) (*models.Word, error)
	// IncrementLikes atomically adds one like and returns the updated word.
	IncrementLikes(ctx context.Context, id int64) (*models.Word, error)
	Count(ctx context.Context) (int64, error)
}

// ExperienceStore persists curated experiences
type ExperienceStore interface {
	GetByID(ctx context.Context, id int64) (*models.Experience, error)
	// GetAll returns experiences in insertion order.
	GetAll(ctx context.Context) ([]*models.Experience, error)
	Create(ctx context.Context, experience models.NewExperience) (*models.Experience, error)
	Count(ctx context.Context) (int64, error)
}

// Store groups the per-entity stores of one backend
type Store interface {
	Users() UserStore
	Photos() PhotoStore
	Words() WordStore
	Experiences() ExperienceStore
	Ping(ctx context.Context) error
	Close()
}
