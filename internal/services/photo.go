package services

import (
	"context"
	"fmt"
	"strings"

	"thisisjapan-backend/internal/models"
	"thisisjapan-backend/internal/ranking"
	"thisisjapan-backend/internal/repository"
	"thisisjapan-backend/internal/storage"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"
)

// ImageStore persists uploaded image bytes and returns a reference to them
type ImageStore interface {
	StoreImage(ctx context.Context, data []byte, contentType string) (string, error)
	// DeleteImage removes an image previously returned by StoreImage.
	DeleteImage(ctx context.Context, ref string) error
}

// CreatePhotoRequest is the body of POST /api/photos
type CreatePhotoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`

	// hasImage is set when an image file accompanies the request
	hasImage bool
}

func (r CreatePhotoRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.RuneLength(1, 100).Error("title must be at most 100 characters"),
		),
		validation.Field(&r.Description,
			validation.RuneLength(0, 500).Error("description must be at most 500 characters"),
		),
		validation.Field(&r.ImageURL,
			validation.When(!r.hasImage, validation.Required.Error("image_url or an image file is required")),
		),
	)
}

// PhotoService handles photo browsing and posting
type PhotoService struct {
	photos   repository.PhotoStore
	rankings *ranking.Engine
	images   ImageStore
}

// NewPhotoService creates a new photo service. images may be nil, which disables uploads.
func NewPhotoService(photos repository.PhotoStore, rankings *ranking.Engine, images ImageStore) *PhotoService {
	return &PhotoService{
		photos:   photos,
		rankings: rankings,
		images:   images,
	}
}

// List returns all photos ranked by likes
func (s *PhotoService) List(ctx context.Context) ([]*models.Photo, error) {
	return s.rankings.AllPhotos(ctx)
}

// Top returns the most liked photos
func (s *PhotoService) Top(ctx context.Context, limit int) ([]*models.Photo, error) {
	return s.rankings.TopPhotos(ctx, limit)
}

// Get returns a single photo
func (s *PhotoService) Get(ctx context.Context, id int64) (*models.Photo, error) {
	photo, err := s.photos.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return photo, nil
}

// Create stores a photo owned by userID. When image is non-empty it is
// uploaded and its reference replaces req.ImageURL.
func (s *PhotoService) Create(ctx context.Context, userID int64, req CreatePhotoRequest, image []byte) (*models.Photo, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.ImageURL = strings.TrimSpace(req.ImageURL)

	req.hasImage = len(image) > 0
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	if req.hasImage {
		imageURL, err := s.upload(ctx, image)
		if err != nil {
			return nil, err
		}
		req.ImageURL = imageURL
	}

	photo, err := s.photos.Create(ctx, models.NewPhoto{
		Title:       req.Title,
		Description: optional(req.Description),
		ImageURL:    req.ImageURL,
		UserID:      userID,
	})
	if err != nil {
		if req.hasImage {
			s.discard(ctx, req.ImageURL)
		}
		return nil, fmt.Errorf("failed to create photo: %w", err)
	}

	s.rankings.Invalidate(ctx, models.KindPhoto)
	return photo, nil
}

func (s *PhotoService) upload(ctx context.Context, image []byte) (string, error) {
	if s.images == nil {
		return "", NewValidationError(map[string]string{"image": "image uploads are not enabled"})
	}

	contentType, err := storage.DetectImage(image)
	if err != nil {
		return "", NewValidationError(map[string]string{"image": err.Error()})
	}

	imageURL, err := s.images.StoreImage(ctx, image, contentType)
	if err != nil {
		log.Error().Err(err).Str("content_type", contentType).Msg("Failed to store image")
		return "", fmt.Errorf("%w: failed to store image: %w", repository.ErrUnavailable, err)
	}
	return imageURL, nil
}

// discard removes an uploaded image whose photo row was never written
func (s *PhotoService) discard(ctx context.Context, imageURL string) {
	if err := s.images.DeleteImage(context.WithoutCancel(ctx), imageURL); err != nil {
		log.Error().Err(err).Str("image_url", imageURL).Msg("Failed to delete orphaned image")
	}
}

// optional maps an empty string to nil
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
