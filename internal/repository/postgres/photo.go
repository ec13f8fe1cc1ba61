package postgres

import (
	"context"
	"fmt"

	"thisisjapan-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const photoColumns = `id, title, description, image_url, user_id, likes, created_at`

// PhotoRepository handles database operations for photos
type PhotoRepository struct {
	db *pgxpool.Pool
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row rowScanner) (*models.Photo, error) {
	var photo models.Photo
	err := row.Scan(
		&photo.ID, &photo.Title, &photo.Description, &photo.ImageURL,
		&photo.UserID, &photo.Likes, &photo.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// Create creates a new photo with zero likes
func (r *PhotoRepository) Create(ctx context.Context, in models.NewPhoto) (*models.Photo, error) {
	query := `
		INSERT INTO photos (title, description, image_url, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + photoColumns
	photo, err := scanPhoto(r.db.QueryRow(ctx, query, in.Title, in.Description, in.ImageURL, in.UserID))
	if err != nil {
		return nil, fmt.Errorf("failed to create photo: %w", mapError(err))
	}
	return photo, nil
}

// GetByID retrieves a photo by ID
func (r *PhotoRepository) GetByID(ctx context.Context, id int64) (*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`
	photo, err := scanPhoto(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", mapError(err))
	}
	return photo, nil
}

// GetAll retrieves every photo, most liked first
func (r *PhotoRepository) GetAll(ctx context.Context) ([]*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos ORDER BY likes DESC, id ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get photos: %w", mapError(err))
	}
	defer rows.Close()

	photos := []*models.Photo{}
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", mapError(err))
		}
		photos = append(photos, photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", mapError(err))
	}

	return photos, nil
}

// IncrementLikes atomically adds one like
func (r *PhotoRepository) IncrementLikes(ctx context.Context, id int64) (*models.Photo, error) {
	query := `UPDATE photos SET likes = likes + 1 WHERE id = $1 RETURNING ` + photoColumns
	photo, err := scanPhoto(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to like photo: %w", mapError(err))
	}
	return photo, nil
}

// Count returns the number of photos
func (r *PhotoRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM photos`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", mapError(err))
	}
	return total, nil
}
