package postgres

import (
	"context"
	"fmt"

	"thisisjapan-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const experienceColumns = `id, title, description, image_url, location, created_at`

// ExperienceRepository handles database operations for experiences
type ExperienceRepository struct {
	db *pgxpool.Pool
}

// NewExperienceRepository creates a new experience repository
func NewExperienceRepository(db *pgxpool.Pool) *ExperienceRepository {
	return &ExperienceRepository{db: db}
}

func scanExperience(row rowScanner) (*models.Experience, error) {
	var experience models.Experience
	err := row.Scan(
		&experience.ID, &experience.Title, &experience.Description,
		&experience.ImageURL, &experience.Location, &experience.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &experience, nil
}

// Create creates a new experience
func (r *ExperienceRepository) Create(ctx context.Context, in models.NewExperience) (*models.Experience, error) {
	query := `
		INSERT INTO experiences (title, description, image_url, location)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + experienceColumns
	experience, err := scanExperience(r.db.QueryRow(ctx, query, in.Title, in.Description, in.ImageURL, in.Location))
	if err != nil {
		return nil, fmt.Errorf("failed to create experience: %w", mapError(err))
	}
	return experience, nil
}

// GetByID retrieves an experience by ID
func (r *ExperienceRepository) GetByID(ctx context.Context, id int64) (*models.Experience, error) {
	query := `SELECT ` + experienceColumns + ` FROM experiences WHERE id = $1`
	experience, err := scanExperience(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get experience: %w", mapError(err))
	}
	return experience, nil
}

// GetAll retrieves experiences in insertion order
func (r *ExperienceRepository) GetAll(ctx context.Context) ([]*models.Experience, error) {
	query := `SELECT ` + experienceColumns + ` FROM experiences ORDER BY id ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get experiences: %w", mapError(err))
	}
	defer rows.Close()

	experiences := []*models.Experience{}
	for rows.Next() {
		experience, err := scanExperience(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan experience: %w", mapError(err))
		}
		experiences = append(experiences, experience)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating experiences: %w", mapError(err))
	}

	return experiences, nil
}

// Count returns the number of experiences
func (r *ExperienceRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM experiences`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count experiences: %w", mapError(err))
	}
	return total, nil
}
