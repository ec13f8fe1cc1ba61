package postgres

import (
	"context"
	"fmt"

	"thisisjapan-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user; the unique index on username rejects duplicates
func (r *UserRepository) Create(ctx context.Context, in models.NewUser) (*models.User, error) {
	query := `
		INSERT INTO users (username, password, is_japanese)
		VALUES ($1, $2, $3)
		RETURNING id, username, password, is_japanese, created_at
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, in.Username, in.Password, in.IsJapanese).Scan(
		&user.ID, &user.Username, &user.Password, &user.IsJapanese, &user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", mapError(err))
	}
	return &user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, username, password, is_japanese, created_at
		FROM users
		WHERE id = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.Password, &user.IsJapanese, &user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", mapError(err))
	}
	return &user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password, is_japanese, created_at
		FROM users
		WHERE username = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.Password, &user.IsJapanese, &user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", mapError(err))
	}
	return &user, nil
}
