package postgres

import (
	"context"
	"fmt"

	"thisisjapan-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const wordColumns = `id, original, translation, description, user_id, likes, created_at`

// WordRepository handles database operations for words
type WordRepository struct {
	db *pgxpool.Pool
}

// NewWordRepository creates a new word repository
func NewWordRepository(db *pgxpool.Pool) *WordRepository {
	return &WordRepository{db: db}
}

func scanWord(row rowScanner) (*models.Word, error) {
	var word models.Word
	err := row.Scan(
		&word.ID, &word.Original, &word.Translation, &word.Description,
		&word.UserID, &word.Likes, &word.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &word, nil
}

// Create creates a new word with zero likes
func (r *WordRepository) Create(ctx context.Context, in models.NewWord) (*models.Word, error) {
	query := `
		INSERT INTO words (original, translation, description, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + wordColumns
	word, err := scanWord(r.db.QueryRow(ctx, query, in.Original, in.Translation, in.Description, in.UserID))
	if err != nil {
		return nil, fmt.Errorf("failed to create word: %w", mapError(err))
	}
	return word, nil
}

// GetByID retrieves a word by ID
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	query := `SELECT ` + wordColumns + ` FROM words WHERE id = $1`
	word, err := scanWord(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get word: %w", mapError(err))
	}
	return word, nil
}

// GetAll retrieves every word, most liked first
func (r *WordRepository) GetAll(ctx context.Context) ([]*models.Word, error) {
	query := `SELECT ` + wordColumns + ` FROM words ORDER BY likes DESC, id ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get words: %w", mapError(err))
	}
	defer rows.Close()

	words := []*models.Word{}
	for rows.Next() {
		word, err := scanWord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", mapError(err))
		}
		words = append(words, word)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating words: %w", mapError(err))
	}

	return words, nil
}

// IncrementLikes adds one like in a single UPDATE
func (r *WordRepository) IncrementLikes(ctx context.Context, id int64) (*models.Word, error) {
	query := `UPDATE words SET likes = likes + 1 WHERE id = $1 RETURNING ` + wordColumns
	word, err := scanWord(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to like word: %w", mapError(err))
	}
	return word, nil
}

// Count returns the number of words
func (r *WordRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM words`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count words: %w", mapError(err))
	}
	return total, nil
}
