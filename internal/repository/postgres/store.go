// Package postgres implements the entity store on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"thisisjapan-backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Store is a PostgreSQL implementation of repository.Store
type Store struct {
	db          *pgxpool.Pool
	users       *UserRepository
	photos      *PhotoRepository
	words       *WordRepository
	experiences *ExperienceRepository
}

var _ repository.Store = (*Store)(nil)

// New creates a store on top of an open pool
func New(db *pgxpool.Pool) *Store {
	return &Store{
		db:          db,
		users:       NewUserRepository(db),
		photos:      NewPhotoRepository(db),
		words:       NewWordRepository(db),
		experiences: NewExperienceRepository(db),
	}
}

// Connect opens a pool for dsn and verifies it with a ping
func Connect(ctx context.Context, dsn string) (*Store, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return New(db), nil
}

func (s *Store) Users() repository.UserStore             { return s.users }
func (s *Store) Photos() repository.PhotoStore           { return s.photos }
func (s *Store) Words() repository.WordStore             { return s.words }
func (s *Store) Experiences() repository.ExperienceStore { return s.experiences }

// Ping checks that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", mapError(err))
	}
	return nil
}

// Close releases the pool
func (s *Store) Close() {
	s.db.Close()
}

// mapError translates pgx errors into repository error kinds.
// Anything that is not a server-side error is treated as the backend being unreachable.
func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", repository.ErrConflict, pgErr.ConstraintName)
		case foreignKeyViolation:
			return fmt.Errorf("%w: %s", repository.ErrOwnerNotFound, pgErr.ConstraintName)
		}
		return err
	}
	return fmt.Errorf("%w: %w", repository.ErrUnavailable, err)
}
