package repository

import "errors"

var (
	// ErrNotFound is returned when no entity has the requested key.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique key is already taken.
	ErrConflict = errors.New("already exists")
	// ErrOwnerNotFound is returned when content references a missing user.
	ErrOwnerNotFound = errors.New("owner does not exist")
	// ErrUnavailable is returned when the backend cannot be reached in time.
	ErrUnavailable = errors.New("store unavailable")
)
