package services

import (
	"errors"
	"maps"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	// ErrUnauthenticated is returned when a request carries no valid principal
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInvalidCredentials is returned for unknown usernames and wrong passwords alike
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ValidationError reports per-field input problems
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// NewValidationError builds a ValidationError from field messages
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: maps.Clone(fields)}
}

// validationError converts ozzo errors into a ValidationError. Internal rule
// failures are returned unchanged.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	fields := make(map[string]string, len(errs))
	for field, fieldErr := range errs {
		fields[field] = fieldErr.Error()
	}
	return &ValidationError{Fields: fields}
}
