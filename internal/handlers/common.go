package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"thisisjapan-backend/internal/repository"
	"thisisjapan-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

const maxJSONBody = 1 << 20

// Error kinds reported in ErrorResponse.Kind
const (
	KindNotFound         = "not_found"
	KindValidationFailed = "validation_failed"
	KindUnauthenticated  = "unauthenticated"
	KindConflict         = "conflict"
	KindUnavailable      = "unavailable"
	KindInternal         = "internal"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error  string            `json:"error"`
	Kind   string            `json:"kind"`
	Fields map[string]string `json:"fields,omitempty"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message, kind string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message, Kind: kind})
}

// respondServiceError maps a service error to its status code. subject names
// the resource in not found messages.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, subject string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "validation failed",
			Kind:   KindValidationFailed,
			Fields: verr.Fields,
		})
	case errors.Is(err, repository.ErrNotFound):
		respondError(w, subject+" not found", KindNotFound, http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(w, services.ErrInvalidCredentials.Error(), KindUnauthenticated, http.StatusUnauthorized)
	case errors.Is(err, services.ErrUnauthenticated), errors.Is(err, repository.ErrOwnerNotFound):
		respondError(w, "authentication required", KindUnauthenticated, http.StatusUnauthorized)
	case errors.Is(err, repository.ErrConflict):
		respondError(w, subject+" already exists", KindConflict, http.StatusConflict)
	case errors.Is(err, repository.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		log.Error().
			Err(err).
			Str("request_id", chiMiddleware.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("Storage unavailable")
		respondError(w, "service temporarily unavailable", KindUnavailable, http.StatusServiceUnavailable)
	default:
		log.Error().
			Err(err).
			Str("request_id", chiMiddleware.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("Unhandled error")
		respondError(w, "internal server error", KindInternal, http.StatusInternalServerError)
	}
}

// decodeJSON reads a JSON request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return services.NewValidationError(map[string]string{"body": "invalid JSON body"})
	}
	return nil
}

// parseID reads the {id} path parameter
func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, services.NewValidationError(map[string]string{"id": fmt.Sprintf("invalid id %q", raw)})
	}
	return id, nil
}

// parseLimit reads the limit query parameter, falling back to def when it is
// absent or not a number
func parseLimit(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return max(limit, 0)
}
