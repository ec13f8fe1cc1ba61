package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"thisisjapan-backend/internal/services"
)

type contextKey string

const userIDKey contextKey = "user_id"

// TokenValidator resolves a session token to a user id
type TokenValidator interface {
	ValidateJWT(token string) (int64, error)
}

// Auth resolves the current principal from a bearer token or the session cookie
type Auth struct {
	tokens     TokenValidator
	cookieName string
}

// NewAuth creates the auth gate
func NewAuth(tokens TokenValidator, cookieName string) *Auth {
	return &Auth{
		tokens:     tokens,
		cookieName: cookieName,
	}
}

// Principal returns the authenticated user id of r. The Authorization header
// takes precedence over the cookie.
func (a *Auth) Principal(r *http.Request) (int64, error) {
	token, err := a.token(r)
	if err != nil {
		return 0, err
	}
	return a.tokens.ValidateJWT(token)
}

func (a *Auth) token(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return "", services.ErrUnauthenticated
		}
		return token, nil
	}

	if cookie, err := r.Cookie(a.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", services.ErrUnauthenticated
}

// RequireAuth rejects requests without a valid principal with 401
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.Principal(r)
		if err != nil {
			respondError(w, "authentication required", "unauthenticated", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// OptionalAuth attaches the principal when one is present and valid
func (a *Auth) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, err := a.Principal(r); err == nil {
			r = r.WithContext(WithUserID(r.Context(), userID))
		}
		next.ServeHTTP(w, r)
	})
}

// WithUserID returns a copy of ctx carrying userID
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message, kind string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResponse{Error: message, Kind: kind})
}
