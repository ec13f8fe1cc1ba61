package handlers

import (
	"errors"
	"net/http"
	"time"

	"thisisjapan-backend/internal/middleware"
	"thisisjapan-backend/internal/models"
	"thisisjapan-backend/internal/repository"
	"thisisjapan-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
	cookie      CookieConfig
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, cookie CookieConfig) *UserHandler {
	return &UserHandler{
		userService: userService,
		cookie:      cookie,
	}
}

// Register handles POST /api/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(w, r, err, "user")
		return
	}

	user, token, err := h.userService.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			respondError(w, "username already exists", KindConflict, http.StatusConflict)
			return
		}
		respondServiceError(w, r, err, "user")
		return
	}

	log.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("User registered")

	h.setSessionCookie(w, token)
	respondJSON(w, http.StatusCreated, AuthResponse{User: user, Token: token})
}

// Login handles POST /api/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(w, r, err, "user")
		return
	}

	user, token, err := h.userService.Login(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "user")
		return
	}

	h.setSessionCookie(w, token)
	respondJSON(w, http.StatusOK, AuthResponse{User: user, Token: token})
}

// Logout handles POST /api/logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// CurrentUser handles GET /api/user
func (h *UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, "authentication required", KindUnauthenticated, http.StatusUnauthorized)
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "authentication required", KindUnauthenticated, http.StatusUnauthorized)
			return
		}
		respondServiceError(w, r, err, "user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
