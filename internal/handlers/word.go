package handlers

import (
	"net/http"

	"thisisjapan-backend/internal/middleware"
	"thisisjapan-backend/internal/ranking"
	"thisisjapan-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// WordHandler handles word-related HTTP requests
type WordHandler struct {
	words *services.WordService
	likes *services.LikeService
}

// NewWordHandler creates a new word handler
func NewWordHandler(words *services.WordService, likes *services.LikeService) *WordHandler {
	return &WordHandler{
		words: words,
		likes: likes,
	}
}

// List handles GET /api/words
func (h *WordHandler) List(w http.ResponseWriter, r *http.Request) {
	words, err := h.words.List(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "word")
		return
	}
	respondJSON(w, http.StatusOK, words)
}

// Top handles GET /api/words/top
func (h *WordHandler) Top(w http.ResponseWriter, r *http.Request) {
	words, err := h.words.Top(r.Context(), parseLimit(r, ranking.DefaultWordLimit))
	if err != nil {
		respondServiceError(w, r, err, "word")
		return
	}
	respondJSON(w, http.StatusOK, words)
}

// Get handles GET /api/words/{id}
func (h *WordHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondServiceError(w, r, err, "word")
		return
	}

	word, err := h.words.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err, "word")
		return
	}
	respondJSON(w, http.StatusOK, word)
}

// Create handles POST /api/words
func (h *WordHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := middleware.GetUserID(ctx)

	var req services.CreateWordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(w, r, err, "word")
		return
	}

	word, err := h.words.Create(ctx, userID, req)
	if err != nil {
		respondServiceError(w, r, err, "word")
		return
	}

	log.Info().
		Int64("user_id", userID).
		Int64("word_id", word.ID).
		Msg("Word created")

	respondJSON(w, http.StatusCreated, word)
}

// Like handles POST /api/words/{id}/like
func (h *WordHandler) Like(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondServiceError(w, r, err, "word")
		return
	}

	word, err := h.likes.LikeWord(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err, "word")
		return
	}
	respondJSON(w, http.StatusOK, word)
}
