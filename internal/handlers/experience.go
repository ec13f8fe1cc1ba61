package handlers

import (
	"net/http"

	"thisisjapan-backend/internal/services"
)

// ExperienceHandler handles experience-related HTTP requests
type ExperienceHandler struct {
	experiences *services.ExperienceService
}

// NewExperienceHandler creates a new experience handler
func NewExperienceHandler(experiences *services.ExperienceService) *ExperienceHandler {
	return &ExperienceHandler{experiences: experiences}
}

// List handles GET /api/experiences
func (h *ExperienceHandler) List(w http.ResponseWriter, r *http.Request) {
	experiences, err := h.experiences.List(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "experience")
		return
	}
	respondJSON(w, http.StatusOK, experiences)
}

// Get handles GET /api/experiences/{id}
func (h *ExperienceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondServiceError(w, r, err, "experience")
		return
	}

	experience, err := h.experiences.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err, "experience")
		return
	}
	respondJSON(w, http.StatusOK, experience)
}
