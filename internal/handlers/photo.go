package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"thisisjapan-backend/internal/middleware"
	"thisisjapan-backend/internal/ranking"
	"thisisjapan-backend/internal/services"
	"thisisjapan-backend/internal/storage"

	"github.com/rs/zerolog/log"
)

// multipart overhead allowed on top of the image itself
const formOverhead = 1 << 20

// PhotoHandler handles photo-related HTTP requests
type PhotoHandler struct {
	photos *services.PhotoService
	likes  *services.LikeService
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photos *services.PhotoService, likes *services.LikeService) *PhotoHandler {
	return &PhotoHandler{
		photos: photos,
		likes:  likes,
	}
}

// List handles GET /api/photos
func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	photos, err := h.photos.List(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "photo")
		return
	}
	respondJSON(w, http.StatusOK, photos)
}

// Top handles GET /api/photos/top
func (h *PhotoHandler) Top(w http.ResponseWriter, r *http.Request) {
	photos, err := h.photos.Top(r.Context(), parseLimit(r, ranking.DefaultPhotoLimit))
	if err != nil {
		respondServiceError(w, r, err, "photo")
		return
	}
	respondJSON(w, http.StatusOK, photos)
}

// Get handles GET /api/photos/{id}
func (h *PhotoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondServiceError(w, r, err, "photo")
		return
	}

	photo, err := h.photos.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err, "photo")
		return
	}
	respondJSON(w, http.StatusOK, photo)
}

// Create handles POST /api/photos. It accepts a JSON body or a multipart form
// with an optional "image" file.
func (h *PhotoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := middleware.GetUserID(ctx)

	var (
		req   services.CreatePhotoRequest
		image []byte
		err   error
	)
	if isMultipart(r) {
		req, image, err = readPhotoForm(w, r)
	} else {
		err = decodeJSON(w, r, &req)
	}
	if err != nil {
		respondServiceError(w, r, err, "photo")
		return
	}

	photo, err := h.photos.Create(ctx, userID, req, image)
	if err != nil {
		respondServiceError(w, r, err, "photo")
		return
	}

	log.Info().
		Int64("user_id", userID).
		Int64("photo_id", photo.ID).
		Bool("uploaded", len(image) > 0).
		Msg("Photo created")

	respondJSON(w, http.StatusCreated, photo)
}

// Like handles POST /api/photos/{id}/like
func (h *PhotoHandler) Like(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondServiceError(w, r, err, "photo")
		return
	}

	photo, err := h.likes.LikePhoto(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err, "photo")
		return
	}
	respondJSON(w, http.StatusOK, photo)
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func readPhotoForm(w http.ResponseWriter, r *http.Request) (services.CreatePhotoRequest, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxImageSize+formOverhead)
	if err := r.ParseMultipartForm(storage.MaxImageSize + formOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return services.CreatePhotoRequest{}, nil, services.NewValidationError(map[string]string{"image": storage.ErrImageTooLarge.Error()})
		}
		return services.CreatePhotoRequest{}, nil, services.NewValidationError(map[string]string{"body": "invalid multipart form"})
	}
	defer r.MultipartForm.RemoveAll()

	req := services.CreatePhotoRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		ImageURL:    r.FormValue("image_url"),
	}

	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil, nil
	}
	if err != nil {
		return req, nil, services.NewValidationError(map[string]string{"image": "invalid image file"})
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, storage.MaxImageSize+1))
	if err != nil {
		return req, nil, services.NewValidationError(map[string]string{"image": "invalid image file"})
	}
	if len(image) > storage.MaxImageSize {
		return req, nil, services.NewValidationError(map[string]string{"image": storage.ErrImageTooLarge.Error()})
	}
	return req, image, nil
}
