package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// MediaHandler issues presigned upload URLs for blog cover images.
type MediaHandler struct {
	mediaService service.MediaService
	s3URL        string
	s3Bucket     string
	validate     *validator.Validate
	logger       zerolog.Logger
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService service.MediaService, s3URL, s3Bucket string, v *validator.Validate, logger zerolog.Logger) *MediaHandler {
	return &MediaHandler{mediaService: mediaService, s3URL: s3URL, s3Bucket: s3Bucket, validate: v, logger: logger}
}

// RegisterRoutes mounts the media routes.
func (h *MediaHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/media/presign", authMw(http.HandlerFunc(h.presign)))
}

func (h *MediaHandler) presign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	var req dto.PresignUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	uploadURL, key, err := h.mediaService.PresignCoverUpload(r.Context(), userID, req.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedImageType):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error().Err(err).Msg("failed to presign upload")
			http.Error(w, "Failed to presign upload", http.StatusInternalServerError)
		}
		return
	}

	publicURL := strings.TrimSuffix(h.s3URL, "/") + "/" + h.s3Bucket + "/" + key
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dto.PresignUploadResponse{UploadURL: uploadURL, Key: key, PublicURL: publicURL})
}
