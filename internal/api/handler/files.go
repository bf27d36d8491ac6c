package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tripdesk/tripdesk/internal/api/response"
	"github.com/tripdesk/tripdesk/internal/media"
)

// FileHandler handles standalone file uploads and serving. Image
// editors that are not part of a trip or page save go through here.
type FileHandler struct {
	media  *media.Service
	logger zerolog.Logger
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(mediaService *media.Service, logger zerolog.Logger) *FileHandler {
	return &FileHandler{media: mediaService, logger: logger}
}

// Upload handles POST /v1/files. The body is multipart with a single
// "file" part; the response carries the stored URL and its thumbnail.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(media.MaxUploadBytes); err != nil {
		response.BadRequest(w, r, "invalid multipart body", nil)
		return
	}

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		response.BadRequest(w, r, `missing "file" part`, nil)
		return
	}

	file, err := headers[0].Open()
	if err != nil {
		response.BadRequest(w, r, "unreadable file part", nil)
		return
	}
	defer file.Close()

	img, err := h.media.Upload(r.Context(), headers[0].Filename, file)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedImage) {
			response.BadRequest(w, r, "uploaded file is not a supported image", nil)
			return
		}
		h.logger.Error().Err(err).Msg("file upload failed")
		response.InternalError(w, r, "failed to store file")
		return
	}

	response.Created(w, r, "/v1/files/"+img.Key, map[string]string{
		"url":          "/v1/files/" + img.Key,
		"thumbnailUrl": "/v1/files/" + img.ThumbnailKey,
	})
}

// Serve handles GET /v1/files/*. The wildcard path is the storage key.
func (h *FileHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		response.NotFound(w, r, "file not found")
		return
	}

	data, err := h.media.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, media.ErrObjectNotFound) {
			response.NotFound(w, r, "file not found")
			return
		}
		response.InternalError(w, r, "failed to load file")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Delete handles DELETE /v1/files?url=. Accepts either a bare storage
// key or a full /v1/files/ URL; the thumbnail goes with the original.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		response.BadRequest(w, r, "url parameter is required", nil)
		return
	}

	key := strings.TrimPrefix(raw, "/v1/files/")
	if idx := strings.Index(key, "media/"); idx > 0 {
		// Full URLs with a host prefix still resolve to their key.
		key = key[idx:]
	}

	if err := h.media.Delete(r.Context(), key); err != nil {
		if errors.Is(err, media.ErrObjectNotFound) {
			response.NotFound(w, r, "file not found")
			return
		}
		h.logger.Error().Err(err).Msg("file delete failed")
		response.InternalError(w, r, "failed to delete file")
		return
	}

	response.NoContent(w, r)
}
