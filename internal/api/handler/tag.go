package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tripdesk/tripdesk/internal/api/response"
	"github.com/tripdesk/tripdesk/internal/tag"
)

// TagHandler handles tag endpoints.
type TagHandler struct {
	tags   *tag.Service
	logger zerolog.Logger
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tags *tag.Service, logger zerolog.Logger) *TagHandler {
	return &TagHandler{tags: tags, logger: logger}
}

// List handles GET /v1/tags. The optional q parameter filters by
// substring; the autocomplete in the trip editor uses it.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := queryInt(r, "limit", 50)

	tags, err := h.tags.Search(r.Context(), query, limit)
	if err != nil {
		response.InternalError(w, r, "failed to search tags")
		return
	}

	response.JSON(w, r, http.StatusOK, tags)
}

// Create handles POST /v1/tags. Tag names are unique
// case-insensitively; posting an existing name returns the existing
// tag.
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		response.BadRequest(w, r, "tag name is required", nil)
		return
	}

	t, err := h.tags.Ensure(r.Context(), body.Name)
	if err != nil {
		h.logger.Error().Err(err).Msg("tag create failed")
		response.InternalError(w, r, "failed to create tag")
		return
	}

	response.Created(w, r, "/v1/tags/"+strconv.FormatInt(t.ID, 10), t)
}

// Get handles GET /v1/tags/{tagId}.
func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "tagId"), 10, 64)
	if err != nil {
		response.BadRequest(w, r, "invalid tag ID", nil)
		return
	}

	t, err := h.tags.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, tag.ErrTagNotFound) {
			response.NotFound(w, r, "tag not found")
			return
		}
		response.InternalError(w, r, "failed to get tag")
		return
	}

	response.JSON(w, r, http.StatusOK, t)
}

// Update handles PUT /v1/tags/{tagId}.
func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "tagId"), 10, 64)
	if err != nil {
		response.BadRequest(w, r, "invalid tag ID", nil)
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		response.BadRequest(w, r, "tag name is required", nil)
		return
	}

	t, err := h.tags.Rename(r.Context(), id, body.Name)
	if err != nil {
		switch {
		case errors.Is(err, tag.ErrTagNotFound):
			response.NotFound(w, r, "tag not found")
		case errors.Is(err, tag.ErrTagNameTaken):
			response.Conflict(w, r, "tag name already in use")
		default:
			response.InternalError(w, r, "failed to update tag")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, t)
}

// Delete handles DELETE /v1/tags/{tagId}. Deleting a tag detaches it
// from every trip.
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "tagId"), 10, 64)
	if err != nil {
		response.BadRequest(w, r, "invalid tag ID", nil)
		return
	}

	if err := h.tags.Delete(r.Context(), id); err != nil {
		if errors.Is(err, tag.ErrTagNotFound) {
			response.NotFound(w, r, "tag not found")
			return
		}
		response.InternalError(w, r, "failed to delete tag")
		return
	}

	response.NoContent(w, r)
}
