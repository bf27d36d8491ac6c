package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tripdesk/tripdesk/internal/api/response"
	"github.com/tripdesk/tripdesk/internal/category"
	"github.com/tripdesk/tripdesk/internal/trip"
)

// CategoryHandler handles category tree endpoints.
type CategoryHandler struct {
	categories *category.Service
	logger     zerolog.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categories *category.Service, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, logger: logger}
}

// ListByType handles GET /v1/categories/by-type/{tripType}. With
// showChildren=1 the result is the nested tree, otherwise a flat list.
func (h *CategoryHandler) ListByType(w http.ResponseWriter, r *http.Request) {
	tripType := trip.TripType(chi.URLParam(r, "tripType"))
	if !tripType.Valid() {
		response.BadRequest(w, r, "unknown trip type", nil)
		return
	}

	var (
		result []*category.Category
		err    error
	)
	if r.URL.Query().Get("showChildren") == "1" {
		result, err = h.categories.Tree(r.Context(), tripType)
	} else {
		result, err = h.categories.List(r.Context(), tripType)
	}
	if err != nil {
		response.InternalError(w, r, "failed to list categories")
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// ParentOptions handles GET /v1/categories/parent-options. Returns the
// root categories a new child may attach to.
func (h *CategoryHandler) ParentOptions(w http.ResponseWriter, r *http.Request) {
	tripType := trip.TripType(r.URL.Query().Get("tripType"))
	if !tripType.Valid() {
		response.BadRequest(w, r, "unknown trip type", nil)
		return
	}

	options, err := h.categories.ParentOptions(r.Context(), tripType)
	if err != nil {
		response.InternalError(w, r, "failed to list parent options")
		return
	}

	response.JSON(w, r, http.StatusOK, options)
}

// Get handles GET /v1/categories/{categoryId}.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.categoryID(w, r)
	if !ok {
		return
	}

	c, err := h.categories.Get(r.Context(), id)
	if err != nil {
		h.writeCategoryError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, c)
}

// Create handles POST /v1/categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft category.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	created, err := h.categories.Create(r.Context(), draft)
	if err != nil {
		h.writeCategoryError(w, r, err)
		return
	}

	response.Created(w, r, "/v1/categories/"+strconv.FormatInt(created.ID, 10), created)
}

// Update handles PUT /v1/categories/{categoryId}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.categoryID(w, r)
	if !ok {
		return
	}

	var draft category.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	updated, err := h.categories.Update(r.Context(), id, draft)
	if err != nil {
		h.writeCategoryError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, updated)
}

// Delete handles DELETE /v1/categories/{categoryId}.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.categoryID(w, r)
	if !ok {
		return
	}

	if err := h.categories.Delete(r.Context(), id); err != nil {
		h.writeCategoryError(w, r, err)
		return
	}

	response.NoContent(w, r)
}

func (h *CategoryHandler) categoryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "categoryId"), 10, 64)
	if err != nil {
		response.BadRequest(w, r, "invalid category ID", nil)
		return 0, false
	}
	return id, true
}

func (h *CategoryHandler) writeCategoryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, category.ErrCategoryNotFound):
		response.NotFound(w, r, "category not found")
	case errors.Is(err, category.ErrCategoryInUse):
		response.Conflict(w, r, "category has children and cannot be deleted")
	case errors.Is(err, category.ErrParentNotFound):
		response.BadRequest(w, r, "parent category not found", nil)
	default:
		h.logger.Error().Err(err).Msg("category operation failed")
		response.BadRequest(w, r, err.Error(), nil)
	}
}
