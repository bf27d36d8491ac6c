package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tripdesk/tripdesk/internal/api/models"
	"github.com/tripdesk/tripdesk/internal/api/response"
	"github.com/tripdesk/tripdesk/internal/extrafields"
	"github.com/tripdesk/tripdesk/internal/media"
	"github.com/tripdesk/tripdesk/internal/trip"
)

// maxTripFormBytes bounds the multipart memory buffer for trip saves.
const maxTripFormBytes = 32 << 20

// TripHandler handles trip catalog endpoints.
type TripHandler struct {
	trips  *trip.Service
	media  *media.Service
	logger zerolog.Logger
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(trips *trip.Service, mediaService *media.Service, logger zerolog.Logger) *TripHandler {
	return &TripHandler{
		trips:  trips,
		media:  mediaService,
		logger: logger,
	}
}

// List handles GET /v1/trips.
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := trip.ListOptions{
		Status:   trip.Status(r.URL.Query().Get("status")),
		TripType: trip.TripType(r.URL.Query().Get("tripType")),
		Query:    r.URL.Query().Get("q"),
		Cursor:   r.URL.Query().Get("cursor"),
		Limit:    queryInt(r, "limit", 50),
	}

	result, err := h.trips.List(r.Context(), opts)
	if err != nil {
		response.InternalError(w, r, "failed to list trips")
		return
	}

	resp := models.TripListResponse{
		Items: make([]*models.Trip, 0, len(result.Items)),
		Meta:  models.PagedResponseMeta{Limit: opts.Limit},
	}
	for _, t := range result.Items {
		resp.Items = append(resp.Items, models.TripFromModel(t))
	}
	if result.NextCursor != "" {
		resp.Meta.NextCursor = &result.NextCursor
	}

	response.JSON(w, r, http.StatusOK, resp)
}

// Get handles GET /v1/trips/{tripId}.
func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tripId")

	t, err := h.trips.Get(r.Context(), id)
	if err != nil {
		if trip.IsNotFound(err) {
			response.NotFound(w, r, "trip not found")
			return
		}
		response.InternalError(w, r, "failed to load trip")
		return
	}

	response.JSON(w, r, http.StatusOK, models.TripFromModel(t))
}

// Create handles POST /v1/trips. The body is multipart/form-data with a
// "trip" JSON part plus optional image parts; plain JSON is accepted
// when no files accompany the draft.
func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}

	created, err := h.trips.Create(r.Context(), *draft)
	if err != nil {
		h.writeTripError(w, r, err)
		return
	}

	response.Created(w, r, "/v1/trips/"+created.ID, models.TripFromModel(created))
}

// Update handles PUT /v1/trips/{tripId}.
func (h *TripHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tripId")

	draft, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}

	updated, err := h.trips.Update(r.Context(), id, *draft)
	if err != nil {
		h.writeTripError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.TripFromModel(updated))
}

// Delete handles DELETE /v1/trips/{tripId}.
func (h *TripHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tripId")

	if err := h.trips.Delete(r.Context(), id); err != nil {
		if trip.IsNotFound(err) {
			response.NotFound(w, r, "trip not found")
			return
		}
		response.InternalError(w, r, "failed to delete trip")
		return
	}

	response.NoContent(w, r)
}

// decodeDraft reads the request body into a domain draft, storing any
// uploaded images and writing their URLs into the draft. Returns false
// after writing an error response.
func (h *TripHandler) decodeDraft(w http.ResponseWriter, r *http.Request) (*trip.Trip, bool) {
	contentType := r.Header.Get("Content-Type")

	var dto models.Trip
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			response.BadRequest(w, r, "invalid JSON body", nil)
			return nil, false
		}
		draft := dto.ToModel()
		return &draft, true
	}

	if err := r.ParseMultipartForm(maxTripFormBytes); err != nil {
		response.BadRequest(w, r, "invalid multipart body", nil)
		return nil, false
	}

	tripJSON := r.FormValue("trip")
	if tripJSON == "" {
		response.BadRequest(w, r, `missing "trip" part`, nil)
		return nil, false
	}
	if err := json.Unmarshal([]byte(tripJSON), &dto); err != nil {
		response.BadRequest(w, r, `invalid JSON in "trip" part`, nil)
		return nil, false
	}

	var nodes []extrafields.Node
	if len(dto.ExtraFields) > 0 {
		if err := json.Unmarshal(dto.ExtraFields, &nodes); err != nil {
			response.BadRequest(w, r, "invalid extraFields", nil)
			return nil, false
		}
		if err := extrafields.Validate(nodes); err != nil {
			response.BadRequest(w, r, err.Error(), nil)
			return nil, false
		}
	}

	form := r.MultipartForm

	// Main image, only present when the editor picked a new file.
	if headers := form.File["mainImage"]; len(headers) > 0 {
		url, err := h.storeUpload(r, headers[0])
		if err != nil {
			h.writeUploadError(w, r, err)
			return nil, false
		}
		dto.MainImageURL = url
	}

	for _, header := range form.File["gallery"] {
		url, err := h.storeUpload(r, header)
		if err != nil {
			h.writeUploadError(w, r, err)
			return nil, false
		}
		dto.GalleryImageURLs = append(dto.GalleryImageURLs, url)
	}

	if ok := h.storeExtraFieldUploads(w, r, nodes); !ok {
		return nil, false
	}

	if nodes != nil {
		sanitized, err := json.Marshal(extrafields.Sanitize(nodes))
		if err != nil {
			response.InternalError(w, r, "failed to encode extra fields")
			return nil, false
		}
		dto.ExtraFields = sanitized
	}

	draft := dto.ToModel()
	return &draft, true
}

// storeExtraFieldUploads pairs uploaded extra-field images with their
// nodes. Parts named "files.<key>" address the node directly; bare
// "files" parts are paired positionally against the pre-order walk of
// pending image nodes, matching the legacy dashboard contract.
func (h *TripHandler) storeExtraFieldUploads(w http.ResponseWriter, r *http.Request, nodes []extrafields.Node) bool {
	form := r.MultipartForm

	var taggedNames []string
	for name := range form.File {
		if strings.HasPrefix(name, "files.") {
			taggedNames = append(taggedNames, name)
		}
	}
	sort.Strings(taggedNames)

	for _, name := range taggedNames {
		key := strings.TrimPrefix(name, "files.")
		url, err := h.storeUpload(r, form.File[name][0])
		if err != nil {
			h.writeUploadError(w, r, err)
			return false
		}
		if !extrafields.SetImageValue(nodes, key, url) {
			response.BadRequest(w, r, "file part references unknown extra field key: "+key, nil)
			return false
		}
	}

	bare := form.File["files"]
	if len(bare) == 0 {
		return true
	}

	keys := extrafields.CollectImageKeys(nodes)
	if len(bare) > len(keys) {
		response.BadRequest(w, r, "more file parts than pending image fields", nil)
		return false
	}
	for i, header := range bare {
		url, err := h.storeUpload(r, header)
		if err != nil {
			h.writeUploadError(w, r, err)
			return false
		}
		extrafields.SetImageValue(nodes, keys[i], url)
	}
	return true
}

func (h *TripHandler) storeUpload(r *http.Request, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	img, err := h.media.Upload(r.Context(), header.Filename, file)
	if err != nil {
		return "", err
	}
	return "/v1/files/" + img.Key, nil
}

func (h *TripHandler) writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, media.ErrUnsupportedImage) {
		response.BadRequest(w, r, "uploaded file is not a supported image", nil)
		return
	}
	h.logger.Error().Err(err).Msg("storing upload failed")
	response.InternalError(w, r, "failed to store uploaded file")
}

func (h *TripHandler) writeTripError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *trip.ValidationError
	switch {
	case errors.As(err, &vErr):
		fieldErrors := make([]models.FieldError, len(vErr.Errors))
		for i, e := range vErr.Errors {
			fieldErrors[i] = models.FieldError{Field: e.Field, Message: e.Message, Code: e.Code}
		}
		response.BadRequest(w, r, "validation error", fieldErrors)
	case trip.IsNotFound(err):
		response.NotFound(w, r, "trip not found")
	case errors.Is(err, trip.ErrTripTypeImmutable):
		response.Conflict(w, r, "trip type cannot be changed after creation")
	default:
		h.logger.Error().Err(err).Msg("trip operation failed")
		response.InternalError(w, r, "trip operation failed")
	}
}
