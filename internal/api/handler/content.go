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

	"github.com/tripdesk/tripdesk/internal/api/response"
	"github.com/tripdesk/tripdesk/internal/content"
	"github.com/tripdesk/tripdesk/internal/extrafields"
	"github.com/tripdesk/tripdesk/internal/media"
)

// ContentHandler handles content page endpoints. Pages carry the same
// extra-field trees as trips and share the multipart upload contract.
type ContentHandler struct {
	pages  *content.Service
	media  *media.Service
	logger zerolog.Logger
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(pages *content.Service, mediaService *media.Service, logger zerolog.Logger) *ContentHandler {
	return &ContentHandler{pages: pages, media: mediaService, logger: logger}
}

// List handles GET /v1/pages. The optional status parameter filters by
// publication state.
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	status := content.Status(r.URL.Query().Get("status"))

	pages, err := h.pages.List(r.Context(), status)
	if err != nil {
		response.InternalError(w, r, "failed to list pages")
		return
	}

	response.JSON(w, r, http.StatusOK, pages)
}

// Get handles GET /v1/pages/{pageId}.
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.Get(r.Context(), chi.URLParam(r, "pageId"))
	if err != nil {
		if errors.Is(err, content.ErrPageNotFound) {
			response.NotFound(w, r, "page not found")
			return
		}
		response.InternalError(w, r, "failed to load page")
		return
	}

	response.JSON(w, r, http.StatusOK, page)
}

// Create handles POST /v1/pages.
func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}

	page, err := h.pages.Create(r.Context(), *draft)
	if err != nil {
		h.writePageError(w, r, err)
		return
	}

	response.Created(w, r, "/v1/pages/"+page.ID, page)
}

// Update handles PUT /v1/pages/{pageId}.
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}

	page, err := h.pages.Update(r.Context(), chi.URLParam(r, "pageId"), *draft)
	if err != nil {
		h.writePageError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, page)
}

// Delete handles DELETE /v1/pages/{pageId}.
func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.pages.Delete(r.Context(), chi.URLParam(r, "pageId")); err != nil {
		if errors.Is(err, content.ErrPageNotFound) {
			response.NotFound(w, r, "page not found")
			return
		}
		response.InternalError(w, r, "failed to delete page")
		return
	}

	response.NoContent(w, r)
}

// decodeDraft reads a page draft from the request, either as plain JSON
// or as a multipart body with a "dto" JSON part plus image parts. The
// file pairing contract matches the trip editor.
func (h *ContentHandler) decodeDraft(w http.ResponseWriter, r *http.Request) (*content.Draft, bool) {
	contentType := r.Header.Get("Content-Type")

	var draft content.Draft
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			response.BadRequest(w, r, "invalid JSON body", nil)
			return nil, false
		}
		return &draft, true
	}

	if err := r.ParseMultipartForm(maxTripFormBytes); err != nil {
		response.BadRequest(w, r, "invalid multipart body", nil)
		return nil, false
	}

	dtoJSON := r.FormValue("dto")
	if dtoJSON == "" {
		response.BadRequest(w, r, `missing "dto" part`, nil)
		return nil, false
	}
	if err := json.Unmarshal([]byte(dtoJSON), &draft); err != nil {
		response.BadRequest(w, r, `invalid JSON in "dto" part`, nil)
		return nil, false
	}

	if err := extrafields.Validate(draft.ExtraFields); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return nil, false
	}

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
			return nil, false
		}
		if !extrafields.SetImageValue(draft.ExtraFields, key, url) {
			response.BadRequest(w, r, "file part references unknown extra field key: "+key, nil)
			return nil, false
		}
	}

	if bare := form.File["files"]; len(bare) > 0 {
		keys := extrafields.CollectImageKeys(draft.ExtraFields)
		if len(bare) > len(keys) {
			response.BadRequest(w, r, "more file parts than pending image fields", nil)
			return nil, false
		}
		for i, header := range bare {
			url, err := h.storeUpload(r, header)
			if err != nil {
				h.writeUploadError(w, r, err)
				return nil, false
			}
			extrafields.SetImageValue(draft.ExtraFields, keys[i], url)
		}
	}

	return &draft, true
}

func (h *ContentHandler) storeUpload(r *http.Request, header *multipart.FileHeader) (string, error) {
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

func (h *ContentHandler) writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, media.ErrUnsupportedImage) {
		response.BadRequest(w, r, "uploaded file is not a supported image", nil)
		return
	}
	h.logger.Error().Err(err).Msg("storing upload failed")
	response.InternalError(w, r, "failed to store uploaded file")
}

func (h *ContentHandler) writePageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, content.ErrPageNotFound) {
		response.NotFound(w, r, "page not found")
		return
	}
	h.logger.Error().Err(err).Msg("content page operation failed")
	response.BadRequest(w, r, err.Error(), nil)
}
