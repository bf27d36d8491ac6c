package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdesk/tripdesk/internal/api/handler"
	"github.com/tripdesk/tripdesk/internal/api/models"
	"github.com/tripdesk/tripdesk/internal/extrafields"
	"github.com/tripdesk/tripdesk/internal/media"
	"github.com/tripdesk/tripdesk/internal/trip"
)

func newTripTestServer(t *testing.T) (*httptest.Server, *trip.Service) {
	t.Helper()

	trips := trip.NewService(trip.NewInMemoryRepository())
	mediaService := media.NewService(media.NewInMemoryStorage(), zerolog.Nop())
	h := handler.NewTripHandler(trips, mediaService, zerolog.Nop())

	r := chi.NewRouter()
	r.Get("/v1/trips", h.List)
	r.Post("/v1/trips", h.Create)
	r.Get("/v1/trips/{tripId}", h.Get)
	r.Put("/v1/trips/{tripId}", h.Update)
	r.Delete("/v1/trips/{tripId}", h.Delete)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, trips
}

func handlerTestPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for x := 0; x < 40; x++ {
		for y := 0; y < 30; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func addFilePart(t *testing.T, mw *multipart.Writer, field, filename string, data []byte) {
	t.Helper()
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
}

func TestTripHandler_Create_JSON(t *testing.T) {
	srv, _ := newTripTestServer(t)

	body := `{
		"name": "Obóz narciarski Zakopane",
		"status": "DRAFT",
		"tripType": "SCHOOL",
		"categoryId": "3",
		"durationDays": 7,
		"hasAvailableDates": false
	}`

	resp, err := http.Post(srv.URL+"/v1/trips", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Trip
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.True(t, strings.HasPrefix(created.ID, "trp_"))
	assert.Equal(t, "Obóz narciarski Zakopane", created.Name)
	assert.Equal(t, 3, int(created.CategoryID))
	assert.Equal(t, "/v1/trips/"+created.ID, resp.Header.Get("Location"))
}

func TestTripHandler_Create_Multipart(t *testing.T) {
	srv, _ := newTripTestServer(t)

	dto := map[string]any{
		"name":       "Pielgrzymka do Rzymu",
		"status":     "DRAFT",
		"tripType":   "PILGRIMAGE",
		"categoryId": 2,
		"extraFields": []map[string]any{
			{"key": "hero", "label": "Hero", "type": "IMAGE", "imageValue": extrafields.PendingImageValue},
			{"key": "motto", "label": "Motto", "type": "TEXT", "textValue": "Roma caput mundi"},
		},
	}
	tripJSON, err := json.Marshal(dto)
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("trip", string(tripJSON)))
	addFilePart(t, mw, "mainImage", "main.png", handlerTestPNG(t))
	addFilePart(t, mw, "gallery", "g1.png", handlerTestPNG(t))
	addFilePart(t, mw, "gallery", "g2.png", handlerTestPNG(t))
	addFilePart(t, mw, "files.hero", "hero.png", handlerTestPNG(t))
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/v1/trips", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Trip
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.True(t, strings.HasPrefix(created.MainImageURL, "/v1/files/media/"))
	require.Len(t, created.GalleryImageURLs, 2)

	var nodes []extrafields.Node
	require.NoError(t, json.Unmarshal(created.ExtraFields, &nodes))
	require.Len(t, nodes, 2)
	require.NotNil(t, nodes[0].ImageValue)
	assert.True(t, strings.HasPrefix(*nodes[0].ImageValue, "/v1/files/media/"))
	assert.Empty(t, nodes[0].PendingFile)
}

func TestTripHandler_Create_PositionalFileFallback(t *testing.T) {
	srv, _ := newTripTestServer(t)

	// Two pending images, files sent without key tags. Pairing follows
	// the pre-order walk of the field tree.
	dto := map[string]any{
		"name":       "Wycieczka objazdowa",
		"status":     "DRAFT",
		"tripType":   "PILGRIMAGE",
		"categoryId": 1,
		"extraFields": []map[string]any{
			{"key": "first", "label": "First", "type": "IMAGE", "imageValue": extrafields.PendingImageValue},
			{"key": "second", "label": "Second", "type": "IMAGE", "imageValue": extrafields.PendingImageValue},
		},
	}
	tripJSON, err := json.Marshal(dto)
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("trip", string(tripJSON)))
	addFilePart(t, mw, "files", "a.png", handlerTestPNG(t))
	addFilePart(t, mw, "files", "b.png", handlerTestPNG(t))
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/v1/trips", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Trip
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	var nodes []extrafields.Node
	require.NoError(t, json.Unmarshal(created.ExtraFields, &nodes))
	require.Len(t, nodes, 2)
	for _, n := range nodes {
		require.NotNil(t, n.ImageValue)
		assert.True(t, strings.HasPrefix(*n.ImageValue, "/v1/files/media/"))
		assert.NotEqual(t, extrafields.PendingImageValue, *n.ImageValue)
	}
	assert.NotEqual(t, *nodes[0].ImageValue, *nodes[1].ImageValue)
}

func TestTripHandler_Create_ValidationError(t *testing.T) {
	srv, _ := newTripTestServer(t)

	// No category selected.
	body := `{"name": "Bez kategorii", "status": "DRAFT", "tripType": "SCHOOL"}`

	resp, err := http.Post(srv.URL+"/v1/trips", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "categoryId", problem.Errors[0].Field)
	assert.Equal(t, "REQUIRED", problem.Errors[0].Code)
}

func TestTripHandler_Create_MissingTripPart(t *testing.T) {
	srv, _ := newTripTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	addFilePart(t, mw, "mainImage", "main.png", handlerTestPNG(t))
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/v1/trips", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTripHandler_Update_TripTypeImmutable(t *testing.T) {
	srv, trips := newTripTestServer(t)

	created, err := trips.Create(context.Background(), trip.Trip{
		Name:       "Zielona szkoła",
		Status:     trip.StatusDraft,
		TripType:   trip.TypeSchool,
		CategoryID: 1,
	})
	require.NoError(t, err)

	body := `{"name": "Zielona szkoła", "status": "DRAFT", "tripType": "INDIVIDUAL", "categoryId": 1, "hasAvailableDates": true}`
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/v1/trips/"+created.ID, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestTripHandler_Get_NotFound(t *testing.T) {
	srv, _ := newTripTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/trips/trp_doesnotexist")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTripHandler_List_FiltersByStatus(t *testing.T) {
	srv, trips := newTripTestServer(t)
	ctx := context.Background()

	_, err := trips.Create(ctx, trip.Trip{Name: "Szkic", Status: trip.StatusDraft, TripType: trip.TypeSchool, CategoryID: 1})
	require.NoError(t, err)
	published, err := trips.Create(ctx, trip.Trip{Name: "Opublikowana", Status: trip.StatusPublished, TripType: trip.TypeSchool, CategoryID: 1})
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/v1/trips?status=PUBLISHED")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list models.TripListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, published.ID, list.Items[0].ID)
}

func TestTripHandler_Delete(t *testing.T) {
	srv, trips := newTripTestServer(t)

	created, err := trips.Create(context.Background(), trip.Trip{
		Name: "Do usunięcia", Status: trip.StatusDraft, TripType: trip.TypeSchool, CategoryID: 1,
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/v1/trips/"+created.ID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, err = trips.Get(context.Background(), created.ID)
	assert.True(t, trip.IsNotFound(err))
}
