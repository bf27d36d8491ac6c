package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tripdesk/tripdesk/internal/api/response"
	"github.com/tripdesk/tripdesk/internal/travelpay"
)

// TravelPayHandler verifies payment product links on demand. The trip
// editor calls it when an individual term's product URL changes.
type TravelPayHandler struct {
	client *travelpay.Client
	logger zerolog.Logger
}

// NewTravelPayHandler creates a new TravelPayHandler.
func NewTravelPayHandler(client *travelpay.Client, logger zerolog.Logger) *TravelPayHandler {
	return &TravelPayHandler{client: client, logger: logger}
}

// Verify handles POST /v1/travelpay/verify. Accepts a list of product
// URLs and returns one verification per URL, in order. Upstream
// outages report UNVERIFIED rather than an error.
func (h *TravelPayHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URLs []string `json:"urls"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if len(body.URLs) == 0 {
		response.BadRequest(w, r, "at least one url is required", nil)
		return
	}

	verifications, err := h.client.VerifyProductURLs(r.Context(), body.URLs)
	if err != nil {
		h.logger.Error().Err(err).Msg("travelpay verification failed")
		response.InternalError(w, r, "verification failed")
		return
	}

	response.JSON(w, r, http.StatusOK, map[string]any{"verifications": verifications})
}
