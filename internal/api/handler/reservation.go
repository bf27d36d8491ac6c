package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tripdesk/tripdesk/internal/api/models"
	"github.com/tripdesk/tripdesk/internal/api/response"
	"github.com/tripdesk/tripdesk/internal/reservation"
)

// ReservationHandler handles reservation endpoints. Reservations are
// created by the public booking flow; the admin surface reads them and
// drives the approve/cancel transitions.
type ReservationHandler struct {
	reservations *reservation.Service
	logger       zerolog.Logger
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(reservations *reservation.Service, logger zerolog.Logger) *ReservationHandler {
	return &ReservationHandler{reservations: reservations, logger: logger}
}

// List handles GET /v1/reservations. Defaults to the pending queue;
// the status parameter selects another state and cursor resumes a
// previous page.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)

	status := reservation.StatusPending
	if raw := r.URL.Query().Get("status"); raw != "" {
		switch reservation.Status(raw) {
		case reservation.StatusPending, reservation.StatusConfirmed, reservation.StatusCancelled:
			status = reservation.Status(raw)
		default:
			response.BadRequest(w, r, "unknown reservation status", nil)
			return
		}
	}

	list, next, err := h.reservations.ListByStatus(r.Context(), status, limit, r.URL.Query().Get("cursor"))
	if err != nil {
		response.InternalError(w, r, "failed to list reservations")
		return
	}

	resp := models.ReservationListResponse{
		Items: list,
		Meta:  models.PagedResponseMeta{Limit: limit},
	}
	if next != "" {
		resp.Meta.NextCursor = &next
	}

	response.JSON(w, r, http.StatusOK, resp)
}

// Get handles GET /v1/reservations/{reservationId}.
func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	res, err := h.reservations.Get(r.Context(), chi.URLParam(r, "reservationId"))
	if err != nil {
		h.writeReservationError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, res)
}

// ListByTrip handles GET /v1/reservations/by-trip/{tripId}. Grouped by
// term so the occupancy panel can render per-date lists; open
// enquiries without a term land under the empty key.
func (h *ReservationHandler) ListByTrip(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")

	grouped, err := h.reservations.GroupByTerm(r.Context(), tripID)
	if err != nil {
		response.InternalError(w, r, "failed to list reservations")
		return
	}

	response.JSON(w, r, http.StatusOK, grouped)
}

// Occupancy handles GET /v1/reservations/by-trip/{tripId}/occupancy.
func (h *ReservationHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")

	occupancy, err := h.reservations.Occupancy(r.Context(), tripID)
	if err != nil {
		response.InternalError(w, r, "failed to compute occupancy")
		return
	}

	response.JSON(w, r, http.StatusOK, occupancy)
}

// Approve handles POST /v1/reservations/{reservationId}/approve.
func (h *ReservationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reservationId")

	res, err := h.reservations.Approve(r.Context(), id, GetUserID(r.Context()))
	if err != nil {
		h.writeReservationError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, res)
}

// Cancel handles POST /v1/reservations/{reservationId}/cancel.
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reservationId")

	res, err := h.reservations.Cancel(r.Context(), id, GetUserID(r.Context()))
	if err != nil {
		h.writeReservationError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, res)
}

func (h *ReservationHandler) writeReservationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, reservation.ErrReservationNotFound):
		response.NotFound(w, r, "reservation not found")
	case errors.Is(err, reservation.ErrNotPending):
		response.Conflict(w, r, "reservation is not pending")
	case errors.Is(err, reservation.ErrAlreadyCancelled):
		response.Conflict(w, r, "reservation is already cancelled")
	default:
		h.logger.Error().Err(err).Msg("reservation operation failed")
		response.InternalError(w, r, "reservation operation failed")
	}
}
