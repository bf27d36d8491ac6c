package models

import "github.com/tripdesk/tripdesk/internal/reservation"

// ReservationListResponse is the paged reservation list payload.
type ReservationListResponse struct {
	Items []*reservation.Reservation `json:"items"`
	Meta  PagedResponseMeta          `json:"meta"`
}
