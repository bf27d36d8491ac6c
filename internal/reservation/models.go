// Package reservation manages bookings made against trip terms and
// the approve/cancel workflow the dashboard drives.
package reservation

import (
	"context"
	"errors"
	"time"
)

// Predefined reservation errors.
var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrNotPending          = errors.New("reservation is not pending")
	ErrAlreadyCancelled    = errors.New("reservation is already cancelled")
)

// Status describes a reservation's lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

// SelectedAddon is one extra the customer picked.
type SelectedAddon struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price,omitempty"`
}

// Reservation represents one booking. TermID is empty for open
// enquiries that are not tied to a specific term yet.
type Reservation struct {
	ID                      string          `json:"id"`
	TripID                  string          `json:"tripId"`
	TermID                  string          `json:"termId,omitempty"`
	Status                  Status          `json:"status"`
	InstitutionName         string          `json:"institutionName"`
	Email                   string          `json:"email"`
	PhoneNumber             string          `json:"phoneNumber"`
	StartAddress            string          `json:"startAddress,omitempty"`
	Voivodeship             string          `json:"voivodeship,omitempty"`
	TotalParticipantsCount  int             `json:"totalParticipantsCount"`
	PaidParticipantsCount   int             `json:"paidParticipantsCount"`
	UnpaidParticipantsCount int             `json:"unpaidParticipantsCount"`
	BasePricePerPerson      *float64        `json:"basePricePerPerson,omitempty"`
	TotalPricePerPerson     *float64        `json:"totalPricePerPerson,omitempty"`
	GrandTotalPrice         float64         `json:"grandTotalPrice"`
	SelectedAddons          []SelectedAddon `json:"selectedAddons,omitempty"`
	CreatedAt               time.Time       `json:"createdAt"`
	LastModifiedAt          time.Time       `json:"lastModifiedAt"`
	LastModifiedBy          string          `json:"lastModifiedBy,omitempty"`
}

// TermOccupancy summarizes how full a term is, derived from its
// non-cancelled reservations.
type TermOccupancy struct {
	TermID       string `json:"termId"`
	ReservedPaid int    `json:"reservedPaid"`
	ReservedFree int    `json:"reservedFree"`
}

// Repository defines the interface for reservation storage.
type Repository interface {
	Get(ctx context.Context, id string) (*Reservation, error)

	// ListByTrip returns every reservation for a trip, newest first.
	ListByTrip(ctx context.Context, tripID string) ([]*Reservation, error)

	// ListByStatus returns one page of reservations in a given state,
	// newest first. A non-empty cursor resumes after that reservation;
	// the returned cursor is empty on the last page.
	ListByStatus(ctx context.Context, status Status, limit int, cursor string) ([]*Reservation, string, error)

	Create(ctx context.Context, r *Reservation) error
	Update(ctx context.Context, r *Reservation) error
}
