package reservation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Publisher delivers reservation status changes to interested
// consumers (confirmation emails, occupancy refresh). Delivery is best
// effort; a failed publish never fails the state change.
type Publisher interface {
	ReservationChanged(ctx context.Context, r *Reservation) error
}

// Service provides reservation operations.
type Service struct {
	repo   Repository
	events Publisher
	logger zerolog.Logger
}

// ServiceConfig holds configuration for the reservation service.
type ServiceConfig struct {
	Repository Repository
	Events     Publisher // optional
	Logger     zerolog.Logger
}

// NewService creates a new reservation service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:   cfg.Repository,
		events: cfg.Events,
		logger: cfg.Logger,
	}
}

// Get retrieves a reservation by ID.
func (s *Service) Get(ctx context.Context, id string) (*Reservation, error) {
	return s.repo.Get(ctx, id)
}

// ListByTrip returns every reservation for a trip, newest first.
func (s *Service) ListByTrip(ctx context.Context, tripID string) ([]*Reservation, error) {
	return s.repo.ListByTrip(ctx, tripID)
}

// ListPending returns one page of reservations waiting for a decision.
func (s *Service) ListPending(ctx context.Context, limit int, cursor string) ([]*Reservation, string, error) {
	return s.ListByStatus(ctx, StatusPending, limit, cursor)
}

// ListByStatus returns one page of reservations in the given state,
// newest first. The returned cursor is empty on the last page.
func (s *Service) ListByStatus(ctx context.Context, status Status, limit int, cursor string) ([]*Reservation, string, error) {
	switch status {
	case StatusPending, StatusConfirmed, StatusCancelled:
	default:
		return nil, "", fmt.Errorf("unknown reservation status %q", status)
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListByStatus(ctx, status, limit, cursor)
}

// GroupByTerm buckets a trip's reservations by term. Open enquiries
// without a term land under the empty key.
func (s *Service) GroupByTerm(ctx context.Context, tripID string) (map[string][]*Reservation, error) {
	all, err := s.repo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]*Reservation)
	for _, r := range all {
		grouped[r.TermID] = append(grouped[r.TermID], r)
	}
	return grouped, nil
}

// Occupancy derives per-term seat usage from the trip's reservations.
// Cancelled reservations hold no seats.
func (s *Service) Occupancy(ctx context.Context, tripID string) (map[string]TermOccupancy, error) {
	all, err := s.repo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	out := make(map[string]TermOccupancy)
	for _, r := range all {
		if r.TermID == "" || r.Status == StatusCancelled {
			continue
		}
		occ := out[r.TermID]
		occ.TermID = r.TermID
		occ.ReservedPaid += r.PaidParticipantsCount
		occ.ReservedFree += r.UnpaidParticipantsCount
		out[r.TermID] = occ
	}
	return out, nil
}

// Create records a new reservation in the PENDING state.
func (s *Service) Create(ctx context.Context, r Reservation) (*Reservation, error) {
	if r.TripID == "" {
		return nil, fmt.Errorf("trip ID is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		return nil, fmt.Errorf("contact email is required")
	}
	if r.TotalParticipantsCount <= 0 {
		return nil, fmt.Errorf("participant count must be positive")
	}
	if r.PaidParticipantsCount+r.UnpaidParticipantsCount != r.TotalParticipantsCount {
		return nil, fmt.Errorf("paid and unpaid participants must add up to the total")
	}

	now := time.Now()
	r.ID = "rsv_" + uuid.New().String()[:22]
	r.Status = StatusPending
	r.CreatedAt = now
	r.LastModifiedAt = now

	if err := s.repo.Create(ctx, &r); err != nil {
		return nil, err
	}

	s.publish(ctx, &r)
	return &r, nil
}

// Approve confirms a pending reservation. Only PENDING reservations
// can be approved; confirmed and cancelled ones are final.
func (s *Service) Approve(ctx context.Context, id, actor string) (*Reservation, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.Status != StatusPending {
		return nil, ErrNotPending
	}

	r.Status = StatusConfirmed
	r.LastModifiedAt = time.Now()
	r.LastModifiedBy = actor

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}

	s.publish(ctx, r)
	return r, nil
}

// Cancel cancels a reservation, releasing its seats. Both pending and
// confirmed reservations can be cancelled; cancelling twice fails.
func (s *Service) Cancel(ctx context.Context, id, actor string) (*Reservation, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	r.Status = StatusCancelled
	r.LastModifiedAt = time.Now()
	r.LastModifiedBy = actor

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}

	s.publish(ctx, r)
	return r, nil
}

func (s *Service) publish(ctx context.Context, r *Reservation) {
	if s.events == nil {
		return
	}
	if err := s.events.ReservationChanged(ctx, r); err != nil {
		s.logger.Warn().Err(err).
			Str("reservation_id", r.ID).
			Str("status", string(r.Status)).
			Msg("failed to publish reservation event")
	}
}
