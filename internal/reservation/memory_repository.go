package reservation

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use a database-backed implementation.
type InMemoryRepository struct {
	mu           sync.RWMutex
	reservations map[string]*Reservation
}

// NewInMemoryRepository creates a new in-memory reservation repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{reservations: make(map[string]*Reservation)}
}

// Get retrieves a reservation by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}

	rc := *res
	return &rc, nil
}

// ListByTrip returns every reservation for a trip, newest first.
func (r *InMemoryRepository) ListByTrip(_ context.Context, tripID string) ([]*Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Reservation
	for _, res := range r.reservations {
		if res.TripID == tripID {
			rc := *res
			out = append(out, &rc)
		}
	}

	sortNewestFirst(out)
	return out, nil
}

// ListByStatus returns one page of reservations in a given state,
// newest first.
func (r *InMemoryRepository) ListByStatus(_ context.Context, status Status, limit int, cursor string) ([]*Reservation, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Reservation
	for _, res := range r.reservations {
		if res.Status == status {
			rc := *res
			out = append(out, &rc)
		}
	}
	sortNewestFirst(out)

	// Keyset pagination: keep only reservations strictly after the
	// cursor row in sort order. A deleted cursor row yields an empty page.
	if cursor != "" {
		after, ok := r.reservations[cursor]
		if !ok {
			return nil, "", nil
		}
		kept := out[:0]
		for _, res := range out {
			if res.CreatedAt.Before(after.CreatedAt) ||
				(res.CreatedAt.Equal(after.CreatedAt) && res.ID < after.ID) {
				kept = append(kept, res)
			}
		}
		out = kept
	}

	next := ""
	if len(out) > limit {
		out = out[:limit]
		next = out[limit-1].ID
	}
	return out, next, nil
}

// Create stores a new reservation.
func (r *InMemoryRepository) Create(_ context.Context, res *Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rc := *res
	r.reservations[res.ID] = &rc
	return nil
}

// Update replaces a stored reservation.
func (r *InMemoryRepository) Update(_ context.Context, res *Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reservations[res.ID]; !ok {
		return ErrReservationNotFound
	}

	rc := *res
	r.reservations[res.ID] = &rc
	return nil
}

func sortNewestFirst(out []*Reservation) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
}
