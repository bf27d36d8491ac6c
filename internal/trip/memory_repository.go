package trip

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu    sync.RWMutex
	trips map[string]*Trip
}

// NewInMemoryRepository creates a new in-memory trip repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{trips: make(map[string]*Trip)}
}

// Get retrieves a trip by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.trips[id]
	if !ok {
		return nil, ErrTripNotFound
	}
	cpy := *t
	return &cpy, nil
}

// List retrieves trips with filtering and pagination.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var trips []*Trip
	for _, t := range r.trips {
		if opts.Status != "" && t.Status != opts.Status {
			continue
		}
		if opts.TripType != "" && t.TripType != opts.TripType {
			continue
		}
		if opts.Query != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(opts.Query)) {
			continue
		}
		cpy := *t
		trips = append(trips, &cpy)
	}

	sort.Slice(trips, func(i, j int) bool {
		if !trips[i].CreatedAt.Equal(trips[j].CreatedAt) {
			return trips[i].CreatedAt.After(trips[j].CreatedAt)
		}
		return trips[i].ID > trips[j].ID
	})

	// Keyset pagination: keep only trips strictly after the cursor row
	// in sort order. A cursor whose trip was deleted yields an empty page.
	if opts.Cursor != "" {
		after, ok := r.trips[opts.Cursor]
		if !ok {
			return &ListResult{}, nil
		}
		kept := trips[:0]
		for _, t := range trips {
			if t.CreatedAt.Before(after.CreatedAt) ||
				(t.CreatedAt.Equal(after.CreatedAt) && t.ID < after.ID) {
				kept = append(kept, t)
			}
		}
		trips = kept
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	result := &ListResult{Items: trips}
	if len(trips) > limit {
		result.Items = trips[:limit]
		result.NextCursor = trips[limit-1].ID
	}
	return result, nil
}

// Create persists a new trip.
func (r *InMemoryRepository) Create(_ context.Context, t *Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *t
	r.trips[t.ID] = &cpy
	return nil
}

// Update replaces an existing trip.
func (r *InMemoryRepository) Update(_ context.Context, t *Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.trips[t.ID]; !ok {
		return ErrTripNotFound
	}
	cpy := *t
	r.trips[t.ID] = &cpy
	return nil
}

// Delete removes a trip by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.trips[id]; !ok {
		return ErrTripNotFound
	}
	delete(r.trips, id)
	return nil
}
