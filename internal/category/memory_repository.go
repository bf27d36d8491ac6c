package category

import (
	"context"
	"sort"
	"sync"

	"github.com/tripdesk/tripdesk/internal/trip"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use a database-backed implementation.
type InMemoryRepository struct {
	mu         sync.RWMutex
	categories map[int64]*Category
	nextID     int64
}

// NewInMemoryRepository creates a new in-memory category repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		categories: make(map[int64]*Category),
		nextID:     1,
	}
}

// Get retrieves a category by ID.
func (r *InMemoryRepository) Get(_ context.Context, id int64) (*Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}

	cc := *c
	cc.Children = nil
	return &cc, nil
}

// List returns all categories, optionally filtered by trip type.
func (r *InMemoryRepository) List(_ context.Context, tripType trip.TripType) ([]*Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Category
	for _, c := range r.categories {
		if tripType != "" && c.TripType != tripType {
			continue
		}
		cc := *c
		cc.Children = nil
		out = append(out, &cc)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Create assigns an ID and stores the category.
func (r *InMemoryRepository) Create(_ context.Context, c *Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c.ID = r.nextID
	r.nextID++

	cc := *c
	cc.Children = nil
	r.categories[c.ID] = &cc
	return nil
}

// Update replaces a stored category.
func (r *InMemoryRepository) Update(_ context.Context, c *Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[c.ID]; !ok {
		return ErrCategoryNotFound
	}

	cc := *c
	cc.Children = nil
	r.categories[c.ID] = &cc
	return nil
}

// Delete removes a category by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return ErrCategoryNotFound
	}
	delete(r.categories, id)
	return nil
}

// CountChildren reports how many categories name id as parent.
func (r *InMemoryRepository) CountChildren(_ context.Context, id int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, c := range r.categories {
		if c.ParentID != nil && *c.ParentID == id {
			n++
		}
	}
	return n, nil
}
