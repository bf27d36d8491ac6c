package content

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use a database-backed implementation.
type InMemoryRepository struct {
	mu    sync.RWMutex
	pages map[string]*Page
}

// NewInMemoryRepository creates a new in-memory page repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{pages: make(map[string]*Page)}
}

// Get retrieves a page by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pages[id]
	if !ok {
		return nil, ErrPageNotFound
	}

	pc := *p
	return &pc, nil
}

// List returns pages ordered by (sortOrder, title).
func (r *InMemoryRepository) List(_ context.Context, status Status) ([]*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Page
	for _, p := range r.pages {
		if status != "" && p.Status != status {
			continue
		}
		pc := *p
		out = append(out, &pc)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Title < out[j].Title
	})
	return out, nil
}

// Create stores a new page.
func (r *InMemoryRepository) Create(_ context.Context, p *Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pc := *p
	r.pages[p.ID] = &pc
	return nil
}

// Update replaces a stored page.
func (r *InMemoryRepository) Update(_ context.Context, p *Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pages[p.ID]; !ok {
		return ErrPageNotFound
	}

	pc := *p
	r.pages[p.ID] = &pc
	return nil
}

// Delete removes a page by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pages[id]; !ok {
		return ErrPageNotFound
	}
	delete(r.pages, id)
	return nil
}
