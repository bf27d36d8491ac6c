package tag

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use a database-backed implementation.
type InMemoryRepository struct {
	mu     sync.RWMutex
	tags   map[int64]*Tag
	nextID int64
}

// NewInMemoryRepository creates a new in-memory tag repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		tags:   make(map[int64]*Tag),
		nextID: 1,
	}
}

// Get retrieves a tag by ID.
func (r *InMemoryRepository) Get(_ context.Context, id int64) (*Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tags[id]
	if !ok {
		return nil, ErrTagNotFound
	}
	tc := *t
	return &tc, nil
}

// FindByName finds a tag by name, case-insensitively.
func (r *InMemoryRepository) FindByName(_ context.Context, name string) (*Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lower := strings.ToLower(name)
	for _, t := range r.tags {
		if strings.ToLower(t.Name) == lower {
			tc := *t
			return &tc, nil
		}
	}
	return nil, ErrTagNotFound
}

// Search returns tags whose name contains the query.
func (r *InMemoryRepository) Search(_ context.Context, query string, limit int) ([]*Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lower := strings.ToLower(query)
	var out []*Tag
	for _, t := range r.tags {
		if lower == "" || strings.Contains(strings.ToLower(t.Name), lower) {
			tc := *t
			out = append(out, &tc)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Create assigns an ID and stores the tag.
func (r *InMemoryRepository) Create(_ context.Context, t *Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.ID = r.nextID
	r.nextID++

	tc := *t
	r.tags[t.ID] = &tc
	return nil
}

// Update replaces a stored tag.
func (r *InMemoryRepository) Update(_ context.Context, t *Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tags[t.ID]; !ok {
		return ErrTagNotFound
	}
	tc := *t
	r.tags[t.ID] = &tc
	return nil
}

// Delete removes a tag by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tags[id]; !ok {
		return ErrTagNotFound
	}
	delete(r.tags, id)
	return nil
}
