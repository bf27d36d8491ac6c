package tag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Service provides tag operations.
type Service struct {
	repo Repository
}

// NewService creates a new tag service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Search returns tags matching the query.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*Tag, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.Search(ctx, strings.TrimSpace(query), limit)
}

// Get retrieves a tag by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Tag, error) {
	return s.repo.Get(ctx, id)
}

// Rename changes a tag's name. The new name must not collide with
// another tag, case-insensitively.
func (s *Service) Rename(ctx context.Context, id int64, name string) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("tag name is required")
	}

	existing, err := s.repo.FindByName(ctx, name)
	if err == nil && existing.ID != id {
		return nil, ErrTagNameTaken
	}
	if err != nil && !errors.Is(err, ErrTagNotFound) {
		return nil, err
	}

	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	t.Name = name
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Ensure returns the tag with the given name, creating it when it does
// not exist yet. Lookup is case-insensitive, so "Góry" and "góry"
// resolve to one tag.
func (s *Service) Ensure(ctx context.Context, name string) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("tag name is required")
	}

	existing, err := s.repo.FindByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrTagNotFound) {
		return nil, err
	}

	t := &Tag{Name: name, CreatedAt: time.Now()}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// EnsureAll resolves a list of names to tags, creating missing ones
// and dropping duplicates while keeping first-seen order.
func (s *Service) EnsureAll(ctx context.Context, names []string) ([]*Tag, error) {
	seen := make(map[string]bool, len(names))
	out := make([]*Tag, 0, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		t, err := s.Ensure(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Delete removes a tag by ID.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
