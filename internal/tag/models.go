// Package tag manages the free-form labels attached to trips. Tags
// are created on first use and deduplicated case-insensitively, the
// same rule the dashboard's tag picker applies before submitting.
package tag

import (
	"context"
	"errors"
	"time"
)

// ErrTagNotFound is returned when a tag does not exist.
var ErrTagNotFound = errors.New("tag not found")

// ErrTagNameTaken is returned when a rename collides with another tag.
var ErrTagNameTaken = errors.New("tag name already in use")

// Tag represents one label.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository defines the interface for tag storage.
type Repository interface {
	// Get retrieves a tag by ID. Returns ErrTagNotFound if absent.
	Get(ctx context.Context, id int64) (*Tag, error)

	// FindByName finds a tag by name, case-insensitively.
	FindByName(ctx context.Context, name string) (*Tag, error)

	// Search returns tags whose name contains the query,
	// case-insensitively, ordered by name. An empty query returns all.
	Search(ctx context.Context, query string, limit int) ([]*Tag, error)

	Create(ctx context.Context, t *Tag) error
	Update(ctx context.Context, t *Tag) error
	Delete(ctx context.Context, id int64) error
}
