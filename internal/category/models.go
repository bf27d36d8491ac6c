// Package category manages the trip category tree. Categories are
// scoped to a trip type and may nest one level under a parent, which
// drives the grouped select in the trip form.
package category

import (
	"context"
	"errors"
	"time"

	"github.com/tripdesk/tripdesk/internal/trip"
)

// Predefined category errors.
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category has children")
	ErrParentNotFound   = errors.New("parent category not found")
)

// Category represents one node in the category tree.
type Category struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	Slug            string        `json:"slug"`
	TripType        trip.TripType `json:"tripType"`
	Description     string        `json:"description,omitempty"`
	ImageURL        string        `json:"imageUrl,omitempty"`
	IconURL         string        `json:"iconUrl,omitempty"`
	ParentID        *int64        `json:"parentId"`
	MetaTitle       string        `json:"metaTitle,omitempty"`
	MetaDescription string        `json:"metaDescription,omitempty"`
	Order           int           `json:"order"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`

	// Children is filled when the tree is assembled; it is not a
	// stored column.
	Children []*Category `json:"children,omitempty"`
}

// Draft carries the writable fields of a category.
type Draft struct {
	Name            string        `json:"name"`
	TripType        trip.TripType `json:"tripType"`
	Description     string        `json:"description,omitempty"`
	ImageURL        string        `json:"imageUrl,omitempty"`
	IconURL         string        `json:"iconUrl,omitempty"`
	ParentID        *int64        `json:"parentId"`
	MetaTitle       string        `json:"metaTitle,omitempty"`
	MetaDescription string        `json:"metaDescription,omitempty"`
	Order           int           `json:"order"`
}

// Repository defines the interface for category storage.
type Repository interface {
	Get(ctx context.Context, id int64) (*Category, error)

	// List returns all categories, optionally filtered by trip type,
	// ordered by (order, name).
	List(ctx context.Context, tripType trip.TripType) ([]*Category, error)

	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id int64) error

	// CountChildren reports how many categories name id as parent.
	CountChildren(ctx context.Context, id int64) (int, error)
}
