// Package content manages editorial pages. A page carries an HTML
// body, SEO fields and an extra-field tree; pending images inside the
// tree arrive as multipart file parts alongside the page itself.
package content

import (
	"context"
	"errors"
	"time"

	"github.com/tripdesk/tripdesk/internal/extrafields"
)

// ErrPageNotFound is returned when a content page does not exist.
var ErrPageNotFound = errors.New("content page not found")

// Status describes a page's publication state.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Type describes the kind of content item.
type Type string

// TypePage is the only content type the dashboard manages today.
const TypePage Type = "PAGE"

// Page represents one content item.
type Page struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Slug            string             `json:"slug"`
	Type            Type               `json:"type"`
	Status          Status             `json:"status"`
	Content         string             `json:"content"`
	SortOrder       int                `json:"sortOrder"`
	MetaTitle       string             `json:"metaTitle,omitempty"`
	MetaDescription string             `json:"metaDescription,omitempty"`
	ExtraFields     []extrafields.Node `json:"extraFields,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// Draft carries the writable fields of a page.
type Draft struct {
	Title           string             `json:"title"`
	Type            Type               `json:"type"`
	Status          Status             `json:"status"`
	Content         string             `json:"content"`
	SortOrder       int                `json:"sortOrder"`
	MetaTitle       string             `json:"metaTitle,omitempty"`
	MetaDescription string             `json:"metaDescription,omitempty"`
	ExtraFields     []extrafields.Node `json:"extraFields,omitempty"`
}

// Repository defines the interface for page storage.
type Repository interface {
	Get(ctx context.Context, id string) (*Page, error)

	// List returns pages ordered by (sortOrder, title), optionally
	// filtered by status.
	List(ctx context.Context, status Status) ([]*Page, error)

	Create(ctx context.Context, p *Page) error
	Update(ctx context.Context, p *Page) error
	Delete(ctx context.Context, id string) error
}
