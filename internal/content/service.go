package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tripdesk/tripdesk/internal/category"
	"github.com/tripdesk/tripdesk/internal/extrafields"
)

// Service provides content page operations.
type Service struct {
	repo Repository
}

// NewService creates a new content service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get retrieves a page by ID.
func (s *Service) Get(ctx context.Context, id string) (*Page, error) {
	return s.repo.Get(ctx, id)
}

// List retrieves pages, optionally filtered by status.
func (s *Service) List(ctx context.Context, status Status) ([]*Page, error) {
	return s.repo.List(ctx, status)
}

// Create validates and persists a new page. The extra-field tree is
// sanitized before storage so transient upload handles never land in
// the database.
func (s *Service) Create(ctx context.Context, draft Draft) (*Page, error) {
	if err := validateDraft(&draft); err != nil {
		return nil, err
	}

	now := time.Now()
	p := &Page{
		ID:              "pg_" + uuid.New().String()[:22],
		Title:           strings.TrimSpace(draft.Title),
		Slug:            category.Slugify(draft.Title),
		Type:            draft.Type,
		Status:          draft.Status,
		Content:         draft.Content,
		SortOrder:       draft.SortOrder,
		MetaTitle:       draft.MetaTitle,
		MetaDescription: draft.MetaDescription,
		ExtraFields:     extrafields.Sanitize(draft.ExtraFields),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update validates and persists changes to an existing page.
func (s *Service) Update(ctx context.Context, id string, draft Draft) (*Page, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := validateDraft(&draft); err != nil {
		return nil, err
	}

	existing.Title = strings.TrimSpace(draft.Title)
	existing.Slug = category.Slugify(draft.Title)
	existing.Type = draft.Type
	existing.Status = draft.Status
	existing.Content = draft.Content
	existing.SortOrder = draft.SortOrder
	existing.MetaTitle = draft.MetaTitle
	existing.MetaDescription = draft.MetaDescription
	existing.ExtraFields = extrafields.Sanitize(draft.ExtraFields)
	existing.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete removes a page by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func validateDraft(draft *Draft) error {
	if strings.TrimSpace(draft.Title) == "" {
		return fmt.Errorf("page title is required")
	}

	if draft.Type == "" {
		draft.Type = TypePage
	}
	if draft.Status == "" {
		draft.Status = StatusDraft
	}
	if !draft.Status.Valid() {
		return fmt.Errorf("unknown page status %q", draft.Status)
	}

	return extrafields.Validate(draft.ExtraFields)
}
