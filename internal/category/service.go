package category

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/tripdesk/tripdesk/internal/trip"
)

// Service provides category tree operations.
type Service struct {
	repo Repository
}

// NewService creates a new category service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get retrieves a category by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Category, error) {
	return s.repo.Get(ctx, id)
}

// List returns a flat list of categories for a trip type.
func (s *Service) List(ctx context.Context, tripType trip.TripType) ([]*Category, error) {
	return s.repo.List(ctx, tripType)
}

// Tree returns root categories with their children attached, the shape
// the dashboard's category table renders directly.
func (s *Service) Tree(ctx context.Context, tripType trip.TripType) ([]*Category, error) {
	flat, err := s.repo.List(ctx, tripType)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*Category, len(flat))
	for _, c := range flat {
		byID[c.ID] = c
	}

	var roots []*Category
	for _, c := range flat {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		parent, ok := byID[*c.ParentID]
		if !ok {
			// Orphaned by a deleted parent, surface at the root.
			roots = append(roots, c)
			continue
		}
		parent.Children = append(parent.Children, c)
	}

	sortTree(roots)
	return roots, nil
}

// ParentOptions returns the categories a new child may attach to:
// roots of the same trip type. Nesting stays one level deep.
func (s *Service) ParentOptions(ctx context.Context, tripType trip.TripType) ([]*Category, error) {
	flat, err := s.repo.List(ctx, tripType)
	if err != nil {
		return nil, err
	}

	var roots []*Category
	for _, c := range flat {
		if c.ParentID == nil {
			roots = append(roots, c)
		}
	}
	return roots, nil
}

// Create validates and persists a new category.
func (s *Service) Create(ctx context.Context, draft Draft) (*Category, error) {
	if err := s.validate(ctx, draft, 0); err != nil {
		return nil, err
	}

	now := time.Now()
	c := &Category{
		Name:            strings.TrimSpace(draft.Name),
		Slug:            Slugify(draft.Name),
		TripType:        draft.TripType,
		Description:     draft.Description,
		ImageURL:        draft.ImageURL,
		IconURL:         draft.IconURL,
		ParentID:        draft.ParentID,
		MetaTitle:       draft.MetaTitle,
		MetaDescription: draft.MetaDescription,
		Order:           draft.Order,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update validates and persists changes to an existing category.
func (s *Service) Update(ctx context.Context, id int64, draft Draft) (*Category, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validate(ctx, draft, id); err != nil {
		return nil, err
	}

	existing.Name = strings.TrimSpace(draft.Name)
	existing.Slug = Slugify(draft.Name)
	existing.TripType = draft.TripType
	existing.Description = draft.Description
	existing.ImageURL = draft.ImageURL
	existing.IconURL = draft.IconURL
	existing.ParentID = draft.ParentID
	existing.MetaTitle = draft.MetaTitle
	existing.MetaDescription = draft.MetaDescription
	existing.Order = draft.Order
	existing.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete removes a category. Categories with children cannot be
// deleted; the children must be moved or removed first.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	n, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrCategoryInUse
	}

	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(ctx context.Context, draft Draft, selfID int64) error {
	if strings.TrimSpace(draft.Name) == "" {
		return fmt.Errorf("category name is required")
	}
	if !draft.TripType.Valid() {
		return fmt.Errorf("unknown trip type %q", draft.TripType)
	}

	if draft.ParentID != nil {
		if selfID != 0 && *draft.ParentID == selfID {
			return fmt.Errorf("category cannot be its own parent")
		}
		parent, err := s.repo.Get(ctx, *draft.ParentID)
		if err != nil {
			return ErrParentNotFound
		}
		if parent.ParentID != nil {
			return fmt.Errorf("categories nest at most one level")
		}
	}

	return nil
}

func sortTree(nodes []*Category) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Order != nodes[j].Order {
			return nodes[i].Order < nodes[j].Order
		}
		return nodes[i].Name < nodes[j].Name
	})
	for _, n := range nodes {
		if len(n.Children) > 0 {
			sortTree(n.Children)
		}
	}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a category name. Polish diacritics
// fold to their ASCII counterparts so slugs stay portable.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = foldPolish(s)
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

var polishFold = strings.NewReplacer(
	"ą", "a", "ć", "c", "ę", "e", "ł", "l", "ń", "n",
	"ó", "o", "ś", "s", "ź", "z", "ż", "z",
)

func foldPolish(s string) string {
	return polishFold.Replace(s)
}
