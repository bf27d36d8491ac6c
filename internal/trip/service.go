package trip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tripdesk/tripdesk/internal/extrafields"
)

// Service provides trip catalog operations.
type Service struct {
	repo Repository
}

// NewService creates a new trip service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// FieldError describes a single draft validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidationError carries the field errors of a rejected draft.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s %s", e.Errors[0].Field, e.Errors[0].Message)
}

// Get retrieves a trip by ID.
func (s *Service) Get(ctx context.Context, id string) (*Trip, error) {
	return s.repo.Get(ctx, id)
}

// List retrieves trips with filtering and pagination.
func (s *Service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	return s.repo.List(ctx, opts)
}

// Create validates, normalizes and persists a new trip draft.
func (s *Service) Create(ctx context.Context, draft Trip) (*Trip, error) {
	if err := ValidateDraft(draft); err != nil {
		return nil, err
	}

	extra, err := sanitizeExtraFields(draft.ExtraFields)
	if err != nil {
		return nil, err
	}
	draft.ExtraFields = extra

	t := NormalizeDraft(draft)
	t.ID = "trp_" + uuid.New().String()[:22]
	t.AssignIDs()

	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := s.repo.Create(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Update validates, normalizes and persists changes to an existing
// trip. The trip type is fixed at creation; an update carrying a
// different type is rejected with ErrTripTypeImmutable.
func (s *Service) Update(ctx context.Context, id string, draft Trip) (*Trip, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if draft.TripType != "" && draft.TripType != existing.TripType {
		return nil, ErrTripTypeImmutable
	}
	draft.TripType = existing.TripType

	if err := ValidateDraft(draft); err != nil {
		return nil, err
	}

	extra, err := sanitizeExtraFields(draft.ExtraFields)
	if err != nil {
		return nil, err
	}
	draft.ExtraFields = extra

	t := NormalizeDraft(draft)
	t.ID = existing.ID
	t.AssignIDs()
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// sanitizeExtraFields validates the stored extra-field tree and strips
// transient file handles before persistence. The multipart upload path
// runs the same pass while pairing files; for plain JSON submissions
// this is the only line of defense.
func sanitizeExtraFields(raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 {
		return raw, nil
	}

	var nodes []extrafields.Node
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return nil, &ValidationError{Errors: []FieldError{{
			Field: "extraFields", Message: "is not a valid field tree", Code: "INVALID",
		}}}
	}
	if err := extrafields.Validate(nodes); err != nil {
		return nil, &ValidationError{Errors: []FieldError{{
			Field: "extraFields", Message: err.Error(), Code: "INVALID",
		}}}
	}

	out, err := json.Marshal(extrafields.Sanitize(nodes))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a trip by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ValidateDraft checks a draft before any persistence happens. The
// checks run in a fixed order and the first violation wins, matching
// the dashboard's submit-time messages one to one.
func ValidateDraft(draft Trip) error {
	if !draft.TripType.Valid() {
		return &ValidationError{Errors: []FieldError{{
			Field: "tripType", Message: "is not a known trip type", Code: "INVALID",
		}}}
	}

	// 1. Every itinerary day needs a description.
	for i, d := range draft.ItineraryDays {
		if strings.TrimSpace(d.Description) == "" {
			return &ValidationError{Errors: []FieldError{{
				Field:   fmt.Sprintf("itineraryDays[%d].description", i),
				Message: "every itinerary day must have a description",
				Code:    "REQUIRED",
			}}}
		}
	}

	// 2. Individual trips require predefined terms.
	if draft.TripType == TypeIndividual && !draft.HasAvailableDates {
		return &ValidationError{Errors: []FieldError{{
			Field:   "hasAvailableDates",
			Message: "individual trips require predefined terms",
			Code:    "REQUIRED",
		}}}
	}

	// 3. A category must be chosen.
	if draft.CategoryID <= 0 {
		return &ValidationError{Errors: []FieldError{{
			Field:   "categoryId",
			Message: "a category must be selected",
			Code:    "REQUIRED",
		}}}
	}

	// 4. Departure options need a location name.
	for i, o := range draft.DepartureOptions {
		if strings.TrimSpace(o.LocationName) == "" {
			return &ValidationError{Errors: []FieldError{{
				Field:   fmt.Sprintf("departureOptions[%d].locationName", i),
				Message: "every departure option must have a location name",
				Code:    "REQUIRED",
			}}}
		}
	}

	// 5. Payment links must be absolute http(s) URLs.
	for i, term := range draft.Terms {
		if term.Individual == nil {
			continue
		}
		url := strings.TrimSpace(term.Individual.TravelPayProductURL)
		if url == "" {
			continue
		}
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return &ValidationError{Errors: []FieldError{{
				Field:   fmt.Sprintf("terms[%d].travelPayProductUrl", i),
				Message: "payment links must start with http:// or https://",
				Code:    "INVALID",
			}}}
		}
	}

	return nil
}

// IsNotFound reports whether err is the trip-not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTripNotFound)
}
