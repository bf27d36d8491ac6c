package trip_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/tripdesk/tripdesk/internal/extrafields"
	"github.com/tripdesk/tripdesk/internal/trip"
)

func validDraft(tripType trip.TripType) trip.Trip {
	return trip.Trip{
		Name:              "Majówka nad morzem",
		TripType:          tripType,
		CategoryID:        3,
		HasAvailableDates: true,
		ItineraryDays: []trip.ItineraryDay{
			{DayNumber: 1, Title: "Przyjazd", Description: "Zakwaterowanie i spacer po plaży."},
		},
	}
}

func TestService_Create(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, validDraft(trip.TypeIndividual))
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	if created.ID == "" {
		t.Error("expected trip ID to be set")
	}
	if !strings.HasPrefix(created.ID, "trp_") {
		t.Errorf("expected trip ID to start with 'trp_', got %q", created.ID)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	stored, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("trip not persisted: %v", err)
	}
	if stored.Name != "Majówka nad morzem" {
		t.Errorf("unexpected stored name %q", stored.Name)
	}
}

func TestService_Create_ValidationOrder(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	tests := []struct {
		name      string
		mutate    func(*trip.Trip)
		wantField string
	}{
		{
			name: "itinerary day without description",
			mutate: func(d *trip.Trip) {
				d.ItineraryDays = append(d.ItineraryDays,
					trip.ItineraryDay{DayNumber: 2, Title: "Zwiedzanie", Description: "   "})
			},
			wantField: "itineraryDays[1].description",
		},
		{
			name: "individual trip without predefined terms",
			mutate: func(d *trip.Trip) {
				d.HasAvailableDates = false
			},
			wantField: "hasAvailableDates",
		},
		{
			name: "missing category",
			mutate: func(d *trip.Trip) {
				d.CategoryID = 0
			},
			wantField: "categoryId",
		},
		{
			name: "departure option without location",
			mutate: func(d *trip.Trip) {
				d.DepartureOptions = []trip.DepartureOption{{LocationName: "  "}}
			},
			wantField: "departureOptions[0].locationName",
		},
		{
			name: "relative payment link",
			mutate: func(d *trip.Trip) {
				d.Terms = []trip.Term{{Individual: &trip.IndividualTerm{
					TravelPayProductURL: "www.travelpay.pl/product/7",
				}}}
			},
			wantField: "terms[0].travelPayProductUrl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := validDraft(trip.TypeIndividual)
			tt.mutate(&draft)

			_, err := service.Create(ctx, draft)
			if err == nil {
				t.Fatal("expected validation error")
			}

			var validationErr *trip.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if len(validationErr.Errors) == 0 {
				t.Fatal("expected at least one field error")
			}
			if got := validationErr.Errors[0].Field; got != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, got)
			}
		})
	}
}

func TestService_Create_NoPersistenceOnValidationFailure(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	draft := validDraft(trip.TypeIndividual)
	draft.CategoryID = 0

	if _, err := service.Create(ctx, draft); err == nil {
		t.Fatal("expected validation error")
	}

	result, err := repo.List(ctx, trip.ListOptions{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(result.Items) != 0 {
		t.Errorf("expected nothing persisted, found %d trips", len(result.Items))
	}
}

func TestService_Update_TripTypeImmutable(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, validDraft(trip.TypeSchool))
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	update := validDraft(trip.TypeIndividual)
	_, err = service.Update(ctx, created.ID, update)
	if !errors.Is(err, trip.ErrTripTypeImmutable) {
		t.Errorf("expected ErrTripTypeImmutable, got %v", err)
	}
}

func TestService_Update_KeepsCreationTime(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, validDraft(trip.TypeSchool))
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	update := validDraft(trip.TypeSchool)
	update.Name = "Majówka w górach"
	updated, err := service.Update(ctx, created.ID, update)
	if err != nil {
		t.Fatalf("failed to update trip: %v", err)
	}

	if updated.Name != "Majówka w górach" {
		t.Errorf("expected updated name, got %q", updated.Name)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("expected CreatedAt to be preserved across updates")
	}
}

func TestService_Update_EmptyTypeInheritsExisting(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, validDraft(trip.TypeSenior))
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	update := validDraft("")
	updated, err := service.Update(ctx, created.ID, update)
	if err != nil {
		t.Fatalf("failed to update trip: %v", err)
	}
	if updated.TripType != trip.TypeSenior {
		t.Errorf("expected inherited trip type SENIOR, got %q", updated.TripType)
	}
}

func TestService_Delete(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, validDraft(trip.TypeIndividual))
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	if err := service.Delete(ctx, created.ID); err != nil {
		t.Fatalf("failed to delete trip: %v", err)
	}
	if err := service.Delete(ctx, created.ID); !errors.Is(err, trip.ErrTripNotFound) {
		t.Errorf("expected ErrTripNotFound, got %v", err)
	}
}

func TestService_List_CursorWalksAllPages(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	created := make(map[string]bool)
	for i := 0; i < 5; i++ {
		tr, err := service.Create(ctx, validDraft(trip.TypeIndividual))
		if err != nil {
			t.Fatalf("failed to create trip: %v", err)
		}
		created[tr.ID] = true
	}

	seen := make(map[string]bool)
	cursor := ""
	for pages := 0; ; pages++ {
		if pages > 10 {
			t.Fatal("pagination did not terminate")
		}

		page, err := service.List(ctx, trip.ListOptions{Limit: 2, Cursor: cursor})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		for _, item := range page.Items {
			if seen[item.ID] {
				t.Fatalf("trip %s returned twice", item.ID)
			}
			seen[item.ID] = true
		}

		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	if len(seen) != len(created) {
		t.Errorf("expected %d trips across pages, got %d", len(created), len(seen))
	}
	for id := range created {
		if !seen[id] {
			t.Errorf("trip %s missing from paged results", id)
		}
	}
}

func TestService_List_StaleCursor(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := service.Create(ctx, validDraft(trip.TypeIndividual)); err != nil {
			t.Fatalf("failed to create trip: %v", err)
		}
	}

	first, err := service.List(ctx, trip.ListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if first.NextCursor == "" {
		t.Fatal("expected a next cursor")
	}

	if err := service.Delete(ctx, first.NextCursor); err != nil {
		t.Fatalf("failed to delete cursor trip: %v", err)
	}

	page, err := service.List(ctx, trip.ListOptions{Limit: 2, Cursor: first.NextCursor})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page.Items) != 0 || page.NextCursor != "" {
		t.Errorf("expected empty page for stale cursor, got %d items", len(page.Items))
	}
}

func TestService_Create_SanitizesExtraFields(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	draft := validDraft(trip.TypeIndividual)
	draft.ExtraFields = json.RawMessage(
		`[{"key":"hero","label":"Hero","type":"IMAGE","imageValue":"new_file","_file":"upload-1"}]`)

	created, err := service.Create(ctx, draft)
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	var nodes []extrafields.Node
	if err := json.Unmarshal(created.ExtraFields, &nodes); err != nil {
		t.Fatalf("failed to decode stored extra fields: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(nodes))
	}
	if nodes[0].PendingFile != "" {
		t.Errorf("transient file handle %q persisted", nodes[0].PendingFile)
	}
}

func TestService_Create_RejectsInvalidExtraFields(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	nested := validDraft(trip.TypeIndividual)
	nested.ExtraFields = json.RawMessage(
		`[{"key":"r","label":"R","type":"REPEATER","rows":[[{"key":"r2","label":"R2","type":"REPEATER"}]]}]`)

	_, err := service.Create(ctx, nested)
	var verr *trip.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Errors[0].Field != "extraFields" {
		t.Errorf("unexpected field %q", verr.Errors[0].Field)
	}

	garbage := validDraft(trip.TypeIndividual)
	garbage.ExtraFields = json.RawMessage(`{"not":"a tree"}`)
	if _, err := service.Create(ctx, garbage); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for malformed tree, got %v", err)
	}
}
