package reservation_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tripdesk/tripdesk/internal/reservation"
)

func newTestService() *reservation.Service {
	return reservation.NewService(reservation.ServiceConfig{
		Repository: reservation.NewInMemoryRepository(),
		Logger:     zerolog.Nop(),
	})
}

func pendingDraft(tripID, termID string, paid, unpaid int) reservation.Reservation {
	return reservation.Reservation{
		TripID:                  tripID,
		TermID:                  termID,
		InstitutionName:         "SP nr 5 w Krakowie",
		Email:                   "sekretariat@sp5.krakow.pl",
		PhoneNumber:             "+48 12 555 01 02",
		Voivodeship:             "MALOPOLSKIE",
		TotalParticipantsCount:  paid + unpaid,
		PaidParticipantsCount:   paid,
		UnpaidParticipantsCount: unpaid,
		GrandTotalPrice:         float64(paid) * 120,
	}
}

func TestService_Create(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	res, err := svc.Create(ctx, pendingDraft("trp_1", "trm_1", 40, 3))
	if err != nil {
		t.Fatalf("failed to create reservation: %v", err)
	}
	if !strings.HasPrefix(res.ID, "rsv_") {
		t.Errorf("expected reservation ID prefix 'rsv_', got %q", res.ID)
	}
	if res.Status != reservation.StatusPending {
		t.Errorf("expected new reservation to be PENDING, got %q", res.Status)
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	draft := pendingDraft("", "trm_1", 10, 0)
	if _, err := svc.Create(ctx, draft); err == nil {
		t.Error("expected missing trip ID to be rejected")
	}

	draft = pendingDraft("trp_1", "trm_1", 10, 0)
	draft.Email = " "
	if _, err := svc.Create(ctx, draft); err == nil {
		t.Error("expected missing email to be rejected")
	}

	draft = pendingDraft("trp_1", "trm_1", 10, 2)
	draft.TotalParticipantsCount = 13
	if _, err := svc.Create(ctx, draft); err == nil {
		t.Error("expected mismatched participant counts to be rejected")
	}
}

func TestService_Approve(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	res, err := svc.Create(ctx, pendingDraft("trp_1", "trm_1", 40, 3))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	approved, err := svc.Approve(ctx, res.ID, "usr_admin")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != reservation.StatusConfirmed {
		t.Errorf("expected CONFIRMED, got %q", approved.Status)
	}
	if approved.LastModifiedBy != "usr_admin" {
		t.Errorf("expected modifier to be recorded, got %q", approved.LastModifiedBy)
	}

	// Approving again is rejected, CONFIRMED is not PENDING.
	if _, err := svc.Approve(ctx, res.ID, "usr_admin"); !errors.Is(err, reservation.ErrNotPending) {
		t.Errorf("expected ErrNotPending, got %v", err)
	}
}

func TestService_Cancel(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	res, err := svc.Create(ctx, pendingDraft("trp_1", "trm_1", 40, 3))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, res.ID, "usr_admin")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != reservation.StatusCancelled {
		t.Errorf("expected CANCELLED, got %q", cancelled.Status)
	}

	if _, err := svc.Cancel(ctx, res.ID, "usr_admin"); !errors.Is(err, reservation.ErrAlreadyCancelled) {
		t.Errorf("expected ErrAlreadyCancelled, got %v", err)
	}
	// A cancelled reservation cannot be approved either.
	if _, err := svc.Approve(ctx, res.ID, "usr_admin"); !errors.Is(err, reservation.ErrNotPending) {
		t.Errorf("expected ErrNotPending, got %v", err)
	}
}

func TestService_Occupancy_IgnoresCancelled(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, pendingDraft("trp_1", "trm_1", 40, 3))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(ctx, pendingDraft("trp_1", "trm_1", 10, 1)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// An enquiry without a term holds no seats.
	if _, err := svc.Create(ctx, pendingDraft("trp_1", "", 5, 0)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	occ, err := svc.Occupancy(ctx, "trp_1")
	if err != nil {
		t.Fatalf("occupancy failed: %v", err)
	}
	if got := occ["trm_1"]; got.ReservedPaid != 50 || got.ReservedFree != 4 {
		t.Errorf("expected 50 paid / 4 free, got %d/%d", got.ReservedPaid, got.ReservedFree)
	}

	// Cancelling releases the seats.
	if _, err := svc.Cancel(ctx, first.ID, "usr_admin"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	occ, err = svc.Occupancy(ctx, "trp_1")
	if err != nil {
		t.Fatalf("occupancy failed: %v", err)
	}
	if got := occ["trm_1"]; got.ReservedPaid != 10 || got.ReservedFree != 1 {
		t.Errorf("expected 10 paid / 1 free after cancel, got %d/%d", got.ReservedPaid, got.ReservedFree)
	}
}

func TestService_GroupByTerm(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, pendingDraft("trp_1", "trm_1", 10, 0)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(ctx, pendingDraft("trp_1", "trm_2", 20, 0)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(ctx, pendingDraft("trp_1", "", 5, 0)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	grouped, err := svc.GroupByTerm(ctx, "trp_1")
	if err != nil {
		t.Fatalf("group failed: %v", err)
	}
	if len(grouped["trm_1"]) != 1 || len(grouped["trm_2"]) != 1 || len(grouped[""]) != 1 {
		t.Errorf("unexpected grouping: %v", grouped)
	}
}

func TestService_ListByStatus_CursorWalksAllPages(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created := make(map[string]bool)
	for i := 0; i < 5; i++ {
		res, err := svc.Create(ctx, pendingDraft("trp_1", "trm_1", 10+i, 0))
		if err != nil {
			t.Fatalf("failed to create reservation: %v", err)
		}
		created[res.ID] = true
	}

	seen := make(map[string]bool)
	cursor := ""
	for pages := 0; ; pages++ {
		if pages > 10 {
			t.Fatal("pagination did not terminate")
		}

		page, next, err := svc.ListPending(ctx, 2, cursor)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		for _, res := range page {
			if seen[res.ID] {
				t.Fatalf("reservation %s returned twice", res.ID)
			}
			seen[res.ID] = true
		}

		if next == "" {
			break
		}
		cursor = next
	}

	if len(seen) != len(created) {
		t.Errorf("expected %d reservations across pages, got %d", len(created), len(seen))
	}
}

func TestService_ListByStatus_UnknownStatus(t *testing.T) {
	svc := newTestService()

	if _, _, err := svc.ListByStatus(context.Background(), "MAYBE", 10, ""); err == nil {
		t.Error("expected unknown status to be rejected")
	}
}
