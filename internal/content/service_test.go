package content_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tripdesk/tripdesk/internal/content"
	"github.com/tripdesk/tripdesk/internal/extrafields"
)

func TestService_Create(t *testing.T) {
	svc := content.NewService(content.NewInMemoryRepository())
	ctx := context.Background()

	img := extrafields.PendingImageValue
	page, err := svc.Create(ctx, content.Draft{
		Title:   "O nas",
		Content: "<p>Jesteśmy biurem podróży.</p>",
		ExtraFields: []extrafields.Node{
			{Key: "banner", Type: extrafields.TypeImage, ImageValue: &img, PendingFile: "banner.jpg"},
		},
	})
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}

	if !strings.HasPrefix(page.ID, "pg_") {
		t.Errorf("expected page ID prefix 'pg_', got %q", page.ID)
	}
	if page.Slug != "o-nas" {
		t.Errorf("expected slug 'o-nas', got %q", page.Slug)
	}
	if page.Type != content.TypePage || page.Status != content.StatusDraft {
		t.Errorf("expected PAGE/DRAFT defaults, got %s/%s", page.Type, page.Status)
	}
	if page.ExtraFields[0].PendingFile != "" {
		t.Error("expected file handles to be stripped before storage")
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc := content.NewService(content.NewInMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Create(ctx, content.Draft{Title: "  "}); err == nil {
		t.Error("expected empty title to be rejected")
	}

	if _, err := svc.Create(ctx, content.Draft{Title: "O nas", Status: "STAGED"}); err == nil {
		t.Error("expected unknown status to be rejected")
	}

	_, err := svc.Create(ctx, content.Draft{
		Title: "O nas",
		ExtraFields: []extrafields.Node{{
			Key: "outer", Type: extrafields.TypeRepeater,
			Rows: [][]extrafields.Node{
				{{Key: "inner", Type: extrafields.TypeRepeater}},
			},
		}},
	})
	if err == nil {
		t.Error("expected nested repeater to be rejected")
	}
}

func TestService_Update(t *testing.T) {
	svc := content.NewService(content.NewInMemoryRepository())
	ctx := context.Background()

	page, err := svc.Create(ctx, content.Draft{Title: "O nas"})
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}

	updated, err := svc.Update(ctx, page.ID, content.Draft{
		Title:  "Kontakt",
		Status: content.StatusPublished,
	})
	if err != nil {
		t.Fatalf("failed to update page: %v", err)
	}
	if updated.Slug != "kontakt" {
		t.Errorf("expected slug to follow the title, got %q", updated.Slug)
	}
	if updated.Status != content.StatusPublished {
		t.Errorf("expected PUBLISHED, got %q", updated.Status)
	}
	if !updated.CreatedAt.Equal(page.CreatedAt) {
		t.Error("expected CreatedAt to be preserved")
	}
}

func TestService_List_FiltersByStatus(t *testing.T) {
	svc := content.NewService(content.NewInMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Create(ctx, content.Draft{Title: "Szkic"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(ctx, content.Draft{Title: "Regulamin", Status: content.StatusPublished}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	published, err := svc.List(ctx, content.StatusPublished)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(published) != 1 || published[0].Title != "Regulamin" {
		t.Errorf("expected only the published page, got %+v", published)
	}

	all, err := svc.List(ctx, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 pages, got %d", len(all))
	}
}

func TestService_Delete(t *testing.T) {
	svc := content.NewService(content.NewInMemoryRepository())
	ctx := context.Background()

	page, err := svc.Create(ctx, content.Draft{Title: "O nas"})
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}

	if err := svc.Delete(ctx, page.ID); err != nil {
		t.Fatalf("failed to delete page: %v", err)
	}
	if err := svc.Delete(ctx, page.ID); !errors.Is(err, content.ErrPageNotFound) {
		t.Errorf("expected ErrPageNotFound, got %v", err)
	}
}
