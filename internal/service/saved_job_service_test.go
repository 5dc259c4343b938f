package service_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/repository"
	"github.com/notifyhub/jobboard/internal/service"
)

func TestSavedJobService_SaveListUnsave(t *testing.T) {
	jobs := repository.NewMockJobRepository()
	svc := service.NewSavedJobService(repository.NewMockSavedJobRepository(jobs), jobs, zap.NewNop())
	ctx := context.Background()

	seedJob(t, jobs, "J1", "E1")
	seedJob(t, jobs, "J2", "E1")

	for _, id := range []string{"J1", "J2", "J1"} {
		if err := svc.Save(ctx, caller(seekerS1), id); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	if err := svc.Save(ctx, caller(seekerS1), "missing"); !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}

	page, err := svc.List(ctx, caller(seekerS1), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 || len(page.Data) != 2 {
		t.Fatalf("saving twice must not duplicate, got %+v", page)
	}

	// Deactivated postings stay on the list.
	if err := jobs.Deactivate(ctx, "J2"); err != nil {
		t.Fatal(err)
	}
	page, err = svc.List(ctx, caller(seekerS1), 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 || len(page.Data) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}

	other, err := svc.List(ctx, caller(seekerS2), 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if other.Total != 0 {
		t.Fatalf("saved jobs leaked across users: %+v", other)
	}

	if err := svc.Unsave(ctx, caller(seekerS1), "J1"); err != nil {
		t.Fatalf("unsave: %v", err)
	}
	if err := svc.Unsave(ctx, caller(seekerS1), "J1"); !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound on second unsave, got %v", err)
	}
	page, _ = svc.List(ctx, caller(seekerS1), 1, 10)
	if page.Total != 1 || page.Data[0].ID != "J2" {
		t.Fatalf("unexpected page after unsave %+v", page)
	}
}
