package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/repository"
	"github.com/notifyhub/jobboard/internal/service"
)

func TestAlertService_CRUD(t *testing.T) {
	alerts := repository.NewMockAlertRepository()
	svc := service.NewAlertService(alerts, repository.NewMockJobRepository(), zap.NewNop())
	ctx := context.Background()

	list, err := svc.List(ctx, caller(seekerS1))
	if err != nil {
		t.Fatal(err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", list)
	}

	a, err := svc.Create(ctx, caller(seekerS1), domain.AlertRequest{Keywords: []string{"go"}})
	if err != nil {
		t.Fatal(err)
	}
	if a.Frequency != domain.FrequencyWeekly || !a.IsActive || a.User != "S1" {
		t.Fatalf("unexpected alert %+v", a)
	}

	if _, err := svc.Create(ctx, caller(seekerS1), domain.AlertRequest{Frequency: "hourly"}); !errors.Is(err, domain.ErrInvalidFreq) {
		t.Fatalf("expected ErrInvalidFreq, got %v", err)
	}

	off := false
	req := domain.AlertRequest{Keywords: []string{"rust"}, Frequency: domain.FrequencyDaily, IsActive: &off}
	if _, err := svc.Update(ctx, caller(seekerS2), a.ID, req); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	updated, err := svc.Update(ctx, caller(seekerS1), a.ID, req)
	if err != nil {
		t.Fatal(err)
	}
	if updated.IsActive || updated.Frequency != domain.FrequencyDaily {
		t.Fatalf("unexpected alert %+v", updated)
	}

	if err := svc.Delete(ctx, caller(seekerS2), a.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, caller(seekerS1), a.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, caller(seekerS1), a.ID); !errors.Is(err, domain.ErrAlertNotFound) {
		t.Fatalf("expected ErrAlertNotFound, got %v", err)
	}
}

func TestAlertService_Recommended(t *testing.T) {
	alerts := repository.NewMockAlertRepository()
	jobs := repository.NewMockJobRepository()
	svc := service.NewAlertService(alerts, jobs, zap.NewNop())
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	titles := []string{"Go developer", "Java developer", "Golang SRE", "Designer"}
	for i, title := range titles {
		if err := jobs.Create(ctx, &domain.Job{
			ID: fmt.Sprintf("J%d", i), Title: title, Description: "role", Company: "E1",
			IsActive: true, CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatal(err)
		}
	}

	all, err := svc.Recommended(ctx, caller(seekerS1), 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if all.Total != len(titles) {
		t.Fatalf("without alerts every job qualifies, got %d", all.Total)
	}

	if _, err := svc.Create(ctx, caller(seekerS1), domain.AlertRequest{Keywords: []string{"go"}}); err != nil {
		t.Fatal(err)
	}
	page, err := svc.Recommended(ctx, caller(seekerS1), 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 || page.Pages != 2 || len(page.Data) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}

	beyond, err := svc.Recommended(ctx, caller(seekerS1), 5, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(beyond.Data) != 0 || beyond.Total != 2 {
		t.Fatalf("unexpected page %+v", beyond)
	}
}
