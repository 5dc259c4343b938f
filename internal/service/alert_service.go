package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/repository"
)

// recommendationPool caps how many recent active jobs are scanned for
// recommendations.
const recommendationPool = 500

type AlertService struct {
	alerts repository.AlertRepository
	jobs   repository.JobRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewAlertService(alerts repository.AlertRepository, jobs repository.JobRepository, logger *zap.Logger) *AlertService {
	return &AlertService{
		alerts: alerts, jobs: jobs, logger: logger,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *AlertService) Create(ctx context.Context, caller Caller, req domain.AlertRequest) (*domain.JobAlert, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	a := &domain.JobAlert{
		ID:        uuid.NewString(),
		User:      caller.ID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyAlertRequest(a, req)
	if err := s.alerts.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AlertService) List(ctx context.Context, caller Caller) ([]*domain.JobAlert, error) {
	alerts, err := s.alerts.ListByUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []*domain.JobAlert{}
	}
	return alerts, nil
}

func (s *AlertService) Update(ctx context.Context, caller Caller, id string, req domain.AlertRequest) (*domain.JobAlert, error) {
	a, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	applyAlertRequest(a, req)
	a.UpdatedAt = s.now()
	if err := s.alerts.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AlertService) Delete(ctx context.Context, caller Caller, id string) error {
	if _, err := s.owned(ctx, caller, id); err != nil {
		return err
	}
	return s.alerts.Delete(ctx, id)
}

// Recommended pages through recent active jobs that match any of the
// caller's active alerts. With no active alerts every recent job qualifies.
func (s *AlertService) Recommended(ctx context.Context, caller Caller, page, limit int) (domain.Page[*domain.Job], error) {
	page, limit = domain.NormalizePaging(page, limit)

	alerts, err := s.alerts.ListByUser(ctx, caller.ID)
	if err != nil {
		return domain.Page[*domain.Job]{}, err
	}
	var active []*domain.JobAlert
	for _, a := range alerts {
		if a.IsActive {
			active = append(active, a)
		}
	}

	jobs, err := s.jobs.ListActive(ctx, recommendationPool)
	if err != nil {
		return domain.Page[*domain.Job]{}, err
	}

	matched := jobs
	if len(active) > 0 {
		matched = matched[:0:0]
		for _, j := range jobs {
			for _, a := range active {
				if a.Matches(j) {
					matched = append(matched, j)
					break
				}
			}
		}
	}

	total := len(matched)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return domain.NewPage(matched[start:end], total, page, limit), nil
}

func (s *AlertService) owned(ctx context.Context, caller Caller, id string) (*domain.JobAlert, error) {
	a, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.User != caller.ID {
		return nil, domain.ErrForbidden
	}
	return a, nil
}

func applyAlertRequest(a *domain.JobAlert, req domain.AlertRequest) {
	a.Keywords = req.Keywords
	a.JobTypes = req.JobTypes
	a.Location = req.Location
	a.MinSalary = req.MinSalary
	a.MaxSalary = req.MaxSalary
	a.Remote = req.Remote
	a.Frequency = req.Frequency
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
}
