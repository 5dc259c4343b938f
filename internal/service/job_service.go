package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/realtime"
	"github.com/notifyhub/jobboard/internal/repository"
)

type JobService struct {
	jobs     repository.JobRepository
	alerts   repository.AlertRepository
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewJobService(
	jobs repository.JobRepository,
	alerts repository.AlertRepository,
	notifier Notifier,
	logger *zap.Logger,
) *JobService {
	return &JobService{
		jobs: jobs, alerts: alerts, notifier: notifier, logger: logger,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Create posts a job owned by caller, announces it to every open connection
// and pushes a match to owners of instant alerts it satisfies.
func (s *JobService) Create(ctx context.Context, caller Caller, req domain.JobRequest) (*domain.Job, error) {
	if caller.Role != domain.RoleEmployer && !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	job := &domain.Job{
		ID:        uuid.NewString(),
		Company:   caller.ID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyJobRequest(job, req)
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	s.logger.Info("job posted", zap.String("job_id", job.ID), zap.String("company", caller.ID))

	s.notifier.Broadcast(realtime.EventNewJobPosted, JobPostedEvent{JobID: job.ID, Title: job.Title})
	s.notifyInstantAlerts(ctx, job)
	return job, nil
}

func (s *JobService) notifyInstantAlerts(ctx context.Context, job *domain.Job) {
	alerts, err := s.alerts.ListActiveByFrequency(ctx, domain.FrequencyInstant)
	if err != nil {
		s.logger.Warn("instant alert lookup failed", zap.String("job_id", job.ID), zap.Error(err))
		return
	}
	seen := make(map[string]bool)
	var owners []string
	for _, a := range alerts {
		if a.User == job.Company || seen[a.User] || !a.Matches(job) {
			continue
		}
		seen[a.User] = true
		owners = append(owners, a.User)
	}
	if len(owners) > 0 {
		s.notifier.NotifyMany(owners, realtime.EventJobAlertMatch, JobPostedEvent{JobID: job.ID, Title: job.Title})
	}
}

// Get returns a job and counts the view.
func (s *JobService) Get(ctx context.Context, id string) (*domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.jobs.IncrementViews(ctx, id); err != nil {
		s.logger.Warn("view count not updated", zap.String("job_id", id), zap.Error(err))
	} else {
		job.Views++
	}
	return job, nil
}

// Search pages through active jobs matching f. Company is ignored here;
// ListMine is the owner-scoped listing.
func (s *JobService) Search(ctx context.Context, f domain.JobFilter) (domain.Page[*domain.Job], error) {
	f.Company = ""
	return s.list(ctx, f)
}

// ListMine pages through every job the caller posted, active or not.
func (s *JobService) ListMine(ctx context.Context, caller Caller, page, limit int) (domain.Page[*domain.Job], error) {
	return s.list(ctx, domain.JobFilter{Company: caller.ID, Page: page, Limit: limit})
}

func (s *JobService) Update(ctx context.Context, caller Caller, id string, req domain.JobRequest) (*domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.canManage(job) {
		return nil, domain.ErrForbidden
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	applyJobRequest(job, req)
	job.UpdatedAt = s.now()
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Delete deactivates the job. Applications keep pointing at it.
func (s *JobService) Delete(ctx context.Context, caller Caller, id string) error {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !caller.canManage(job) {
		return domain.ErrForbidden
	}
	return s.jobs.Deactivate(ctx, id)
}

// Stats counts postings per job type with their average minimum salary.
func (s *JobService) Stats(ctx context.Context) ([]domain.JobTypeStat, error) {
	return s.jobs.StatsByType(ctx)
}

func (s *JobService) list(ctx context.Context, f domain.JobFilter) (domain.Page[*domain.Job], error) {
	f.Page, f.Limit = domain.NormalizePaging(f.Page, f.Limit)
	if f.JobType != nil && !f.JobType.IsValid() {
		return domain.Page[*domain.Job]{}, domain.ErrInvalidJobType
	}
	items, total, err := s.jobs.List(ctx, f)
	if err != nil {
		return domain.Page[*domain.Job]{}, err
	}
	return domain.NewPage(items, total, f.Page, f.Limit), nil
}

func applyJobRequest(job *domain.Job, req domain.JobRequest) {
	job.Title = req.Title
	job.Description = req.Description
	job.Responsibilities = req.Responsibilities
	job.Qualifications = req.Qualifications
	job.JobType = req.JobType
	job.Location = req.Location
	job.Salary = req.Salary
	job.Remote = req.Remote
	job.Tags = req.Tags
	job.ExpiresAt = req.ExpiresAt
}
