package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/mail"
	"github.com/notifyhub/jobboard/internal/realtime"
	"github.com/notifyhub/jobboard/internal/repository"
)

// ApplicationService owns the application workflow: apply, status
// transitions and employer notes. Each mutation commits first; the email
// and the realtime push that follow are best effort and never undo it.
type ApplicationService struct {
	apps     repository.ApplicationRepository
	jobs     repository.JobRepository
	users    repository.UserRepository
	notifier Notifier
	mailer   Mailer
	logger   *zap.Logger
	now      func() time.Time
}

func NewApplicationService(
	apps repository.ApplicationRepository,
	jobs repository.JobRepository,
	users repository.UserRepository,
	notifier Notifier,
	mailer Mailer,
	logger *zap.Logger,
) *ApplicationService {
	return &ApplicationService{
		apps: apps, jobs: jobs, users: users,
		notifier: notifier, mailer: mailer, logger: logger,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Apply records caller's application to jobID, then tells the employer by
// email and push.
func (s *ApplicationService) Apply(ctx context.Context, caller Caller, jobID string, req domain.ApplyRequest) (*domain.Application, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsActive {
		return nil, domain.ErrJobInactive
	}

	// Pre-write duplicate check; the unique index catches the race.
	_, err = s.apps.FindByApplicantAndJob(ctx, caller.ID, jobID)
	switch {
	case err == nil:
		return nil, domain.ErrAlreadyApplied
	case !errors.Is(err, domain.ErrAppNotFound):
		return nil, err
	}

	applicant, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	app := &domain.Application{
		ID:          uuid.NewString(),
		JobID:       job.ID,
		Applicant:   caller.ID,
		CoverLetter: req.CoverLetter,
		Resume:      req.Resume,
		Status:      domain.StatusApplied,
		Notes:       []domain.Note{},
		Interviews:  []domain.Interview{},
		AppliedAt:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, err
	}

	log := s.logger.With(zap.String("application_id", app.ID), zap.String("job_id", job.ID))
	log.Info("application created", zap.String("applicant", caller.ID))

	if employer, err := s.users.GetByID(ctx, job.Company); err != nil {
		log.Warn("employer email skipped", zap.Error(err))
	} else {
		subject, html, err := mail.NewApplication(job.Title, applicant.Name)
		s.sendEmail(ctx, log, employer.Email, subject, html, err)
	}

	s.notifier.Notify(job.Company, realtime.EventNewApplication, NewApplicationEvent{
		JobID:         job.ID,
		JobTitle:      job.Title,
		ApplicantName: applicant.Name,
		ApplicationID: app.ID,
	})
	return app, nil
}

// UpdateStatus moves an application to req.Status. Only the job's owner may
// do this. Any valid status is accepted; Status.CanTransitionTo is advisory.
func (s *ApplicationService) UpdateStatus(ctx context.Context, caller Caller, appID string, req domain.StatusUpdateRequest) (*domain.Application, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	app, job, err := s.loadOwned(ctx, caller, appID)
	if err != nil {
		return nil, err
	}

	log := s.logger.With(zap.String("application_id", app.ID), zap.String("status", string(req.Status)))
	if app.Status != req.Status && !app.Status.CanTransitionTo(req.Status) {
		log.Info("status set outside the dashboard transitions", zap.String("from", string(app.Status)))
	}

	now := s.now()
	if err := s.apps.UpdateStatus(ctx, app.ID, req.Status, req.Rating, now); err != nil {
		return nil, err
	}
	app.Status = req.Status
	if req.Rating != nil {
		app.Rating = req.Rating
	}
	app.UpdatedAt = now
	log.Info("application status updated")

	if applicant, err := s.users.GetByID(ctx, app.Applicant); err != nil {
		log.Warn("applicant email skipped", zap.Error(err))
	} else {
		subject, html, err := mail.StatusUpdate(job.Title, string(req.Status))
		s.sendEmail(ctx, log, applicant.Email, subject, html, err)
	}

	s.notifier.Notify(app.Applicant, realtime.EventApplicationStatusUpdate, StatusUpdateEvent{
		JobTitle:      job.Title,
		Status:        req.Status,
		ApplicationID: app.ID,
	})
	return app.WithNextStatuses(), nil
}

// AddNote appends an employer note and pushes the full note list back to
// the job owner's client.
func (s *ApplicationService) AddNote(ctx context.Context, caller Caller, appID string, req domain.NoteRequest) ([]domain.Note, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	app, job, err := s.loadOwned(ctx, caller, appID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	notes, err := s.apps.AddNote(ctx, app.ID, domain.Note{By: caller.ID, Text: req.Text, CreatedAt: now}, now)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(job.Company, realtime.EventApplicationNoteAdded, NoteAddedEvent{
		ApplicationID: app.ID,
		Notes:         notes,
	})
	return notes, nil
}

// GetByID returns an application to its applicant, the job owner or an admin.
// The owner's copy lists the statuses the dashboard offers next.
func (s *ApplicationService) GetByID(ctx context.Context, caller Caller, appID string) (*domain.Application, error) {
	app, err := s.apps.GetByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app.Applicant == caller.ID {
		return app, nil
	}
	job, err := s.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	switch {
	case job.Company == caller.ID:
		return app.WithNextStatuses(), nil
	case caller.IsAdmin():
		return app, nil
	}
	return nil, domain.ErrForbidden
}

// ListMine pages through the caller's own applications.
func (s *ApplicationService) ListMine(ctx context.Context, caller Caller, f domain.ApplicationFilter) (domain.Page[*domain.Application], error) {
	f.Applicant = caller.ID
	f.JobID = ""
	return s.list(ctx, f)
}

// ListForJob pages through the applicants of a job the caller manages.
func (s *ApplicationService) ListForJob(ctx context.Context, caller Caller, jobID string, f domain.ApplicationFilter) (domain.Page[*domain.Application], error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return domain.Page[*domain.Application]{}, err
	}
	if !caller.canManage(job) {
		return domain.Page[*domain.Application]{}, domain.ErrForbidden
	}
	f.JobID = jobID
	f.Applicant = ""
	page, err := s.list(ctx, f)
	if err != nil {
		return page, err
	}
	if job.Company == caller.ID {
		for _, a := range page.Data {
			a.WithNextStatuses()
		}
	}
	return page, nil
}

// Stats aggregates applications across the caller's jobs, or all jobs for an admin.
func (s *ApplicationService) Stats(ctx context.Context, caller Caller) (*domain.ApplicationStats, error) {
	switch caller.Role {
	case domain.RoleAdmin:
		return s.apps.Stats(ctx, "")
	case domain.RoleEmployer:
		return s.apps.Stats(ctx, caller.ID)
	default:
		return nil, domain.ErrForbidden
	}
}

func (s *ApplicationService) list(ctx context.Context, f domain.ApplicationFilter) (domain.Page[*domain.Application], error) {
	f.Page, f.Limit = domain.NormalizePaging(f.Page, f.Limit)
	if f.Status != nil && !f.Status.IsValid() {
		return domain.Page[*domain.Application]{}, domain.ErrInvalidStatus
	}
	items, total, err := s.apps.List(ctx, f)
	if err != nil {
		return domain.Page[*domain.Application]{}, err
	}
	return domain.NewPage(items, total, f.Page, f.Limit), nil
}

// loadOwned fetches an application and its job, requiring caller to own the job.
func (s *ApplicationService) loadOwned(ctx context.Context, caller Caller, appID string) (*domain.Application, *domain.Job, error) {
	app, err := s.apps.GetByID(ctx, appID)
	if err != nil {
		return nil, nil, err
	}
	job, err := s.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, nil, err
	}
	if job.Company != caller.ID {
		return nil, nil, domain.ErrForbidden
	}
	return app, job, nil
}

func (s *ApplicationService) sendEmail(ctx context.Context, log *zap.Logger, to, subject, html string, renderErr error) {
	if renderErr != nil {
		log.Error("email render failed", zap.Error(renderErr))
		return
	}
	if to == "" {
		log.Debug("email skipped: recipient has no address")
		return
	}
	if err := s.mailer.Send(ctx, to, subject, html); err != nil {
		log.Warn("email not queued", zap.String("subject", subject), zap.Error(err))
	}
}
