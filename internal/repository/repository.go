package repository

import (
	"context"
	"time"

	"github.com/notifyhub/jobboard/internal/domain"
)

// The pgx implementations live in pg_*.go.
// Tests use hand-written in-memory mocks (mock_*.go).

type UserRepository interface {
	Upsert(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, int, error)
	// Delete cascades to the user's alerts, saved jobs, reviews and company
	// profile. It yields domain.ErrUserInUse while jobs or applications
	// still reference the user.
	Delete(ctx context.Context, id string) error
}

type JobRepository interface {
	Create(ctx context.Context, j *domain.Job) error
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	Update(ctx context.Context, j *domain.Job) error
	Deactivate(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	List(ctx context.Context, filter domain.JobFilter) ([]*domain.Job, int, error)
	// ListActive returns up to limit active jobs, newest first.
	ListActive(ctx context.Context, limit int) ([]*domain.Job, error)
	// ListActiveSince returns active jobs created strictly after since, oldest first.
	ListActiveSince(ctx context.Context, since time.Time) ([]*domain.Job, error)
	// StatsByType counts every posting per job type.
	StatsByType(ctx context.Context) ([]domain.JobTypeStat, error)
	CountByCompany(ctx context.Context, company string) (domain.CompanyStats, error)
}

type SavedJobRepository interface {
	// Save is idempotent; saving an already saved job is not an error.
	Save(ctx context.Context, userID, jobID string, at time.Time) error
	// Remove reports domain.ErrJobNotFound when the job was not saved.
	Remove(ctx context.Context, userID, jobID string) error
	// List returns the saved jobs, most recently saved first.
	List(ctx context.Context, userID string, page, limit int) ([]*domain.Job, int, error)
}

type CompanyRepository interface {
	// Create yields domain.ErrCompanyExists when the employer already has a profile.
	Create(ctx context.Context, p *domain.CompanyProfile) error
	GetByID(ctx context.Context, id string) (*domain.CompanyProfile, error)
	GetByEmployer(ctx context.Context, employer string) (*domain.CompanyProfile, error)
	Update(ctx context.Context, p *domain.CompanyProfile) error

	// AddReview yields domain.ErrAlreadyReviewed on a second review by the same user.
	AddReview(ctx context.Context, r *domain.Review) error
	GetReview(ctx context.Context, companyID, reviewID string) (*domain.Review, error)
	UpdateReview(ctx context.Context, r *domain.Review) error
	DeleteReview(ctx context.Context, companyID, reviewID string) error
	// ListReviews returns a company's reviews, newest first.
	ListReviews(ctx context.Context, companyID string) ([]*domain.Review, error)
}

type ApplicationRepository interface {
	// Create inserts the application and increments the job's applicant
	// counter in one transaction. A second application for the same
	// (applicant, job) pair yields domain.ErrAlreadyApplied.
	Create(ctx context.Context, a *domain.Application) error
	GetByID(ctx context.Context, id string) (*domain.Application, error)
	FindByApplicantAndJob(ctx context.Context, applicant, jobID string) (*domain.Application, error)
	List(ctx context.Context, filter domain.ApplicationFilter) ([]*domain.Application, int, error)
	// UpdateStatus sets status (and rating when non-nil) in a single write.
	UpdateStatus(ctx context.Context, id string, status domain.Status, rating *int, at time.Time) error
	// AddNote appends a note atomically and returns the full note list.
	AddNote(ctx context.Context, id string, note domain.Note, at time.Time) ([]domain.Note, error)
	// Stats aggregates applications; an empty owner means every job.
	Stats(ctx context.Context, owner string) (*domain.ApplicationStats, error)
}

type AlertRepository interface {
	Create(ctx context.Context, a *domain.JobAlert) error
	GetByID(ctx context.Context, id string) (*domain.JobAlert, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.JobAlert, error)
	// Update writes the user-editable fields. LastSent is left alone.
	Update(ctx context.Context, a *domain.JobAlert) error
	Delete(ctx context.Context, id string) error
	// MarkSent stamps last_sent without touching anything else on the row.
	MarkSent(ctx context.Context, id string, at time.Time) error
	// ListActiveByFrequency returns active alerts of one frequency across all users.
	ListActiveByFrequency(ctx context.Context, f domain.Frequency) ([]*domain.JobAlert, error)
}
