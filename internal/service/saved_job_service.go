package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/repository"
)

// SavedJobService keeps each user's bookmarked postings.
type SavedJobService struct {
	saved  repository.SavedJobRepository
	jobs   repository.JobRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewSavedJobService(saved repository.SavedJobRepository, jobs repository.JobRepository, logger *zap.Logger) *SavedJobService {
	return &SavedJobService{
		saved: saved, jobs: jobs, logger: logger,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Save bookmarks an existing job. Saving twice is a no-op.
func (s *SavedJobService) Save(ctx context.Context, caller Caller, jobID string) error {
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		return err
	}
	if err := s.saved.Save(ctx, caller.ID, jobID, s.now()); err != nil {
		return err
	}
	s.logger.Debug("job saved", zap.String("user_id", caller.ID), zap.String("job_id", jobID))
	return nil
}

func (s *SavedJobService) Unsave(ctx context.Context, caller Caller, jobID string) error {
	return s.saved.Remove(ctx, caller.ID, jobID)
}

// List pages through the caller's saved jobs, including ones since
// deactivated.
func (s *SavedJobService) List(ctx context.Context, caller Caller, page, limit int) (domain.Page[*domain.Job], error) {
	page, limit = domain.NormalizePaging(page, limit)
	items, total, err := s.saved.List(ctx, caller.ID, page, limit)
	if err != nil {
		return domain.Page[*domain.Job]{}, err
	}
	return domain.NewPage(items, total, page, limit), nil
}
