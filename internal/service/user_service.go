package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/mail"
	"github.com/notifyhub/jobboard/internal/repository"
)

// UserService keeps the local profile table in step with token claims.
type UserService struct {
	users  repository.UserRepository
	mailer Mailer
	logger *zap.Logger
	now    func() time.Time

	// synced remembers ids already upserted by this process.
	synced sync.Map
	// ensuring collapses concurrent first requests for one id into a single Sync.
	ensuring singleflight.Group
}

func NewUserService(users repository.UserRepository, mailer Mailer, logger *zap.Logger) *UserService {
	return &UserService{
		users: users, mailer: mailer, logger: logger,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Sync upserts u from token claims. A welcome email goes out when the
// profile did not exist before.
func (s *UserService) Sync(ctx context.Context, u domain.User) (*domain.User, error) {
	if !u.Role.IsValid() {
		return nil, domain.ErrInvalidRole
	}
	existing, err := s.users.GetByID(ctx, u.ID)
	created := errors.Is(err, domain.ErrUserNotFound)
	if err != nil && !created {
		return nil, err
	}

	now := s.now()
	u.UpdatedAt = now
	u.CreatedAt = now
	if existing != nil {
		u.CreatedAt = existing.CreatedAt
	}
	if err := s.users.Upsert(ctx, &u); err != nil {
		return nil, err
	}
	s.synced.Store(u.ID, true)

	if created {
		s.logger.Info("profile created", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
		if u.Email != "" {
			subject, html, err := mail.Welcome(u.Name)
			if err == nil {
				err = s.mailer.Send(ctx, u.Email, subject, html)
			}
			if err != nil {
				s.logger.Warn("welcome email not queued", zap.String("user_id", u.ID), zap.Error(err))
			}
		}
	}
	return &u, nil
}

// Ensure syncs u unless this process has already done so. Concurrent
// calls for the same id share one Sync, so a new profile is welcomed once.
func (s *UserService) Ensure(ctx context.Context, u domain.User) error {
	if _, ok := s.synced.Load(u.ID); ok {
		return nil
	}
	_, err, _ := s.ensuring.Do(u.ID, func() (any, error) {
		if _, ok := s.synced.Load(u.ID); ok {
			return nil, nil
		}
		return s.Sync(ctx, u)
	})
	return err
}

func (s *UserService) Me(ctx context.Context, caller Caller) (*domain.User, error) {
	return s.users.GetByID(ctx, caller.ID)
}

// Get returns any user's profile.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// List pages through every profile, optionally by role. Admin only.
func (s *UserService) List(ctx context.Context, caller Caller, f domain.UserFilter) (domain.Page[*domain.User], error) {
	if !caller.IsAdmin() {
		return domain.Page[*domain.User]{}, domain.ErrForbidden
	}
	if f.Role != nil && !f.Role.IsValid() {
		return domain.Page[*domain.User]{}, domain.ErrInvalidRole
	}
	f.Page, f.Limit = domain.NormalizePaging(f.Page, f.Limit)
	items, total, err := s.users.List(ctx, f)
	if err != nil {
		return domain.Page[*domain.User]{}, err
	}
	return domain.NewPage(items, total, f.Page, f.Limit), nil
}

// Delete removes a profile along with its alerts, saved jobs, reviews and
// company page. Users that still own jobs or applications are refused with
// domain.ErrUserInUse. Admin only.
func (s *UserService) Delete(ctx context.Context, caller Caller, id string) error {
	if !caller.IsAdmin() {
		return domain.ErrForbidden
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.synced.Delete(id)
	s.logger.Info("profile deleted", zap.String("user_id", id), zap.String("by", caller.ID))
	return nil
}
