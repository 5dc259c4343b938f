package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/repository"
	"github.com/notifyhub/jobboard/internal/service"
)

func TestUserService_SyncWelcomesNewProfiles(t *testing.T) {
	users := repository.NewMockUserRepository()
	mailer := &fakeMailer{}
	svc := service.NewUserService(users, mailer, zap.NewNop())
	ctx := context.Background()

	u, err := svc.Sync(ctx, seekerS1)
	if err != nil {
		t.Fatal(err)
	}
	if u.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be stamped")
	}
	if mailer.count() != 1 || mailer.sent[0].to != "sam@example.com" {
		t.Fatalf("expected one welcome email, got %+v", mailer.sent)
	}

	renamed := seekerS1
	renamed.Name = "Samuel"
	again, err := svc.Sync(ctx, renamed)
	if err != nil {
		t.Fatal(err)
	}
	if again.Name != "Samuel" || !again.CreatedAt.Equal(u.CreatedAt) {
		t.Fatalf("unexpected profile %+v", again)
	}
	if mailer.count() != 1 {
		t.Fatal("existing profile must not be welcomed again")
	}

	bad := seekerS2
	bad.Role = "recruiter"
	if _, err := svc.Sync(ctx, bad); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestUserService_EnsureOnlyOnce(t *testing.T) {
	users := repository.NewMockUserRepository()
	mailer := &fakeMailer{err: domain.ErrQueueFull}
	svc := service.NewUserService(users, mailer, zap.NewNop())
	ctx := context.Background()

	if err := svc.Ensure(ctx, employerE1); err != nil {
		t.Fatalf("mail failure must not fail ensure: %v", err)
	}
	users.UpsertErr = errors.New("db down")
	if err := svc.Ensure(ctx, employerE1); err != nil {
		t.Fatalf("second ensure should be served from cache: %v", err)
	}

	me, err := svc.Me(ctx, caller(employerE1))
	if err != nil {
		t.Fatal(err)
	}
	if me.Email != "eve@example.com" {
		t.Fatalf("unexpected profile %+v", me)
	}
	if _, err := svc.Me(ctx, caller(seekerS2)); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

// slowUserRepo widens the window between the existence check and the
// upsert so concurrent first requests overlap.
type slowUserRepo struct {
	*repository.MockUserRepository
}

func (r slowUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	time.Sleep(20 * time.Millisecond)
	return r.MockUserRepository.GetByID(ctx, id)
}

func TestUserService_ConcurrentEnsureWelcomesOnce(t *testing.T) {
	mailer := &fakeMailer{}
	svc := service.NewUserService(slowUserRepo{repository.NewMockUserRepository()}, mailer, zap.NewNop())
	ctx := context.Background()

	start := make(chan struct{})
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs <- svc.Ensure(ctx, seekerS1)
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("ensure: %v", err)
		}
	}
	if mailer.count() != 1 {
		t.Fatalf("expected one welcome email, got %d", mailer.count())
	}
}

func TestUserService_AdminListAndDelete(t *testing.T) {
	users := repository.NewMockUserRepository()
	mailer := &fakeMailer{}
	svc := service.NewUserService(users, mailer, zap.NewNop())
	ctx := context.Background()
	admin := service.Caller{ID: "A1", Role: domain.RoleAdmin}

	for _, u := range []domain.User{employerE1, employerE2, seekerS1, seekerS2} {
		if err := svc.Ensure(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := svc.List(ctx, caller(employerE1), domain.UserFilter{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for a non-admin, got %v", err)
	}
	all, err := svc.List(ctx, admin, domain.UserFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if all.Total != 4 {
		t.Fatalf("expected 4 users, got %+v", all)
	}
	role := domain.RoleEmployer
	employers, err := svc.List(ctx, admin, domain.UserFilter{Role: &role, Page: 1, Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if employers.Total != 2 || len(employers.Data) != 1 || employers.Data[0].Role != domain.RoleEmployer {
		t.Fatalf("unexpected employer page %+v", employers)
	}
	bad := domain.Role("recruiter")
	if _, err := svc.List(ctx, admin, domain.UserFilter{Role: &bad}); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}

	got, err := svc.Get(ctx, "S2")
	if err != nil || got.Name != "Sue" {
		t.Fatalf("get: %+v, %v", got, err)
	}

	if err := svc.Delete(ctx, caller(seekerS1), "S2"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for a non-admin, got %v", err)
	}
	users.DeleteErr = domain.ErrUserInUse
	if err := svc.Delete(ctx, admin, "E1"); !errors.Is(err, domain.ErrUserInUse) {
		t.Fatalf("expected ErrUserInUse, got %v", err)
	}
	users.DeleteErr = nil

	if err := svc.Delete(ctx, admin, "S2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, "S2"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
	}
	if err := svc.Delete(ctx, admin, "S2"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on second delete, got %v", err)
	}

	// A deleted user coming back with a valid token gets a fresh profile.
	before := mailer.count()
	if err := svc.Ensure(ctx, seekerS2); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, "S2"); err != nil {
		t.Fatalf("expected profile to be recreated, got %v", err)
	}
	if mailer.count() != before+1 {
		t.Fatal("recreated profile should be welcomed")
	}
}
