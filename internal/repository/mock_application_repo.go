package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/notifyhub/jobboard/internal/domain"
)

// MockApplicationRepository is a hand-written, in-memory
// ApplicationRepository for tests. When jobs is non-nil, Create bumps the
// job's applicant counter and Stats can scope by owner.
type MockApplicationRepository struct {
	mu   sync.RWMutex
	apps map[string]*domain.Application
	jobs *MockJobRepository

	CreateErr       error
	GetByIDErr      error
	UpdateStatusErr error
	AddNoteErr      error
}

func NewMockApplicationRepository(jobs *MockJobRepository) *MockApplicationRepository {
	return &MockApplicationRepository{
		apps: make(map[string]*domain.Application),
		jobs: jobs,
	}
}

func (m *MockApplicationRepository) Create(_ context.Context, a *domain.Application) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	for _, existing := range m.apps {
		if existing.Applicant == a.Applicant && existing.JobID == a.JobID {
			m.mu.Unlock()
			return domain.ErrAlreadyApplied
		}
	}
	m.apps[a.ID] = cloneApplication(a)
	m.mu.Unlock()

	if m.jobs != nil {
		m.jobs.IncrementApplicants(a.JobID)
	}
	return nil
}

func (m *MockApplicationRepository) GetByID(_ context.Context, id string) (*domain.Application, error) {
	if m.GetByIDErr != nil {
		return nil, m.GetByIDErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.apps[id]
	if !ok {
		return nil, domain.ErrAppNotFound
	}
	return cloneApplication(a), nil
}

func (m *MockApplicationRepository) FindByApplicantAndJob(_ context.Context, applicant, jobID string) (*domain.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.apps {
		if a.Applicant == applicant && a.JobID == jobID {
			return cloneApplication(a), nil
		}
	}
	return nil, domain.ErrAppNotFound
}

func (m *MockApplicationRepository) List(_ context.Context, f domain.ApplicationFilter) ([]*domain.Application, int, error) {
	m.mu.RLock()
	var matched []*domain.Application
	for _, a := range m.apps {
		if f.Applicant != "" && a.Applicant != f.Applicant {
			continue
		}
		if f.JobID != "" && a.JobID != f.JobID {
			continue
		}
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		matched = append(matched, cloneApplication(a))
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, k int) bool {
		return matched[i].AppliedAt.After(matched[k].AppliedAt)
	})
	total := len(matched)
	return paginate(matched, f.Page, f.Limit), total, nil
}

func (m *MockApplicationRepository) UpdateStatus(_ context.Context, id string, status domain.Status, rating *int, at time.Time) error {
	if m.UpdateStatusErr != nil {
		return m.UpdateStatusErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok {
		return domain.ErrAppNotFound
	}
	a.Status = status
	if rating != nil {
		v := *rating
		a.Rating = &v
	}
	a.UpdatedAt = at
	return nil
}

func (m *MockApplicationRepository) AddNote(_ context.Context, id string, note domain.Note, at time.Time) ([]domain.Note, error) {
	if m.AddNoteErr != nil {
		return nil, m.AddNoteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok {
		return nil, domain.ErrAppNotFound
	}
	a.Notes = append(a.Notes, note)
	a.UpdatedAt = at
	return append([]domain.Note(nil), a.Notes...), nil
}

func (m *MockApplicationRepository) Stats(ctx context.Context, owner string) (*domain.ApplicationStats, error) {
	m.mu.RLock()
	apps := make([]*domain.Application, 0, len(m.apps))
	for _, a := range m.apps {
		apps = append(apps, cloneApplication(a))
	}
	m.mu.RUnlock()

	byStatus := make(map[domain.Status]int)
	byDay := make(map[string]int)
	for _, a := range apps {
		if owner != "" {
			if m.jobs == nil {
				continue
			}
			job, err := m.jobs.GetByID(ctx, a.JobID)
			if err != nil || job.Company != owner {
				continue
			}
		}
		byStatus[a.Status]++
		byDay[a.AppliedAt.UTC().Format("2006-01-02")]++
	}

	stats := &domain.ApplicationStats{
		ByStatus: []domain.StatusCount{},
		Daily:    []domain.DailyCount{},
	}
	for _, s := range domain.AllStatuses {
		if n := byStatus[s]; n > 0 {
			stats.ByStatus = append(stats.ByStatus, domain.StatusCount{Status: s, Count: n})
		}
	}
	for day, n := range byDay {
		stats.Daily = append(stats.Daily, domain.DailyCount{Day: day, Count: n})
	}
	sort.Slice(stats.Daily, func(i, k int) bool { return stats.Daily[i].Day < stats.Daily[k].Day })
	return stats, nil
}

func cloneApplication(a *domain.Application) *domain.Application {
	clone := *a
	clone.Notes = append([]domain.Note(nil), a.Notes...)
	clone.Interviews = append([]domain.Interview(nil), a.Interviews...)
	if a.Resume != nil {
		r := *a.Resume
		clone.Resume = &r
	}
	return &clone
}
