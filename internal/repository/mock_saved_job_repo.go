package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/notifyhub/jobboard/internal/domain"
)

type savedEntry struct {
	jobID string
	at    time.Time
}

// MockSavedJobRepository is a hand-written, in-memory SavedJobRepository
// for tests. It resolves jobs through the job mock it was built with.
type MockSavedJobRepository struct {
	mu    sync.RWMutex
	saved map[string][]savedEntry
	jobs  *MockJobRepository
}

func NewMockSavedJobRepository(jobs *MockJobRepository) *MockSavedJobRepository {
	return &MockSavedJobRepository{saved: make(map[string][]savedEntry), jobs: jobs}
}

func (m *MockSavedJobRepository) Save(ctx context.Context, userID, jobID string, at time.Time) error {
	if _, err := m.jobs.GetByID(ctx, jobID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.saved[userID] {
		if e.jobID == jobID {
			return nil
		}
	}
	m.saved[userID] = append(m.saved[userID], savedEntry{jobID: jobID, at: at})
	return nil
}

func (m *MockSavedJobRepository) Remove(_ context.Context, userID, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.saved[userID]
	for i, e := range entries {
		if e.jobID == jobID {
			m.saved[userID] = append(entries[:i:i], entries[i+1:]...)
			return nil
		}
	}
	return domain.ErrJobNotFound
}

func (m *MockSavedJobRepository) List(ctx context.Context, userID string, page, limit int) ([]*domain.Job, int, error) {
	m.mu.RLock()
	entries := append([]savedEntry(nil), m.saved[userID]...)
	m.mu.RUnlock()

	sort.SliceStable(entries, func(i, k int) bool { return entries[i].at.After(entries[k].at) })
	var jobs []*domain.Job
	for _, e := range entries {
		j, err := m.jobs.GetByID(ctx, e.jobID)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, j)
	}
	return paginate(jobs, page, limit), len(jobs), nil
}
