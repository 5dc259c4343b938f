package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/notifyhub/jobboard/internal/domain"
)

// MockAlertRepository is a hand-written, in-memory AlertRepository for tests.
type MockAlertRepository struct {
	mu     sync.RWMutex
	alerts map[string]*domain.JobAlert

	CreateErr                error
	MarkSentErr              error
	ListActiveByFrequencyErr error
}

func NewMockAlertRepository() *MockAlertRepository {
	return &MockAlertRepository{alerts: make(map[string]*domain.JobAlert)}
}

func (m *MockAlertRepository) Create(_ context.Context, a *domain.JobAlert) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts[a.ID] = cloneAlert(a)
	return nil
}

func (m *MockAlertRepository) GetByID(_ context.Context, id string) (*domain.JobAlert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.alerts[id]
	if !ok {
		return nil, domain.ErrAlertNotFound
	}
	return cloneAlert(a), nil
}

func (m *MockAlertRepository) ListByUser(_ context.Context, userID string) ([]*domain.JobAlert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.JobAlert
	for _, a := range m.alerts {
		if a.User == userID {
			result = append(result, cloneAlert(a))
		}
	}
	sort.Slice(result, func(i, k int) bool { return result[i].CreatedAt.After(result[k].CreatedAt) })
	return result, nil
}

func (m *MockAlertRepository) Update(_ context.Context, a *domain.JobAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.alerts[a.ID]
	if !ok {
		return domain.ErrAlertNotFound
	}
	clone := cloneAlert(a)
	clone.LastSent = existing.LastSent
	m.alerts[a.ID] = clone
	return nil
}

func (m *MockAlertRepository) MarkSent(_ context.Context, id string, at time.Time) error {
	if m.MarkSentErr != nil {
		return m.MarkSentErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alerts[id]
	if !ok {
		return domain.ErrAlertNotFound
	}
	a.LastSent = &at
	a.UpdatedAt = at
	return nil
}

func (m *MockAlertRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.alerts[id]; !ok {
		return domain.ErrAlertNotFound
	}
	delete(m.alerts, id)
	return nil
}

func (m *MockAlertRepository) ListActiveByFrequency(_ context.Context, f domain.Frequency) ([]*domain.JobAlert, error) {
	if m.ListActiveByFrequencyErr != nil {
		return nil, m.ListActiveByFrequencyErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.JobAlert
	for _, a := range m.alerts {
		if a.IsActive && a.Frequency == f {
			result = append(result, cloneAlert(a))
		}
	}
	sort.Slice(result, func(i, k int) bool { return result[i].ID < result[k].ID })
	return result, nil
}

func cloneAlert(a *domain.JobAlert) *domain.JobAlert {
	clone := *a
	clone.Keywords = append([]string(nil), a.Keywords...)
	clone.JobTypes = append([]domain.JobType(nil), a.JobTypes...)
	return &clone
}
