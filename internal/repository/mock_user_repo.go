package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/notifyhub/jobboard/internal/domain"
)

// MockUserRepository is a hand-written, in-memory UserRepository for tests.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	UpsertErr  error
	GetByIDErr error
	DeleteErr  error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) Upsert(_ context.Context, u *domain.User) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.users[u.ID]; ok {
		u.CreatedAt = existing.CreatedAt
	}
	clone := *u
	m.users[u.ID] = &clone
	return nil
}

func (m *MockUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	if m.GetByIDErr != nil {
		return nil, m.GetByIDErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *MockUserRepository) List(_ context.Context, f domain.UserFilter) ([]*domain.User, int, error) {
	m.mu.RLock()
	var matched []*domain.User
	for _, u := range m.users {
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		clone := *u
		matched = append(matched, &clone)
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, k int) bool { return matched[i].ID < matched[k].ID })
	return paginate(matched, f.Page, f.Limit), len(matched), nil
}

// Delete does not model foreign keys; set DeleteErr to simulate
// domain.ErrUserInUse.
func (m *MockUserRepository) Delete(_ context.Context, id string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}
