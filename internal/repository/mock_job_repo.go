package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/notifyhub/jobboard/internal/domain"
)

// MockJobRepository is a hand-written, in-memory JobRepository for tests.
// List applies the same filters as the SQL implementation, minus the
// company-name search.
type MockJobRepository struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job

	CreateErr  error
	GetByIDErr error
	UpdateErr  error
}

func NewMockJobRepository() *MockJobRepository {
	return &MockJobRepository{jobs: make(map[string]*domain.Job)}
}

func (m *MockJobRepository) Create(_ context.Context, j *domain.Job) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[j.ID] = cloneJob(j)
	return nil
}

func (m *MockJobRepository) GetByID(_ context.Context, id string) (*domain.Job, error) {
	if m.GetByIDErr != nil {
		return nil, m.GetByIDErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return cloneJob(j), nil
}

func (m *MockJobRepository) Update(_ context.Context, j *domain.Job) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.jobs[j.ID]
	if !ok {
		return domain.ErrJobNotFound
	}
	clone := cloneJob(j)
	clone.ApplicantCount = existing.ApplicantCount
	clone.Views = existing.Views
	clone.IsActive = existing.IsActive
	m.jobs[j.ID] = clone
	return nil
}

func (m *MockJobRepository) Deactivate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return domain.ErrJobNotFound
	}
	j.IsActive = false
	j.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockJobRepository) IncrementViews(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		j.Views++
	}
	return nil
}

// IncrementApplicants mirrors the counter bump the SQL repository does
// inside the application insert transaction.
func (m *MockJobRepository) IncrementApplicants(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		j.ApplicantCount++
	}
}

func (m *MockJobRepository) List(_ context.Context, f domain.JobFilter) ([]*domain.Job, int, error) {
	m.mu.RLock()
	var matched []*domain.Job
	for _, j := range m.jobs {
		if mockJobMatches(j, f) {
			matched = append(matched, cloneJob(j))
		}
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, k int) bool {
		return matched[i].CreatedAt.After(matched[k].CreatedAt)
	})
	total := len(matched)
	return paginate(matched, f.Page, f.Limit), total, nil
}

func (m *MockJobRepository) ListActive(_ context.Context, limit int) ([]*domain.Job, error) {
	jobs, _, err := m.List(context.Background(), domain.JobFilter{Page: 1, Limit: limit})
	return jobs, err
}

func (m *MockJobRepository) ListActiveSince(_ context.Context, since time.Time) ([]*domain.Job, error) {
	m.mu.RLock()
	var result []*domain.Job
	for _, j := range m.jobs {
		if j.IsActive && j.CreatedAt.After(since) {
			result = append(result, cloneJob(j))
		}
	}
	m.mu.RUnlock()
	sort.Slice(result, func(i, k int) bool { return result[i].CreatedAt.Before(result[k].CreatedAt) })
	return result, nil
}

func (m *MockJobRepository) StatsByType(_ context.Context) ([]domain.JobTypeStat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	type acc struct{ count, salaried, sum int }
	byType := make(map[domain.JobType]*acc)
	for _, j := range m.jobs {
		a, ok := byType[j.JobType]
		if !ok {
			a = &acc{}
			byType[j.JobType] = a
		}
		a.count++
		if j.Salary.Min != nil {
			a.salaried++
			a.sum += *j.Salary.Min
		}
	}
	stats := []domain.JobTypeStat{}
	for t, a := range byType {
		st := domain.JobTypeStat{JobType: t, Count: a.count}
		if a.salaried > 0 {
			avg := float64(a.sum) / float64(a.salaried)
			st.AvgMinSalary = &avg
		}
		stats = append(stats, st)
	}
	sort.Slice(stats, func(i, k int) bool { return stats[i].JobType < stats[k].JobType })
	return stats, nil
}

func (m *MockJobRepository) CountByCompany(_ context.Context, company string) (domain.CompanyStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var st domain.CompanyStats
	for _, j := range m.jobs {
		if j.Company != company {
			continue
		}
		st.TotalJobs++
		if j.IsActive {
			st.ActiveJobs++
		}
	}
	return st, nil
}

func mockJobMatches(j *domain.Job, f domain.JobFilter) bool {
	if f.Company != "" && j.Company != f.Company {
		return false
	}
	if (f.Company == "" || f.ActiveOnly) && !j.IsActive {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(j.Title), q) &&
			!strings.Contains(strings.ToLower(j.Description), q) {
			return false
		}
	}
	if f.JobType != nil && j.JobType != *f.JobType {
		return false
	}
	if f.City != "" && j.Location.City != f.City {
		return false
	}
	if f.Remote && !j.Remote {
		return false
	}
	if f.MinSalary != nil && (j.Salary.Min == nil || *j.Salary.Min < *f.MinSalary) {
		return false
	}
	if f.MaxSalary != nil && (j.Salary.Max == nil || *j.Salary.Max > *f.MaxSalary) {
		return false
	}
	return true
}

func cloneJob(j *domain.Job) *domain.Job {
	clone := *j
	clone.Responsibilities = append([]string(nil), j.Responsibilities...)
	clone.Qualifications = append([]string(nil), j.Qualifications...)
	clone.Tags = append([]string(nil), j.Tags...)
	return &clone
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
