package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/notifyhub/jobboard/internal/domain"
)

// MockCompanyRepository is a hand-written, in-memory CompanyRepository for
// tests. Like the SQL implementation it derives ratings on read.
type MockCompanyRepository struct {
	mu        sync.RWMutex
	companies map[string]*domain.CompanyProfile
	reviews   map[string]*domain.Review
	users     *MockUserRepository

	CreateErr error
}

// NewMockCompanyRepository takes the user mock to resolve reviewer names;
// users may be nil.
func NewMockCompanyRepository(users *MockUserRepository) *MockCompanyRepository {
	return &MockCompanyRepository{
		companies: make(map[string]*domain.CompanyProfile),
		reviews:   make(map[string]*domain.Review),
		users:     users,
	}
}

func (m *MockCompanyRepository) Create(_ context.Context, p *domain.CompanyProfile) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.companies {
		if existing.Employer == p.Employer {
			return domain.ErrCompanyExists
		}
	}
	clone := *p
	m.companies[p.ID] = &clone
	return nil
}

func (m *MockCompanyRepository) GetByID(_ context.Context, id string) (*domain.CompanyProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.companies[id]
	if !ok {
		return nil, domain.ErrCompanyNotFound
	}
	return m.withRatings(p), nil
}

func (m *MockCompanyRepository) GetByEmployer(_ context.Context, employer string) (*domain.CompanyProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.companies {
		if p.Employer == employer {
			return m.withRatings(p), nil
		}
	}
	return nil, domain.ErrCompanyNotFound
}

func (m *MockCompanyRepository) Update(_ context.Context, p *domain.CompanyProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.companies[p.ID]
	if !ok {
		return domain.ErrCompanyNotFound
	}
	clone := *p
	clone.Employer = existing.Employer
	clone.IsVerified = existing.IsVerified
	clone.CreatedAt = existing.CreatedAt
	m.companies[p.ID] = &clone
	return nil
}

func (m *MockCompanyRepository) AddReview(_ context.Context, rv *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.companies[rv.CompanyID]; !ok {
		return domain.ErrCompanyNotFound
	}
	for _, existing := range m.reviews {
		if existing.CompanyID == rv.CompanyID && existing.Reviewer == rv.Reviewer {
			return domain.ErrAlreadyReviewed
		}
	}
	clone := *rv
	m.reviews[rv.ID] = &clone
	return nil
}

func (m *MockCompanyRepository) GetReview(ctx context.Context, companyID, reviewID string) (*domain.Review, error) {
	m.mu.RLock()
	rv, ok := m.reviews[reviewID]
	if !ok || rv.CompanyID != companyID {
		m.mu.RUnlock()
		return nil, domain.ErrReviewNotFound
	}
	clone := *rv
	m.mu.RUnlock()
	m.fillReviewer(ctx, &clone)
	return &clone, nil
}

func (m *MockCompanyRepository) UpdateReview(_ context.Context, rv *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.reviews[rv.ID]
	if !ok || existing.CompanyID != rv.CompanyID {
		return domain.ErrReviewNotFound
	}
	existing.Rating = rv.Rating
	existing.Title = rv.Title
	existing.Comment = rv.Comment
	existing.UpdatedAt = rv.UpdatedAt
	return nil
}

func (m *MockCompanyRepository) DeleteReview(_ context.Context, companyID, reviewID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rv, ok := m.reviews[reviewID]
	if !ok || rv.CompanyID != companyID {
		return domain.ErrReviewNotFound
	}
	delete(m.reviews, reviewID)
	return nil
}

func (m *MockCompanyRepository) ListReviews(ctx context.Context, companyID string) ([]*domain.Review, error) {
	m.mu.RLock()
	result := m.reviewsFor(companyID)
	m.mu.RUnlock()
	for _, rv := range result {
		m.fillReviewer(ctx, rv)
	}
	return result, nil
}

// reviewsFor returns copies of a company's reviews, newest first.
// Callers hold m.mu.
func (m *MockCompanyRepository) reviewsFor(companyID string) []*domain.Review {
	var result []*domain.Review
	for _, rv := range m.reviews {
		if rv.CompanyID == companyID {
			clone := *rv
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, k int) bool { return result[i].CreatedAt.After(result[k].CreatedAt) })
	return result
}

// withRatings copies p and fills the derived fields. Callers hold m.mu.
func (m *MockCompanyRepository) withRatings(p *domain.CompanyProfile) *domain.CompanyProfile {
	clone := *p
	reviews := m.reviewsFor(p.ID)
	clone.Ratings = domain.AverageRating(reviews)
	clone.ReviewCount = len(reviews)
	return &clone
}

func (m *MockCompanyRepository) fillReviewer(ctx context.Context, rv *domain.Review) {
	if m.users == nil {
		return
	}
	if u, err := m.users.GetByID(ctx, rv.Reviewer); err == nil {
		rv.ReviewerName = u.Name
	}
}
