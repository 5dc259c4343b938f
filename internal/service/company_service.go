package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/repository"
)

// CompanyService manages employer profile pages and the reviews users
// leave on them.
type CompanyService struct {
	companies repository.CompanyRepository
	jobs      repository.JobRepository
	logger    *zap.Logger
	now       func() time.Time
}

func NewCompanyService(companies repository.CompanyRepository, jobs repository.JobRepository, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		companies: companies, jobs: jobs, logger: logger,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Create opens the caller's company profile. An employer has at most one.
func (s *CompanyService) Create(ctx context.Context, caller Caller, req domain.CompanyRequest) (*domain.CompanyProfile, error) {
	if caller.Role != domain.RoleEmployer {
		return nil, domain.ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	p := &domain.CompanyProfile{
		ID:        uuid.NewString(),
		Employer:  caller.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyCompanyRequest(p, req)
	if err := s.companies.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("company profile created", zap.String("company_id", p.ID), zap.String("employer", caller.ID))
	return p, nil
}

// Update rewrites the caller's own profile.
func (s *CompanyService) Update(ctx context.Context, caller Caller, req domain.CompanyRequest) (*domain.CompanyProfile, error) {
	p, err := s.companies.GetByEmployer(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	applyCompanyRequest(p, req)
	p.UpdatedAt = s.now()
	if err := s.companies.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Mine returns the caller's profile with a count of their postings.
func (s *CompanyService) Mine(ctx context.Context, caller Caller) (*domain.CompanyDashboard, error) {
	p, err := s.companies.GetByEmployer(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	stats, err := s.jobs.CountByCompany(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	return &domain.CompanyDashboard{Profile: p, Stats: stats}, nil
}

// Get returns a public company page. id may be a profile id or the
// employer's user id.
func (s *CompanyService) Get(ctx context.Context, id string) (*domain.CompanyPage, error) {
	p, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, p)
}

// GetByEmployer returns the public page of the given employer.
func (s *CompanyService) GetByEmployer(ctx context.Context, employer string) (*domain.CompanyPage, error) {
	p, err := s.companies.GetByEmployer(ctx, employer)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, p)
}

func (s *CompanyService) page(ctx context.Context, p *domain.CompanyProfile) (*domain.CompanyPage, error) {
	jobs, _, err := s.jobs.List(ctx, domain.JobFilter{
		Company:    p.Employer,
		ActiveOnly: true,
		Page:       1,
		Limit:      domain.MaxPageLimit,
	})
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []*domain.Job{}
	}
	return &domain.CompanyPage{Profile: p, Jobs: jobs}, nil
}

// Reviews lists a company's reviews with their average. id resolves like Get.
func (s *CompanyService) Reviews(ctx context.Context, id string) (*domain.CompanyReviews, error) {
	p, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := s.companies.ListReviews(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []*domain.Review{}
	}
	return &domain.CompanyReviews{Reviews: reviews, Ratings: domain.AverageRating(reviews)}, nil
}

// AddReview records the caller's review of a company. Employers cannot
// review their own company, and each user reviews a company once.
func (s *CompanyService) AddReview(ctx context.Context, caller Caller, companyID string, req domain.ReviewRequest) (*domain.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if p.Employer == caller.ID {
		return nil, domain.ErrForbidden
	}
	now := s.now()
	rv := &domain.Review{
		ID:        uuid.NewString(),
		CompanyID: p.ID,
		Reviewer:  caller.ID,
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.companies.AddReview(ctx, rv); err != nil {
		return nil, err
	}
	s.logger.Info("company reviewed", zap.String("company_id", p.ID), zap.String("reviewer", caller.ID))
	return rv, nil
}

// UpdateReview changes the caller's own review.
func (s *CompanyService) UpdateReview(ctx context.Context, caller Caller, companyID, reviewID string, req domain.ReviewUpdate) (*domain.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	rv, err := s.ownReview(ctx, caller, companyID, reviewID)
	if err != nil {
		return nil, err
	}
	req.Apply(rv)
	rv.UpdatedAt = s.now()
	if err := s.companies.UpdateReview(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

// DeleteReview removes the caller's own review.
func (s *CompanyService) DeleteReview(ctx context.Context, caller Caller, companyID, reviewID string) error {
	if _, err := s.ownReview(ctx, caller, companyID, reviewID); err != nil {
		return err
	}
	return s.companies.DeleteReview(ctx, companyID, reviewID)
}

func (s *CompanyService) ownReview(ctx context.Context, caller Caller, companyID, reviewID string) (*domain.Review, error) {
	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return nil, err
	}
	rv, err := s.companies.GetReview(ctx, companyID, reviewID)
	if err != nil {
		return nil, err
	}
	if rv.Reviewer != caller.ID {
		return nil, domain.ErrForbidden
	}
	return rv, nil
}

// resolve looks id up as a profile id first, then as an employer id.
func (s *CompanyService) resolve(ctx context.Context, id string) (*domain.CompanyProfile, error) {
	p, err := s.companies.GetByID(ctx, id)
	if errors.Is(err, domain.ErrCompanyNotFound) {
		return s.companies.GetByEmployer(ctx, id)
	}
	return p, err
}

func applyCompanyRequest(p *domain.CompanyProfile, req domain.CompanyRequest) {
	p.CompanyName = req.CompanyName
	p.Industry = req.Industry
	p.CompanySize = req.CompanySize
	p.Website = req.Website
	p.Description = req.Description
	p.Logo = req.Logo
	p.Location = req.Location
	p.FoundedYear = req.FoundedYear
	p.SocialLinks = req.SocialLinks
}
