package domain

import "time"

// CompanySize is the headcount bracket shown on a company profile.
type CompanySize string

const (
	CompanySizeXS CompanySize = "1-50"
	CompanySizeS  CompanySize = "51-200"
	CompanySizeM  CompanySize = "201-500"
	CompanySizeL  CompanySize = "501-1000"
	CompanySizeXL CompanySize = "1000+"
)

// IsValid accepts the empty size, which means "not stated".
func (s CompanySize) IsValid() bool {
	switch s {
	case "", CompanySizeXS, CompanySizeS, CompanySizeM, CompanySizeL, CompanySizeXL:
		return true
	}
	return false
}

type CompanyLocation struct {
	City         string `json:"city,omitempty"`
	Country      string `json:"country,omitempty"`
	Headquarters string `json:"headquarters,omitempty"`
}

type SocialLinks struct {
	LinkedIn string `json:"linkedin,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Facebook string `json:"facebook,omitempty"`
}

// CompanyProfile is the public page of an employer. Each employer has at
// most one. Ratings and ReviewCount are derived from the reviews on read.
type CompanyProfile struct {
	ID          string          `json:"id"`
	Employer    string          `json:"employer"`
	CompanyName string          `json:"company_name"`
	Industry    string          `json:"industry,omitempty"`
	CompanySize CompanySize     `json:"company_size,omitempty"`
	Website     string          `json:"website,omitempty"`
	Description string          `json:"description,omitempty"`
	Logo        string          `json:"logo,omitempty"`
	Location    CompanyLocation `json:"location"`
	FoundedYear *int            `json:"founded_year,omitempty"`
	SocialLinks SocialLinks     `json:"social_links"`
	Ratings     float64         `json:"ratings"`
	ReviewCount int             `json:"review_count"`
	IsVerified  bool            `json:"is_verified"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CompanyRequest is the inbound payload for creating or updating the
// caller's company profile. Logo is a URL; binary uploads are not stored.
type CompanyRequest struct {
	CompanyName string          `json:"company_name"`
	Industry    string          `json:"industry"`
	CompanySize CompanySize     `json:"company_size"`
	Website     string          `json:"website"`
	Description string          `json:"description"`
	Logo        string          `json:"logo"`
	Location    CompanyLocation `json:"location"`
	FoundedYear *int            `json:"founded_year,omitempty"`
	SocialLinks SocialLinks     `json:"social_links"`
}

func (r *CompanyRequest) Validate() error {
	if r.CompanyName == "" {
		return ErrCompanyNameRequired
	}
	if !r.CompanySize.IsValid() {
		return ErrInvalidCompanySize
	}
	return nil
}

// CompanyStats summarises the owner's postings on GET /companies/me.
type CompanyStats struct {
	TotalJobs  int `json:"total_jobs"`
	ActiveJobs int `json:"active_jobs"`
}

// Review is one user's rating of a company. A user reviews a company once.
type Review struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"company_id"`
	Reviewer     string    `json:"reviewer"`
	ReviewerName string    `json:"reviewer_name,omitempty"`
	Rating       int       `json:"rating"`
	Title        string    `json:"title"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ReviewRequest is the inbound payload for adding a review.
type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

func (r *ReviewRequest) Validate() error {
	if r.Rating == 0 || r.Comment == "" {
		return ErrReviewRequired
	}
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}

// ReviewUpdate changes only the fields that are set.
type ReviewUpdate struct {
	Rating  *int    `json:"rating,omitempty"`
	Title   *string `json:"title,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

func (r *ReviewUpdate) Validate() error {
	if r.Rating != nil && (*r.Rating < 1 || *r.Rating > 5) {
		return ErrInvalidRating
	}
	if r.Comment != nil && *r.Comment == "" {
		return ErrReviewRequired
	}
	return nil
}

// Apply copies the set fields onto rv.
func (r *ReviewUpdate) Apply(rv *Review) {
	if r.Rating != nil {
		rv.Rating = *r.Rating
	}
	if r.Title != nil {
		rv.Title = *r.Title
	}
	if r.Comment != nil {
		rv.Comment = *r.Comment
	}
}

// AverageRating is the mean rating of reviews, or 0 with none.
func AverageRating(reviews []*Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}

// CompanyPage is what GET /companies/{id} returns: the profile plus the
// employer's active postings.
type CompanyPage struct {
	Profile *CompanyProfile `json:"profile"`
	Jobs    []*Job          `json:"jobs"`
}

// CompanyReviews is what GET /companies/{id}/reviews returns.
type CompanyReviews struct {
	Reviews []*Review `json:"reviews"`
	Ratings float64   `json:"ratings"`
}

// JobTypeStat is one row of GET /jobs/stats.
type JobTypeStat struct {
	JobType      JobType  `json:"job_type"`
	Count        int      `json:"count"`
	AvgMinSalary *float64 `json:"avg_min_salary,omitempty"`
}

// CompanyDashboard is what GET /companies/me returns to the owner.
type CompanyDashboard struct {
	Profile *CompanyProfile `json:"profile"`
	Stats   CompanyStats    `json:"stats"`
}
