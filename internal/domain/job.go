package domain

import "time"

// JobType is the employment type of a posting.
type JobType string

const (
	JobTypeFullTime   JobType = "Full-time"
	JobTypePartTime   JobType = "Part-time"
	JobTypeContract   JobType = "Contract"
	JobTypeFreelance  JobType = "Freelance"
	JobTypeInternship JobType = "Internship"
)

func (t JobType) IsValid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeFreelance, JobTypeInternship:
		return true
	}
	return false
}

type Location struct {
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

type SalaryRange struct {
	Min      *int   `json:"min,omitempty"`
	Max      *int   `json:"max,omitempty"`
	Currency string `json:"currency"`
}

// Job is a posting owned by an employer. Company holds the owning user's ID;
// only that user may read applicants or move application status.
type Job struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Company          string      `json:"company"`
	Responsibilities []string    `json:"responsibilities"`
	Qualifications   []string    `json:"qualifications"`
	JobType          JobType     `json:"job_type"`
	Location         Location    `json:"location"`
	Salary           SalaryRange `json:"salary_range"`
	Remote           bool        `json:"remote"`
	Tags             []string    `json:"tags"`
	ApplicantCount   int         `json:"applicant_count"`
	IsActive         bool        `json:"is_active"`
	Views            int         `json:"views"`
	ExpiresAt        *time.Time  `json:"expires_at,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// JobRequest is the inbound payload for creating or updating a job.
type JobRequest struct {
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Responsibilities []string    `json:"responsibilities"`
	Qualifications   []string    `json:"qualifications"`
	JobType          JobType     `json:"job_type"`
	Location         Location    `json:"location"`
	Salary           SalaryRange `json:"salary_range"`
	Remote           bool        `json:"remote"`
	Tags             []string    `json:"tags"`
	ExpiresAt        *time.Time  `json:"expires_at,omitempty"`
}

// Normalize fills defaults the original schema applied on insert.
func (r *JobRequest) Normalize() {
	if r.JobType == "" {
		r.JobType = JobTypeFullTime
	}
	if r.Salary.Currency == "" {
		r.Salary.Currency = "USD"
	}
}

func (r *JobRequest) Validate() error {
	if r.Title == "" || r.Description == "" {
		return ErrTitleRequired
	}
	if !r.JobType.IsValid() {
		return ErrInvalidJobType
	}
	if r.Salary.Min != nil && r.Salary.Max != nil && *r.Salary.Min > *r.Salary.Max {
		return ErrInvalidSalary
	}
	return nil
}

// JobFilter holds query parameters for the public job search.
type JobFilter struct {
	Search     string
	JobType    *JobType
	City       string
	Remote     bool
	MinSalary  *int
	MaxSalary  *int
	Tags       []string
	Company    string
	ActiveOnly bool // with Company, hide inactive postings
	Sort       string
	Page       int
	Limit      int
}
