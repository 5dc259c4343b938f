package domain

import (
	"regexp"
	"strings"
	"time"
)

// Frequency controls how often an alert wants to hear about new matches.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyInstant Frequency = "instant"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyInstant:
		return true
	}
	return false
}

// JobAlert is a saved search owned by a user.
type JobAlert struct {
	ID        string     `json:"id"`
	User      string     `json:"user"`
	Keywords  []string   `json:"keywords"`
	JobTypes  []JobType  `json:"job_types"`
	Location  string     `json:"location,omitempty"`
	MinSalary *int       `json:"min_salary,omitempty"`
	MaxSalary *int       `json:"max_salary,omitempty"`
	Remote    bool       `json:"remote"`
	Frequency Frequency  `json:"frequency"`
	IsActive  bool       `json:"is_active"`
	LastSent  *time.Time `json:"last_sent,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AlertRequest is the inbound payload for creating or updating an alert.
type AlertRequest struct {
	Keywords  []string  `json:"keywords"`
	JobTypes  []JobType `json:"job_types"`
	Location  string    `json:"location"`
	MinSalary *int      `json:"min_salary,omitempty"`
	MaxSalary *int      `json:"max_salary,omitempty"`
	Remote    bool      `json:"remote"`
	Frequency Frequency `json:"frequency"`
	IsActive  *bool     `json:"is_active,omitempty"`
}

func (r *AlertRequest) Validate() error {
	if r.Frequency == "" {
		r.Frequency = FrequencyWeekly
	}
	if !r.Frequency.IsValid() {
		return ErrInvalidFreq
	}
	for _, t := range r.JobTypes {
		if !t.IsValid() {
			return ErrInvalidJobType
		}
	}
	if r.MinSalary != nil && r.MaxSalary != nil && *r.MinSalary > *r.MaxSalary {
		return ErrInvalidSalary
	}
	return nil
}

// Matches reports whether job satisfies every criterion set on the alert.
// Unset criteria match anything. Keywords match case-insensitively against
// title or description; any single keyword is enough.
func (a *JobAlert) Matches(job *Job) bool {
	if len(a.Keywords) > 0 && !matchesKeywords(a.Keywords, job) {
		return false
	}
	if len(a.JobTypes) > 0 {
		found := false
		for _, t := range a.JobTypes {
			if t == job.JobType {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if a.Location != "" &&
		!strings.Contains(strings.ToLower(job.Location.City), strings.ToLower(a.Location)) {
		return false
	}
	// Salary filters compare against the opposite end of the job's range so
	// that any overlap counts.
	if a.MinSalary != nil && (job.Salary.Max == nil || *job.Salary.Max < *a.MinSalary) {
		return false
	}
	if a.MaxSalary != nil && (job.Salary.Min == nil || *job.Salary.Min > *a.MaxSalary) {
		return false
	}
	if a.Remote && !job.Remote {
		return false
	}
	return true
}

func matchesKeywords(keywords []string, job *Job) bool {
	parts := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			parts = append(parts, regexp.QuoteMeta(k))
		}
	}
	if len(parts) == 0 {
		return true
	}
	re := regexp.MustCompile("(?i)" + strings.Join(parts, "|"))
	return re.MatchString(job.Title) || re.MatchString(job.Description)
}
