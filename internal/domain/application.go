package domain

import "time"

// Status tracks the lifecycle of an application.
type Status string

const (
	StatusApplied   Status = "Applied"
	StatusReviewed  Status = "Reviewed"
	StatusInterview Status = "Interview"
	StatusOffer     Status = "Offer"
	StatusRejected  Status = "Rejected"
	StatusWithdrawn Status = "Withdrawn"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []Status{
	StatusApplied, StatusReviewed, StatusInterview, StatusOffer, StatusRejected, StatusWithdrawn,
}

func (s Status) IsValid() bool {
	switch s {
	case StatusApplied, StatusReviewed, StatusInterview, StatusOffer, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is defined out of s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusOffer, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// employerTransitions mirrors the actions the employer dashboard offers for
// each status. Withdrawn is applicant-driven and handled separately.
var employerTransitions = map[Status][]Status{
	StatusApplied:   {StatusReviewed, StatusInterview, StatusOffer, StatusRejected},
	StatusReviewed:  {StatusInterview, StatusOffer, StatusRejected},
	StatusInterview: {StatusOffer, StatusRejected},
}

// CanTransitionTo reports whether next is a defined move from s.
//
// The write path does not enforce this: an authorized job owner may set any
// valid status. It is exposed for clients that want to render only the
// defined next steps.
func (s Status) CanTransitionTo(next Status) bool {
	if s.IsTerminal() || !next.IsValid() {
		return false
	}
	if next == StatusWithdrawn {
		return true
	}
	for _, t := range employerTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// NextStatuses returns the employer-driven moves defined out of s.
func (s Status) NextStatuses() []Status {
	if s.IsTerminal() {
		return []Status{}
	}
	out := make([]Status, len(employerTransitions[s]))
	copy(out, employerTransitions[s])
	return out
}

type Resume struct {
	FileName string `json:"file_name"`
}

type Note struct {
	By        string    `json:"by"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Interview struct {
	Date        time.Time `json:"date"`
	Interviewer string    `json:"interviewer"`
	Feedback    string    `json:"feedback,omitempty"`
	Score       *int      `json:"score,omitempty"`
}

// Application is one job seeker's submission to one job posting.
// At most one exists per (Applicant, JobID) pair.
type Application struct {
	ID             string      `json:"id"`
	JobID          string      `json:"job_id"`
	Applicant      string      `json:"applicant"`
	CoverLetter    string      `json:"cover_letter"`
	Resume         *Resume     `json:"resume,omitempty"`
	Status         Status      `json:"status"`
	Rating         *int        `json:"rating,omitempty"`
	ScreeningScore *int        `json:"screening_score,omitempty"`
	Notes          []Note      `json:"notes"`
	Interviews     []Interview `json:"interviews"`
	AppliedAt      time.Time   `json:"applied_at"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`

	// NextStatuses is filled for the job owner only and never stored.
	NextStatuses []Status `json:"next_statuses,omitempty"`
}

// WithNextStatuses fills NextStatuses from the current status.
func (a *Application) WithNextStatuses() *Application {
	a.NextStatuses = a.Status.NextStatuses()
	return a
}

// ApplyRequest is the inbound payload for POST .../apply.
type ApplyRequest struct {
	CoverLetter string  `json:"cover_letter"`
	Resume      *Resume `json:"resume,omitempty"`
}

// StatusUpdateRequest is the inbound payload for PUT .../status.
type StatusUpdateRequest struct {
	Status Status `json:"status"`
	Rating *int   `json:"rating,omitempty"`
}

func (r *StatusUpdateRequest) Validate() error {
	if !r.Status.IsValid() {
		return ErrInvalidStatus
	}
	if r.Rating != nil && (*r.Rating < 1 || *r.Rating > 5) {
		return ErrInvalidRating
	}
	return nil
}

// NoteRequest is the inbound payload for POST .../note.
type NoteRequest struct {
	Text string `json:"text"`
}

func (r *NoteRequest) Validate() error {
	if r.Text == "" || len(r.Text) > 2000 {
		return ErrNoteRequired
	}
	return nil
}

// ApplicationFilter holds query parameters for paginated application listing.
// Exactly one of Applicant or JobID is normally set by the service.
type ApplicationFilter struct {
	Applicant string
	JobID     string
	Status    *Status
	Page      int
	Limit     int
}

type StatusCount struct {
	Status Status `json:"status"`
	Count  int    `json:"count"`
}

type DailyCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// ApplicationStats is the aggregate returned by GET /applications/stats.
type ApplicationStats struct {
	ByStatus []StatusCount `json:"by_status"`
	Daily    []DailyCount  `json:"daily"`
}
