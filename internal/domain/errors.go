package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound        = errors.New("not found")
	ErrJobNotFound     = errors.New("job not found")
	ErrAppNotFound     = errors.New("application not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrAlertNotFound   = errors.New("alert not found")
	ErrCompanyNotFound = errors.New("company not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrForbidden       = errors.New("not authorized")
	ErrUnauthenticated = errors.New("authentication required")
	ErrAlreadyApplied  = errors.New("you have already applied for this job")
	ErrJobInactive     = errors.New("job is no longer accepting applications")
	ErrInvalidStatus   = errors.New("invalid status: must be Applied, Reviewed, Interview, Offer, Rejected, or Withdrawn")
	ErrInvalidJobType  = errors.New("invalid job type: must be Full-time, Part-time, Contract, Freelance, or Internship")
	ErrInvalidRole     = errors.New("invalid role: must be jobSeeker, employer, or admin")
	ErrInvalidFreq     = errors.New("invalid frequency: must be daily, weekly, or instant")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrTitleRequired   = errors.New("title and description are required")
	ErrNoteRequired    = errors.New("note text must be between 1 and 2000 characters")
	ErrInvalidSalary   = errors.New("salary range minimum must not exceed maximum")
	ErrQueueFull       = errors.New("queue is at capacity, try again later")

	ErrCompanyExists       = errors.New("company profile already exists")
	ErrAlreadyReviewed     = errors.New("you have already reviewed this company")
	ErrCompanyNameRequired = errors.New("company name is required")
	ErrInvalidCompanySize  = errors.New("invalid company size: must be 1-50, 51-200, 201-500, 501-1000, or 1000+")
	ErrReviewRequired      = errors.New("rating and comment are required")
	ErrUserInUse           = errors.New("user still owns jobs or applications")
)
