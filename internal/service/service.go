package service

import (
	"context"

	"github.com/notifyhub/jobboard/internal/domain"
)

// Notifier is the realtime push collaborator. Every call is best effort;
// Broadcast only reports how many connections it reached.
type Notifier interface {
	Notify(userID, event string, payload any)
	NotifyMany(userIDs []string, event string, payload any)
	Broadcast(event string, payload any) int
}

// Mailer is the fire-and-forget email collaborator. An error means the
// email was not accepted for delivery; services log it and carry on.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Caller identifies the authenticated user on whose behalf a service method runs.
type Caller struct {
	ID   string
	Role domain.Role
}

func (c Caller) IsAdmin() bool { return c.Role == domain.RoleAdmin }

// canManage reports whether c may act as the owner of a job posting.
func (c Caller) canManage(job *domain.Job) bool {
	return job.Company == c.ID || c.IsAdmin()
}
