package queue

import "github.com/notifyhub/jobboard/internal/domain"

// Item is what sits on the mail queue. The email travels with the item
// because nothing is persisted; Attempts on the email is bumped by the
// worker on each delivery try.
type Item struct {
	Email    *domain.Email
	Priority domain.Priority
}
