package domain

import "time"

// Priority controls mail queue ordering. High is processed first.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

// Email is an outbound message waiting in the in-memory mail queue.
// It is never persisted; a process restart loses anything still queued.
type Email struct {
	ID        string
	To        string
	Subject   string
	HTML      string
	Priority  Priority
	Attempts  int
	CreatedAt time.Time
}
