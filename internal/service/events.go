package service

import "github.com/notifyhub/jobboard/internal/domain"

// Push payloads. Field names are what the web client reads.

type NewApplicationEvent struct {
	JobID         string `json:"jobId"`
	JobTitle      string `json:"jobTitle"`
	ApplicantName string `json:"applicantName"`
	ApplicationID string `json:"applicationId"`
}

type StatusUpdateEvent struct {
	JobTitle      string        `json:"jobTitle"`
	Status        domain.Status `json:"status"`
	ApplicationID string        `json:"applicationId"`
}

type NoteAddedEvent struct {
	ApplicationID string        `json:"applicationId"`
	Notes         []domain.Note `json:"notes"`
}

type JobPostedEvent struct {
	JobID string `json:"jobId"`
	Title string `json:"title"`
}
