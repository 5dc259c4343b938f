package provider

import (
	"context"

	"github.com/notifyhub/jobboard/internal/domain"
)

// SendRequest is the JSON body posted to a webhook mail relay.
type SendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// SendResponse is what a provider reports back for an accepted message.
type SendResponse struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
}

// Provider abstracts final delivery of one email.
// Mocking this interface in tests gives full control over provider behaviour
// without a real mail server.
type Provider interface {
	Send(ctx context.Context, e *domain.Email) (*SendResponse, error)
}
