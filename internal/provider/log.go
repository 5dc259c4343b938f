package provider

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/domain"
)

// LogProvider writes emails to the logger instead of sending them.
// It is the default transport for local development.
type LogProvider struct {
	logger *zap.Logger
}

func NewLogProvider(logger *zap.Logger) *LogProvider {
	return &LogProvider{logger: logger}
}

func (p *LogProvider) Send(_ context.Context, e *domain.Email) (*SendResponse, error) {
	id := uuid.NewString()
	p.logger.Info("email (log transport)",
		zap.String("message_id", id),
		zap.String("to", e.To),
		zap.String("subject", e.Subject),
		zap.Int("html_bytes", len(e.HTML)),
	)
	return &SendResponse{MessageID: id, Status: "logged"}, nil
}

var _ Provider = (*LogProvider)(nil)
