package mail

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/queue"
)

// Dispatcher hands emails to the in-memory queue. Delivery happens later on
// a worker; callers only learn whether the email was accepted.
type Dispatcher struct {
	q      *queue.PriorityQueue
	logger *zap.Logger
}

func NewDispatcher(q *queue.PriorityQueue, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{q: q, logger: logger}
}

// Send enqueues a transactional email at high priority.
func (d *Dispatcher) Send(ctx context.Context, to, subject, html string) error {
	return d.SendWithPriority(ctx, to, subject, html, domain.PriorityHigh)
}

// SendWithPriority enqueues an email at the given priority. It returns
// domain.ErrQueueFull when that tier is saturated. Enqueueing never blocks,
// so a cancelled request context does not stop the email.
func (d *Dispatcher) SendWithPriority(_ context.Context, to, subject, html string, p domain.Priority) error {
	e := &domain.Email{
		ID:        uuid.NewString(),
		To:        to,
		Subject:   subject,
		HTML:      html,
		Priority:  p,
		CreatedAt: time.Now().UTC(),
	}
	if err := d.q.Enqueue(queue.Item{Email: e, Priority: p}); err != nil {
		return err
	}
	d.logger.Debug("email queued",
		zap.String("email_id", e.ID),
		zap.String("priority", string(p)),
	)
	return nil
}
