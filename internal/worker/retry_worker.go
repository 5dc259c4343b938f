package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/queue"
)

type pendingRetry struct {
	due  time.Time
	item queue.Item
}

// RetryWorker holds failed emails until their backoff elapses and then puts
// them back on the queue at normal priority. Pending retries live in memory
// only and are discarded on shutdown.
type RetryWorker struct {
	mu       sync.Mutex
	pending  []pendingRetry
	q        *queue.PriorityQueue
	backoff  []time.Duration
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewRetryWorker(
	q *queue.PriorityQueue,
	backoff []time.Duration,
	interval time.Duration,
	logger *zap.Logger,
) *RetryWorker {
	return &RetryWorker{
		q:        q,
		backoff:  backoff,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Schedule parks item until its backoff delay has passed.
//
// The delay is picked by the number of attempts already made:
//
//	1 attempt  → backoff[0]  (default 5 s)
//	2 attempts → backoff[1]  (default 30 s)
//	N attempts → last backoff entry (clamped)
func (rw *RetryWorker) Schedule(item queue.Item) {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	rw.pending = append(rw.pending, pendingRetry{
		due:  rw.now().Add(rw.delay(item.Email.Attempts)),
		item: item,
	})
}

func (rw *RetryWorker) delay(attempts int) time.Duration {
	if len(rw.backoff) == 0 {
		return 0
	}
	idx := attempts - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(rw.backoff) {
		idx = len(rw.backoff) - 1
	}
	return rw.backoff[idx]
}

// Pending returns how many emails are waiting for their retry time.
func (rw *RetryWorker) Pending() int {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return len(rw.pending)
}

// Run ticks every interval and re-enqueues any due retries.
// Stops cleanly when ctx is cancelled.
func (rw *RetryWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(rw.interval)
	defer ticker.Stop()

	rw.logger.Info("retry worker started", zap.Duration("interval", rw.interval))

	for {
		select {
		case <-ctx.Done():
			if n := rw.Pending(); n > 0 {
				rw.logger.Warn("retry worker stopping with pending emails", zap.Int("pending", n))
			} else {
				rw.logger.Info("retry worker stopping")
			}
			return
		case <-ticker.C:
			rw.poll()
		}
	}
}

func (rw *RetryWorker) poll() {
	rw.mu.Lock()
	now := rw.now()
	var keep []pendingRetry
	requeued := 0
	for _, p := range rw.pending {
		if p.due.After(now) {
			keep = append(keep, p)
			continue
		}
		p.item.Priority = domain.PriorityNormal
		if err := rw.q.Enqueue(p.item); err != nil {
			// Queue saturated: try again next tick.
			rw.logger.Warn("could not re-enqueue retry",
				zap.String("email_id", p.item.Email.ID), zap.Error(err))
			keep = append(keep, p)
			continue
		}
		requeued++
	}
	rw.pending = keep
	rw.mu.Unlock()

	if requeued > 0 {
		rw.logger.Info("re-enqueued due retries", zap.Int("count", requeued))
	}
}
