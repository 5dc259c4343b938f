package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/provider"
	"github.com/notifyhub/jobboard/internal/queue"
	"github.com/notifyhub/jobboard/internal/ratelimiter"
)

// Worker is a single goroutine that continuously pulls emails from the
// priority queue, waits on the shared rate limiter, delivers via the provider
// and hands failures to the retry worker.
type Worker struct {
	id          int
	q           *queue.PriorityQueue
	prov        provider.Provider
	limiter     *ratelimiter.MailLimiter
	retries     *RetryWorker
	maxAttempts int
	logger      *zap.Logger

	// Hooks for metrics, injected by the pool so the worker stays metrics-agnostic.
	onSent   func(latency time.Duration)
	onFailed func()
	onRetry  func()
}

// NewWorker constructs a worker. Nil hooks are no-ops.
func NewWorker(
	id int,
	q *queue.PriorityQueue,
	prov provider.Provider,
	limiter *ratelimiter.MailLimiter,
	retries *RetryWorker,
	maxAttempts int,
	logger *zap.Logger,
	hooks MetricHooks,
) *Worker {
	w := &Worker{
		id: id, q: q, prov: prov, limiter: limiter, retries: retries,
		maxAttempts: maxAttempts, logger: logger,
		onSent: hooks.OnSent, onFailed: hooks.OnFailed, onRetry: hooks.OnRetry,
	}
	if w.onSent == nil {
		w.onSent = func(time.Duration) {}
	}
	if w.onFailed == nil {
		w.onFailed = func() {}
	}
	if w.onRetry == nil {
		w.onRetry = func() {}
	}
	return w
}

// Run blocks until ctx is cancelled, processing one queue item per iteration.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("mail worker started", zap.Int("id", w.id))
	for {
		item, ok := w.q.Dequeue(ctx)
		if !ok {
			w.logger.Info("mail worker stopping", zap.Int("id", w.id))
			return
		}
		w.process(ctx, item)
	}
}

func (w *Worker) process(ctx context.Context, item queue.Item) {
	e := item.Email
	log := w.logger.With(
		zap.String("email_id", e.ID),
		zap.String("priority", string(item.Priority)),
	)

	if err := w.limiter.Wait(ctx); err != nil {
		// ctx cancelled while waiting: shutting down.
		return
	}

	start := time.Now()
	resp, err := w.prov.Send(ctx, e)
	elapsed := time.Since(start)
	e.Attempts++

	if err != nil {
		if e.Attempts >= w.maxAttempts || w.retries == nil {
			log.Error("email dropped: attempts exhausted",
				zap.Error(err), zap.Int("attempts", e.Attempts))
			w.onFailed()
			return
		}
		log.Warn("provider send failed, scheduling retry",
			zap.Error(err), zap.Int("attempts", e.Attempts))
		w.retries.Schedule(item)
		w.onRetry()
		return
	}

	w.onSent(elapsed)
	log.Info("email sent",
		zap.String("provider_msg_id", resp.MessageID),
		zap.Duration("latency", elapsed),
		zap.Int("attempts", e.Attempts),
	)
}
