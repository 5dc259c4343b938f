package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/config"
	"github.com/notifyhub/jobboard/internal/provider"
	"github.com/notifyhub/jobboard/internal/queue"
	"github.com/notifyhub/jobboard/internal/ratelimiter"
)

// MetricHooks carries the metric callback functions injected by main.
type MetricHooks struct {
	OnSent   func(latency time.Duration)
	OnFailed func()
	OnRetry  func()
}

// Pool manages the lifecycle of all mail workers.
// All workers share the same priority queue; the queue's double-select
// pattern handles priority ordering internally.
type Pool struct {
	workers []*Worker
	wg      sync.WaitGroup
}

// NewPool creates cfg.MailWorkers identical workers.
func NewPool(
	cfg *config.Config,
	q *queue.PriorityQueue,
	prov provider.Provider,
	limiter *ratelimiter.MailLimiter,
	retries *RetryWorker,
	logger *zap.Logger,
	hooks MetricHooks,
) *Pool {
	n := cfg.MailWorkers
	if n < 1 {
		n = 1
	}
	workers := make([]*Worker, n)
	for i := range workers {
		workers[i] = NewWorker(
			i, q, prov, limiter, retries,
			cfg.MailMaxAttempts,
			logger.With(zap.Int("worker_id", i)),
			hooks,
		)
	}
	return &Pool{workers: workers}
}

// Start launches all workers as goroutines. Cancelling ctx triggers a
// graceful shutdown of the entire pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has returned after ctx is cancelled.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}
