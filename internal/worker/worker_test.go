package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/provider"
	"github.com/notifyhub/jobboard/internal/queue"
	"github.com/notifyhub/jobboard/internal/ratelimiter"
)

// flakyProvider fails the first failures calls, then succeeds.
type flakyProvider struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (p *flakyProvider) Send(_ context.Context, _ *domain.Email) (*provider.SendResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls <= p.failures {
		return nil, errors.New("relay unavailable")
	}
	return &provider.SendResponse{MessageID: "m"}, nil
}

func newItem(id string) queue.Item {
	return queue.Item{
		Email:    &domain.Email{ID: id, To: "x@example.com", Priority: domain.PriorityHigh},
		Priority: domain.PriorityHigh,
	}
}

func TestWorker_SendsAndReportsLatency(t *testing.T) {
	q := queue.New()
	prov := &flakyProvider{}
	var sent int
	w := NewWorker(0, q, prov, ratelimiter.New(100), nil, 3, zap.NewNop(), MetricHooks{
		OnSent: func(time.Duration) { sent++ },
	})

	w.process(context.Background(), newItem("e1"))

	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, prov.calls)
}

func TestWorker_FailureSchedulesRetry(t *testing.T) {
	q := queue.New()
	rw := NewRetryWorker(q, []time.Duration{time.Minute}, time.Second, zap.NewNop())
	prov := &flakyProvider{failures: 1}
	var retried, failed int
	w := NewWorker(0, q, prov, ratelimiter.New(100), rw, 3, zap.NewNop(), MetricHooks{
		OnRetry:  func() { retried++ },
		OnFailed: func() { failed++ },
	})

	item := newItem("e1")
	w.process(context.Background(), item)

	assert.Equal(t, 1, retried)
	assert.Zero(t, failed)
	assert.Equal(t, 1, rw.Pending())
	assert.Equal(t, 1, item.Email.Attempts)
}

func TestWorker_DropsAfterMaxAttempts(t *testing.T) {
	q := queue.New()
	rw := NewRetryWorker(q, []time.Duration{time.Minute}, time.Second, zap.NewNop())
	prov := &flakyProvider{failures: 10}
	var failed int
	w := NewWorker(0, q, prov, ratelimiter.New(100), rw, 2, zap.NewNop(), MetricHooks{
		OnFailed: func() { failed++ },
	})

	item := newItem("e1")
	item.Email.Attempts = 1
	w.process(context.Background(), item)

	assert.Equal(t, 1, failed)
	assert.Zero(t, rw.Pending())
}

func TestRetryWorker_RequeuesWhenDue(t *testing.T) {
	q := queue.New()
	rw := NewRetryWorker(q, []time.Duration{5 * time.Second, 30 * time.Second}, time.Second, zap.NewNop())
	now := time.Unix(1_700_000_000, 0)
	rw.now = func() time.Time { return now }

	first := newItem("first")
	first.Email.Attempts = 1
	second := newItem("second")
	second.Email.Attempts = 2
	rw.Schedule(first)
	rw.Schedule(second)

	now = now.Add(6 * time.Second)
	rw.poll()

	assert.Equal(t, 1, rw.Pending())
	high, normal, _ := q.Depths()
	assert.Zero(t, high)
	require.Equal(t, 1, normal)

	got, ok := q.Dequeue(context.Background())
	require.True(t, ok)
	assert.Equal(t, "first", got.Email.ID)
	assert.Equal(t, domain.PriorityNormal, got.Priority)

	now = now.Add(30 * time.Second)
	rw.poll()
	assert.Zero(t, rw.Pending())
}

func TestRetryWorker_DelayClampsToLastBackoff(t *testing.T) {
	rw := NewRetryWorker(queue.New(), []time.Duration{time.Second, 2 * time.Second}, time.Second, zap.NewNop())
	assert.Equal(t, time.Second, rw.delay(1))
	assert.Equal(t, 2*time.Second, rw.delay(2))
	assert.Equal(t, 2*time.Second, rw.delay(7))
}

func TestPool_DeliversQueuedEmails(t *testing.T) {
	q := queue.New()
	prov := &flakyProvider{}
	var mu sync.Mutex
	sent := 0
	p := &Pool{workers: []*Worker{
		NewWorker(0, q, prov, ratelimiter.New(1000), nil, 3, zap.NewNop(), MetricHooks{
			OnSent: func(time.Duration) { mu.Lock(); sent++; mu.Unlock() },
		}),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(newItem("e")))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return sent == 5
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	p.Wait()
}
