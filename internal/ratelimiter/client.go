package ratelimiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiters keeps one token bucket per client key (the remote IP).
// A client may spend requests tokens at once and regains them evenly over
// window. Idle entries are evicted by Sweep.
type ClientLimiters struct {
	mu      sync.Mutex
	clients map[string]*clientEntry
	limit   rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
}

// NewClientLimiters allows requests per window for each client.
func NewClientLimiters(requests int, window time.Duration) *ClientLimiters {
	return &ClientLimiters{
		clients: make(map[string]*clientEntry),
		limit:   rate.Limit(float64(requests) / window.Seconds()),
		burst:   requests,
		idle:    window,
		now:     time.Now,
	}
}

// Allow reports whether key may make a request now, consuming a token if so.
func (c *ClientLimiters) Allow(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.clients[key]
	if !ok {
		e = &clientEntry{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.clients[key] = e
	}
	e.lastSeen = c.now()
	return e.limiter.AllowN(e.lastSeen, 1)
}

// Sweep drops clients idle for longer than one window. An evicted client
// comes back with a full bucket, which is what it would have regained anyway.
func (c *ClientLimiters) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	cutoff := c.now().Add(-c.idle)
	removed := 0
	for k, e := range c.clients {
		if e.lastSeen.Before(cutoff) {
			delete(c.clients, k)
			removed++
		}
	}
	return removed
}

// Run sweeps on every interval until ctx is cancelled.
func (c *ClientLimiters) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// Len returns the number of tracked clients.
func (c *ClientLimiters) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clients)
}
