package queue

import (
	"context"
	"fmt"

	"github.com/notifyhub/jobboard/internal/domain"
)

// Default buffer sizes per tier. Transactional mail (new application,
// status change) is high; retries go back in at normal; digests are low.
const (
	DefaultHighCap   = 1000
	DefaultNormalCap = 5000
	DefaultLowCap    = 2000
)

// PriorityQueue dispatches items to one of three buffered channels based on priority.
//
// Workers dequeue via the double-select pattern, which guarantees that
// high-priority items are always served before normal or low ones, while
// still allowing fair competition between normal and low when high is empty.
type PriorityQueue struct {
	high   chan Item
	normal chan Item
	low    chan Item
}

func New() *PriorityQueue {
	return NewWithCapacity(DefaultHighCap, DefaultNormalCap, DefaultLowCap)
}

// NewWithCapacity builds a queue with explicit per-tier buffer sizes.
func NewWithCapacity(high, normal, low int) *PriorityQueue {
	return &PriorityQueue{
		high:   make(chan Item, high),
		normal: make(chan Item, normal),
		low:    make(chan Item, low),
	}
}

// Enqueue places an item on the appropriate priority channel.
// It is non-blocking: if the target channel is full, ErrQueueFull is returned
// immediately rather than blocking the caller.
func (q *PriorityQueue) Enqueue(item Item) error {
	var ch chan Item
	switch item.Priority {
	case domain.PriorityHigh:
		ch = q.high
	case domain.PriorityNormal:
		ch = q.normal
	case domain.PriorityLow:
		ch = q.low
	default:
		return fmt.Errorf("unknown priority %q", item.Priority)
	}
	select {
	case ch <- item:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Dequeue blocks until an item is available or ctx is cancelled.
//
// A non-blocking select drains high first. Only when high is empty does the
// goroutine enter a fair blocking select across all three channels plus the
// done signal.
//
// Returns (Item{}, false) when ctx is cancelled.
func (q *PriorityQueue) Dequeue(ctx context.Context) (Item, bool) {
	select {
	case item := <-q.high:
		return item, true
	default:
	}

	select {
	case item := <-q.high:
		return item, true
	case item := <-q.normal:
		return item, true
	case item := <-q.low:
		return item, true
	case <-ctx.Done():
		return Item{}, false
	}
}

// Depths returns the current number of items waiting in each priority tier.
func (q *PriorityQueue) Depths() (high, normal, low int) {
	return len(q.high), len(q.normal), len(q.low)
}
