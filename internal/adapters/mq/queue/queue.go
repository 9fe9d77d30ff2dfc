// Package queue buffers profile updates between the HTTP layer and the
// ingestion workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/pkg/metrics"
)

const defaultQueueCapacity = 10_000

// Update is the payload type flowing through the queue.
type Update = model.ProfileUpdate

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an update without blocking. It returns ErrFull when the
	// queue is at capacity and ErrClosed after Close.
	Enqueue(ctx context.Context, u Update) error

	// Dequeue returns the channel workers receive updates from. Every caller
	// shares the buffer itself, so an update is either queued or delivered,
	// never held in between. The channel is closed once the queue is closed
	// and drained.
	Dequeue(ctx context.Context) <-chan Update

	// Len returns the current number of queued updates.
	Len(ctx context.Context) int

	// Capacity returns the maximum number of queued updates.
	Capacity() int

	// Close stops accepting updates. Already queued updates are still delivered.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	updates  chan Update
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.updates = make(chan Update, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)
	return q
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, u Update) error { //nolint:gocritic // hugeParam: sent by value over the channel
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return err
	}

	select {
	case q.updates <- u:
		metrics.RecordQueueEnqueue()
		q.observe()
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Update {
	return q.updates
}

func (q *InMemoryQueue) Len(_ context.Context) int {
	q.observe()
	return len(q.updates)
}

func (q *InMemoryQueue) Capacity() int {
	return q.capacity
}

func (q *InMemoryQueue) observe() {
	size := len(q.updates)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.updates)
	q.closed = true
	return nil
}

func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
