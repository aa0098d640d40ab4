// Package queue defines the contract for enqueuing and consuming ballots.
//
// Vote intake is asynchronous: the HTTP layer enqueues accepted ballots and
// the writer pool drains them into the store. The queue is bounded; a full
// queue rejects the ballot so the caller can surface backpressure.
package queue

import (
	"context"
	"sync"

	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/pkg/metrics"
)

// Ballot is the payload type flowing through the queue.
type Ballot = model.Ballot

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a ballot to the queue.
	// Returns false if the queue is full or closed and the ballot was not enqueued.
	Enqueue(ctx context.Context, b Ballot) bool

	// Dequeue returns a channel that receives ballots as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Ballot

	// Len returns the current number of queued ballots.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue. After closing, no new ballots
	// can be enqueued and the dequeue channel is closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	ballots  chan Ballot
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}

	q.ballots = make(chan Ballot, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a ballot to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, b Ballot) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return false
	}

	select {
	case q.ballots <- b:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.ballots))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError("context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError("queue_full")
		return false
	}
}

// Dequeue returns a channel that receives ballots as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Ballot {
	out := make(chan Ballot)
	go func() {
		defer close(out)
		for b := range q.ballots {
			select {
			case out <- b:
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.ballots))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued ballots.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.ballots)
	metrics.UpdateQueueSize(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.ballots)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
