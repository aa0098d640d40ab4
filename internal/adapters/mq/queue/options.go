// Package queue defines the contract for enqueuing and consuming ballots.
package queue

// defaultCapacity bounds the queue when no option overrides it.
const defaultCapacity = 100000

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum capacity of the queue.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}
