// Package dedupe provides fast-path duplicate detection for ballots.
//
// The cache fronts the votes table: a repeat (user, nominee) pair is
// rejected without a database round-trip. The table's primary key remains
// the source of truth, so eviction from a bounded cache is safe: an
// evicted duplicate simply falls through to ON CONFLICT DO NOTHING.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen ballot keys to ensure at-most-once intake.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord removes a key, allowing the ballot to be retried. Used when
	// a ballot was recorded but failed to enter the pipeline.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// Key builds the dedupe key for a ballot.
func Key(userID, nomineeID string) string {
	return userID + "|" + nomineeID
}

// inMemoryDeduper implements Deduper with a map plus a FIFO eviction ring.
// With maxSize <= 0 the cache is unbounded and nothing is ever evicted.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string // insertion order, oldest at head
	head    int
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.ring = make([]string, 0, d.maxSize)
	}
	return d
}

// SeenAndRecord atomically checks if key was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}

	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}

	d.seen[key] = struct{}{}
	if d.maxSize > 0 {
		d.ring = append(d.ring, key)
	}
	d.size.Store(int64(len(d.seen)))
	return false
}

// Unrecord removes a key from the seen set.
func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// The ring may keep a stale entry; evictOldest skips keys that are no
	// longer in the map.
	delete(d.seen, key)
	d.size.Store(int64(len(d.seen)))
}

// Size returns the current number of recorded keys.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

// evictOldest drops the oldest live key. Caller holds the lock.
func (d *inMemoryDeduper) evictOldest() {
	for d.head < len(d.ring) {
		key := d.ring[d.head]
		d.head++
		if _, ok := d.seen[key]; ok {
			delete(d.seen, key)
			break
		}
	}
	// Compact once the consumed prefix dominates the ring.
	if d.head > len(d.ring)/2 {
		d.ring = append(d.ring[:0], d.ring[d.head:]...)
		d.head = 0
	}
}
