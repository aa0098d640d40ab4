// Package worker defines the writer pool that drains accepted ballots
// into the store.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/laurel/internal/adapters/mq/queue"
	"github.com/okian/laurel/internal/domain/dedupe"
	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/pkg/logger"
	"github.com/okian/laurel/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
)

// Ballot abstracts what workers read off the queue.
type Ballot = model.Ballot

// Inserter persists ballots.
type Inserter interface {
	// InsertVote records a ballot. Returns false when the pair already
	// voted; duplicates are not errors.
	InsertVote(ctx context.Context, b model.Ballot) (bool, error)
}

// Queue defines how workers receive ballots.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Ballot
}

// Worker processes ballots and writes them through the Inserter.
type Worker struct {
	queue    Queue
	inserter Inserter
	deduper  dedupe.Deduper // optional; rolls back the seen mark on write failure
	name     string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewWorker creates a new ballot writer with configuration options.
func NewWorker(q Queue, inserter Inserter, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		inserter: inserter,
		name:     "ballot-writer",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop until ctx is canceled, the queue closes, or
// Shutdown is called.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	ballots := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case b, ok := <-ballots:
			if !ok {
				return
			}
			if err := w.writeBallot(ctx, b); err != nil {
				w.logger.Error(ctx, "ballot write failed", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// writeBallot persists a single ballot.
func (w *Worker) writeBallot(ctx context.Context, b queue.Ballot) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerWriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	inserted, err := w.inserter.InsertVote(ctx, b)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "insert_vote")
		// Let the voter retry: the seen mark must not outlive a failed write.
		if w.deduper != nil {
			w.deduper.Unrecord(ctx, dedupe.Key(b.UserID, b.NomineeID))
		}
		return fmt.Errorf("insert vote for %s: %w", b.NomineeID, err)
	}
	if !inserted {
		// The table caught a duplicate the cache had evicted.
		metrics.RecordBallotDuplicate()
		return nil
	}
	metrics.RecordBallotWritten()
	return nil
}

// Pool manages multiple ballot writers.
type Pool struct {
	workers []*Worker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a pool of workerCount writers over the given queue.
func NewPool(workerCount int, q Queue, inserter Inserter, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*Worker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("ballot-pool"),
	}
	for i := 0; i < workerCount; i++ {
		named := append([]Option{WithName("ballot-writer-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewWorker(q, inserter, named...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop gracefully stops all workers, draining what is already dequeued.
func (p *Pool) Stop() {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(context.Background(), "error closing queue", logger.Error(err))
		}
	}
	for _, w := range p.workers {
		ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
		_ = w.Shutdown(ctx)
		cancel()
	}
}
