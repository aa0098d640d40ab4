package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/laurel/internal/adapters/mq/queue"
	"github.com/okian/laurel/internal/adapters/mq/worker"
	"github.com/okian/laurel/internal/domain/dedupe"
	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

// recordingInserter captures inserted ballots and can be forced to fail.
type recordingInserter struct {
	mu       sync.Mutex
	ballots  []model.Ballot
	failNext bool
}

func (r *recordingInserter) InsertVote(_ context.Context, b model.Ballot) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return false, errors.New("store unavailable")
	}
	for _, seen := range r.ballots {
		if seen.UserID == b.UserID && seen.NomineeID == b.NomineeID {
			return false, nil
		}
	}
	r.ballots = append(r.ballots, b)
	return true, nil
}

func (r *recordingInserter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ballots)
}

func waitFor(cond func() bool) bool {
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return true
		}
		select {
		case <-deadline:
			return false
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestBallotWriter(t *testing.T) {
	ctx := context.Background()

	Convey("Given a writer pool over a ballot queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		ins := &recordingInserter{}
		pool := worker.NewPool(2, q, ins)
		runCtx, cancel := context.WithCancel(ctx)
		pool.Start(runCtx)

		Reset(func() {
			cancel()
		})

		Convey("When ballots are enqueued", func() {
			q.Enqueue(ctx, model.Ballot{UserID: "u1", NomineeID: "n1"})
			q.Enqueue(ctx, model.Ballot{UserID: "u2", NomineeID: "n1"})
			q.Enqueue(ctx, model.Ballot{UserID: "u3", NomineeID: "n2"})

			Convey("Then the pool drains them into the store", func() {
				So(waitFor(func() bool { return ins.count() == 3 }), ShouldBeTrue)
			})
		})

		Convey("When a duplicate slips past the cache", func() {
			q.Enqueue(ctx, model.Ballot{UserID: "u1", NomineeID: "n1"})
			So(waitFor(func() bool { return ins.count() == 1 }), ShouldBeTrue)
			q.Enqueue(ctx, model.Ballot{UserID: "u1", NomineeID: "n1"})

			Convey("Then the store's conflict handling absorbs it", func() {
				So(waitFor(func() bool { return q.Len(ctx) == 0 }), ShouldBeTrue)
				So(ins.count(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a writer with a deduper attached", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		ins := &recordingInserter{failNext: true}
		d := dedupe.NewInMemoryDeduper()
		w := worker.NewWorker(q, ins, worker.WithDeduper(d))
		runCtx, cancel := context.WithCancel(ctx)
		go w.Run(runCtx)

		Reset(func() {
			cancel()
		})

		Convey("When the store rejects a ballot", func() {
			key := dedupe.Key("u9", "n9")
			d.SeenAndRecord(ctx, key)
			q.Enqueue(ctx, model.Ballot{UserID: "u9", NomineeID: "n9"})

			Convey("Then the seen mark is rolled back so the voter can retry", func() {
				So(waitFor(func() bool { return !d.SeenAndRecord(ctx, key) }), ShouldBeTrue)
			})
		})
	})

	Convey("Given a running pool", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		ins := &recordingInserter{}
		pool := worker.NewPool(1, q, ins)
		pool.Start(ctx)

		Convey("When the pool is stopped", func() {
			q.Enqueue(ctx, model.Ballot{UserID: "u1", NomineeID: "n1"})
			pool.Stop()

			Convey("Then the queue is closed and pending ballots were drained", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(waitFor(func() bool { return ins.count() == 1 }), ShouldBeTrue)
			})
		})
	})
}
