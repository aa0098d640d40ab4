package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/laurel/internal/adapters/repository"
	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

// newTestService builds a started service over a fresh memory store.
func newTestService(t *testing.T, opts ...Option) (*Service, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	opts = append([]Option{WithStore(store), WithWorkerCount(2), WithQueueSize(64)}, opts...)
	svc := New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc, store
}

func seedAwards(t *testing.T, store *repository.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	mustNil := func(err error) {
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	mustNil(store.CreateCategory(ctx, model.Category{ID: "cat-1", Name: "Best Streamer", Active: true, CreatedAt: base}))
	mustNil(store.CreateCreator(ctx, model.Creator{ID: "cr-1", Name: "Pixel", Platform: "twitch", ChannelURL: "https://twitch.tv/pixel", CreatedAt: base}))
	mustNil(store.CreateCreator(ctx, model.Creator{ID: "cr-2", Name: "Quartz", Platform: "youtube", ChannelURL: "https://youtube.com/@quartz", CreatedAt: base}))
	mustNil(store.CreateCreator(ctx, model.Creator{ID: "cr-3", Name: "Rune", Platform: "twitch", ChannelURL: "https://twitch.tv/rune", CreatedAt: base}))

	for i, nom := range []model.Nominee{
		{ID: "nom-1", CategoryID: "cat-1", CreatorID: "cr-1"},
		{ID: "nom-2", CategoryID: "cat-1", CreatorID: "cr-2"},
		{ID: "nom-3", CategoryID: "cat-1", CreatorID: "cr-3"},
	} {
		nom.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if _, err := store.EnsureNominee(ctx, nom); err != nil {
			t.Fatalf("seed nominee: %v", err)
		}
	}
}

// waitFor polls until cond returns true or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestCastVote(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service with seeded nominees", t, func() {
		svc, store := newTestService(t)
		seedAwards(t, store)

		Convey("When a user votes once", func() {
			accepted, duplicate := svc.CastVote(ctx, "user-1", "nom-1")

			Convey("Then the ballot is accepted and eventually written", func() {
				So(accepted, ShouldBeTrue)
				So(duplicate, ShouldBeFalse)
				ok := waitFor(t, 2*time.Second, func() bool {
					counts, err := store.CountVotes(ctx, []string{"nom-1"})
					return err == nil && counts["nom-1"] == 1
				})
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When the same user votes for the same nominee twice", func() {
			svc.CastVote(ctx, "user-1", "nom-1")
			accepted, duplicate := svc.CastVote(ctx, "user-1", "nom-1")

			Convey("Then the second ballot is acknowledged as a duplicate", func() {
				So(accepted, ShouldBeTrue)
				So(duplicate, ShouldBeTrue)
				waitFor(t, 2*time.Second, func() bool {
					counts, _ := store.CountVotes(ctx, []string{"nom-1"})
					return counts["nom-1"] == 1
				})
				counts, err := store.CountVotes(ctx, []string{"nom-1"})
				So(err, ShouldBeNil)
				So(counts["nom-1"], ShouldEqual, 1)
			})
		})

		Convey("When the same user votes in two nominees", func() {
			a1, d1 := svc.CastVote(ctx, "user-1", "nom-1")
			a2, d2 := svc.CastVote(ctx, "user-1", "nom-2")

			Convey("Then both ballots count", func() {
				So(a1, ShouldBeTrue)
				So(d1, ShouldBeFalse)
				So(a2, ShouldBeTrue)
				So(d2, ShouldBeFalse)
			})
		})
	})
}

func TestSubmitJudgeScore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc, store := newTestService(t)
		seedAwards(t, store)

		Convey("When a judge submits a valid rubric", func() {
			err := svc.SubmitJudgeScore(ctx, model.JudgeScore{
				JudgeID:     "judge-1",
				NomineeID:   "nom-1",
				Consistency: 3,
				Influence:   2,
				Engagement:  3,
				Quality:     1,
			})

			Convey("Then the total is the sum of the sub-scores", func() {
				So(err, ShouldBeNil)
				totals, err := store.ListJudgeTotals(ctx, []string{"nom-1"})
				So(err, ShouldBeNil)
				So(totals["nom-1"], ShouldResemble, []int{9})
			})
		})

		Convey("When a sub-score is out of range", func() {
			err := svc.SubmitJudgeScore(ctx, model.JudgeScore{
				JudgeID:     "judge-1",
				NomineeID:   "nom-1",
				Consistency: 4,
				Influence:   2,
				Engagement:  2,
				Quality:     2,
			})

			Convey("Then the submission is rejected", func() {
				So(errors.Is(err, ErrInvalidRubric), ShouldBeTrue)
			})
		})

		Convey("When a judge rescores the same nominee", func() {
			So(svc.SubmitJudgeScore(ctx, model.JudgeScore{
				JudgeID: "judge-1", NomineeID: "nom-1",
				Consistency: 1, Influence: 1, Engagement: 1, Quality: 1,
			}), ShouldBeNil)
			So(svc.SubmitJudgeScore(ctx, model.JudgeScore{
				JudgeID: "judge-1", NomineeID: "nom-1",
				Consistency: 3, Influence: 3, Engagement: 3, Quality: 3,
			}), ShouldBeNil)

			Convey("Then only the latest rubric remains", func() {
				totals, err := store.ListJudgeTotals(ctx, []string{"nom-1"})
				So(err, ShouldBeNil)
				So(totals["nom-1"], ShouldResemble, []int{12})
			})
		})
	})
}

func TestNominationFlow(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc, store := newTestService(t)
		seedAwards(t, store)

		Convey("When a user nominates a creator and an admin approves", func() {
			nomination, err := svc.Nominate(ctx, "user-9", "cat-1", "cr-2", "carried the charity run")
			So(err, ShouldBeNil)

			nominee, err := svc.ApproveNomination(ctx, nomination.ID)

			Convey("Then the creator becomes an approved nominee in the category", func() {
				So(err, ShouldBeNil)
				So(nominee.CategoryID, ShouldEqual, "cat-1")
				So(nominee.CreatorID, ShouldEqual, "cr-2")
				So(nominee.Approved, ShouldBeTrue)

				noms, err := store.ListApprovedNominees(ctx, "cat-1")
				So(err, ShouldBeNil)
				So(len(noms), ShouldEqual, 3) // cr-2 was already a nominee
			})
		})

		Convey("When approving an unknown nomination", func() {
			_, err := svc.ApproveNomination(ctx, "missing")

			Convey("Then the lookup error surfaces", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestRecompute(t *testing.T) {
	ctx := context.Background()

	Convey("Given seeded nominees with votes and judge scores", t, func() {
		svc, store := newTestService(t)
		seedAwards(t, store)

		// nom-1: 3 votes, nom-2: 1 vote, nom-3: 0 votes.
		for i, nomineeID := range []string{"nom-1", "nom-1", "nom-1", "nom-2"} {
			userID := "voter-" + string(rune('a'+i))
			if _, err := store.InsertVote(ctx, model.Ballot{UserID: userID, NomineeID: nomineeID}); err != nil {
				t.Fatalf("seed vote: %v", err)
			}
		}
		So(svc.SubmitJudgeScore(ctx, model.JudgeScore{
			JudgeID: "judge-1", NomineeID: "nom-2",
			Consistency: 3, Influence: 3, Engagement: 3, Quality: 3,
		}), ShouldBeNil)

		Convey("When a recompute run completes", func() {
			summary, err := svc.Recompute(ctx)

			Convey("Then the leaderboard is published with full rankings", func() {
				So(err, ShouldBeNil)
				So(summary.Categories, ShouldEqual, 1)
				So(summary.Rows, ShouldEqual, 3)

				results, err := svc.Results(ctx)
				So(err, ShouldBeNil)
				So(len(results), ShouldEqual, 3)

				// nom-2: 4 vote points + 12 judge points beats nom-1's 5.
				So(results[0].NomineeID, ShouldEqual, "nom-2")
				So(results[0].Rank, ShouldEqual, 1)
				So(results[0].TotalPoints, ShouldEqual, 16.0)
				So(results[0].CreatorName, ShouldEqual, "Quartz")
				So(results[0].CategoryName, ShouldEqual, "Best Streamer")

				So(results[1].NomineeID, ShouldEqual, "nom-1")
				So(results[1].Rank, ShouldEqual, 2)
				So(results[1].TotalPoints, ShouldEqual, 5.0)

				So(results[2].NomineeID, ShouldEqual, "nom-3")
				So(results[2].Rank, ShouldEqual, 3)
				So(results[2].TotalPoints, ShouldEqual, 3.0)
			})
		})

		Convey("When recompute runs twice without data changes", func() {
			_, err := svc.Recompute(ctx)
			So(err, ShouldBeNil)
			first, err := svc.Results(ctx)
			So(err, ShouldBeNil)

			_, err = svc.Recompute(ctx)
			So(err, ShouldBeNil)
			second, err := svc.Results(ctx)
			So(err, ShouldBeNil)

			Convey("Then the published leaderboard is unchanged", func() {
				So(second, ShouldResemble, first)
			})
		})
	})
}

func TestRecomputeSingleFlight(t *testing.T) {
	Convey("Given a service whose compute is artificially slow", t, func() {
		slow := &slowStore{Store: seededStore(t), delay: 150 * time.Millisecond}
		svc := New(WithStore(slow), WithWorkerCount(1))
		So(svc.Start(context.Background()), ShouldBeNil)
		Reset(svc.Stop)

		Convey("When two recompute triggers race", func() {
			var wg sync.WaitGroup
			errs := make([]error, 2)
			wg.Add(2)
			for i := 0; i < 2; i++ {
				i := i
				go func() {
					defer wg.Done()
					_, errs[i] = svc.Recompute(context.Background())
				}()
			}
			wg.Wait()

			Convey("Then exactly one run executes and one is rejected", func() {
				var ran, rejected int
				for _, err := range errs {
					switch {
					case err == nil:
						ran++
					case errors.Is(err, ErrRecomputeInFlight):
						rejected++
					}
				}
				So(ran, ShouldEqual, 1)
				So(rejected, ShouldEqual, 1)
			})
		})
	})
}

func TestComputeAllEmptyCategory(t *testing.T) {
	ctx := context.Background()

	Convey("Given an active category with no approved nominees", t, func() {
		svc, store := newTestService(t)
		So(store.CreateCategory(ctx, model.Category{
			ID: "cat-empty", Name: "Best Newcomer", Active: true, CreatedAt: time.Now().UTC(),
		}), ShouldBeNil)

		Convey("When a recompute run completes", func() {
			summary, err := svc.Recompute(ctx)

			Convey("Then the category scores to an empty result set", func() {
				So(err, ShouldBeNil)
				So(summary.Categories, ShouldEqual, 1)
				So(summary.Rows, ShouldEqual, 0)

				results, err := svc.Results(ctx)
				So(err, ShouldBeNil)
				So(results, ShouldBeEmpty)
			})
		})
	})
}

func TestGetStats(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, _ := newTestService(t)

		Convey("Then stats expose the runtime shape", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats, ShouldContainKey, "queueLength")
			So(stats, ShouldContainKey, "dedupeEntries")
		})
	})
}

// seededStore returns a memory store with one category and two nominees.
func seededStore(t *testing.T) *repository.MemoryStore {
	t.Helper()
	store := repository.NewMemoryStore()
	seedAwards(t, store)
	return store
}

// slowStore delays category listing to widen the recompute window.
type slowStore struct {
	repository.Store
	delay time.Duration
}

func (s *slowStore) ListActiveCategories(ctx context.Context) ([]model.Category, error) {
	time.Sleep(s.delay)
	return s.Store.ListActiveCategories(ctx)
}
