// Package app provides the core business service that implements
// the dependencies required by the HTTP API.
package app

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	ballotqueue "github.com/okian/laurel/internal/adapters/mq/queue"
	workerpool "github.com/okian/laurel/internal/adapters/mq/worker"
	"github.com/okian/laurel/internal/adapters/repository"
	"github.com/okian/laurel/internal/config"
	"github.com/okian/laurel/internal/domain/dedupe"
	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/internal/domain/scoring"
	"github.com/okian/laurel/internal/domain/types"
	"github.com/okian/laurel/pkg/logger"
	"github.com/okian/laurel/pkg/metrics"
)

// RunSummary describes one completed recompute run.
type RunSummary = types.RunSummary

// Service implements the API dependencies for the awards system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store       repository.Store
	deduper     dedupe.Deduper
	ballotQueue ballotqueue.Queue
	pool        *workerpool.Pool

	// Configuration
	storeBackend     string
	postgresDSN      string
	workerCount      int
	queueSize        int
	dedupeSize       int
	recomputeTimeout time.Duration

	// recomputeMu serializes recompute runs: a second trigger while one
	// is in flight is rejected, never interleaved.
	recomputeMu sync.Mutex

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storeBackend:     config.BackendMemory,
		workerCount:      runtime.NumCPU() * 2,
		queueSize:        50_000,
		dedupeSize:       200_000,
		recomputeTimeout: time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("app")
	}

	if s.store == nil {
		switch s.storeBackend {
		case config.BackendPostgres:
			store, err := repository.NewPostgresStore(ctx, s.postgresDSN)
			if err != nil {
				return fmt.Errorf("start postgres store: %w", err)
			}
			s.store = store
			s.logger.Info(ctx, "using postgres store")
		default:
			s.store = repository.NewMemoryStore()
			s.logger.Info(ctx, "using in-memory store")
		}
	}

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.ballotQueue = ballotqueue.NewInMemoryQueue(
		ballotqueue.WithCapacity(s.queueSize),
	)
	s.pool = workerpool.NewPool(s.workerCount, s.ballotQueue, s.store,
		workerpool.WithDeduper(s.deduper),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "awards service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping awards service...")

	if s.pool != nil {
		s.pool.Stop()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error(ctx, "error closing store", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "awards service stopped")
}

// CastVote submits one ballot. Returns duplicate=true when the (user,
// nominee) pair already voted, and accepted=false on backpressure.
func (s *Service) CastVote(ctx context.Context, userID, nomineeID string) (accepted, duplicate bool) {
	key := dedupe.Key(userID, nomineeID)
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordBallotDuplicate()
		return true, true
	}

	b := model.Ballot{UserID: userID, NomineeID: nomineeID, CastAt: time.Now().UTC()}
	if ok := s.ballotQueue.Enqueue(ctx, b); !ok {
		// Roll back the seen mark so the voter can retry.
		s.deduper.Unrecord(ctx, key)
		return false, false
	}
	metrics.RecordBallotAccepted()
	return true, false
}

// SubmitJudgeScore validates and stores a judge's rubric for a nominee.
func (s *Service) SubmitJudgeScore(ctx context.Context, sc model.JudgeScore) error {
	for _, sub := range []int{sc.Consistency, sc.Influence, sc.Engagement, sc.Quality} {
		if sub < 1 || sub > 3 {
			return ErrInvalidRubric
		}
	}
	sc.Total = sc.Consistency + sc.Influence + sc.Engagement + sc.Quality
	sc.UpdatedAt = time.Now().UTC()

	if err := s.store.UpsertJudgeScore(ctx, sc); err != nil {
		return fmt.Errorf("submit judge score: %w", err)
	}
	metrics.RecordJudgeScoreUpserted()
	return nil
}

// Nominate records a community nomination for admin review.
func (s *Service) Nominate(ctx context.Context, userID, categoryID, creatorID, reason string) (model.Nomination, error) {
	n := model.Nomination{
		ID:         uuid.NewString(),
		UserID:     userID,
		CategoryID: categoryID,
		CreatorID:  creatorID,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.CreateNomination(ctx, n); err != nil {
		return model.Nomination{}, fmt.Errorf("nominate: %w", err)
	}
	return n, nil
}

// ApproveNomination turns a nomination into an approved nominee.
func (s *Service) ApproveNomination(ctx context.Context, nominationID string) (model.Nominee, error) {
	nomination, err := s.store.GetNomination(ctx, nominationID)
	if err != nil {
		return model.Nominee{}, fmt.Errorf("approve nomination: %w", err)
	}

	nominee, err := s.store.EnsureNominee(ctx, model.Nominee{
		ID:         uuid.NewString(),
		CategoryID: nomination.CategoryID,
		CreatorID:  nomination.CreatorID,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return model.Nominee{}, fmt.Errorf("approve nomination: %w", err)
	}
	return nominee, nil
}

// Nominations lists pending nominations for admin review.
func (s *Service) Nominations(ctx context.Context) ([]model.Nomination, error) {
	return s.store.ListNominations(ctx)
}

// Categories lists active categories.
func (s *Service) Categories(ctx context.Context) ([]types.CategoryEntry, error) {
	cats, err := s.store.ListActiveCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.CategoryEntry, len(cats))
	for i, c := range cats {
		out[i] = types.CategoryEntry{ID: c.ID, Name: c.Name}
	}
	return out, nil
}

// Nominees lists a category's approved nominees with creator names.
func (s *Service) Nominees(ctx context.Context, categoryID string) ([]types.NomineeEntry, error) {
	rows, err := s.store.ListNomineesWithCreators(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	out := make([]types.NomineeEntry, len(rows))
	for i, r := range rows {
		out[i] = types.NomineeEntry{
			ID:          r.ID,
			CategoryID:  r.CategoryID,
			CreatorID:   r.CreatorID,
			CreatorName: r.CreatorName,
		}
	}
	return out, nil
}

// Results returns the published leaderboard.
func (s *Service) Results(ctx context.Context) ([]types.ResultEntry, error) {
	rows, err := s.store.ListResults(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.ResultEntry, len(rows))
	for i, r := range rows {
		out[i] = types.ResultEntry{
			Rank:         r.Rank,
			TotalPoints:  r.TotalPoints,
			VotePoints:   r.VotePoints,
			JudgePoints:  r.JudgePoints,
			NomineeID:    r.NomineeID,
			CategoryID:   r.CategoryID,
			CategoryName: r.CategoryName,
			CreatorName:  r.CreatorName,
			Platform:     r.Platform,
			ChannelURL:   r.ChannelURL,
		}
	}
	return out, nil
}

// ComputeAll scores every active category against a snapshot of votes and
// judge scores. Pure with respect to the store: nothing is written.
// Any read failure aborts the whole run.
func (s *Service) ComputeAll(ctx context.Context) ([]model.CategoryResults, error) {
	categories, err := s.store.ListActiveCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	// Categories are independent; score them concurrently. The first
	// error cancels the rest.
	results := make([]model.CategoryResults, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, cat := range categories {
		i, cat := i, cat
		g.Go(func() error {
			res, err := s.scoreCategory(gctx, cat)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// scoreCategory loads one category's snapshot and ranks it. Vote counts
// and judge totals arrive in one batched query each.
func (s *Service) scoreCategory(ctx context.Context, cat model.Category) (model.CategoryResults, error) {
	out := model.CategoryResults{CategoryID: cat.ID, CategoryName: cat.Name}

	nominees, err := s.store.ListApprovedNominees(ctx, cat.ID)
	if err != nil {
		return out, fmt.Errorf("category %s: list nominees: %w", cat.ID, err)
	}
	if len(nominees) == 0 {
		return out, nil
	}

	ids := make([]string, len(nominees))
	for i, n := range nominees {
		ids[i] = n.ID
	}

	voteCounts, err := s.store.CountVotes(ctx, ids)
	if err != nil {
		return out, fmt.Errorf("category %s: count votes: %w", cat.ID, err)
	}
	judgeTotals, err := s.store.ListJudgeTotals(ctx, ids)
	if err != nil {
		return out, fmt.Errorf("category %s: list judge totals: %w", cat.ID, err)
	}

	out.Results = scoring.RankCategory(scoring.Input{
		Nominees:    nominees,
		VoteCounts:  voteCounts,
		JudgeTotals: judgeTotals,
	})
	return out, nil
}

// Recompute runs a full scoring pass and publishes the results. At most
// one run executes at a time; concurrent triggers get ErrRecomputeInFlight.
func (s *Service) Recompute(ctx context.Context) (RunSummary, error) {
	if !s.recomputeMu.TryLock() {
		metrics.RecordRecomputeRejected()
		return RunSummary{}, ErrRecomputeInFlight
	}
	defer s.recomputeMu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, s.recomputeTimeout)
	defer cancel()

	start := time.Now()
	results, err := s.ComputeAll(runCtx)
	if err != nil {
		metrics.RecordRecomputeFailure()
		return RunSummary{}, fmt.Errorf("recompute: %w", err)
	}

	rows := flattenResults(results)
	if err := s.store.ReplaceFinalScores(runCtx, rows); err != nil {
		metrics.RecordRecomputeFailure()
		return RunSummary{}, fmt.Errorf("recompute publish: %w", err)
	}

	elapsed := time.Since(start)
	metrics.RecordRecomputeRun()
	metrics.RecordRecomputeDuration(float64(elapsed.Milliseconds()))
	metrics.UpdatePublishedRows(len(rows))
	metrics.UpdateCategoriesScored(len(results))

	summary := RunSummary{
		Categories: len(results),
		Rows:       len(rows),
		Duration:   elapsed,
		DurationMS: elapsed.Milliseconds(),
	}
	s.logger.Info(ctx, "recompute run published",
		logger.Int("categories", summary.Categories),
		logger.Int("rows", summary.Rows),
		logger.Any("duration", elapsed),
	)
	return summary, nil
}

// flattenResults converts ranked category results into final score rows.
func flattenResults(results []model.CategoryResults) []model.FinalScore {
	var rows []model.FinalScore
	for _, cat := range results {
		for _, r := range cat.Results {
			rows = append(rows, model.FinalScore{
				NomineeID:   r.NomineeID,
				VotePoints:  r.VotePoints,
				JudgePoints: r.JudgePoints,
				TotalPoints: r.FinalScore,
				Rank:        r.Rank,
			})
		}
	}
	return rows
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"backend":     s.storeBackend,
	}
	if s.started {
		stats["queueLength"] = s.ballotQueue.Len(context.Background())
		stats["dedupeEntries"] = s.deduper.Size()
	}
	return stats
}
