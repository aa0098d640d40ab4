package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/laurel/pkg/logger"
)

// intakeDrainDelay gives the writer pool time to drain accepted ballots
// before the scoring run snapshots the tables.
const intakeDrainDelay = 2 * time.Second

// Run executes the complete seed flow: catalog, ballots, rubrics, one
// recompute, and a verification pass over the published results.
func Run(ctx context.Context, cfg *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting laurel seed run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("categories", cfg.Categories),
		logger.Int("creatorsPerCategory", cfg.Creators),
		logger.Int("voters", cfg.Voters),
		logger.Int("judges", cfg.Judges),
		logger.Int("workers", cfg.Workers))

	if err := checkServiceHealth(ctx, cfg); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	cat, err := buildCatalog(ctx, cfg, stats)
	if err != nil {
		return fmt.Errorf("catalog setup failed: %w", err)
	}

	ballots := generateBallots(cfg, cat)
	if err := submitBallots(ctx, cfg, ballots, stats); err != nil {
		return fmt.Errorf("ballot submission failed: %w", err)
	}

	rubrics := generateRubrics(cfg, cat)
	if err := submitRubrics(ctx, cfg, rubrics, stats); err != nil {
		return fmt.Errorf("rubric submission failed: %w", err)
	}

	logger.Get().Info(ctx, "waiting for ballot intake to drain")
	time.Sleep(intakeDrainDelay)

	if err := triggerRecompute(ctx, cfg); err != nil {
		return fmt.Errorf("recompute failed: %w", err)
	}

	results, err := fetchResults(ctx, cfg, stats)
	if err != nil {
		return fmt.Errorf("result retrieval failed: %w", err)
	}
	if err := verifyResults(cat, results); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	logger.Get().Info(ctx, "seed run completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, cfg *Config) error {
	client := newHTTPClient(cfg.Timeout)

	resp, err := client.Get(cfg.BaseURL + "/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(ctx, "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// triggerRecompute runs one scoring pass over the seeded data.
func triggerRecompute(ctx context.Context, cfg *Config) error {
	client := newHTTPClient(cfg.Timeout)

	resp, err := client.Send(ctx, http.MethodPost, cfg.BaseURL+"/admin/recompute", nil)
	if err != nil {
		return err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("recompute rejected with status %d: %s", resp.StatusCode, body)
	}

	var summary struct {
		Categories int `json:"categories"`
		Rows       int `json:"rows"`
		DurationMS int `json:"duration_ms"`
	}
	if err := json.Unmarshal(body, &summary); err != nil {
		return fmt.Errorf("parse run summary: %w", err)
	}
	logger.Get().Info(ctx, "recompute run published",
		logger.Int("categories", summary.Categories),
		logger.Int("rows", summary.Rows),
		logger.Int("durationMs", summary.DurationMS))
	return nil
}

// fetchResults downloads the published leaderboard.
func fetchResults(ctx context.Context, cfg *Config, stats *Stats) ([]resultEntry, error) {
	client := newHTTPClient(cfg.Timeout)

	resp, err := client.Get(cfg.BaseURL + "/results")
	if err != nil {
		return nil, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("results rejected with status %d", resp.StatusCode)
	}

	var results []resultEntry
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	stats.ResultRows = len(results)
	return results, nil
}

// verifyResults checks the published leaderboard is internally consistent:
// every seeded category is covered, ranks are contiguous per category, and
// totals equal vote points plus judge points.
func verifyResults(cat *catalog, results []resultEntry) error {
	const pointsEpsilon = 0.005

	ranksByCategory := make(map[string][]int)
	for _, r := range results {
		ranksByCategory[r.CategoryID] = append(ranksByCategory[r.CategoryID], r.Rank)

		if diff := r.TotalPoints - (r.VotePoints + r.JudgePoints); diff > pointsEpsilon || diff < -pointsEpsilon {
			return fmt.Errorf("nominee %s: total %.2f != vote %.2f + judge %.2f",
				r.NomineeID, r.TotalPoints, r.VotePoints, r.JudgePoints)
		}
	}

	for _, category := range cat.categories {
		ranks := ranksByCategory[category.ID]
		if len(ranks) != len(cat.nomineesByCategory[category.ID]) {
			return fmt.Errorf("category %s: got %d result rows, want %d",
				category.Name, len(ranks), len(cat.nomineesByCategory[category.ID]))
		}
		seen := make(map[int]bool, len(ranks))
		for _, rank := range ranks {
			if rank < 1 || rank > len(ranks) || seen[rank] {
				return fmt.Errorf("category %s: bad rank sequence %v", category.Name, ranks)
			}
			seen[rank] = true
		}
	}
	return nil
}

// displayFinalStats prints the final seed statistics.
func displayFinalStats(stats *Stats) {
	var ballotsPerSecond float64
	if stats.Duration > 0 {
		ballotsPerSecond = float64(stats.BallotsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("categoriesCreated", stats.CategoriesCreated),
		logger.Int("nomineesCreated", stats.NomineesCreated),
		logger.Int("ballotsSubmitted", stats.BallotsSubmitted),
		logger.Int("ballotsAccepted", stats.BallotsAccepted),
		logger.Int("ballotsDuplicate", stats.BallotsDuplicate),
		logger.Int("ballotsFailed", stats.BallotsFailed),
		logger.Int("rubricsSubmitted", stats.RubricsSubmitted),
		logger.Int("resultRows", stats.ResultRows),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("ballotsPerSecond", ballotsPerSecond))
}
