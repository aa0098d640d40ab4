// Command seed populates a running awards service with categories,
// creators, nominees, ballots, and judge rubrics, then triggers a scoring
// run and verifies the published leaderboard.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/laurel/internal/seed"
	"github.com/okian/laurel/pkg/logger"
)

// Default seed parameters.
const (
	defaultBaseURL    = "http://localhost:9090"
	defaultCategories = 4
	defaultCreators   = 8
	defaultVoters     = 500
	defaultJudges     = 5
	defaultTimeout    = 30 * time.Second
)

func main() {
	var cfg seed.Config

	flag.StringVar(&cfg.BaseURL, "url", defaultBaseURL, "Base URL of the service")
	flag.StringVar(&cfg.PostgresDSN, "dsn", os.Getenv("LAUREL_POSTGRES_DSN"), "Postgres DSN of the service database")
	flag.IntVar(&cfg.Categories, "categories", defaultCategories, "Number of award categories to create")
	flag.IntVar(&cfg.Creators, "creators", defaultCreators, "Number of creators per category")
	flag.IntVar(&cfg.Voters, "voters", defaultVoters, "Number of distinct voters")
	flag.IntVar(&cfg.Judges, "judges", defaultJudges, "Number of judges scoring every nominee")
	flag.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*2, "Number of concurrent submitters")
	flag.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose logging")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if cfg.Verbose {
		_ = logger.SetLevelString("debug")
	}

	if cfg.PostgresDSN == "" {
		os.Stderr.WriteString("missing -dsn: the seed tool writes the catalog straight to the service database\n")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := seed.Run(ctx, &cfg); err != nil {
		logger.Get().Error(ctx, "seed run failed", logger.Error(err))
		os.Exit(1)
	}
}
