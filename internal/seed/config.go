package seed

import "time"

// Config holds configuration for the seed run.
type Config struct {
	BaseURL     string        // Base URL of the service
	PostgresDSN string        // DSN of the database the service runs against
	Categories  int           // Number of award categories to create
	Creators    int           // Number of creators per category
	Voters      int           // Number of distinct voters
	Judges      int           // Number of judges scoring every nominee
	Workers     int           // Number of concurrent submitters
	Timeout     time.Duration // HTTP request timeout
	Verbose     bool          // Enable verbose logging
}

// ballot is one vote to submit.
type ballot struct {
	UserID    string `json:"user_id"`
	NomineeID string `json:"nominee_id"`
}

// rubric is one judge score to submit.
type rubric struct {
	JudgeID     string `json:"judge_id"`
	NomineeID   string `json:"nominee_id"`
	Consistency int    `json:"consistency"`
	Influence   int    `json:"influence"`
	Engagement  int    `json:"engagement"`
	Quality     int    `json:"quality"`
}

// ackResponse mirrors the intake acknowledgement shape.
type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// resultEntry mirrors one published leaderboard row.
type resultEntry struct {
	Rank        int     `json:"rank"`
	TotalPoints float64 `json:"total_points"`
	VotePoints  float64 `json:"vote_points"`
	JudgePoints float64 `json:"judge_points"`
	NomineeID   string  `json:"nominee_id"`
	CategoryID  string  `json:"category_id"`
}

// Stats holds seed run statistics.
type Stats struct {
	CategoriesCreated int
	NomineesCreated   int
	BallotsSubmitted  int
	BallotsAccepted   int
	BallotsDuplicate  int
	BallotsFailed     int
	RubricsSubmitted  int
	ResultRows        int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
