// Package model contains domain models passed between layers.
package model

import "time"

// Category is a competition unit. Scoring runs once per active category,
// independently of all others.
type Category struct {
	ID        string
	Name      string
	Active    bool
	CreatedAt time.Time
}

// Creator is a content creator that can be nominated.
type Creator struct {
	ID         string
	Name       string
	Platform   string // youtube, tiktok, twitch, other
	ChannelURL string
	CreatedAt  time.Time
}

// Nomination is a community suggestion awaiting admin review.
type Nomination struct {
	ID         string
	UserID     string
	CategoryID string
	CreatorID  string
	Reason     string
	CreatedAt  time.Time
}

// Nominee is an approved (creator, category) pairing eligible for voting
// and judging. Only approved nominees participate in scoring.
type Nominee struct {
	ID         string
	CategoryID string
	CreatorID  string
	Approved   bool
	CreatedAt  time.Time
}

// Ballot is a single community vote flowing through the intake pipeline.
// A user may cast at most one ballot per nominee.
type Ballot struct {
	UserID    string
	NomineeID string
	CastAt    time.Time
}

// JudgeScore holds one judge's rubric evaluation of a nominee.
// Each sub-score is an integer in [1,3]; Total is their sum in [4,12].
type JudgeScore struct {
	JudgeID     string
	NomineeID   string
	Consistency int
	Influence   int
	Engagement  int
	Quality     int
	Total       int
	UpdatedAt   time.Time
}

// ScoreResult is the per-nominee outcome of one scoring pass. It is
// ephemeral: computed in memory and never stored as-is.
type ScoreResult struct {
	NomineeID   string
	CategoryID  string
	VoteCount   int
	VotePoints  float64
	JudgePoints float64
	FinalScore  float64
	Rank        int
}

// CategoryResults groups one category's ranked results.
type CategoryResults struct {
	CategoryID   string
	CategoryName string
	Results      []ScoreResult
}

// FinalScore is a published leaderboard row. Rows belong to a result
// batch; readers only ever see the active batch.
type FinalScore struct {
	NomineeID   string
	VotePoints  float64
	JudgePoints float64
	TotalPoints float64
	Rank        int
}
