// Package types contains common types used across the application
package types

import "time"

// RunSummary describes one completed recompute run.
type RunSummary struct {
	Categories int           `json:"categories"`
	Rows       int           `json:"rows"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
}

// ResultEntry represents one published leaderboard row joined with its
// display fields, as returned by the results API.
type ResultEntry struct {
	Rank         int     `json:"rank"`
	TotalPoints  float64 `json:"total_points"`
	VotePoints   float64 `json:"vote_points"`
	JudgePoints  float64 `json:"judge_points"`
	NomineeID    string  `json:"nominee_id"`
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	CreatorName  string  `json:"creator_name"`
	Platform     string  `json:"platform"`
	ChannelURL   string  `json:"channel_url"`
}

// CategoryEntry is a category as listed by the public API.
type CategoryEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NomineeEntry is an approved nominee as listed by the public API.
type NomineeEntry struct {
	ID          string `json:"id"`
	CategoryID  string `json:"category_id"`
	CreatorID   string `json:"creator_id"`
	CreatorName string `json:"creator_name"`
}

// NominationEntry is a pending nomination as returned by the API.
type NominationEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	CategoryID string    `json:"category_id"`
	CreatorID  string    `json:"creator_id"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

// ApprovedNominee is the approval response shape.
type ApprovedNominee struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"category_id"`
	CreatorID  string    `json:"creator_id"`
	Approved   bool      `json:"approved"`
	CreatedAt  time.Time `json:"created_at"`
}
