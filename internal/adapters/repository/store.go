// Package repository defines the awards data store interface and errors.
package repository

import (
	"context"

	"github.com/okian/laurel/internal/domain/model"
)

// ResultRow is a published leaderboard row joined with display fields.
type ResultRow struct {
	Rank         int
	TotalPoints  float64
	VotePoints   float64
	JudgePoints  float64
	NomineeID    string
	CategoryID   string
	CategoryName string
	CreatorName  string
	Platform     string
	ChannelURL   string
}

// NomineeRow is an approved nominee joined with its creator's name.
type NomineeRow struct {
	ID          string
	CategoryID  string
	CreatorID   string
	CreatorName string
}

// Store provides read/write access to the awards state.
//
// Vote counts and judge totals are fetched with one batched query per
// category rather than per nominee; a recompute run touches the store a
// constant number of times per category regardless of nominee count.
type Store interface {
	// ListActiveCategories returns all categories open for competition.
	ListActiveCategories(ctx context.Context) ([]model.Category, error)

	// ListApprovedNominees returns the approved nominees of a category.
	ListApprovedNominees(ctx context.Context, categoryID string) ([]model.Nominee, error)

	// CountVotes returns raw vote counts keyed by nominee id. Nominees
	// without votes are absent from the map.
	CountVotes(ctx context.Context, nomineeIDs []string) (map[string]int, error)

	// ListJudgeTotals returns judge totals keyed by nominee id, one entry
	// per judge who scored the nominee.
	ListJudgeTotals(ctx context.Context, nomineeIDs []string) (map[string][]int, error)

	// InsertVote records a ballot. Returns false when the (user, nominee)
	// pair already voted; that is not an error.
	InsertVote(ctx context.Context, b model.Ballot) (bool, error)

	// UpsertJudgeScore stores a judge's rubric for a nominee, replacing any
	// previous rubric from the same judge.
	UpsertJudgeScore(ctx context.Context, s model.JudgeScore) error

	// CreateNomination records a community nomination for admin review.
	CreateNomination(ctx context.Context, n model.Nomination) error

	// GetNomination returns a nomination by id, or ErrNotFound.
	GetNomination(ctx context.Context, id string) (model.Nomination, error)

	// ListNominations returns all pending nominations.
	ListNominations(ctx context.Context) ([]model.Nomination, error)

	// EnsureNominee approves the (category, creator) pair as a nominee.
	// If the pair already exists it is marked approved and the existing
	// nominee is returned; otherwise n is inserted as given.
	EnsureNominee(ctx context.Context, n model.Nominee) (model.Nominee, error)

	// ReplaceFinalScores atomically swaps the published leaderboard for the
	// given rows. Readers never observe an empty or mixed leaderboard.
	ReplaceFinalScores(ctx context.Context, rows []model.FinalScore) error

	// ListResults returns the published leaderboard joined with display
	// fields, ordered by category then ascending rank.
	ListResults(ctx context.Context) ([]ResultRow, error)

	// ListNomineesWithCreators returns a category's approved nominees with
	// creator names for listing.
	ListNomineesWithCreators(ctx context.Context, categoryID string) ([]NomineeRow, error)

	// CreateCategory and CreateCreator exist for admin tooling and seeding.
	CreateCategory(ctx context.Context, c model.Category) error
	CreateCreator(ctx context.Context, c model.Creator) error

	// Close releases the underlying connections.
	Close() error
}
