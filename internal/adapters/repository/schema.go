package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Row types mirror the awards schema. Categories, creators, nominations,
// nominees, votes and judge scores are owned by the intake side; result
// batches and final scores are written only by the publish step.

type categoryRow struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID        string    `bun:"id,pk"`
	Name      string    `bun:"name,notnull"`
	IsActive  bool      `bun:"is_active,notnull,default:true"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

type creatorRow struct {
	bun.BaseModel `bun:"table:creators,alias:cr"`

	ID         string    `bun:"id,pk"`
	Name       string    `bun:"name,notnull"`
	Platform   string    `bun:"primary_platform,notnull"`
	ChannelURL string    `bun:"channel_url"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

type nominationRow struct {
	bun.BaseModel `bun:"table:nominations,alias:nn"`

	ID         string    `bun:"id,pk"`
	UserID     string    `bun:"user_id,notnull"`
	CategoryID string    `bun:"category_id,notnull"`
	CreatorID  string    `bun:"creator_id,notnull"`
	Reason     string    `bun:"reason"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

type nomineeRow struct {
	bun.BaseModel `bun:"table:nominees,alias:n"`

	ID         string    `bun:"id,pk"`
	CategoryID string    `bun:"category_id,notnull"`
	CreatorID  string    `bun:"creator_id,notnull"`
	IsApproved bool      `bun:"is_approved,notnull,default:false"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

type voteRow struct {
	bun.BaseModel `bun:"table:votes,alias:v"`

	UserID    string    `bun:"user_id,pk"`
	NomineeID string    `bun:"nominee_id,pk"`
	CastAt    time.Time `bun:"cast_at,notnull,default:current_timestamp"`
}

type judgeScoreRow struct {
	bun.BaseModel `bun:"table:judge_scores,alias:js"`

	JudgeID     string    `bun:"judge_id,pk"`
	NomineeID   string    `bun:"nominee_id,pk"`
	Consistency int       `bun:"consistency_score,notnull"`
	Influence   int       `bun:"influence_score,notnull"`
	Engagement  int       `bun:"engagement_score,notnull"`
	Quality     int       `bun:"quality_score,notnull"`
	Total       int       `bun:"total_score,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

type resultBatchRow struct {
	bun.BaseModel `bun:"table:result_batches,alias:rb"`

	ID          string    `bun:"id,pk"`
	Active      bool      `bun:"active,notnull,default:false"`
	PublishedAt time.Time `bun:"published_at,notnull,default:current_timestamp"`
}

type finalScoreRow struct {
	bun.BaseModel `bun:"table:final_scores,alias:fs"`

	BatchID     string  `bun:"batch_id,pk"`
	NomineeID   string  `bun:"nominee_id,pk"`
	VotePoints  float64 `bun:"vote_points,notnull"`
	JudgePoints float64 `bun:"judge_points,notnull"`
	TotalPoints float64 `bun:"total_points,notnull"`
	Rank        int     `bun:"rank,notnull"`
}

// ensureSchema creates the awards tables when they do not exist yet.
func ensureSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*categoryRow)(nil),
		(*creatorRow)(nil),
		(*nominationRow)(nil),
		(*nomineeRow)(nil),
		(*voteRow)(nil),
		(*judgeScoreRow)(nil),
		(*resultBatchRow)(nil),
		(*finalScoreRow)(nil),
	}
	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", m, err)
		}
	}
	return nil
}
