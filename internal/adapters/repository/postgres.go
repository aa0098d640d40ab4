package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/pkg/metrics"
)

// PostgresStore implements Store on a Postgres database via bun.
type PostgresStore struct {
	db *bun.DB

	// Configuration
	maxOpenConns int
	pingTimeout  time.Duration
}

// NewPostgresStore connects to Postgres and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string, opts ...PostgresOption) (*PostgresStore, error) {
	s := &PostgresStore{
		maxOpenConns: defaultMaxOpenConns,
		pingTimeout:  defaultPingTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	sqldb.SetMaxOpenConns(s.maxOpenConns)

	pingCtx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	defer cancel()
	if err := sqldb.PingContext(pingCtx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s.db = bun.NewDB(sqldb, pgdialect.New())
	if err := ensureSchema(ctx, s.db); err != nil {
		_ = s.db.Close()
		return nil, err
	}
	return s, nil
}

// DB exposes the underlying bun handle for tooling.
func (s *PostgresStore) DB() *bun.DB {
	return s.db
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close postgres: %w", err)
	}
	return nil
}

// ListActiveCategories returns all categories open for competition.
func (s *PostgresStore) ListActiveCategories(ctx context.Context) ([]model.Category, error) {
	defer trackQuery("list_active_categories")()

	var rows []categoryRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active categories: %w", err)
	}

	out := make([]model.Category, len(rows))
	for i, r := range rows {
		out[i] = model.Category{ID: r.ID, Name: r.Name, Active: r.IsActive, CreatedAt: r.CreatedAt}
	}
	return out, nil
}

// ListApprovedNominees returns the approved nominees of a category.
func (s *PostgresStore) ListApprovedNominees(ctx context.Context, categoryID string) ([]model.Nominee, error) {
	defer trackQuery("list_approved_nominees")()

	var rows []nomineeRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("category_id = ?", categoryID).
		Where("is_approved = ?", true).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list approved nominees: %w", err)
	}

	out := make([]model.Nominee, len(rows))
	for i, r := range rows {
		out[i] = model.Nominee{
			ID:         r.ID,
			CategoryID: r.CategoryID,
			CreatorID:  r.CreatorID,
			Approved:   r.IsApproved,
			CreatedAt:  r.CreatedAt,
		}
	}
	return out, nil
}

// CountVotes returns raw vote counts for the given nominees in one query.
func (s *PostgresStore) CountVotes(ctx context.Context, nomineeIDs []string) (map[string]int, error) {
	defer trackQuery("count_votes")()

	counts := make(map[string]int, len(nomineeIDs))
	if len(nomineeIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		NomineeID string `bun:"nominee_id"`
		Count     int    `bun:"vote_count"`
	}
	err := s.db.NewSelect().
		Model((*voteRow)(nil)).
		Column("nominee_id").
		ColumnExpr("count(*) AS vote_count").
		Where("nominee_id IN (?)", bun.In(nomineeIDs)).
		Group("nominee_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("count votes: %w", err)
	}

	for _, r := range rows {
		counts[r.NomineeID] = r.Count
	}
	return counts, nil
}

// ListJudgeTotals returns judge totals for the given nominees in one query.
func (s *PostgresStore) ListJudgeTotals(ctx context.Context, nomineeIDs []string) (map[string][]int, error) {
	defer trackQuery("list_judge_totals")()

	totals := make(map[string][]int, len(nomineeIDs))
	if len(nomineeIDs) == 0 {
		return totals, nil
	}

	var rows []struct {
		NomineeID string `bun:"nominee_id"`
		Total     int    `bun:"total_score"`
	}
	err := s.db.NewSelect().
		Model((*judgeScoreRow)(nil)).
		Column("nominee_id", "total_score").
		Where("nominee_id IN (?)", bun.In(nomineeIDs)).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list judge totals: %w", err)
	}

	for _, r := range rows {
		totals[r.NomineeID] = append(totals[r.NomineeID], r.Total)
	}
	return totals, nil
}

// InsertVote records a ballot, ignoring duplicates.
func (s *PostgresStore) InsertVote(ctx context.Context, b model.Ballot) (bool, error) {
	defer trackQuery("insert_vote")()

	row := &voteRow{UserID: b.UserID, NomineeID: b.NomineeID, CastAt: b.CastAt}
	res, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("insert vote: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert vote result: %w", err)
	}
	return affected > 0, nil
}

// UpsertJudgeScore stores a judge's rubric, replacing any previous one.
func (s *PostgresStore) UpsertJudgeScore(ctx context.Context, sc model.JudgeScore) error {
	defer trackQuery("upsert_judge_score")()

	row := &judgeScoreRow{
		JudgeID:     sc.JudgeID,
		NomineeID:   sc.NomineeID,
		Consistency: sc.Consistency,
		Influence:   sc.Influence,
		Engagement:  sc.Engagement,
		Quality:     sc.Quality,
		Total:       sc.Total,
		UpdatedAt:   sc.UpdatedAt,
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (judge_id, nominee_id) DO UPDATE").
		Set("consistency_score = EXCLUDED.consistency_score").
		Set("influence_score = EXCLUDED.influence_score").
		Set("engagement_score = EXCLUDED.engagement_score").
		Set("quality_score = EXCLUDED.quality_score").
		Set("total_score = EXCLUDED.total_score").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert judge score: %w", err)
	}
	return nil
}

// CreateNomination records a community nomination.
func (s *PostgresStore) CreateNomination(ctx context.Context, n model.Nomination) error {
	defer trackQuery("create_nomination")()

	row := &nominationRow{
		ID:         n.ID,
		UserID:     n.UserID,
		CategoryID: n.CategoryID,
		CreatorID:  n.CreatorID,
		Reason:     n.Reason,
		CreatedAt:  n.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("create nomination: %w", err)
	}
	return nil
}

// GetNomination returns a nomination by id.
func (s *PostgresStore) GetNomination(ctx context.Context, id string) (model.Nomination, error) {
	defer trackQuery("get_nomination")()

	var row nominationRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Nomination{}, ErrNotFound
		}
		return model.Nomination{}, fmt.Errorf("get nomination: %w", err)
	}
	return model.Nomination{
		ID:         row.ID,
		UserID:     row.UserID,
		CategoryID: row.CategoryID,
		CreatorID:  row.CreatorID,
		Reason:     row.Reason,
		CreatedAt:  row.CreatedAt,
	}, nil
}

// ListNominations returns all pending nominations, oldest first.
func (s *PostgresStore) ListNominations(ctx context.Context) ([]model.Nomination, error) {
	defer trackQuery("list_nominations")()

	var rows []nominationRow
	if err := s.db.NewSelect().Model(&rows).Order("created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list nominations: %w", err)
	}
	out := make([]model.Nomination, len(rows))
	for i, r := range rows {
		out[i] = model.Nomination{
			ID:         r.ID,
			UserID:     r.UserID,
			CategoryID: r.CategoryID,
			CreatorID:  r.CreatorID,
			Reason:     r.Reason,
			CreatedAt:  r.CreatedAt,
		}
	}
	return out, nil
}

// EnsureNominee approves the (category, creator) pair as a nominee.
func (s *PostgresStore) EnsureNominee(ctx context.Context, n model.Nominee) (model.Nominee, error) {
	defer trackQuery("ensure_nominee")()

	var out model.Nominee
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var existing nomineeRow
		err := tx.NewSelect().
			Model(&existing).
			Where("category_id = ?", n.CategoryID).
			Where("creator_id = ?", n.CreatorID).
			Scan(ctx)
		switch {
		case err == nil:
			if !existing.IsApproved {
				if _, err := tx.NewUpdate().
					Model((*nomineeRow)(nil)).
					Set("is_approved = ?", true).
					Where("id = ?", existing.ID).
					Exec(ctx); err != nil {
					return fmt.Errorf("approve nominee: %w", err)
				}
			}
			out = model.Nominee{
				ID:         existing.ID,
				CategoryID: existing.CategoryID,
				CreatorID:  existing.CreatorID,
				Approved:   true,
				CreatedAt:  existing.CreatedAt,
			}
			return nil
		case errors.Is(err, sql.ErrNoRows):
			row := &nomineeRow{
				ID:         n.ID,
				CategoryID: n.CategoryID,
				CreatorID:  n.CreatorID,
				IsApproved: true,
				CreatedAt:  n.CreatedAt,
			}
			if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
				return fmt.Errorf("insert nominee: %w", err)
			}
			out = model.Nominee{
				ID:         row.ID,
				CategoryID: row.CategoryID,
				CreatorID:  row.CreatorID,
				Approved:   true,
				CreatedAt:  row.CreatedAt,
			}
			return nil
		default:
			return fmt.Errorf("lookup nominee: %w", err)
		}
	})
	if err != nil {
		return model.Nominee{}, err
	}
	return out, nil
}

// ReplaceFinalScores swaps the published leaderboard in one transaction:
// the new batch and its rows go in, the previous batch and its rows go
// out, and the active flag moves over. Readers see either the complete
// old leaderboard or the complete new one, never an empty table.
func (s *PostgresStore) ReplaceFinalScores(ctx context.Context, rows []model.FinalScore) error {
	defer trackQuery("replace_final_scores")()

	batchID := uuid.NewString()
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		batch := &resultBatchRow{ID: batchID, Active: false, PublishedAt: time.Now().UTC()}
		if _, err := tx.NewInsert().Model(batch).Exec(ctx); err != nil {
			return fmt.Errorf("insert result batch: %w", err)
		}

		if len(rows) > 0 {
			scoreRows := make([]finalScoreRow, len(rows))
			for i, r := range rows {
				scoreRows[i] = finalScoreRow{
					BatchID:     batchID,
					NomineeID:   r.NomineeID,
					VotePoints:  r.VotePoints,
					JudgePoints: r.JudgePoints,
					TotalPoints: r.TotalPoints,
					Rank:        r.Rank,
				}
			}
			if _, err := tx.NewInsert().Model(&scoreRows).Exec(ctx); err != nil {
				return fmt.Errorf("insert final scores: %w", err)
			}
		}

		// Retire previous batches and their rows, then flip the new batch
		// active. All inside the transaction, so the swap is atomic.
		if _, err := tx.NewDelete().
			Model((*finalScoreRow)(nil)).
			Where("batch_id != ?", batchID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete stale final scores: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*resultBatchRow)(nil)).
			Where("id != ?", batchID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete stale batches: %w", err)
		}
		if _, err := tx.NewUpdate().
			Model((*resultBatchRow)(nil)).
			Set("active = ?", true).
			Where("id = ?", batchID).
			Exec(ctx); err != nil {
			return fmt.Errorf("activate batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace final scores: %w", err)
	}
	return nil
}

// ListResults returns the published leaderboard joined with display fields.
func (s *PostgresStore) ListResults(ctx context.Context) ([]ResultRow, error) {
	defer trackQuery("list_results")()

	var rows []struct {
		Rank         int     `bun:"rank"`
		TotalPoints  float64 `bun:"total_points"`
		VotePoints   float64 `bun:"vote_points"`
		JudgePoints  float64 `bun:"judge_points"`
		NomineeID    string  `bun:"nominee_id"`
		CategoryID   string  `bun:"category_id"`
		CategoryName string  `bun:"category_name"`
		CreatorName  string  `bun:"creator_name"`
		Platform     string  `bun:"platform"`
		ChannelURL   string  `bun:"channel_url"`
	}
	err := s.db.NewSelect().
		Model((*finalScoreRow)(nil)).
		ColumnExpr("fs.rank, fs.total_points, fs.vote_points, fs.judge_points, fs.nominee_id").
		ColumnExpr("c.id AS category_id, c.name AS category_name").
		ColumnExpr("cr.name AS creator_name, cr.primary_platform AS platform, cr.channel_url AS channel_url").
		Join("JOIN result_batches AS rb ON rb.id = fs.batch_id AND rb.active").
		Join("JOIN nominees AS n ON n.id = fs.nominee_id").
		Join("JOIN categories AS c ON c.id = n.category_id").
		Join("JOIN creators AS cr ON cr.id = n.creator_id").
		OrderExpr("c.name ASC, fs.rank ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	out := make([]ResultRow, len(rows))
	for i, r := range rows {
		out[i] = ResultRow{
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

// ListNomineesWithCreators returns a category's approved nominees with
// creator names.
func (s *PostgresStore) ListNomineesWithCreators(ctx context.Context, categoryID string) ([]NomineeRow, error) {
	defer trackQuery("list_nominees_with_creators")()

	var rows []struct {
		ID          string `bun:"id"`
		CategoryID  string `bun:"category_id"`
		CreatorID   string `bun:"creator_id"`
		CreatorName string `bun:"creator_name"`
	}
	err := s.db.NewSelect().
		Model((*nomineeRow)(nil)).
		ColumnExpr("n.id, n.category_id, n.creator_id").
		ColumnExpr("cr.name AS creator_name").
		Join("JOIN creators AS cr ON cr.id = n.creator_id").
		Where("n.category_id = ?", categoryID).
		Where("n.is_approved = ?", true).
		OrderExpr("n.created_at ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list nominees with creators: %w", err)
	}

	out := make([]NomineeRow, len(rows))
	for i, r := range rows {
		out[i] = NomineeRow{
			ID:          r.ID,
			CategoryID:  r.CategoryID,
			CreatorID:   r.CreatorID,
			CreatorName: r.CreatorName,
		}
	}
	return out, nil
}

// CreateCategory inserts a category.
func (s *PostgresStore) CreateCategory(ctx context.Context, c model.Category) error {
	defer trackQuery("create_category")()

	row := &categoryRow{ID: c.ID, Name: c.Name, IsActive: c.Active, CreatedAt: c.CreatedAt}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// CreateCreator inserts a creator.
func (s *PostgresStore) CreateCreator(ctx context.Context, c model.Creator) error {
	defer trackQuery("create_creator")()

	row := &creatorRow{
		ID:         c.ID,
		Name:       c.Name,
		Platform:   c.Platform,
		ChannelURL: c.ChannelURL,
		CreatedAt:  c.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("create creator: %w", err)
	}
	return nil
}

// trackQuery records store query latency for the named operation.
func trackQuery(op string) func() {
	start := time.Now()
	return func() {
		metrics.RecordStoreQueryLatency(op, float64(time.Since(start).Milliseconds()))
	}
}
