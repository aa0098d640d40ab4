package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/laurel/internal/domain/model"
)

// MemoryStore implements Store entirely in memory. It backs tests and
// local runs without a database; the Postgres store is the production
// implementation.
type MemoryStore struct {
	mu          sync.RWMutex
	categories  map[string]model.Category
	creators    map[string]model.Creator
	nominations map[string]model.Nomination
	nominees    map[string]model.Nominee
	votes       map[string]model.Ballot     // key user|nominee
	judgeScores map[string]model.JudgeScore // key judge|nominee
	published   []model.FinalScore
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories:  make(map[string]model.Category),
		creators:    make(map[string]model.Creator),
		nominations: make(map[string]model.Nomination),
		nominees:    make(map[string]model.Nominee),
		votes:       make(map[string]model.Ballot),
		judgeScores: make(map[string]model.JudgeScore),
	}
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// ListActiveCategories returns all active categories, oldest first.
func (s *MemoryStore) ListActiveCategories(_ context.Context) ([]model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Category
	for _, c := range s.categories {
		if c.Active {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ListApprovedNominees returns the approved nominees of a category.
func (s *MemoryStore) ListApprovedNominees(_ context.Context, categoryID string) ([]model.Nominee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Nominee
	for _, n := range s.nominees {
		if n.CategoryID == categoryID && n.Approved {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// CountVotes returns raw vote counts keyed by nominee id.
func (s *MemoryStore) CountVotes(_ context.Context, nomineeIDs []string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(nomineeIDs))
	for _, id := range nomineeIDs {
		wanted[id] = true
	}
	counts := make(map[string]int, len(nomineeIDs))
	for _, b := range s.votes {
		if wanted[b.NomineeID] {
			counts[b.NomineeID]++
		}
	}
	return counts, nil
}

// ListJudgeTotals returns judge totals keyed by nominee id.
func (s *MemoryStore) ListJudgeTotals(_ context.Context, nomineeIDs []string) (map[string][]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(nomineeIDs))
	for _, id := range nomineeIDs {
		wanted[id] = true
	}

	// Stable per-nominee order so runs are reproducible.
	keys := make([]string, 0, len(s.judgeScores))
	for k := range s.judgeScores {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	totals := make(map[string][]int, len(nomineeIDs))
	for _, k := range keys {
		sc := s.judgeScores[k]
		if wanted[sc.NomineeID] {
			totals[sc.NomineeID] = append(totals[sc.NomineeID], sc.Total)
		}
	}
	return totals, nil
}

// InsertVote records a ballot, ignoring duplicates.
func (s *MemoryStore) InsertVote(_ context.Context, b model.Ballot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := b.UserID + "|" + b.NomineeID
	if _, ok := s.votes[key]; ok {
		return false, nil
	}
	s.votes[key] = b
	return true, nil
}

// UpsertJudgeScore stores a judge's rubric, replacing any previous one.
func (s *MemoryStore) UpsertJudgeScore(_ context.Context, sc model.JudgeScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.judgeScores[sc.JudgeID+"|"+sc.NomineeID] = sc
	return nil
}

// CreateNomination records a community nomination.
func (s *MemoryStore) CreateNomination(_ context.Context, n model.Nomination) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nominations[n.ID]; ok {
		return ErrConflict
	}
	s.nominations[n.ID] = n
	return nil
}

// GetNomination returns a nomination by id.
func (s *MemoryStore) GetNomination(_ context.Context, id string) (model.Nomination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nominations[id]
	if !ok {
		return model.Nomination{}, ErrNotFound
	}
	return n, nil
}

// ListNominations returns all pending nominations, oldest first.
func (s *MemoryStore) ListNominations(_ context.Context) ([]model.Nomination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Nomination, 0, len(s.nominations))
	for _, n := range s.nominations {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// EnsureNominee approves the (category, creator) pair as a nominee.
func (s *MemoryStore) EnsureNominee(_ context.Context, n model.Nominee) (model.Nominee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.nominees {
		if existing.CategoryID == n.CategoryID && existing.CreatorID == n.CreatorID {
			existing.Approved = true
			s.nominees[id] = existing
			return existing, nil
		}
	}
	n.Approved = true
	s.nominees[n.ID] = n
	return n, nil
}

// ReplaceFinalScores swaps the published leaderboard for the given rows.
func (s *MemoryStore) ReplaceFinalScores(_ context.Context, rows []model.FinalScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.published = append([]model.FinalScore(nil), rows...)
	return nil
}

// ListResults returns the published leaderboard joined with display fields.
func (s *MemoryStore) ListResults(_ context.Context) ([]ResultRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ResultRow, 0, len(s.published))
	for _, fs := range s.published {
		row := ResultRow{
			Rank:        fs.Rank,
			TotalPoints: fs.TotalPoints,
			VotePoints:  fs.VotePoints,
			JudgePoints: fs.JudgePoints,
			NomineeID:   fs.NomineeID,
		}
		if nom, ok := s.nominees[fs.NomineeID]; ok {
			row.CategoryID = nom.CategoryID
			if cat, ok := s.categories[nom.CategoryID]; ok {
				row.CategoryName = cat.Name
			}
			if cr, ok := s.creators[nom.CreatorID]; ok {
				row.CreatorName = cr.Name
				row.Platform = cr.Platform
				row.ChannelURL = cr.ChannelURL
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CategoryName != out[j].CategoryName {
			return out[i].CategoryName < out[j].CategoryName
		}
		return out[i].Rank < out[j].Rank
	})
	return out, nil
}

// ListNomineesWithCreators returns a category's approved nominees with
// creator names.
func (s *MemoryStore) ListNomineesWithCreators(ctx context.Context, categoryID string) ([]NomineeRow, error) {
	noms, err := s.ListApprovedNominees(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]NomineeRow, len(noms))
	for i, n := range noms {
		out[i] = NomineeRow{
			ID:          n.ID,
			CategoryID:  n.CategoryID,
			CreatorID:   n.CreatorID,
			CreatorName: s.creators[n.CreatorID].Name,
		}
	}
	return out, nil
}

// CreateCategory inserts a category.
func (s *MemoryStore) CreateCategory(_ context.Context, c model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[c.ID]; ok {
		return ErrConflict
	}
	s.categories[c.ID] = c
	return nil
}

// CreateCreator inserts a creator.
func (s *MemoryStore) CreateCreator(_ context.Context, c model.Creator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.creators[c.ID]; ok {
		return ErrConflict
	}
	s.creators[c.ID] = c
	return nil
}
