// Package scoring implements the awards ranking computation.
//
// Community votes translate into placement points: nominees are ordered by
// raw vote count and the top four placements earn 5, 4, 3 and 2 points, with
// every remaining nominee guaranteed a floor of 1. Judge rubric totals are
// averaged per nominee and added directly. The sum is the final score used
// for the published ranking.
package scoring

import (
	"math"
	"sort"

	"github.com/okian/laurel/internal/domain/model"
)

// Placement point bounds.
const (
	maxVotePoints = 5
	minVotePoints = 1
)

// Input carries one category's snapshot into a ranking pass.
type Input struct {
	// Nominees are the approved nominees of the category.
	Nominees []model.Nominee
	// VoteCounts maps nominee id to its raw vote count. Missing ids count
	// as zero.
	VoteCounts map[string]int
	// JudgeTotals maps nominee id to the totals submitted by judges, one
	// per judge. Missing ids mean the nominee has not been judged.
	JudgeTotals map[string][]int
}

// RankCategory computes the fully ranked results for one category. It is a
// pure function: the output depends only on the input, and ties resolve
// deterministically regardless of input order.
//
// Tie-break policy: equal raw vote counts order by nominee creation time
// ascending, then nominee id ascending. Equal final scores order by raw
// vote count descending, then creation time ascending, then id ascending.
func RankCategory(in Input) []model.ScoreResult {
	if len(in.Nominees) == 0 {
		return nil
	}

	results := make([]model.ScoreResult, len(in.Nominees))
	for i, nom := range in.Nominees {
		results[i] = model.ScoreResult{
			NomineeID:   nom.ID,
			CategoryID:  nom.CategoryID,
			VoteCount:   in.VoteCounts[nom.ID],
			JudgePoints: JudgePoints(in.JudgeTotals[nom.ID]),
		}
	}

	byID := make(map[string]model.Nominee, len(in.Nominees))
	for _, nom := range in.Nominees {
		byID[nom.ID] = nom
	}

	// Vote placement: order by raw votes, award points by position.
	byVotes := make([]*model.ScoreResult, len(results))
	for i := range results {
		byVotes[i] = &results[i]
	}
	sort.Slice(byVotes, func(i, j int) bool {
		a, b := byVotes[i], byVotes[j]
		if a.VoteCount != b.VoteCount {
			return a.VoteCount > b.VoteCount
		}
		return nomineeBefore(byID[a.NomineeID], byID[b.NomineeID])
	})
	for pos, r := range byVotes {
		r.VotePoints = VotePoints(pos)
		r.FinalScore = r.VotePoints + r.JudgePoints
	}

	// Final ranking by combined score.
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if a.VoteCount != b.VoteCount {
			return a.VoteCount > b.VoteCount
		}
		return nomineeBefore(byID[a.NomineeID], byID[b.NomineeID])
	})
	for i := range results {
		results[i].Rank = i + 1
	}

	return results
}

// VotePoints converts a zero-based vote placement into placement points:
// 5 for first, 4 for second, down to a floor of 1 for fifth and beyond.
func VotePoints(zeroBasedRank int) float64 {
	pts := maxVotePoints - zeroBasedRank
	if pts < minVotePoints {
		pts = minVotePoints
	}
	if pts > maxVotePoints {
		pts = maxVotePoints
	}
	return float64(pts)
}

// JudgePoints returns the arithmetic mean of the given judge totals rounded
// to two decimal places, or 0 when the nominee has not been judged.
func JudgePoints(totals []int) float64 {
	if len(totals) == 0 {
		return 0
	}
	sum := 0
	for _, t := range totals {
		sum += t
	}
	mean := float64(sum) / float64(len(totals))
	return math.Round(mean*100) / 100
}

// nomineeBefore is the deterministic ordering for nominees that tie on
// every score dimension: earlier creation first, then id.
func nomineeBefore(a, b model.Nominee) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
