package seed

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

// Rubric sub-score bounds.
const (
	subScoreMin   = 1
	subScoreRange = 3
)

// Vote skew: a small slice of nominees draws most ballots so that runs
// produce spread-out leaderboards instead of near-uniform ties.
const (
	favoriteShare  = 4 // 1 in favoriteShare nominees is a favorite
	favoriteWeight = 5
)

// randomInt returns a uniform int in [0, n) using crypto/rand.
func randomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generateBallots builds one ballot per voter per category, with voters
// favoring a subset of nominees.
func generateBallots(cfg *Config, cat *catalog) []ballot {
	ballots := make([]ballot, 0, cfg.Voters*len(cat.categories))

	for v := 0; v < cfg.Voters; v++ {
		userID := "voter-" + strconv.Itoa(v)
		for _, category := range cat.categories {
			nominees := cat.nomineesByCategory[category.ID]
			if len(nominees) == 0 {
				continue
			}
			ballots = append(ballots, ballot{
				UserID:    userID,
				NomineeID: pickNominee(nominees),
			})
		}
	}
	return ballots
}

// pickNominee picks a nominee, weighting the head of the list.
func pickNominee(nominees []string) string {
	favorites := len(nominees) / favoriteShare
	if favorites == 0 {
		favorites = 1
	}
	if randomInt(favoriteWeight+1) < favoriteWeight {
		return nominees[randomInt(favorites)]
	}
	return nominees[randomInt(len(nominees))]
}

// generateRubrics builds one rubric per judge per nominee.
func generateRubrics(cfg *Config, cat *catalog) []rubric {
	nominees := cat.nomineeIDs()
	rubrics := make([]rubric, 0, cfg.Judges*len(nominees))

	for j := 0; j < cfg.Judges; j++ {
		judgeID := "judge-" + strconv.Itoa(j)
		for _, nomineeID := range nominees {
			rubrics = append(rubrics, rubric{
				JudgeID:     judgeID,
				NomineeID:   nomineeID,
				Consistency: subScoreMin + randomInt(subScoreRange),
				Influence:   subScoreMin + randomInt(subScoreRange),
				Engagement:  subScoreMin + randomInt(subScoreRange),
				Quality:     subScoreMin + randomInt(subScoreRange),
			})
		}
	}
	return rubrics
}
