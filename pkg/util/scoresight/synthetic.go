package scoresight

import (
	"time"
)

// syntheticRow is one fixture of the built-in sample season
type syntheticRow struct {
	home, away       string
	fthg, ftag       int
	hthg, htag       int
	hs, as, hst, ast int
	hc, ac, hf, af   int
	hy, ay           int
}

var syntheticRows = []syntheticRow{
	{"Man City", "Liverpool", 2, 1, 1, 0, 15, 10, 6, 4, 7, 4, 12, 14, 1, 2},
	{"Liverpool", "Arsenal", 1, 2, 0, 1, 12, 14, 4, 6, 5, 7, 14, 12, 2, 1},
	{"Arsenal", "Chelsea", 3, 1, 2, 0, 18, 8, 8, 3, 8, 3, 10, 16, 1, 2},
	{"Chelsea", "Man United", 2, 2, 1, 1, 14, 13, 5, 5, 6, 5, 13, 11, 1, 1},
	{"Man United", "Tottenham", 1, 1, 0, 1, 10, 12, 3, 4, 4, 6, 15, 13, 2, 1},
	{"Tottenham", "Newcastle", 2, 0, 1, 0, 16, 6, 7, 2, 7, 2, 11, 15, 1, 2},
	{"Newcastle", "West Ham", 1, 2, 0, 1, 11, 15, 4, 7, 5, 8, 16, 10, 3, 1},
	{"West Ham", "Leicester", 0, 1, 0, 1, 8, 12, 2, 4, 3, 5, 18, 12, 2, 1},
	{"Leicester", "Aston Villa", 2, 1, 1, 0, 13, 9, 5, 3, 6, 4, 12, 14, 1, 2},
	{"Aston Villa", "Man City", 1, 3, 0, 2, 9, 16, 3, 8, 4, 7, 17, 11, 2, 1},
}

// SyntheticMatches returns the ten match sample used when no historical source exists.
// Results are derived from the goals.
func SyntheticMatches() []*Match {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	matches := make([]*Match, 0, len(syntheticRows))
	for i, r := range syntheticRows {
		m := NewMatch(start.AddDate(0, 0, i), r.home, r.away, r.fthg, r.ftag)
		m.HalfTimeHomeGoals, m.HalfTimeAwayGoals = r.hthg, r.htag
		m.HomeShots, m.AwayShots = r.hs, r.as
		m.HomeShotsOnTarget, m.AwayShotsOnTarget = r.hst, r.ast
		m.HomeCorners, m.AwayCorners = r.hc, r.ac
		m.HomeFouls, m.AwayFouls = r.hf, r.af
		m.HomeYellowCards, m.AwayYellowCards = r.hy, r.ay
		m.HomeRedCards, m.AwayRedCards = 0, 0
		matches = append(matches, m)
	}
	return matches
}
