package scoresight

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/internal/logger"
	"gonum.org/v1/gonum/stat"
)

// DatasetAverages are league wide per match means used whenever a team has no history to draw on
type DatasetAverages struct {
	Matches       int     `json:"matches"`
	HomeGoals     float64 `json:"homeGoals"`
	AwayGoals     float64 `json:"awayGoals"`
	HomeWinRate   float64 `json:"homeWinRate"`
	DrawRate      float64 `json:"drawRate"`
	AwayWinRate   float64 `json:"awayWinRate"`
	HomePoints    float64 `json:"homePoints"`
	AwayPoints    float64 `json:"awayPoints"`
	ShotsOnTarget float64 `json:"shotsOnTarget"` // per team per match, -1 when never recorded
	Cards         float64 `json:"cards"`         // per team per match, -1 when never recorded
}

// DefaultAverages are the fixed league values used when the store is empty
func DefaultAverages(cfg *Config) DatasetAverages {
	draw := 0.25
	away := 1 - cfg.DefaultHomeWinRate - draw
	return DatasetAverages{
		HomeGoals:     cfg.DefaultHomeGoalsPerGame,
		AwayGoals:     cfg.DefaultAwayGoalsPerGame,
		HomeWinRate:   cfg.DefaultHomeWinRate,
		DrawRate:      draw,
		AwayWinRate:   away,
		HomePoints:    cfg.DefaultPointsPerGame,
		AwayPoints:    cfg.DefaultPointsPerGame,
		ShotsOnTarget: -1,
		Cards:         -1,
	}
}

// GoalsPerTeam is the mean goals one side scores in a match regardless of venue
func (a DatasetAverages) GoalsPerTeam() float64 {
	return (a.HomeGoals + a.AwayGoals) / 2
}

// PointsPerTeam is the mean points one side takes from a match regardless of venue
func (a DatasetAverages) PointsPerTeam() float64 {
	return (a.HomePoints + a.AwayPoints) / 2
}

type pairKey struct {
	a, b string
}

func newPairKey(t1, t2 string) pairKey {
	if t2 < t1 {
		t1, t2 = t2, t1
	}
	return pairKey{t1, t2}
}

// MatchStore is an immutable, date ordered table of historical matches.
// All methods are safe for concurrent use. Returned matches must not be modified.
type MatchStore struct {
	matches   []*Match
	byTeam    map[string][]*Match
	byPair    map[pairKey][]*Match
	teams     []string
	averages  DatasetAverages
	synthetic bool
}

// NewMatchStore validates and indexes matches. The input slice and records are copied.
func NewMatchStore(matches []*Match, synthetic bool) (*MatchStore, error) {
	s := &MatchStore{
		matches:   make([]*Match, 0, len(matches)),
		byTeam:    make(map[string][]*Match),
		byPair:    make(map[pairKey][]*Match),
		synthetic: synthetic,
	}

	seen := make(map[string]bool, len(matches))
	for i, m := range matches {
		if m == nil {
			return nil, fmt.Errorf("match %d is nil", i)
		}
		c := *m
		c.syncDerived()
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("match %d: %w", i, err)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("match %d: duplicate fixture %s", i, c.String())
		}
		seen[c.ID] = true
		s.matches = append(s.matches, &c)
	}

	sort.SliceStable(s.matches, func(i, j int) bool {
		mi, mj := s.matches[i], s.matches[j]
		if !mi.Date.Equal(mj.Date) {
			return mi.Date.Before(mj.Date)
		}
		return mi.HomeTeam < mj.HomeTeam
	})

	for _, m := range s.matches {
		s.byTeam[m.HomeTeam] = append(s.byTeam[m.HomeTeam], m)
		s.byTeam[m.AwayTeam] = append(s.byTeam[m.AwayTeam], m)
		k := newPairKey(m.HomeTeam, m.AwayTeam)
		s.byPair[k] = append(s.byPair[k], m)
	}
	for team := range s.byTeam {
		s.teams = append(s.teams, team)
	}
	sort.Strings(s.teams)

	s.averages = computeAverages(s.matches)
	return s, nil
}

// LoadMatchStore loads src into a store.
// A source that does not exist falls back to the synthetic sample, any other failure is a *DataSourceError.
func LoadMatchStore(ctx context.Context, src MatchSource) (*MatchStore, error) {
	matches, err := src.Load(ctx)
	if errors.Is(err, ErrSourceNotFound) {
		logger.Warn("Historical data not found, using synthetic sample data", src.Name())
		return NewMatchStore(SyntheticMatches(), true)
	}
	if err != nil {
		var dse *DataSourceError
		if errors.As(err, &dse) {
			return nil, err
		}
		return nil, NewDataSourceError(src.Name(), 0, err)
	}
	if len(matches) == 0 {
		return nil, NewDataSourceError(src.Name(), 0, fmt.Errorf("source contains no matches"))
	}

	store, err := NewMatchStore(matches, false)
	if err != nil {
		return nil, NewDataSourceError(src.Name(), 0, err)
	}
	from, to := store.DateRange()
	logger.Info("Match store loaded", src.Name(), store.Len(), "matches from", from.Format(DateLayout), "to", to.Format(DateLayout))
	return store, nil
}

func computeAverages(matches []*Match) DatasetAverages {
	if len(matches) == 0 {
		return DatasetAverages{ShotsOnTarget: -1, Cards: -1}
	}
	n := len(matches)
	homeGoals := make([]float64, n)
	awayGoals := make([]float64, n)
	homeWin := make([]float64, n)
	draw := make([]float64, n)
	awayWin := make([]float64, n)
	var sot, cards []float64

	for i, m := range matches {
		homeGoals[i] = float64(m.HomeGoals)
		awayGoals[i] = float64(m.AwayGoals)
		switch m.Result {
		case ResultHome:
			homeWin[i] = 1
		case ResultDraw:
			draw[i] = 1
		default:
			awayWin[i] = 1
		}
		for _, team := range []string{m.HomeTeam, m.AwayTeam} {
			if v := m.ShotsOnTargetFor(team); v >= 0 {
				sot = append(sot, float64(v))
			}
			if v := m.CardsFor(team); v >= 0 {
				cards = append(cards, float64(v))
			}
		}
	}

	a := DatasetAverages{
		Matches:       n,
		HomeGoals:     stat.Mean(homeGoals, nil),
		AwayGoals:     stat.Mean(awayGoals, nil),
		HomeWinRate:   stat.Mean(homeWin, nil),
		DrawRate:      stat.Mean(draw, nil),
		AwayWinRate:   stat.Mean(awayWin, nil),
		ShotsOnTarget: -1,
		Cards:         -1,
	}
	a.HomePoints = 3*a.HomeWinRate + a.DrawRate
	a.AwayPoints = 3*a.AwayWinRate + a.DrawRate
	if len(sot) > 0 {
		a.ShotsOnTarget = stat.Mean(sot, nil)
	}
	if len(cards) > 0 {
		a.Cards = stat.Mean(cards, nil)
	}
	return a
}

// firstOnOrAfter returns the index of the first match not before date
func firstOnOrAfter(ms []*Match, date time.Time) int {
	return sort.Search(len(ms), func(i int) bool {
		return !ms[i].Date.Before(date)
	})
}

func lastN(ms []*Match, date time.Time, n int) []*Match {
	end := firstOnOrAfter(ms, date)
	start := 0
	if n >= 0 && end-n > 0 {
		start = end - n
	}
	out := make([]*Match, end-start)
	copy(out, ms[start:end])
	return out
}

// MatchesBefore returns all of team's matches strictly before date, oldest first
func (s *MatchStore) MatchesBefore(team string, date time.Time) []*Match {
	return lastN(s.byTeam[team], date, -1)
}

// LastMatchesBefore returns at most n of team's most recent matches strictly before date, oldest first
func (s *MatchStore) LastMatchesBefore(team string, date time.Time, n int) []*Match {
	if n <= 0 {
		return []*Match{}
	}
	return lastN(s.byTeam[team], date, n)
}

// LastMatchesBeforeWhere returns at most n of team's most recent matches strictly before date that keep accepts, oldest first.
// It walks the team index back from date and stops once n are found.
func (s *MatchStore) LastMatchesBeforeWhere(team string, date time.Time, n int, keep func(*Match) bool) []*Match {
	if n <= 0 {
		return []*Match{}
	}
	ms := s.byTeam[team]
	picked := make([]*Match, 0, n)
	for i := firstOnOrAfter(ms, date) - 1; i >= 0 && len(picked) < n; i-- {
		if keep(ms[i]) {
			picked = append(picked, ms[i])
		}
	}
	for i, j := 0, len(picked)-1; i < j; i, j = i+1, j-1 {
		picked[i], picked[j] = picked[j], picked[i]
	}
	return picked
}

// MatchesBetween returns every meeting of a and b strictly before date in either configuration, oldest first
func (s *MatchStore) MatchesBetween(a, b string, date time.Time) []*Match {
	if a == b {
		return []*Match{}
	}
	return lastN(s.byPair[newPairKey(a, b)], date, -1)
}

// LastMatchesBetween returns at most n of the most recent meetings of a and b strictly before date
func (s *MatchStore) LastMatchesBetween(a, b string, date time.Time, n int) []*Match {
	if a == b || n <= 0 {
		return []*Match{}
	}
	return lastN(s.byPair[newPairKey(a, b)], date, n)
}

// MatchesInRange returns all matches with from <= date <= to
func (s *MatchStore) MatchesInRange(from, to time.Time) []*Match {
	start := firstOnOrAfter(s.matches, from)
	end := firstOnOrAfter(s.matches, to.AddDate(0, 0, 1))
	if end < start {
		end = start
	}
	out := make([]*Match, end-start)
	copy(out, s.matches[start:end])
	return out
}

// Matches returns every match, oldest first
func (s *MatchStore) Matches() []*Match {
	out := make([]*Match, len(s.matches))
	copy(out, s.matches)
	return out
}

// Teams returns every team in the store, sorted
func (s *MatchStore) Teams() []string {
	out := make([]string, len(s.teams))
	copy(out, s.teams)
	return out
}

func (s *MatchStore) HasTeam(team string) bool {
	_, ok := s.byTeam[team]
	return ok
}

func (s *MatchStore) Len() int {
	return len(s.matches)
}

// DateRange returns the first and last match dates, zero times when empty
func (s *MatchStore) DateRange() (time.Time, time.Time) {
	if len(s.matches) == 0 {
		return time.Time{}, time.Time{}
	}
	return s.matches[0].Date, s.matches[len(s.matches)-1].Date
}

func (s *MatchStore) Averages() DatasetAverages {
	return s.averages
}

// IsSynthetic reports whether the store was built from the built-in sample rather than real history
func (s *MatchStore) IsSynthetic() bool {
	return s.synthetic
}
