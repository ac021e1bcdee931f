package scoresight

import (
	"time"
)

// HeadToHead aggregates the recent meetings of two teams.
// Team1 is the side the caller designated as home, whatever the historical venues were.
type HeadToHead struct {
	Team1             string    `json:"team1"`
	Team2             string    `json:"team2"`
	AsOf              time.Time `json:"asOf"`
	Window            int       `json:"window"`
	TotalMatches      int       `json:"totalMatches"`
	Team1Wins         int       `json:"team1Wins"`
	Team2Wins         int       `json:"team2Wins"`
	Draws             int       `json:"draws"`
	Team1GoalsAvg     float64   `json:"team1GoalsAvg"`
	Team2GoalsAvg     float64   `json:"team2GoalsAvg"`
	HomeWinRate       float64   `json:"homeWinRate"` // Team1 wins over all retrieved meetings
	Team1HomeMeetings int       `json:"team1HomeMeetings"`
	Fallback          bool      `json:"fallback"`
}

// HeadToHeadCalculator computes HeadToHead from a MatchStore
type HeadToHeadCalculator struct {
	store    *MatchStore
	fallback DatasetAverages
}

func NewHeadToHeadCalculator(store *MatchStore, cfg *Config) *HeadToHeadCalculator {
	return &HeadToHeadCalculator{store: store, fallback: fallbackAverages(store, cfg)}
}

// HeadToHead takes up to window most recent meetings of team1 and team2 before asOf
func (hc *HeadToHeadCalculator) HeadToHead(team1, team2 string, asOf time.Time, window int) *HeadToHead {
	h := &HeadToHead{
		Team1:  team1,
		Team2:  team2,
		AsOf:   asOf,
		Window: window,
	}
	meetings := hc.store.LastMatchesBetween(team1, team2, asOf, window)
	if len(meetings) == 0 {
		h.Fallback = true
		h.Team1GoalsAvg = hc.fallback.HomeGoals
		h.Team2GoalsAvg = hc.fallback.AwayGoals
		h.HomeWinRate = hc.fallback.HomeWinRate
		return h
	}

	var g1, g2 int
	for _, m := range meetings {
		if m.IsHome(team1) {
			h.Team1HomeMeetings++
		}
		s1, s2 := m.GoalsFor(team1), m.GoalsFor(team2)
		g1 += s1
		g2 += s2
		switch {
		case s1 > s2:
			h.Team1Wins++
		case s2 > s1:
			h.Team2Wins++
		default:
			h.Draws++
		}
	}

	n := float64(len(meetings))
	h.TotalMatches = len(meetings)
	h.Team1GoalsAvg = float64(g1) / n
	h.Team2GoalsAvg = float64(g2) / n
	h.HomeWinRate = float64(h.Team1Wins) / n
	return h
}
