package scoresight

import (
	"time"
)

// Venue restricts which of a team's matches count towards its form
type Venue int

const (
	VenueAny Venue = iota
	VenueHome
	VenueAway
)

func (v Venue) String() string {
	switch v {
	case VenueHome:
		return "home"
	case VenueAway:
		return "away"
	default:
		return "any"
	}
}

// ParseVenue maps "home", "away" and anything else to VenueAny
func ParseVenue(s string) Venue {
	switch s {
	case "home", "Home", "HOME":
		return VenueHome
	case "away", "Away", "AWAY":
		return VenueAway
	default:
		return VenueAny
	}
}

// TeamForm is a team's rolling performance over its most recent matches before AsOf
type TeamForm struct {
	Team             string    `json:"team"`
	AsOf             time.Time `json:"asOf"`
	Venue            string    `json:"venue"`
	Window           int       `json:"window"`
	Matches          int       `json:"matches"`
	GoalsForAvg      float64   `json:"goalsForAvg"`
	GoalsAgainstAvg  float64   `json:"goalsAgainstAvg"`
	PointsAvg        float64   `json:"pointsAvg"`
	Wins             int       `json:"wins"`
	Draws            int       `json:"draws"`
	Losses           int       `json:"losses"`
	ShotsOnTargetAvg float64   `json:"shotsOnTargetAvg"` // -1 when not recorded
	CardsAvg         float64   `json:"cardsAvg"`         // -1 when not recorded
	Sequence         string    `json:"sequence"`         // oldest first, e.g. "WDLWW"
	Fallback         bool      `json:"fallback"`
}

// FormCalculator computes TeamForm from a MatchStore
type FormCalculator struct {
	store    *MatchStore
	fallback DatasetAverages
}

// NewFormCalculator uses the store averages for empty windows, or the configured defaults for an empty store
func NewFormCalculator(store *MatchStore, cfg *Config) *FormCalculator {
	return &FormCalculator{store: store, fallback: fallbackAverages(store, cfg)}
}

func fallbackAverages(store *MatchStore, cfg *Config) DatasetAverages {
	if store.Len() == 0 {
		return DefaultAverages(cfg)
	}
	return store.Averages()
}

// Form takes the last window matches of team before asOf, restricted to venue
func (fc *FormCalculator) Form(team string, asOf time.Time, window int, venue Venue) *TeamForm {
	form := &TeamForm{
		Team:             team,
		AsOf:             asOf,
		Venue:            venue.String(),
		Window:           window,
		ShotsOnTargetAvg: -1,
		CardsAvg:         -1,
	}
	recent := fc.recentMatches(team, asOf, window, venue)
	if len(recent) == 0 {
		fc.applyFallback(form, venue)
		return form
	}

	var gf, ga, pts int
	var sot, sotN, cards, cardsN int
	seq := make([]byte, 0, len(recent))
	for _, m := range recent {
		gf += m.GoalsFor(team)
		ga += m.GoalsAgainst(team)
		p := m.PointsFor(team)
		pts += p
		switch p {
		case 3:
			form.Wins++
			seq = append(seq, 'W')
		case 1:
			form.Draws++
			seq = append(seq, 'D')
		default:
			form.Losses++
			seq = append(seq, 'L')
		}
		if v := m.ShotsOnTargetFor(team); v >= 0 {
			sot += v
			sotN++
		}
		if v := m.CardsFor(team); v >= 0 {
			cards += v
			cardsN++
		}
	}

	n := float64(len(recent))
	form.Matches = len(recent)
	form.GoalsForAvg = float64(gf) / n
	form.GoalsAgainstAvg = float64(ga) / n
	form.PointsAvg = float64(pts) / n
	form.Sequence = string(seq)
	if sotN > 0 {
		form.ShotsOnTargetAvg = float64(sot) / float64(sotN)
	}
	if cardsN > 0 {
		form.CardsAvg = float64(cards) / float64(cardsN)
	}
	return form
}

// recentMatches walks back through the team index until window matches at venue are found
func (fc *FormCalculator) recentMatches(team string, asOf time.Time, window int, venue Venue) []*Match {
	if window <= 0 {
		return nil
	}
	if venue == VenueAny {
		return fc.store.LastMatchesBefore(team, asOf, window)
	}
	home := venue == VenueHome
	return fc.store.LastMatchesBeforeWhere(team, asOf, window, func(m *Match) bool {
		return m.IsHome(team) == home
	})
}

func (fc *FormCalculator) applyFallback(form *TeamForm, venue Venue) {
	a := fc.fallback
	form.Fallback = true
	switch venue {
	case VenueHome:
		form.GoalsForAvg, form.GoalsAgainstAvg, form.PointsAvg = a.HomeGoals, a.AwayGoals, a.HomePoints
	case VenueAway:
		form.GoalsForAvg, form.GoalsAgainstAvg, form.PointsAvg = a.AwayGoals, a.HomeGoals, a.AwayPoints
	default:
		form.GoalsForAvg, form.GoalsAgainstAvg, form.PointsAvg = a.GoalsPerTeam(), a.GoalsPerTeam(), a.PointsPerTeam()
	}
	form.ShotsOnTargetAvg = a.ShotsOnTarget
	form.CardsAvg = a.Cards
}
