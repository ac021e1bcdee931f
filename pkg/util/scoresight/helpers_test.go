package scoresight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newStore(t *testing.T, matches ...*Match) *MatchStore {
	t.Helper()
	store, err := NewMatchStore(matches, false)
	require.NoError(t, err)
	return store
}

// leagueFixture is a small season with a couple of repeated meetings
func leagueFixture() []*Match {
	return []*Match{
		NewMatch(day(2023, 8, 12), "Arsenal", "Chelsea", 2, 1),
		NewMatch(day(2023, 8, 13), "Man City", "Liverpool", 1, 1),
		NewMatch(day(2023, 8, 19), "Chelsea", "Man City", 0, 3),
		NewMatch(day(2023, 8, 20), "Liverpool", "Arsenal", 2, 2),
		NewMatch(day(2023, 8, 26), "Arsenal", "Man City", 1, 0),
		NewMatch(day(2023, 8, 27), "Chelsea", "Liverpool", 1, 2),
		NewMatch(day(2023, 9, 2), "Man City", "Arsenal", 4, 1),
		NewMatch(day(2023, 9, 3), "Liverpool", "Chelsea", 3, 0),
		NewMatch(day(2024, 1, 20), "Chelsea", "Arsenal", 1, 1),
		NewMatch(day(2024, 2, 10), "Arsenal", "Liverpool", 0, 1),
	}
}

func testEngine(t *testing.T, matches []*Match) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	store := newStore(t, matches...)
	models, err := LoadModels(store, cfg)
	require.NoError(t, err)
	engine, err := NewEngine(store, models, cfg)
	require.NoError(t, err)
	return engine
}
