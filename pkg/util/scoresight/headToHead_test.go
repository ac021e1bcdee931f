package scoresight

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadToHeadSingleMeeting(t *testing.T) {
	store := newStore(t, NewMatch(day(2024, 1, 1), "Arsenal", "Chelsea", 2, 1))
	hc := NewHeadToHeadCalculator(store, DefaultConfig())

	h := hc.HeadToHead("Arsenal", "Chelsea", day(2024, 2, 1), 10)
	assert.Equal(t, 1, h.TotalMatches)
	assert.Equal(t, 1, h.Team1Wins)
	assert.Equal(t, 0, h.Team2Wins)
	assert.Equal(t, 0, h.Draws)
	assert.Equal(t, 2.0, h.Team1GoalsAvg)
	assert.Equal(t, 1.0, h.Team2GoalsAvg)
	assert.Equal(t, 1.0, h.HomeWinRate)
	assert.Equal(t, 1, h.Team1HomeMeetings)
	assert.False(t, h.Fallback)
}

func TestHeadToHeadSymmetry(t *testing.T) {
	store := newStore(t, leagueFixture()...)
	hc := NewHeadToHeadCalculator(store, DefaultConfig())
	asOf := day(2024, 6, 1)

	for _, pair := range [][2]string{{"Arsenal", "Chelsea"}, {"Arsenal", "Man City"}, {"Liverpool", "Arsenal"}} {
		ab := hc.HeadToHead(pair[0], pair[1], asOf, 10)
		ba := hc.HeadToHead(pair[1], pair[0], asOf, 10)
		assert.Equal(t, ab.TotalMatches, ba.TotalMatches)
		assert.Equal(t, ab.Draws, ba.Draws)
		assert.Equal(t, ab.Team1Wins, ba.Team2Wins)
		assert.Equal(t, ab.Team2Wins, ba.Team1Wins)
		assert.Equal(t, ab.Team1GoalsAvg, ba.Team2GoalsAvg)
		assert.Equal(t, ab.Team2GoalsAvg, ba.Team1GoalsAvg)
	}
}

func TestHeadToHeadWindowAndDate(t *testing.T) {
	store := newStore(t, leagueFixture()...)
	hc := NewHeadToHeadCalculator(store, DefaultConfig())

	// Arsenal v Chelsea 2-1 then Chelsea v Arsenal 1-1
	h := hc.HeadToHead("Arsenal", "Chelsea", day(2024, 6, 1), 10)
	assert.Equal(t, 2, h.TotalMatches)
	assert.Equal(t, 1, h.Team1Wins)
	assert.Equal(t, 1, h.Draws)
	assert.Equal(t, 0.5, h.HomeWinRate)

	h = hc.HeadToHead("Arsenal", "Chelsea", day(2024, 6, 1), 1)
	assert.Equal(t, 1, h.TotalMatches)
	assert.Equal(t, 1, h.Draws)

	// the meeting on the day itself is not history yet
	h = hc.HeadToHead("Arsenal", "Chelsea", day(2024, 1, 20), 10)
	assert.Equal(t, 1, h.TotalMatches)
}

func TestHeadToHeadFallback(t *testing.T) {
	store := newStore(t, leagueFixture()...)
	hc := NewHeadToHeadCalculator(store, DefaultConfig())
	avg := store.Averages()

	h := hc.HeadToHead("Arsenal", "Chelsea", day(2023, 8, 1), 10)
	assert.True(t, h.Fallback)
	assert.Equal(t, 0, h.TotalMatches)
	assert.Equal(t, avg.HomeGoals, h.Team1GoalsAvg)
	assert.Equal(t, avg.AwayGoals, h.Team2GoalsAvg)
	assert.Equal(t, avg.HomeWinRate, h.HomeWinRate)
}
