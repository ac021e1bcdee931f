package scoresight

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var canonicalTeams = []string{
	"Arsenal", "Brighton", "Leicester", "Man City", "Man United", "Newcastle",
	"Nott'm Forest", "Tottenham", "West Ham", "Wolves",
}

func TestNormalize(t *testing.T) {
	n := NewTeamNameNormalizer(canonicalTeams)
	tests := []struct {
		in, want string
	}{
		{"Man City", "Man City"},
		{"Manchester City", "Man City"},
		{"Manchester City FC", "Man City"},
		{"manchester city fc", "Man City"},
		{"Man Utd", "Man United"},
		{"Arsenal FC", "Arsenal"},
		{"AFC Arsenal", "Arsenal"},
		{"  arsenal ", "Arsenal"},
		{"Arsénal", "Arsenal"},
		{"Tottenham Hotspur", "Tottenham"},
		{"Spurs", "Tottenham"},
		{"Brighton & Hove Albion", "Brighton"},
		{"Nottingham Forest", "Nott'm Forest"},
		{"Wolverhampton Wanderers", "Wolves"},
		{"West Ham United", "West Ham"},
		{"Leicester City", "Leicester"},
		{"Newcastle Utd", "Newcastle"},
	}
	for _, tt := range tests {
		got, ok := n.Normalize(tt.in)
		assert.True(t, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNormalizeSameCanonicalForAliases(t *testing.T) {
	n := NewTeamNameNormalizer(canonicalTeams)
	assert.Equal(t, n.Canonical("Manchester City FC"), n.Canonical("Man City"))
}

func TestNormalizeUnknown(t *testing.T) {
	n := NewTeamNameNormalizer(canonicalTeams)

	got, ok := n.Normalize("Real Madrid")
	assert.False(t, ok)
	assert.Equal(t, "Real Madrid", got)

	// too short for a containment match
	got, ok = n.Normalize("Man")
	assert.False(t, ok)
	assert.Equal(t, "Man", got)

	_, ok = n.Normalize("   ")
	assert.False(t, ok)
}

func TestNormalizeSubstringPrefersLongestOverlap(t *testing.T) {
	n := NewTeamNameNormalizer([]string{"West", "West Ham"})
	got, ok := n.Normalize("West Ham Utd")
	assert.True(t, ok)
	assert.Equal(t, "West Ham", got)
}

func TestNormalizeIsDeterministic(t *testing.T) {
	a := NewTeamNameNormalizer(canonicalTeams)
	b := NewTeamNameNormalizer([]string{"Wolves", "West Ham", "Tottenham", "Nott'm Forest", "Newcastle",
		"Man United", "Man City", "Leicester", "Brighton", "Arsenal"})
	for _, in := range []string{"Manchester United", "newcastle united", "Hotspur", "Forest"} {
		assert.Equal(t, a.Canonical(in), b.Canonical(in), in)
	}
}

func TestSuggest(t *testing.T) {
	n := NewTeamNameNormalizer(canonicalTeams)
	assert.Contains(t, n.Suggest("Arsenl", 3), "Arsenal")
	assert.LessOrEqual(t, len(n.Suggest("a", 2)), 2)
}
