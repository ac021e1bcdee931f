package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, LevenshteinDistance("Arsenal", "Arsenal"))
	assert.Equal(t, 3, LevenshteinDistance("kitten", "sitting"))
	assert.Equal(t, 5, LevenshteinDistance("", "Spurs"))
}

func TestFuzzyMatchFindsBestWindow(t *testing.T) {
	assert.Equal(t, 0, FuzzyMatch("Villa", "Aston Villa"))
	assert.Equal(t, 1, FuzzyMatch("Arsenl", "Arsenal"))
	assert.True(t, IsFuzzyMatch("Chelsae", "Chelsea"))
	assert.False(t, IsFuzzyMatch("Everton", "Brentford"))
}

func TestSimilarityScore(t *testing.T) {
	assert.InDelta(t, 1.0, SimilarityScore("LIVERPOOL", "liverpool"), 1e-9)
	assert.Greater(t, SimilarityScore("Liverpol", "Liverpool"), SimilarityScore("Liverpol", "Leeds"))
	assert.InDelta(t, 1.0, SimilarityScore("", ""), 1e-9)
}

func TestGetAsInteger(t *testing.T) {
	v, err := GetAsInteger(" 5 ")
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	v, err = GetAsInteger(float64(10))
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	_, err = GetAsInteger(2.5)
	assert.Error(t, err)
	_, err = GetAsInteger(nil)
	assert.Error(t, err)
}

func TestGetAsString(t *testing.T) {
	s, err := GetAsString(2024)
	require.NoError(t, err)
	assert.Equal(t, "2024", s)

	_, err = GetAsString(nil)
	assert.Error(t, err)
}
