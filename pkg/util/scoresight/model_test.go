package scoresight

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bundleJSON = `{
  "version": "2024-05",
  "outcome": {
    "features": ["FormDiff_Pts", "H2H_HomeWinRate"],
    "classes": ["H", "A", "D"],
    "coefficients": [[0.8, 0.5], [-0.8, -0.5], [0, 0]],
    "intercepts": [0.3, -0.1, 0]
  },
  "home_goals": {
    "features": ["Home_Last5GoalsFor", "Away_Last5GoalsAgainst"],
    "coefficients": [0.5, 0.4],
    "intercept": 0.2
  },
  "away_goals": {
    "features": ["Away_Last5GoalsFor", "Home_Last5GoalsAgainst"],
    "coefficients": [0.5, 0.4],
    "intercept": 0.1
  },
  "encoders": {"team": ["Arsenal", "Chelsea"], "season": ["2023/2024"]}
}`

func TestParseModelBundle(t *testing.T) {
	b, err := ParseModelBundle([]byte(bundleJSON))
	require.NoError(t, err)
	assert.Equal(t, "2024-05", b.Version)
	assert.Equal(t, OutcomeFeatureVersion, b.Outcome.FeatureVersion())
	assert.Equal(t, ScoreFeatureVersion, b.HomeGoals.FeatureVersion())

	m := b.Models()
	assert.Equal(t, "bundle 2024-05", m.Name)
	assert.Equal(t, []string{"Arsenal", "Chelsea"}, m.TeamClasses)
	require.NoError(t, m.Validate())
}

func TestLinearClassifierSoftmax(t *testing.T) {
	b, err := ParseModelBundle([]byte(bundleJSON))
	require.NoError(t, err)

	vec := FeatureVector{Names: []string{"FormDiff_Pts", "H2H_HomeWinRate"}, Values: []float64{1.5, 0.6}}
	p, err := b.Outcome.PredictProbabilities(vec)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p.Sum(), 1e-9)
	// the H row comes first in the bundle but lands in the home slot
	assert.Greater(t, p.Home, p.Draw)
	assert.Greater(t, p.Draw, p.Away)

	even, err := b.Outcome.PredictProbabilities(FeatureVector{Names: vec.Names, Values: []float64{0, 0}})
	require.NoError(t, err)
	assert.Greater(t, even.Home, even.Away)
}

func TestLinearRegressor(t *testing.T) {
	b, err := ParseModelBundle([]byte(bundleJSON))
	require.NoError(t, err)
	g, err := b.HomeGoals.PredictGoals(FeatureVector{
		Names:  []string{"Home_Last5GoalsFor", "Away_Last5GoalsAgainst"},
		Values: []float64{2, 1},
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.6, g, 1e-9)

	_, err = b.HomeGoals.PredictGoals(FeatureVector{Names: []string{"Home_Last5GoalsFor"}, Values: []float64{2}})
	var mce *ModelContractError
	assert.True(t, errors.As(err, &mce))
}

func TestParseModelBundleRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{"not json", func(string) string { return "{" }, "failed to parse model bundle"},
		{"missing regressor", func(string) string {
			return `{"outcome": {"features": ["Month"], "classes": ["A","D","H"], "coefficients": [[1],[1],[1]], "intercepts": [0,0,0]}}`
		}, "must contain"},
		{"duplicate class", func(s string) string { return replaceOnce(s, `["H", "A", "D"]`, `["H", "H", "D"]`) }, "A, D and H"},
		{"unknown feature", func(s string) string { return replaceOnce(s, `"H2H_HomeWinRate"]`, `"Weather"]`) }, "Weather"},
		{"short coefficient row", func(s string) string { return replaceOnce(s, `[0.8, 0.5]`, `[0.8]`) }, "coefficient row 0"},
		{"regressor shape", func(s string) string { return replaceOnce(s, `[0.5, 0.4],
    "intercept": 0.2`, `[0.5],
    "intercept": 0.2`) }, "home_goals"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseModelBundle([]byte(tt.mutate(bundleJSON)))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func replaceOnce(s, old, new string) string {
	if !strings.Contains(s, old) {
		panic("fixture text not found: " + old)
	}
	return strings.Replace(s, old, new, 1)
}

func TestLoadModelBundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.json")
	require.NoError(t, os.WriteFile(path, []byte(bundleJSON), 0644))

	b, err := LoadModelBundle(path)
	require.NoError(t, err)
	assert.Equal(t, "2024-05", b.Version)

	_, err = LoadModelBundle(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestModelsEncodersUseBundleClasses(t *testing.T) {
	cfg := DefaultConfig()
	store := newStore(t, leagueFixture()...)
	b, err := ParseModelBundle([]byte(bundleJSON))
	require.NoError(t, err)

	enc := b.Models().Encoders(store, cfg)
	code, known := enc.Team.Encode("Chelsea")
	assert.True(t, known)
	assert.Equal(t, 1, code)
	// in the store but not in the fitted table
	_, known = enc.Team.Encode("Liverpool")
	assert.False(t, known)
}

func TestModelsValidate(t *testing.T) {
	poisson := NewPoissonModel(DefaultAverages(DefaultConfig()), DefaultConfig()).Models()
	require.NoError(t, poisson.Validate())

	incomplete := poisson
	incomplete.AwayGoals = nil
	assert.Error(t, incomplete.Validate())
}

func TestEngineWithBundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.json")
	require.NoError(t, os.WriteFile(path, []byte(bundleJSON), 0644))

	cfg := DefaultConfig()
	cfg.ModelPath = path
	store := newStore(t, leagueFixture()...)
	models, err := LoadModels(store, cfg)
	require.NoError(t, err)
	engine, err := NewEngine(store, models, cfg)
	require.NoError(t, err)

	result, err := engine.Predict("Arsenal", "Chelsea", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "bundle 2024-05", result.Model)
	assert.Equal(t, OutcomeFeatureVersion, result.FeatureVersion)
	assert.InDelta(t, 1.0, result.Probabilities.Sum(), 1e-9)
}
