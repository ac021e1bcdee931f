package scoresight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluatePrediction(t *testing.T) {
	match := NewMatch(day(2024, 3, 2), "Arsenal", "Chelsea", 2, 1)

	acc := EvaluatePrediction(match, &PredictionResult{Outcome: OutcomeHomeWin, HomeGoals: 2, AwayGoals: 1})
	require.NotNil(t, acc)
	assert.True(t, acc.ExactScoreCorrect)
	assert.True(t, acc.ResultCorrect)
	assert.Zero(t, acc.GoalDifferenceError)

	acc = EvaluatePrediction(match, &PredictionResult{Outcome: OutcomeDraw, HomeGoals: 0, AwayGoals: 0, LimitedHistory: true})
	assert.False(t, acc.ExactScoreCorrect)
	assert.False(t, acc.ResultCorrect)
	assert.Equal(t, ResultDraw, acc.PredictedResult)
	assert.Equal(t, 1, acc.GoalDifferenceError)
	assert.Equal(t, 3, acc.TotalGoalsError)
	assert.True(t, acc.Fallback)

	assert.Nil(t, EvaluatePrediction(nil, &PredictionResult{}))
}

func TestAggregatePredictions(t *testing.T) {
	assert.Nil(t, AggregatePredictions(nil))

	agg := AggregatePredictions([]*PredictionAccuracy{
		{ExactScoreCorrect: true, ResultCorrect: true, ActualResult: "H", PredictedResult: "H"},
		{ResultCorrect: true, ActualResult: "H", PredictedResult: "H", GoalDifferenceError: 1, TotalGoalsError: 1},
		{ActualResult: "D", PredictedResult: "H", GoalDifferenceError: 1, TotalGoalsError: 3, Fallback: true},
		{ActualResult: "A", PredictedResult: "D", GoalDifferenceError: 2, TotalGoalsError: 0},
	})
	require.NotNil(t, agg)
	assert.Equal(t, 4, agg.TotalMatches)
	assert.Equal(t, 1, agg.FallbackMatches)
	assert.Equal(t, 25.0, agg.ExactScoreAccuracy)
	assert.Equal(t, 50.0, agg.ResultAccuracy)
	assert.Equal(t, 1.0, agg.AverageGoalDiffError)
	assert.Equal(t, 1.0, agg.AverageTotalGoalsError)
	assert.Equal(t, map[string]map[string]int{
		"H": {"H": 2, "D": 1},
		"D": {"A": 1},
	}, agg.Confusion)
}
