package scoresight

// PredictionAccuracy holds accuracy metrics for a single match prediction
type PredictionAccuracy struct {
	MatchID             string `json:"matchId"`
	HomeTeam            string `json:"homeTeam"`
	AwayTeam            string `json:"awayTeam"`
	ActualHomeGoals     int    `json:"actualHomeGoals"`
	ActualAwayGoals     int    `json:"actualAwayGoals"`
	PredictedHomeGoals  int    `json:"predictedHomeGoals"`
	PredictedAwayGoals  int    `json:"predictedAwayGoals"`
	ActualResult        string `json:"actualResult"`
	PredictedResult     string `json:"predictedResult"`
	ExactScoreCorrect   bool   `json:"exactScoreCorrect"`
	ResultCorrect       bool   `json:"resultCorrect"`
	GoalDifferenceError int    `json:"goalDifferenceError"`
	TotalGoalsError     int    `json:"totalGoalsError"`
	Fallback            bool   `json:"fallback"`
}

// EvaluatePrediction compares a prediction with the recorded result of the same fixture.
// The result is judged on the predicted outcome, which the presented score always agrees with.
func EvaluatePrediction(match *Match, prediction *PredictionResult) *PredictionAccuracy {
	if match == nil || prediction == nil {
		return nil
	}
	acc := &PredictionAccuracy{
		MatchID:            match.ID,
		HomeTeam:           match.HomeTeam,
		AwayTeam:           match.AwayTeam,
		ActualHomeGoals:    match.HomeGoals,
		ActualAwayGoals:    match.AwayGoals,
		PredictedHomeGoals: prediction.HomeGoals,
		PredictedAwayGoals: prediction.AwayGoals,
		ActualResult:       match.Result,
		PredictedResult:    resultForOutcome(prediction.Outcome),
		Fallback:           prediction.LimitedHistory,
	}

	acc.ExactScoreCorrect = acc.ActualHomeGoals == acc.PredictedHomeGoals &&
		acc.ActualAwayGoals == acc.PredictedAwayGoals
	acc.ResultCorrect = acc.ActualResult == acc.PredictedResult

	actualGoalDiff := acc.ActualHomeGoals - acc.ActualAwayGoals
	predictedGoalDiff := acc.PredictedHomeGoals - acc.PredictedAwayGoals
	acc.GoalDifferenceError = abs(actualGoalDiff - predictedGoalDiff)

	actualTotalGoals := acc.ActualHomeGoals + acc.ActualAwayGoals
	predictedTotalGoals := acc.PredictedHomeGoals + acc.PredictedAwayGoals
	acc.TotalGoalsError = abs(actualTotalGoals - predictedTotalGoals)
	return acc
}

func resultForOutcome(outcome string) string {
	switch outcome {
	case OutcomeHomeWin:
		return ResultHome
	case OutcomeAwayWin:
		return ResultAway
	default:
		return ResultDraw
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// AggregateAccuracy holds aggregate prediction accuracy statistics
type AggregateAccuracy struct {
	From                   string  `json:"from"`
	To                     string  `json:"to"`
	Model                  string  `json:"model"`
	TotalMatches           int     `json:"totalMatches"`
	FallbackMatches        int     `json:"fallbackMatches"`
	ExactScoreAccuracy     float64 `json:"exactScoreAccuracy"` // percentage
	ResultAccuracy         float64 `json:"resultAccuracy"`     // percentage
	AverageGoalDiffError   float64 `json:"averageGoalDiffError"`
	AverageTotalGoalsError float64 `json:"averageTotalGoalsError"`
	// counts of predicted result against actual result, e.g. Confusion["H"]["D"]
	Confusion map[string]map[string]int `json:"confusion"`
}

// AggregatePredictions summarises individual accuracies. Returns nil for an empty slice.
func AggregatePredictions(accuracies []*PredictionAccuracy) *AggregateAccuracy {
	if len(accuracies) == 0 {
		return nil
	}
	aggregate := &AggregateAccuracy{
		TotalMatches: len(accuracies),
		Confusion:    map[string]map[string]int{},
	}

	var exactScoreCount, resultCorrectCount int
	var totalGoalDiffError, totalGoalsError int
	for _, acc := range accuracies {
		if acc.ExactScoreCorrect {
			exactScoreCount++
		}
		if acc.ResultCorrect {
			resultCorrectCount++
		}
		if acc.Fallback {
			aggregate.FallbackMatches++
		}
		totalGoalDiffError += acc.GoalDifferenceError
		totalGoalsError += acc.TotalGoalsError
		row := aggregate.Confusion[acc.PredictedResult]
		if row == nil {
			row = map[string]int{}
			aggregate.Confusion[acc.PredictedResult] = row
		}
		row[acc.ActualResult]++
	}

	n := float64(aggregate.TotalMatches)
	aggregate.ExactScoreAccuracy = float64(exactScoreCount) / n * 100
	aggregate.ResultAccuracy = float64(resultCorrectCount) / n * 100
	aggregate.AverageGoalDiffError = float64(totalGoalDiffError) / n
	aggregate.AverageTotalGoalsError = float64(totalGoalsError) / n
	return aggregate
}
