package scoresight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *PredictionResult {
	return &PredictionResult{
		HomeTeam:       "Brighton & Hove Albion",
		AwayTeam:       "Chelsea",
		Date:           "2024-03-01",
		Season:         "2023/2024",
		Outcome:        OutcomeHomeWin,
		Probabilities:  Probabilities{Away: 0.2, Draw: 0.25, Home: 0.55},
		HomeGoals:      2,
		AwayGoals:      1,
		RawHomeGoals:   1.2,
		RawAwayGoals:   0.9,
		ScoreAdjusted:  true,
		Confidence:     55,
		ConfidenceBand: ConfidenceMedium,
		KeyFactors:     []string{"Chelsea less disciplined (2.5 vs 1.0 cards per game)"},
		FeatureVersion: PoissonFeatureVersion,
		Model:          "poisson",
	}
}

func TestRenderReportHTML(t *testing.T) {
	html, err := RenderReportHTML(sampleResult())
	require.NoError(t, err)
	assert.Contains(t, html, "Brighton &amp; Hove Albion v Chelsea")
	assert.Contains(t, html, "<td>55.0%</td>")
	assert.Contains(t, html, "model estimate 1.20-0.90")
	assert.Contains(t, html, "<li>Chelsea less disciplined (2.5 vs 1.0 cards per game)</li>")

	r := sampleResult()
	r.ScoreAdjusted = false
	html, err = RenderReportHTML(r)
	require.NoError(t, err)
	assert.NotContains(t, html, "model estimate")

	_, err = RenderReportHTML(nil)
	assert.Error(t, err)
}

func TestRenderReportMarkdown(t *testing.T) {
	md, err := RenderReportMarkdown(sampleResult())
	require.NoError(t, err)
	assert.Contains(t, md, "## Brighton")
	assert.Contains(t, md, "Prediction: Home Win 2-1")
	assert.Contains(t, md, "55.0%")
	assert.Contains(t, md, "Chelsea less disciplined")
	assert.NotContains(t, md, "<li>")
}
