package scoresight

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/internal/logger"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	OutcomeHomeWin = "Home Win"
	OutcomeDraw    = "Draw"
	OutcomeAwayWin = "Away Win"

	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// key factor thresholds
const (
	formGapThreshold     = 1.0 // points per game
	scoringThreshold     = 2.0 // goals per game
	shotsGapThreshold    = 1.5 // shots on target per game
	cardsGapThreshold    = 1.0 // cards per game
	h2hMinMeetings       = 3
	h2hDominantShare     = 0.6
	h2hDrawShare         = 0.5
	evenlyMatchedMessage = "Evenly matched on recent form"
	limitedHistoryPrefix = "Limited match history for"
)

// PredictionResult is the user facing answer for one fixture. It is built per request and never stored.
type PredictionResult struct {
	ID             string        `json:"id"`
	HomeTeam       string        `json:"homeTeam"`
	AwayTeam       string        `json:"awayTeam"`
	Date           string        `json:"date"`
	Season         string        `json:"season"`
	Outcome        string        `json:"outcome"`
	Probabilities  Probabilities `json:"probabilities"`
	HomeGoals      int           `json:"homeGoals"`
	AwayGoals      int           `json:"awayGoals"`
	RawHomeGoals   float64       `json:"rawHomeGoals"`
	RawAwayGoals   float64       `json:"rawAwayGoals"`
	ScoreAdjusted  bool          `json:"scoreAdjusted"`
	Confidence     float64       `json:"confidence"`
	ConfidenceBand string        `json:"confidenceBand"`
	KeyFactors     []string      `json:"keyFactors"`
	LimitedHistory bool          `json:"limitedHistory"` // a side had no matches before the date
	Synthetic      bool          `json:"synthetic"`
	FeatureVersion string        `json:"featureVersion"`
	Model          string        `json:"model"`
}

// Score formats the presented score as "2-1"
func (r *PredictionResult) Score() string {
	return fmt.Sprintf("%d-%d", r.HomeGoals, r.AwayGoals)
}

// AssemblyContext carries what the assembler needs besides raw model output
type AssemblyContext struct {
	HomeTeam       string
	AwayTeam       string
	Date           time.Time
	Season         string
	Features       *MatchFeatures // may be nil
	Synthetic      bool
	FeatureVersion string
	Model          string
}

// PredictionAssembler turns model output into a PredictionResult
type PredictionAssembler struct {
	cfg *Config
}

func NewPredictionAssembler(cfg *Config) *PredictionAssembler {
	return &PredictionAssembler{cfg: cfg}
}

// Assemble normalises probs, picks the outcome, presents the score and explains the prediction
func (a *PredictionAssembler) Assemble(probs Probabilities, rawHome, rawAway float64, actx AssemblyContext) (*PredictionResult, error) {
	probs, err := NormalizeProbabilities(probs)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(rawHome) || math.IsNaN(rawAway) || math.IsInf(rawHome, 0) || math.IsInf(rawAway, 0) {
		return nil, NewModelContractError("score", 2, 2, fmt.Sprintf("goal estimates are not finite: %v, %v", rawHome, rawAway))
	}

	result := &PredictionResult{
		ID:             uuid.NewString(),
		HomeTeam:       actx.HomeTeam,
		AwayTeam:       actx.AwayTeam,
		Date:           actx.Date.Format(DateLayout),
		Season:         actx.Season,
		Outcome:        PickOutcome(probs),
		Probabilities:  probs,
		RawHomeGoals:   rawHome,
		RawAwayGoals:   rawAway,
		Synthetic:      actx.Synthetic,
		FeatureVersion: actx.FeatureVersion,
		Model:          actx.Model,
	}

	home := a.clampGoals(RoundHalfAwayFromZero(rawHome))
	away := a.clampGoals(RoundHalfAwayFromZero(rawAway))
	result.HomeGoals, result.AwayGoals, result.ScoreAdjusted = a.agreeWithOutcome(result.Outcome, home, away, rawHome, rawAway)
	if result.ScoreAdjusted {
		logger.Info(fmt.Sprintf("presentation adjustment %s v %s: %s raw %.2f-%.2f rounded %d-%d shown %d-%d",
			actx.HomeTeam, actx.AwayTeam, result.Outcome, rawHome, rawAway, home, away, result.HomeGoals, result.AwayGoals))
	}

	fallback := actx.Features != nil && actx.Features.Fallback()
	result.LimitedHistory = fallback
	result.Confidence = math.Round(probs.Max()*1000) / 10
	result.ConfidenceBand = a.band(probs.Max(), fallback)
	result.KeyFactors = KeyFactors(actx.Features, actx.Synthetic)
	return result, nil
}

// NormalizeProbabilities rescales p to sum to 1.
// Negative, NaN or all zero input is a *ModelContractError.
func NormalizeProbabilities(p Probabilities) (Probabilities, error) {
	for _, v := range p.Slice() {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return Probabilities{}, NewModelContractError("outcome", 3, 3, fmt.Sprintf("invalid probabilities %+v", p))
		}
	}
	sum := p.Sum()
	if sum <= 0 {
		return Probabilities{}, NewModelContractError("outcome", 3, 3, "probabilities are all zero")
	}
	return Probabilities{Away: p.Away / sum, Draw: p.Draw / sum, Home: p.Home / sum}, nil
}

// PickOutcome is the argmax of p. Draw wins any tie it is part of, a home and away tie goes to home.
func PickOutcome(p Probabilities) string {
	switch {
	case p.Draw >= p.Home && p.Draw >= p.Away:
		return OutcomeDraw
	case p.Home >= p.Away:
		return OutcomeHomeWin
	default:
		return OutcomeAwayWin
	}
}

// RoundHalfAwayFromZero rounds 0.5 up and -0.5 down
func RoundHalfAwayFromZero(v float64) int {
	return int(math.Round(v))
}

func (a *PredictionAssembler) clampGoals(g int) int {
	if g < a.cfg.MinGoals {
		return a.cfg.MinGoals
	}
	if g > a.cfg.MaxGoals {
		return a.cfg.MaxGoals
	}
	return g
}

// agreeWithOutcome makes the presented score read like the outcome.
// One goal on one side is tried first: a winner is raised, or else the loser lowered, and a draw lowers the higher side.
// A score further off is replaced by the likeliest score for the outcome given the raw goal estimates.
func (a *PredictionAssembler) agreeWithOutcome(outcome string, home, away int, rawHome, rawAway float64) (int, int, bool) {
	if scoreAgrees(outcome, home, away) {
		return home, away, false
	}
	minG, maxG := a.cfg.MinGoals, a.cfg.MaxGoals
	var candidates [][2]int
	switch outcome {
	case OutcomeHomeWin:
		candidates = [][2]int{{home + 1, away}, {home, away - 1}}
	case OutcomeAwayWin:
		candidates = [][2]int{{home, away + 1}, {home - 1, away}}
	default:
		if home > away {
			candidates = [][2]int{{home - 1, away}}
		} else {
			candidates = [][2]int{{home, away - 1}}
		}
	}
	for _, c := range candidates {
		if c[0] < minG || c[0] > maxG || c[1] < minG || c[1] > maxG {
			continue
		}
		if scoreAgrees(outcome, c[0], c[1]) {
			return c[0], c[1], true
		}
	}
	if h, aw, ok := a.likeliestScore(outcome, rawHome, rawAway); ok {
		return h, aw, true
	}
	// a single value display range cannot show a winner
	return home, away, false
}

func scoreAgrees(outcome string, home, away int) bool {
	switch outcome {
	case OutcomeHomeWin:
		return home > away
	case OutcomeAwayWin:
		return away > home
	default:
		return home == away
	}
}

// likeliestScore is the most probable score in the display range that agrees with outcome,
// treating the raw estimates as independent Poisson rates. Ties go to the lowest score.
func (a *PredictionAssembler) likeliestScore(outcome string, rawHome, rawAway float64) (int, int, bool) {
	homeDist := distuv.Poisson{Lambda: math.Max(rawHome, a.cfg.MinGoalsFloor)}
	awayDist := distuv.Poisson{Lambda: math.Max(rawAway, a.cfg.MinGoalsFloor)}
	bestHome, bestAway, best := 0, 0, -1.0
	for h := a.cfg.MinGoals; h <= a.cfg.MaxGoals; h++ {
		for aw := a.cfg.MinGoals; aw <= a.cfg.MaxGoals; aw++ {
			if !scoreAgrees(outcome, h, aw) {
				continue
			}
			if p := homeDist.Prob(float64(h)) * awayDist.Prob(float64(aw)); p > best {
				bestHome, bestAway, best = h, aw, p
			}
		}
	}
	return bestHome, bestAway, best >= 0
}

func (a *PredictionAssembler) band(maxProb float64, fallback bool) string {
	switch {
	case fallback:
		return ConfidenceLow
	case maxProb > a.cfg.HighConfidence:
		return ConfidenceHigh
	case maxProb > a.cfg.MediumConfidence:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// KeyFactors explains a prediction in a fixed order:
// form gap, scoring form, shots on target, discipline, head to head, limited history, sample data.
func KeyFactors(f *MatchFeatures, synthetic bool) []string {
	var factors []string
	if f != nil {
		home, away := f.HomeForm, f.AwayForm
		if gap := home.PointsAvg - away.PointsAvg; math.Abs(gap) >= formGapThreshold {
			better, worse := home, away
			if gap < 0 {
				better, worse = away, home
			}
			factors = append(factors, fmt.Sprintf("%s in stronger form (%.1f vs %.1f points per game)",
				better.Team, better.PointsAvg, worse.PointsAvg))
		}

		for _, side := range []*TeamForm{home, away} {
			if side.GoalsForAvg >= scoringThreshold {
				factors = append(factors, fmt.Sprintf("%s scoring freely (%.1f goals per game)", side.Team, side.GoalsForAvg))
			}
		}

		if home.ShotsOnTargetAvg >= 0 && away.ShotsOnTargetAvg >= 0 {
			if gap := home.ShotsOnTargetAvg - away.ShotsOnTargetAvg; math.Abs(gap) >= shotsGapThreshold {
				more, less := home, away
				if gap < 0 {
					more, less = away, home
				}
				factors = append(factors, fmt.Sprintf("%s creating more chances (%.1f vs %.1f shots on target)",
					more.Team, more.ShotsOnTargetAvg, less.ShotsOnTargetAvg))
			}
		}

		if home.CardsAvg >= 0 && away.CardsAvg >= 0 {
			if gap := home.CardsAvg - away.CardsAvg; math.Abs(gap) >= cardsGapThreshold {
				more, less := home, away
				if gap < 0 {
					more, less = away, home
				}
				factors = append(factors, fmt.Sprintf("%s less disciplined (%.1f vs %.1f cards per game)",
					more.Team, more.CardsAvg, less.CardsAvg))
			}
		}

		if h := f.H2H; h != nil && h.TotalMatches >= h2hMinMeetings {
			n := float64(h.TotalMatches)
			switch {
			case float64(h.Team1Wins)/n >= h2hDominantShare:
				factors = append(factors, fmt.Sprintf("%s dominate the head to head (%d wins in %d)", h.Team1, h.Team1Wins, h.TotalMatches))
			case float64(h.Team2Wins)/n >= h2hDominantShare:
				factors = append(factors, fmt.Sprintf("%s dominate the head to head (%d wins in %d)", h.Team2, h.Team2Wins, h.TotalMatches))
			case float64(h.Draws)/n >= h2hDrawShare:
				factors = append(factors, fmt.Sprintf("Meetings are often drawn (%d of %d)", h.Draws, h.TotalMatches))
			}
		}

		for _, side := range []*TeamForm{f.HomeOverall, f.AwayOverall} {
			if side != nil && side.Fallback {
				factors = append(factors, fmt.Sprintf("%s %s, league averages used", limitedHistoryPrefix, side.Team))
			}
		}
	}
	if synthetic {
		factors = append(factors, "Based on built-in sample data, no historical dataset was loaded")
	}
	if len(factors) == 0 {
		factors = append(factors, evenlyMatchedMessage)
	}
	return factors
}
