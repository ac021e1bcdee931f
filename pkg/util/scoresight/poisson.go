package scoresight

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

const PoissonFeatureVersion = "poisson-v1"

// PoissonFeatures is the ordered input of the built-in Poisson model
var PoissonFeatures = []string{
	"Home_Last5GoalsFor", "Home_Last5GoalsAgainst", "Away_Last5GoalsFor", "Away_Last5GoalsAgainst",
	"H2H_HomeGoalsAvg", "H2H_AwayGoalsAvg", "H2H_Matches",
}

// h2hShare is the largest weight head to head goals get against current form
const h2hShare = 0.25

// PoissonModel is the built-in estimator used when no pre-trained bundle is configured.
// Expected goals for each side blend recent form and meetings with the league averages,
// the score matrix is independent Poisson with a Dixon-Coles correction for low scores.
type PoissonModel struct {
	averages DatasetAverages
	cfg      *Config
}

func NewPoissonModel(averages DatasetAverages, cfg *Config) *PoissonModel {
	return &PoissonModel{averages: averages, cfg: cfg}
}

// Models returns the Poisson model as classifier and both regressors
func (pm *PoissonModel) Models() Models {
	return Models{
		Name:      "poisson",
		Outcome:   pm,
		HomeGoals: pm.HomeGoals(),
		AwayGoals: pm.AwayGoals(),
	}
}

func (pm *PoissonModel) FeatureNames() []string {
	return append([]string(nil), PoissonFeatures...)
}

func (pm *PoissonModel) FeatureVersion() string {
	return PoissonFeatureVersion
}

func (pm *PoissonModel) PredictProbabilities(vec FeatureVector) (Probabilities, error) {
	home, away, err := pm.ExpectedGoals(vec)
	if err != nil {
		return Probabilities{}, err
	}
	return pm.ScoreMatrix(home, away).Outcome(), nil
}

// ExpectedGoals returns the home and away scoring rates for a fixture
func (pm *PoissonModel) ExpectedGoals(vec FeatureVector) (float64, float64, error) {
	if err := ValidateFeatureVector("poisson", PoissonFeatures, vec); err != nil {
		return 0, 0, err
	}
	v := vec.Values
	homeFor, homeAgainst, awayFor, awayAgainst := v[0], v[1], v[2], v[3]
	h2hHome, h2hAway, meetings := v[4], v[5], v[6]

	// attack of one side against the defence of the other
	homeForm := (homeFor + awayAgainst) / 2
	awayForm := (awayFor + homeAgainst) / 2

	w := 0.0
	if pm.cfg.HeadToHeadWindow > 0 {
		w = h2hShare * math.Min(meetings, float64(pm.cfg.HeadToHeadWindow)) / float64(pm.cfg.HeadToHeadWindow)
	}
	homeForm = (1-w)*homeForm + w*h2hHome
	awayForm = (1-w)*awayForm + w*h2hAway

	fw := pm.cfg.FormWeight
	home := fw*homeForm + (1-fw)*pm.averages.HomeGoals
	away := fw*awayForm + (1-fw)*pm.averages.AwayGoals
	return pm.clamp(home), pm.clamp(away), nil
}

func (pm *PoissonModel) clamp(goals float64) float64 {
	if math.IsNaN(goals) || goals < pm.cfg.MinGoalsFloor {
		return pm.cfg.MinGoalsFloor
	}
	if goals > pm.cfg.MaxGoalsCap {
		return pm.cfg.MaxGoalsCap
	}
	return goals
}

// ScoreMatrix holds P(home scores i, away scores j) for i, j below the configured range
type ScoreMatrix [][]float64

// ScoreMatrix builds the corrected, renormalised matrix for two scoring rates
func (pm *PoissonModel) ScoreMatrix(homeExpected, awayExpected float64) ScoreMatrix {
	n := pm.cfg.PoissonRange
	homeDist := distuv.Poisson{Lambda: homeExpected}
	awayDist := distuv.Poisson{Lambda: awayExpected}

	matrix := make(ScoreMatrix, n)
	for i := 0; i < n; i++ {
		matrix[i] = make([]float64, n)
		ph := homeDist.Prob(float64(i))
		for j := 0; j < n; j++ {
			matrix[i][j] = ph * awayDist.Prob(float64(j))
		}
	}
	return dixonColesCorrection(matrix, homeExpected, awayExpected, pm.cfg.DixonColesRho)
}

// dixonColesCorrection scales the four low scoring cells then renormalises
func dixonColesCorrection(matrix ScoreMatrix, homeExpected, awayExpected, rho float64) ScoreMatrix {
	if len(matrix) > 1 && len(matrix[0]) > 1 {
		for _, cell := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
			i, j := cell[0], cell[1]
			matrix[i][j] *= calculateTau(i, j, homeExpected, awayExpected, rho)
		}
	}
	return renormalizeMatrix(matrix)
}

// calculateTau is the Dixon-Coles dependence factor for a scoreline
func calculateTau(homeGoals, awayGoals int, lambda1, lambda2, rho float64) float64 {
	switch {
	case homeGoals == 0 && awayGoals == 0:
		return 1 - lambda1*lambda2*rho
	case homeGoals == 0 && awayGoals == 1:
		return 1 + lambda1*rho
	case homeGoals == 1 && awayGoals == 0:
		return 1 + lambda2*rho
	case homeGoals == 1 && awayGoals == 1:
		return 1 - rho
	default:
		return 1
	}
}

func renormalizeMatrix(matrix ScoreMatrix) ScoreMatrix {
	total := 0.0
	for i := range matrix {
		for j := range matrix[i] {
			total += matrix[i][j]
		}
	}
	if total <= 0 {
		return matrix
	}
	for i := range matrix {
		for j := range matrix[i] {
			matrix[i][j] /= total
		}
	}
	return matrix
}

// Outcome sums the lower triangle (home win), the diagonal (draw) and the upper triangle (away win)
func (m ScoreMatrix) Outcome() Probabilities {
	var p Probabilities
	for i := range m {
		for j := range m[i] {
			switch {
			case i > j:
				p.Home += m[i][j]
			case i == j:
				p.Draw += m[i][j]
			default:
				p.Away += m[i][j]
			}
		}
	}
	return p
}

// MostLikelyScore returns the single most probable scoreline
func (m ScoreMatrix) MostLikelyScore() (int, int) {
	best, bh, ba := -1.0, 0, 0
	for i := range m {
		for j := range m[i] {
			if m[i][j] > best {
				best, bh, ba = m[i][j], i, j
			}
		}
	}
	return bh, ba
}

// HomeGoals is a ScoreRegressor view returning the home scoring rate
func (pm *PoissonModel) HomeGoals() ScoreRegressor {
	return poissonGoals{model: pm, home: true}
}

// AwayGoals is a ScoreRegressor view returning the away scoring rate
func (pm *PoissonModel) AwayGoals() ScoreRegressor {
	return poissonGoals{model: pm}
}

type poissonGoals struct {
	model *PoissonModel
	home  bool
}

func (g poissonGoals) FeatureNames() []string {
	return g.model.FeatureNames()
}

func (g poissonGoals) FeatureVersion() string {
	return PoissonFeatureVersion
}

func (g poissonGoals) PredictGoals(vec FeatureVector) (float64, error) {
	home, away, err := g.model.ExpectedGoals(vec)
	if err != nil {
		return 0, err
	}
	if g.home {
		return home, nil
	}
	return away, nil
}
