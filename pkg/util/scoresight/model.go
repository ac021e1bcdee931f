package scoresight

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/internal/logger"
	"gonum.org/v1/gonum/floats"
)

// Probabilities of the three full time results, kept in the fixed order away, draw, home
type Probabilities struct {
	Away float64 `json:"away"`
	Draw float64 `json:"draw"`
	Home float64 `json:"home"`
}

// Slice returns the probabilities as [away, draw, home]
func (p Probabilities) Slice() []float64 {
	return []float64{p.Away, p.Draw, p.Home}
}

func (p Probabilities) Sum() float64 {
	return p.Away + p.Draw + p.Home
}

// Max returns the largest of the three probabilities
func (p Probabilities) Max() float64 {
	return math.Max(p.Home, math.Max(p.Draw, p.Away))
}

// OutcomeClassifier produces full time result probabilities for an ordered feature vector
type OutcomeClassifier interface {
	FeatureNames() []string
	PredictProbabilities(vec FeatureVector) (Probabilities, error)
}

// ScoreRegressor estimates the goals one side will score
type ScoreRegressor interface {
	FeatureNames() []string
	PredictGoals(vec FeatureVector) (float64, error)
}

// versioned is implemented by models that know which feature set version they were fitted on
type versioned interface {
	FeatureVersion() string
}

func featureVersion(model any, fallback string) string {
	if v, ok := model.(versioned); ok && v.FeatureVersion() != "" {
		return v.FeatureVersion()
	}
	return fallback
}

// Models is the set of estimators an Engine predicts with
type Models struct {
	Name      string
	Outcome   OutcomeClassifier
	HomeGoals ScoreRegressor
	AwayGoals ScoreRegressor

	// label tables the models were fitted with, empty means derive them from the store
	TeamClasses   []string
	SeasonClasses []string
}

// Encoders builds the categorical encoders for these models
func (m Models) Encoders(store *MatchStore, cfg *Config) Encoders {
	enc := StoreEncoders(store, cfg)
	if len(m.TeamClasses) > 0 {
		enc.Team = NewTableEncoder("team", m.TeamClasses, cfg.EncoderCardinality)
	}
	if len(m.SeasonClasses) > 0 {
		enc.Season = NewTableEncoder("season", m.SeasonClasses, cfg.EncoderCardinality)
	}
	return enc
}

// Validate checks every model is present and asks only for features the builder produces
func (m Models) Validate() error {
	if m.Outcome == nil || m.HomeGoals == nil || m.AwayGoals == nil {
		return fmt.Errorf("model set %q is incomplete", m.Name)
	}
	produced := map[string]bool{}
	for _, n := range ProducedFeatures() {
		produced[n] = true
	}
	check := func(model string, names []string) error {
		if len(names) == 0 {
			return NewModelContractError(model, 0, 0, "model declares no features")
		}
		for _, n := range names {
			if !produced[n] {
				return NewModelContractError(model, len(names), len(names),
					fmt.Sprintf("feature %q is not produced by the feature builder", n))
			}
		}
		return nil
	}
	if err := check(m.Name+"/outcome", m.Outcome.FeatureNames()); err != nil {
		return err
	}
	if err := check(m.Name+"/home_goals", m.HomeGoals.FeatureNames()); err != nil {
		return err
	}
	return check(m.Name+"/away_goals", m.AwayGoals.FeatureNames())
}

// ********************************************************
// ********* PRE-TRAINED MODEL BUNDLE *********************
// ********************************************************

// ModelBundle is a pre-trained linear model set exported to JSON.
// Loaded once at startup and read-only afterwards.
type ModelBundle struct {
	Version   string            `json:"version"`
	Outcome   *LinearClassifier `json:"outcome"`
	HomeGoals *LinearRegressor  `json:"home_goals"`
	AwayGoals *LinearRegressor  `json:"away_goals"`
	Encoders  struct {
		Team   []string `json:"team"`
		Season []string `json:"season"`
	} `json:"encoders"`
}

// LinearClassifier is a multinomial logistic regression.
// Classes name the rows of Coefficients and may be listed in any order.
type LinearClassifier struct {
	Version      string      `json:"version"`
	Features     []string    `json:"features"`
	Classes      []string    `json:"classes"`
	Coefficients [][]float64 `json:"coefficients"`
	Intercepts   []float64   `json:"intercepts"`

	rows [3]int // row index for away, draw, home
}

// LinearRegressor is an ordinary linear model for one side's goals
type LinearRegressor struct {
	Version      string    `json:"version"`
	Features     []string  `json:"features"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`

	name string
}

// LoadModelBundle reads and validates a bundle
func LoadModelBundle(path string) (*ModelBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model bundle %s: %w", path, err)
	}
	bundle, err := ParseModelBundle(data)
	if err != nil {
		return nil, fmt.Errorf("model bundle %s: %w", path, err)
	}
	logger.Info("Loaded model bundle", path, bundle.Version)
	return bundle, nil
}

// ParseModelBundle decodes bundle JSON and checks its shapes
func ParseModelBundle(data []byte) (*ModelBundle, error) {
	var b ModelBundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse model bundle: %w", err)
	}
	if b.Outcome == nil || b.HomeGoals == nil || b.AwayGoals == nil {
		return nil, fmt.Errorf("bundle must contain outcome, home_goals and away_goals")
	}
	if err := b.Outcome.prepare(); err != nil {
		return nil, err
	}
	if err := b.HomeGoals.prepare("home_goals"); err != nil {
		return nil, err
	}
	if err := b.AwayGoals.prepare("away_goals"); err != nil {
		return nil, err
	}
	if b.Outcome.Version == "" {
		b.Outcome.Version = OutcomeFeatureVersion
	}
	if err := b.Models().Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Models exposes the bundle as an Engine model set
func (b *ModelBundle) Models() Models {
	return Models{
		Name:          "bundle " + b.Version,
		Outcome:       b.Outcome,
		HomeGoals:     b.HomeGoals,
		AwayGoals:     b.AwayGoals,
		TeamClasses:   b.Encoders.Team,
		SeasonClasses: b.Encoders.Season,
	}
}

func (c *LinearClassifier) prepare() error {
	if len(c.Features) == 0 {
		return NewModelContractError("outcome", 0, 0, "no features declared")
	}
	if len(c.Classes) != 3 || len(c.Coefficients) != 3 || len(c.Intercepts) != 3 {
		return NewModelContractError("outcome", 3, len(c.Classes), "classifier needs exactly three classes")
	}
	c.rows = [3]int{-1, -1, -1}
	for i, class := range c.Classes {
		slot := -1
		switch class {
		case ResultAway:
			slot = 0
		case ResultDraw:
			slot = 1
		case ResultHome:
			slot = 2
		}
		if slot < 0 || c.rows[slot] >= 0 {
			return NewModelContractError("outcome", 3, len(c.Classes),
				fmt.Sprintf("classes must be A, D and H once each, got %v", c.Classes))
		}
		c.rows[slot] = i
	}
	for i, row := range c.Coefficients {
		if len(row) != len(c.Features) {
			return NewModelContractError("outcome", len(c.Features), len(row),
				fmt.Sprintf("coefficient row %d does not match the feature list", i))
		}
	}
	return nil
}

func (c *LinearClassifier) FeatureNames() []string {
	return append([]string(nil), c.Features...)
}

func (c *LinearClassifier) FeatureVersion() string {
	return c.Version
}

// PredictProbabilities is the softmax of the class scores
func (c *LinearClassifier) PredictProbabilities(vec FeatureVector) (Probabilities, error) {
	if err := ValidateFeatureVector("outcome", c.Features, vec); err != nil {
		return Probabilities{}, err
	}
	scores := make([]float64, len(c.Coefficients))
	for i, row := range c.Coefficients {
		scores[i] = floats.Dot(row, vec.Values) + c.Intercepts[i]
	}
	norm := floats.LogSumExp(scores)
	p := func(slot int) float64 {
		return math.Exp(scores[c.rows[slot]] - norm)
	}
	return Probabilities{Away: p(0), Draw: p(1), Home: p(2)}, nil
}

func (r *LinearRegressor) prepare(name string) error {
	r.name = name
	if r.Version == "" {
		r.Version = ScoreFeatureVersion
	}
	if len(r.Features) == 0 {
		return NewModelContractError(name, 0, 0, "no features declared")
	}
	if len(r.Coefficients) != len(r.Features) {
		return NewModelContractError(name, len(r.Features), len(r.Coefficients), "coefficients do not match the feature list")
	}
	return nil
}

func (r *LinearRegressor) FeatureNames() []string {
	return append([]string(nil), r.Features...)
}

func (r *LinearRegressor) FeatureVersion() string {
	return r.Version
}

func (r *LinearRegressor) PredictGoals(vec FeatureVector) (float64, error) {
	if err := ValidateFeatureVector(r.name, r.Features, vec); err != nil {
		return 0, err
	}
	return floats.Dot(r.Coefficients, vec.Values) + r.Intercept, nil
}
