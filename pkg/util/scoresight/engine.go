package scoresight

import (
	"errors"
	"fmt"
	"time"

	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/internal/logger"
)

// Engine answers prediction, team and head to head queries over one loaded match store.
// Everything it owns is read-only after NewEngine so it is safe for concurrent use.
type Engine struct {
	cfg        *Config
	store      *MatchStore
	normalizer *TeamNameNormalizer
	form       *FormCalculator
	h2h        *HeadToHeadCalculator
	builder    *FeatureBuilder
	models     Models
	assembler  *PredictionAssembler
}

// NewEngine wires the prediction pipeline.
// It fails when a model asks for a feature the builder cannot produce.
func NewEngine(store *MatchStore, models Models, cfg *Config) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("match store is nil")
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if err := models.Validate(); err != nil {
		return nil, err
	}
	normalizer := NewTeamNameNormalizer(store.Teams())
	e := &Engine{
		cfg:        cfg,
		store:      store,
		normalizer: normalizer,
		form:       NewFormCalculator(store, cfg),
		h2h:        NewHeadToHeadCalculator(store, cfg),
		builder:    NewFeatureBuilder(store, normalizer, models.Encoders(store, cfg), cfg),
		models:     models,
		assembler:  NewPredictionAssembler(cfg),
	}
	logger.Info("Engine ready", models.Name, len(store.Teams()), "teams")
	return e, nil
}

// LoadModels returns the bundle at cfg.ModelPath, or the built-in Poisson model when none is configured
func LoadModels(store *MatchStore, cfg *Config) (Models, error) {
	if cfg.ModelPath == "" {
		return NewPoissonModel(fallbackAverages(store, cfg), cfg).Models(), nil
	}
	bundle, err := LoadModelBundle(cfg.ModelPath)
	if err != nil {
		return Models{}, err
	}
	return bundle.Models(), nil
}

// Predict forecasts home v away on date (YYYY-MM-DD) using only matches before that date
func (e *Engine) Predict(home, away, date string) (*PredictionResult, error) {
	features, err := e.builder.Build(home, away, date)
	if err != nil {
		return nil, err
	}
	result, err := e.predictFeatures(features)
	if err != nil {
		logContractViolation(err)
		return nil, err
	}
	return result, nil
}

func logContractViolation(err error) {
	var mce *ModelContractError
	if errors.As(err, &mce) {
		logger.Error("Model contract violated", err)
	}
}

func (e *Engine) predictFeatures(features *MatchFeatures) (*PredictionResult, error) {
	outcomeVersion := featureVersion(e.models.Outcome, OutcomeFeatureVersion)
	outcomeVec, err := features.Vector(outcomeVersion, e.models.Outcome.FeatureNames())
	if err != nil {
		return nil, err
	}
	probs, err := e.models.Outcome.PredictProbabilities(outcomeVec)
	if err != nil {
		return nil, err
	}

	homeVec, err := features.Vector(featureVersion(e.models.HomeGoals, ScoreFeatureVersion), e.models.HomeGoals.FeatureNames())
	if err != nil {
		return nil, err
	}
	rawHome, err := e.models.HomeGoals.PredictGoals(homeVec)
	if err != nil {
		return nil, err
	}
	awayVec, err := features.Vector(featureVersion(e.models.AwayGoals, ScoreFeatureVersion), e.models.AwayGoals.FeatureNames())
	if err != nil {
		return nil, err
	}
	rawAway, err := e.models.AwayGoals.PredictGoals(awayVec)
	if err != nil {
		return nil, err
	}

	return e.assembler.Assemble(probs, rawHome, rawAway, AssemblyContext{
		HomeTeam:       features.HomeTeam,
		AwayTeam:       features.AwayTeam,
		Date:           features.Date,
		Season:         features.Season,
		Features:       features,
		Synthetic:      e.store.IsSynthetic(),
		FeatureVersion: outcomeVersion,
		Model:          e.models.Name,
	})
}

// AvailableTeams lists every canonical team, sorted
func (e *Engine) AvailableTeams() []string {
	return e.store.Teams()
}

// TeamForm is the team's form over any venue before date
func (e *Engine) TeamForm(team, date string) (*TeamForm, error) {
	return e.TeamVenueForm(team, date, VenueAny)
}

// TeamVenueForm is the team's form before date counting only matches at venue
func (e *Engine) TeamVenueForm(team, date string, venue Venue) (*TeamForm, error) {
	d, err := ParseRequestDate(date)
	if err != nil {
		return nil, err
	}
	canonical, err := e.builder.ResolveTeam(team)
	if err != nil {
		return nil, err
	}
	return e.form.Form(canonical, d, e.cfg.FormWindow, venue), nil
}

// HeadToHead summarises the recent meetings of home and away before date
func (e *Engine) HeadToHead(home, away, date string) (*HeadToHead, error) {
	d, err := ParseRequestDate(date)
	if err != nil {
		return nil, err
	}
	t1, err := e.builder.ResolveTeam(home)
	if err != nil {
		return nil, err
	}
	t2, err := e.builder.ResolveTeam(away)
	if err != nil {
		return nil, err
	}
	if t1 == t2 {
		return nil, NewUnknownTeamError(away, "teams must be different", nil)
	}
	return e.h2h.HeadToHead(t1, t2, d, e.cfg.HeadToHeadWindow), nil
}

// SeasonInfo describes the season a date falls in
type SeasonInfo struct {
	Season   string `json:"season"`
	Native   string `json:"native"` // football-data directory name, e.g. 2425
	Start    string `json:"start"`
	End      string `json:"end"`
	Current  bool   `json:"current"`
	Matches  int    `json:"matches"` // stored matches in the season
	LastDate string `json:"lastDate,omitempty"`
}

// SeasonInfo reports the season of date and how much of it is in the store
func (e *Engine) SeasonInfo(date string, now time.Time) (*SeasonInfo, error) {
	d, err := ParseRequestDate(date)
	if err != nil {
		return nil, err
	}
	season := SeasonForDate(d)
	start, end, err := SeasonBounds(season)
	if err != nil {
		return nil, err
	}
	native, err := SeasonToNative(season)
	if err != nil {
		return nil, err
	}
	info := &SeasonInfo{
		Season:  season,
		Native:  native,
		Start:   start.Format(DateLayout),
		End:     end.Format(DateLayout),
		Current: IsCurrentSeason(season, now),
	}
	matches := e.store.MatchesInRange(start, end)
	info.Matches = len(matches)
	if len(matches) > 0 {
		info.LastDate = matches[len(matches)-1].DateStr
	}
	return info, nil
}

// Backtest predicts every stored match between from and to inclusive, each from the matches before it,
// and compares the predictions with what happened
func (e *Engine) Backtest(from, to string) (*AggregateAccuracy, error) {
	start, err := ParseRequestDate(from)
	if err != nil {
		return nil, err
	}
	end, err := ParseRequestDate(to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("backtest range ends before it starts: %s to %s", from, to)
	}

	matches := e.store.MatchesInRange(start, end)
	accuracies := make([]*PredictionAccuracy, 0, len(matches))
	for _, m := range matches {
		result, err := e.predictFeatures(e.builder.BuildAt(m.HomeTeam, m.AwayTeam, m.Date))
		if err != nil {
			logContractViolation(err)
			return nil, fmt.Errorf("backtest %s: %w", m.ID, err)
		}
		accuracies = append(accuracies, EvaluatePrediction(m, result))
	}
	aggregate := AggregatePredictions(accuracies)
	if aggregate == nil {
		return nil, fmt.Errorf("no stored matches between %s and %s", start.Format(DateLayout), end.Format(DateLayout))
	}
	aggregate.From = start.Format(DateLayout)
	aggregate.To = end.Format(DateLayout)
	aggregate.Model = e.models.Name
	logger.Inform("Backtest", aggregate.From, aggregate.To, aggregate.TotalMatches, "matches",
		fmt.Sprintf("result %.1f%% exact %.1f%%", aggregate.ResultAccuracy, aggregate.ExactScoreAccuracy))
	return aggregate, nil
}

// Store returns the match store the engine reads from
func (e *Engine) Store() *MatchStore {
	return e.store
}

func (e *Engine) Config() *Config {
	return e.cfg
}

func (e *Engine) ModelName() string {
	return e.models.Name
}

// Normalizer returns the engine's team name normalizer
func (e *Engine) Normalizer() *TeamNameNormalizer {
	return e.normalizer
}
