package scoresight

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/internal/logger"
)

const (
	OutcomeFeatureVersion = "outcome-v2"
	ScoreFeatureVersion   = "score-v1"
)

// OutcomeFeatures is the ordered input of the full time result classifier
var OutcomeFeatures = []string{
	"Season_enc", "Month", "DayOfWeek", "Late_Season",
	"Home_Last5GoalsFor", "Home_Last5GoalsAgainst", "Away_Last5GoalsFor", "Away_Last5GoalsAgainst",
	"Home_Last5Points", "Away_Last5Points", "Home_AttackStrength", "Away_AttackStrength",
	"Home_DefenseStrength", "Away_DefenseStrength", "FormDiff_Pts", "Attack_vs_Defense_H",
	"Attack_vs_Defense_A", "Home_Last3Points_Sum", "Away_Last3Points_Sum", "Home_Momentum",
	"Away_Momentum", "H2H_HomeGoalsAvg", "H2H_AwayGoalsAvg", "H2H_HomeWinRate", "HomeTeam_enc",
	"AwayTeam_enc", "HTR_enc",
}

// ScoreFeatures is the ordered input of the home and away goal regressors
var ScoreFeatures = []string{
	"HomeTeam_enc", "AwayTeam_enc", "Season_enc", "Month", "DayOfWeek",
	"Home_Last5GoalsFor", "Home_Last5GoalsAgainst", "Away_Last5GoalsFor",
	"Away_Last5GoalsAgainst", "Home_Last5Points", "Away_Last5Points",
	"H2H_HomeGoalsAvg", "H2H_AwayGoalsAvg", "H2H_HomeWinRate",
}

// FeatureVector is an ordered, named numeric model input
type FeatureVector struct {
	Version string    `json:"version"`
	Names   []string  `json:"names"`
	Values  []float64 `json:"values"`
}

func (v FeatureVector) Len() int {
	return len(v.Values)
}

// Get returns the value of a named feature
func (v FeatureVector) Get(name string) (float64, bool) {
	for i, n := range v.Names {
		if n == name && i < len(v.Values) {
			return v.Values[i], true
		}
	}
	return 0, false
}

// ValidateFeatureVector checks vec against the names a model was fitted on, by length and then name by name
func ValidateFeatureVector(model string, expected []string, vec FeatureVector) error {
	if len(vec.Names) != len(vec.Values) {
		return NewModelContractError(model, len(expected), len(vec.Values),
			fmt.Sprintf("vector has %d names for %d values", len(vec.Names), len(vec.Values)))
	}
	if len(expected) != len(vec.Values) {
		return NewModelContractError(model, len(expected), len(vec.Values), "feature count mismatch")
	}
	for i, name := range expected {
		if vec.Names[i] != name {
			return NewModelContractError(model, len(expected), len(vec.Values),
				fmt.Sprintf("feature %d is %q, expected %q", i, vec.Names[i], name))
		}
	}
	return nil
}

// MatchFeatures is everything derived for one candidate fixture
type MatchFeatures struct {
	HomeTeam    string             `json:"homeTeam"`
	AwayTeam    string             `json:"awayTeam"`
	Date        time.Time          `json:"date"`
	Season      string             `json:"season"`
	HomeForm    *TeamForm          `json:"homeForm"`    // home side, home matches only
	AwayForm    *TeamForm          `json:"awayForm"`    // away side, away matches only
	HomeOverall *TeamForm          `json:"homeOverall"` // home side, any venue
	AwayOverall *TeamForm          `json:"awayOverall"` // away side, any venue
	H2H         *HeadToHead        `json:"h2h"`
	Values      map[string]float64 `json:"values"`
	Unencoded   []string           `json:"unencoded,omitempty"` // values that took the hash fallback
}

// Vector orders the named features for a model.
// A name the builder cannot produce is a *ModelContractError.
func (f *MatchFeatures) Vector(version string, names []string) (FeatureVector, error) {
	vec := FeatureVector{
		Version: version,
		Names:   make([]string, len(names)),
		Values:  make([]float64, len(names)),
	}
	copy(vec.Names, names)
	for i, name := range names {
		v, ok := f.Values[name]
		if !ok {
			return FeatureVector{}, NewModelContractError(version, len(names), len(names),
				fmt.Sprintf("feature %q is not produced by the feature builder", name))
		}
		vec.Values[i] = v
	}
	return vec, nil
}

// Fallback reports whether either side has no match history before the date
func (f *MatchFeatures) Fallback() bool {
	return f.HomeOverall.Fallback || f.AwayOverall.Fallback
}

// FeatureBuilder assembles MatchFeatures from the store
type FeatureBuilder struct {
	store      *MatchStore
	normalizer *TeamNameNormalizer
	form       *FormCalculator
	h2h        *HeadToHeadCalculator
	encoders   Encoders
	cfg        *Config
}

func NewFeatureBuilder(store *MatchStore, normalizer *TeamNameNormalizer, encoders Encoders, cfg *Config) *FeatureBuilder {
	return &FeatureBuilder{
		store:      store,
		normalizer: normalizer,
		form:       NewFormCalculator(store, cfg),
		h2h:        NewHeadToHeadCalculator(store, cfg),
		encoders:   encoders,
		cfg:        cfg,
	}
}

// ParseRequestDate accepts YYYY-MM-DD, RFC 3339 and the day first football-data layouts
func ParseRequestDate(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, NewInvalidDateError(s)
	}
	if t, err := time.Parse(DateLayout, trimmed); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	if t, err := ParseFootballDataDate(trimmed); err == nil {
		return t, nil
	}
	return time.Time{}, NewInvalidDateError(s)
}

// ResolveTeam normalises name and insists the result has history in the store
func (b *FeatureBuilder) ResolveTeam(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", NewUnknownTeamError(name, "team name is empty", nil)
	}
	canonical, _ := b.normalizer.Normalize(name)
	if !b.store.HasTeam(canonical) {
		return "", NewUnknownTeamError(name, "no matches in the historical data", b.normalizer.Suggest(name, 3))
	}
	return canonical, nil
}

// Build resolves both teams, parses the date and derives every feature
func (b *FeatureBuilder) Build(home, away, date string) (*MatchFeatures, error) {
	d, err := ParseRequestDate(date)
	if err != nil {
		return nil, err
	}
	homeTeam, err := b.ResolveTeam(home)
	if err != nil {
		return nil, err
	}
	awayTeam, err := b.ResolveTeam(away)
	if err != nil {
		return nil, err
	}
	if homeTeam == awayTeam {
		return nil, NewUnknownTeamError(away, "teams must be different", nil)
	}
	return b.BuildAt(homeTeam, awayTeam, d), nil
}

// BuildAt derives the features for two canonical teams
func (b *FeatureBuilder) BuildAt(homeTeam, awayTeam string, date time.Time) *MatchFeatures {
	season := SeasonForDate(date)
	f := &MatchFeatures{
		HomeTeam:    homeTeam,
		AwayTeam:    awayTeam,
		Date:        date,
		Season:      season,
		HomeForm:    b.form.Form(homeTeam, date, b.cfg.FormWindow, VenueHome),
		AwayForm:    b.form.Form(awayTeam, date, b.cfg.FormWindow, VenueAway),
		HomeOverall: b.form.Form(homeTeam, date, b.cfg.FormWindow, VenueAny),
		AwayOverall: b.form.Form(awayTeam, date, b.cfg.FormWindow, VenueAny),
		H2H:         b.h2h.HeadToHead(homeTeam, awayTeam, date, b.cfg.HeadToHeadWindow),
		Values:      make(map[string]float64, len(OutcomeFeatures)+8),
	}

	encode := func(enc Encoder, value string) float64 {
		code, known := enc.Encode(value)
		if !known {
			f.Unencoded = append(f.Unencoded, value)
		}
		return float64(code)
	}
	v := f.Values
	v["HomeTeam_enc"] = encode(b.encoders.Team, homeTeam)
	v["AwayTeam_enc"] = encode(b.encoders.Team, awayTeam)
	v["Season_enc"] = encode(b.encoders.Season, season)
	if len(f.Unencoded) > 0 {
		logger.Info("Hash fallback used for", strings.Join(f.Unencoded, ", "))
	}

	v["Month"] = float64(date.Month())
	v["DayOfWeek"] = float64((int(date.Weekday()) + 6) % 7) // Monday is 0
	v["Late_Season"] = 0
	if int(date.Month()) >= b.cfg.LateSeasonMonth {
		v["Late_Season"] = 1
	}

	hf, af := f.HomeForm, f.AwayForm
	v["Home_Last5GoalsFor"] = hf.GoalsForAvg
	v["Home_Last5GoalsAgainst"] = hf.GoalsAgainstAvg
	v["Away_Last5GoalsFor"] = af.GoalsForAvg
	v["Away_Last5GoalsAgainst"] = af.GoalsAgainstAvg
	v["Home_Last5Points"] = hf.PointsAvg
	v["Away_Last5Points"] = af.PointsAvg

	eps := b.cfg.StrengthEpsilon
	homeAttack := hf.GoalsForAvg / (hf.GoalsAgainstAvg + 1 + eps)
	awayAttack := af.GoalsForAvg / (af.GoalsAgainstAvg + 1 + eps)
	homeDefense := 1.0 / (hf.GoalsAgainstAvg + 1 + eps)
	awayDefense := 1.0 / (af.GoalsAgainstAvg + 1 + eps)
	v["Home_AttackStrength"] = homeAttack
	v["Away_AttackStrength"] = awayAttack
	v["Home_DefenseStrength"] = homeDefense
	v["Away_DefenseStrength"] = awayDefense
	v["FormDiff_Pts"] = hf.PointsAvg - af.PointsAvg
	v["Attack_vs_Defense_H"] = homeAttack / (awayDefense + eps)
	v["Attack_vs_Defense_A"] = awayAttack / (homeDefense + eps)

	v["Home_Last3Points_Sum"] = hf.PointsAvg * 3
	v["Away_Last3Points_Sum"] = af.PointsAvg * 3
	v["Home_Momentum"] = 0
	v["Away_Momentum"] = 0
	// half time result is unknown before kick off, 1 is the draw code
	v["HTR_enc"] = 1

	v["H2H_HomeGoalsAvg"] = f.H2H.Team1GoalsAvg
	v["H2H_AwayGoalsAvg"] = f.H2H.Team2GoalsAvg
	v["H2H_HomeWinRate"] = f.H2H.HomeWinRate
	v["H2H_Matches"] = float64(f.H2H.TotalMatches)

	return f
}

// FeatureNames returns every name BuildAt produces, sorted
func (b *FeatureBuilder) FeatureNames() []string {
	return ProducedFeatures()
}

// ProducedFeatures is the union of every versioned list plus the builder's extra features, sorted
func ProducedFeatures() []string {
	seen := map[string]bool{}
	var names []string
	for _, list := range [][]string{OutcomeFeatures, ScoreFeatures, {"H2H_Matches"}} {
		for _, n := range list {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Store returns the store the builder reads from
func (b *FeatureBuilder) Store() *MatchStore {
	return b.store
}
