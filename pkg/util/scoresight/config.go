package scoresight

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// Config contains all configurable parameters that influence prediction outcomes
// A value is built once at startup and handed to NewEngine, there is no package level copy
type Config struct {
	// Database and cache parameters
	AssetsPath string   `yaml:"assets_path"` // base directory of scoresight assets
	CachePath  string   `yaml:"cache_path"`  // downloaded football-data CSVs live here
	DbPath     string   `yaml:"db_path"`     // sqlite database written by the import command
	DataFiles  []string `yaml:"data_files"`  // CSV files loaded into the match store
	ModelPath  string   `yaml:"model_path"`  // optional pre-trained model bundle (JSON)

	// === DATA ACQUISITION ===
	DataBaseURL string   `yaml:"data_base_url"` // football-data.co.uk root
	LeagueCode  string   `yaml:"league_code"`   // E0 is the Premier League
	Seasons     []string `yaml:"seasons"`       // YYYY/YYYY seasons to download

	// === WINDOWS ===
	FormWindow       int `yaml:"form_window"`        // matches considered for form (default: 5)
	HeadToHeadWindow int `yaml:"head_to_head_window"` // meetings considered for H2H (default: 10)

	// === SCORE PRESENTATION ===
	MinGoals int `yaml:"min_goals"` // lower clamp for displayed goals (default: 0)
	MaxGoals int `yaml:"max_goals"` // upper clamp for displayed goals (default: 6)

	// === CONFIDENCE BANDS ===
	HighConfidence   float64 `yaml:"high_confidence"`   // max probability above this is high (default: 0.6)
	MediumConfidence float64 `yaml:"medium_confidence"` // max probability above this is medium (default: 0.45)

	// === DEFAULT LEAGUE AVERAGES ===

	// Used when the store holds no matches at all
	DefaultHomeGoalsPerGame float64 `yaml:"default_home_goals"`    // (default: 1.5)
	DefaultAwayGoalsPerGame float64 `yaml:"default_away_goals"`    // (default: 1.2)
	DefaultPointsPerGame    float64 `yaml:"default_points"`        // (default: 1.5)
	DefaultHomeWinRate      float64 `yaml:"default_home_win_rate"` // (default: 0.4)

	// === FEATURE ENGINEERING ===
	StrengthEpsilon    float64 `yaml:"strength_epsilon"`     // keeps strength ratios finite (default: 1e-6)
	LateSeasonMonth    int     `yaml:"late_season_month"`    // months >= this are late season (default: 4)
	EncoderCardinality int     `yaml:"encoder_cardinality"` // hash fallback modulus (default: 64)

	// === POISSON / DIXON-COLES ===
	PoissonRange  int     `yaml:"poisson_range"`   // goals 0..N-1 in the score matrix (default: 9)
	DixonColesRho float64 `yaml:"dixon_coles_rho"` // low score correlation (default: -0.03)
	MinGoalsFloor float64 `yaml:"min_goals_floor"` // expected goals floor, above 0 (default: 0.1)
	MaxGoalsCap   float64 `yaml:"max_goals_cap"`   // expected goals cap (default: 6.0)
	FormWeight    float64 `yaml:"form_weight"`     // share of form in expected goals (default: 0.6)

	// === LOGGING ===
	LogLevel  string `yaml:"log_level"`  // DEBUG, INFO, WARN ...
	LogOutput string `yaml:"log_output"` // c (console), f (file), b (both)
	LogFile   string `yaml:"log_file"`
}

// DefaultConfig returns the default configuration with all standard values
func DefaultConfig() *Config {
	assetsPath := defaultAssetsPath()
	return &Config{
		AssetsPath: assetsPath,
		CachePath:  filepath.Join(assetsPath, "cache"),
		DbPath:     filepath.Join(assetsPath, "scoresight.db"),

		DataBaseURL: "https://www.football-data.co.uk",
		LeagueCode:  "E0",
		Seasons:     []string{"2020/2021", "2021/2022", "2022/2023", "2023/2024", "2024/2025", "2025/2026"},

		// === WINDOWS ===
		FormWindow:       5,
		HeadToHeadWindow: 10,

		// === SCORE PRESENTATION ===
		MinGoals: 0,
		MaxGoals: 6,

		// === CONFIDENCE BANDS ===
		HighConfidence:   0.6,
		MediumConfidence: 0.45,

		// === DEFAULT LEAGUE AVERAGES ===
		DefaultHomeGoalsPerGame: 1.5,
		DefaultAwayGoalsPerGame: 1.2,
		DefaultPointsPerGame:    1.5,
		DefaultHomeWinRate:      0.4,

		// === FEATURE ENGINEERING ===
		StrengthEpsilon:    1e-6,
		LateSeasonMonth:    4,
		EncoderCardinality: 64,

		// === POISSON / DIXON-COLES ===
		PoissonRange:  9,
		DixonColesRho: -0.03,
		MinGoalsFloor: 0.1,
		MaxGoalsCap:   6.0,
		FormWeight:    0.6,

		LogLevel:  "INFO",
		LogOutput: "c",
	}
}

func defaultAssetsPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".scoresight"
	}
	return filepath.Join(home, ".scoresight")
}

// LoadConfig reads a YAML file over the defaults.
// Keys missing from the file keep their default value.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// === CONFIGURATION VALIDATION ===

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}
	if config.FormWindow < 1 {
		return fmt.Errorf("FormWindow must be at least 1, got: %d", config.FormWindow)
	}
	if config.HeadToHeadWindow < 1 {
		return fmt.Errorf("HeadToHeadWindow must be at least 1, got: %d", config.HeadToHeadWindow)
	}
	if config.MinGoals < 0 || config.MaxGoals < config.MinGoals {
		return fmt.Errorf("goal clamp [%d, %d] is not a valid range", config.MinGoals, config.MaxGoals)
	}
	if config.MediumConfidence <= 0 || config.HighConfidence >= 1 || config.MediumConfidence >= config.HighConfidence {
		return fmt.Errorf("confidence thresholds must satisfy 0 < medium < high < 1, got: %f, %f",
			config.MediumConfidence, config.HighConfidence)
	}
	if config.StrengthEpsilon <= 0 {
		return fmt.Errorf("StrengthEpsilon must be positive, got: %g", config.StrengthEpsilon)
	}
	if config.LateSeasonMonth < 1 || config.LateSeasonMonth > 12 {
		return fmt.Errorf("LateSeasonMonth must be a month number, got: %d", config.LateSeasonMonth)
	}
	if config.EncoderCardinality < 2 {
		return fmt.Errorf("EncoderCardinality must be at least 2, got: %d", config.EncoderCardinality)
	}
	if config.PoissonRange < 3 {
		return fmt.Errorf("PoissonRange should be at least 3 to capture realistic scores, got: %d", config.PoissonRange)
	}
	if config.DixonColesRho > 0 || config.DixonColesRho < -0.1 {
		return fmt.Errorf("DixonColesRho should be between -0.1 and 0, got: %f", config.DixonColesRho)
	}
	if config.MinGoalsFloor <= 0 || config.MaxGoalsCap <= config.MinGoalsFloor {
		return fmt.Errorf("expected goals bounds [%f, %f] are not valid", config.MinGoalsFloor, config.MaxGoalsCap)
	}
	if config.FormWeight < 0.0 || config.FormWeight > 1.0 {
		return fmt.Errorf("FormWeight must be between 0.0 and 1.0, got: %f", config.FormWeight)
	}
	for _, s := range config.Seasons {
		if _, err := ParseSeason(s); err != nil {
			return fmt.Errorf("invalid season in Seasons: %w", err)
		}
	}
	return nil
}
