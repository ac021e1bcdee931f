package scoresight

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, ValidateConfig(DefaultConfig()))
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoresight.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
form_window: 6
model_path: /tmp/models.json
seasons:
  - 2023/2024
log_level: DEBUG
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.FormWindow)
	assert.Equal(t, "/tmp/models.json", cfg.ModelPath)
	assert.Equal(t, []string{"2023/2024"}, cfg.Seasons)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	// untouched keys keep their defaults
	assert.Equal(t, 10, cfg.HeadToHeadWindow)
	assert.Equal(t, "E0", cfg.LeagueCode)
	assert.Equal(t, 0.6, cfg.HighConfidence)
}

func TestLoadConfigErrors(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().FormWindow, cfg.FormWindow)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("form_window: [1, 2"), 0644))
	_, err = LoadConfig(bad)
	assert.ErrorContains(t, err, "failed to parse config")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("form_window: 0\n"), 0644))
	_, err = LoadConfig(invalid)
	assert.ErrorContains(t, err, "FormWindow")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"head to head window", func(c *Config) { c.HeadToHeadWindow = 0 }},
		{"goal clamp", func(c *Config) { c.MinGoals, c.MaxGoals = 3, 2 }},
		{"confidence order", func(c *Config) { c.MediumConfidence = 0.7 }},
		{"late season month", func(c *Config) { c.LateSeasonMonth = 13 }},
		{"encoder cardinality", func(c *Config) { c.EncoderCardinality = 1 }},
		{"poisson range", func(c *Config) { c.PoissonRange = 2 }},
		{"rho", func(c *Config) { c.DixonColesRho = 0.2 }},
		{"form weight", func(c *Config) { c.FormWeight = 1.5 }},
		{"zero goals floor", func(c *Config) { c.MinGoalsFloor = 0 }},
		{"season", func(c *Config) { c.Seasons = []string{"2023/2025"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, ValidateConfig(cfg))
		})
	}
	assert.Error(t, ValidateConfig(nil))
}
