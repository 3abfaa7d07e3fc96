package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 30*time.Second, cfg.Orchestrator.AnalysisTimeout)
	assert.Equal(t, 10*time.Second, cfg.Orchestrator.StorageTimeout)

	// Normalization constants per the scoring design.
	assert.Equal(t, 0.5, cfg.Intent.BaseScore)
	assert.Equal(t, 0.3, cfg.Intent.FloorThreshold)
	assert.Equal(t, 0.5, cfg.Intent.ConfidenceFloor)
	assert.Equal(t, 0.95, cfg.Intent.ScoreCap)

	require.NoError(t, cfg.Validate())
}

// chdir changes the working directory for the duration of the test.
// It mirrors t.Chdir, which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

func TestLoader_DefaultsWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := NewLoader().Load()

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Intent, cfg.Intent)
}

func TestLoader_ConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `
logging:
  level: debug
orchestrator:
  analysis_timeout: 5s
intent:
  score_cap: 0.9
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	t.Setenv("IDEALLY_CONFIG_PATH", configPath)

	cfg, err := NewLoader().Load()

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 5*time.Second, cfg.Orchestrator.AnalysisTimeout)
	assert.Equal(t, 0.9, cfg.Intent.ScoreCap)
	// Untouched fields keep defaults.
	assert.Equal(t, 10*time.Second, cfg.Orchestrator.StorageTimeout)
}

func TestLoader_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("IDEALLY_LOGGING_LEVEL", "warn")

	cfg, err := NewLoader().Load()

	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero analysis timeout",
			mutate:  func(c *Config) { c.Orchestrator.AnalysisTimeout = 0 },
			wantErr: "analysis_timeout",
		},
		{
			name:    "score cap above one",
			mutate:  func(c *Config) { c.Intent.ScoreCap = 1.5 },
			wantErr: "score_cap",
		},
		{
			name:    "floor above cap",
			mutate:  func(c *Config) { c.Intent.ConfidenceFloor = 0.99 },
			wantErr: "confidence_floor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
