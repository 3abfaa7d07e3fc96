package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles Viper-based configuration loading.
//
// Use [NewLoader] to create one and [Loader.Load] to produce a [Config].
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a configuration loader with defaults applied.
func NewLoader() *Loader {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("templates.dir", defaults.Templates.Dir)
	v.SetDefault("store.dir", defaults.Store.Dir)
	v.SetDefault("orchestrator.analysis_timeout", defaults.Orchestrator.AnalysisTimeout)
	v.SetDefault("orchestrator.storage_timeout", defaults.Orchestrator.StorageTimeout)
	v.SetDefault("intent.base_score", defaults.Intent.BaseScore)
	v.SetDefault("intent.min_top_score", defaults.Intent.MinTopScore)
	v.SetDefault("intent.floor_threshold", defaults.Intent.FloorThreshold)
	v.SetDefault("intent.confidence_floor", defaults.Intent.ConfidenceFloor)
	v.SetDefault("intent.score_cap", defaults.Intent.ScoreCap)

	v.SetEnvPrefix("IDEALLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// Load reads configuration from file and environment into a [Config].
//
// A missing config file is not an error: the defaults and environment
// overrides apply. A present-but-malformed file is an error.
func (l *Loader) Load() (*Config, error) {
	if path := os.Getenv("IDEALLY_CONFIG_PATH"); path != "" {
		l.v.SetConfigFile(path)
	} else {
		l.v.SetConfigName("config")
		l.v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			l.v.AddConfigPath(filepath.Join(home, ".config", "ideally"))
		}
		l.v.AddConfigPath(".")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the loaded configuration for usable values.
func (c *Config) Validate() error {
	if c.Orchestrator.AnalysisTimeout <= 0 {
		return fmt.Errorf("orchestrator.analysis_timeout must be positive")
	}
	if c.Orchestrator.StorageTimeout <= 0 {
		return fmt.Errorf("orchestrator.storage_timeout must be positive")
	}
	if c.Intent.ScoreCap <= 0 || c.Intent.ScoreCap > 1 {
		return fmt.Errorf("intent.score_cap must be in (0, 1]")
	}
	if c.Intent.ConfidenceFloor < 0 || c.Intent.ConfidenceFloor > c.Intent.ScoreCap {
		return fmt.Errorf("intent.confidence_floor must be in [0, score_cap]")
	}
	if c.Intent.MinTopScore <= 0 || c.Intent.MinTopScore > c.Intent.ScoreCap {
		return fmt.Errorf("intent.min_top_score must be in (0, score_cap]")
	}
	return nil
}
