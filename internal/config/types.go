// Package config provides configuration loading and management for the
// session engine.
//
// Configuration is loaded using Viper, supporting YAML config files and
// environment variable overrides. The defaults work out of the box: embedded
// templates, a session store under the user config directory, and the stock
// intent-scoring tunables.
//
// Key types:
//   - [Config] is the root configuration container with all settings
//   - [Loader] handles Viper-based configuration loading
//   - [IntentConfig] exposes the confidence-normalization tunables
//
// Configuration priority (highest to lowest):
//  1. Environment variables (IDEALLY_ prefix)
//  2. Config file specified by IDEALLY_CONFIG_PATH
//  3. ~/.config/ideally/config.yaml
//  4. ./config.yaml
//  5. [DefaultConfig] defaults
package config

import (
	"time"

	"github.com/hollandkevint/ideally-sub002/internal/logging"
)

// Config represents the root configuration structure.
type Config struct {
	// Logging contains logger construction settings.
	Logging logging.Config `mapstructure:"logging"`

	// Templates contains template source settings.
	Templates TemplatesConfig `mapstructure:"templates"`

	// Store contains session persistence settings.
	Store StoreConfig `mapstructure:"store"`

	// Orchestrator contains timeouts for external collaborator calls.
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`

	// Intent contains the pathway-scoring tunables.
	Intent IntentConfig `mapstructure:"intent"`
}

// TemplatesConfig controls where template definitions are loaded from.
type TemplatesConfig struct {
	// Dir is a directory of <template-id>.yaml files. When empty, the
	// embedded built-in templates are used.
	Dir string `mapstructure:"dir"`
}

// StoreConfig controls session persistence.
type StoreConfig struct {
	// Dir is the directory holding per-session YAML files.
	// When empty, ~/.config/ideally/sessions is used.
	Dir string `mapstructure:"dir"`
}

// OrchestratorConfig bounds the external collaborator calls.
//
// Analysis timeouts degrade to a fallback result; storage timeouts surface
// as persistence errors for the current call.
type OrchestratorConfig struct {
	// AnalysisTimeout bounds the analysis collaborator call.
	AnalysisTimeout time.Duration `mapstructure:"analysis_timeout"`

	// StorageTimeout bounds each durable storage call.
	StorageTimeout time.Duration `mapstructure:"storage_timeout"`
}

// IntentConfig exposes the confidence-normalization constants.
//
// These are heuristic tunables, not a load-bearing algorithm: the floor keeps
// a plausible match from reporting as low-confidence, the cap keeps the
// router from ever claiming certainty.
type IntentConfig struct {
	// BaseScore is the starting score before weighted signals are added.
	BaseScore float64 `mapstructure:"base_score"`

	// MinTopScore is the target for the uniform boost: when the best raw
	// score falls below it, all scores are scaled so the best reaches it.
	MinTopScore float64 `mapstructure:"min_top_score"`

	// FloorThreshold is the raw score above which a pathway is considered
	// a plausible match and floored to ConfidenceFloor.
	FloorThreshold float64 `mapstructure:"floor_threshold"`

	// ConfidenceFloor is the minimum reported confidence for plausible matches.
	ConfidenceFloor float64 `mapstructure:"confidence_floor"`

	// ScoreCap is the maximum reported confidence.
	ScoreCap float64 `mapstructure:"score_cap"`
}

// DefaultConfig returns a new [Config] with sensible defaults.
//
// The defaults run without any configuration file: embedded templates,
// session files under the user config directory, and the stock scoring
// constants.
func DefaultConfig() *Config {
	return &Config{
		Logging: logging.DefaultConfig(),
		Orchestrator: OrchestratorConfig{
			AnalysisTimeout: 30 * time.Second,
			StorageTimeout:  10 * time.Second,
		},
		Intent: IntentConfig{
			BaseScore:       0.5,
			MinTopScore:     0.5,
			FloorThreshold:  0.3,
			ConfidenceFloor: 0.5,
			ScoreCap:        0.95,
		},
	}
}
