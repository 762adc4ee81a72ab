// Package config defines the application configuration and its loading from
// files, environment variables, and command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/docfuse/docfuse/internal/output"
	"github.com/docfuse/docfuse/internal/reconcile"
	"github.com/docfuse/docfuse/internal/textsim"
)

// Config represents the complete configuration for the docfuse application.
// It covers the reconcile and batch commands and supports loading from
// configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Reconciliation policy
	Reconcile ReconcileConfig `mapstructure:"reconcile" yaml:"reconcile" json:"reconcile"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Batch processing configuration
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// ReconcileConfig contains the alignment policy settings.
type ReconcileConfig struct {
	Similarity    SimilarityConfig    `mapstructure:"similarity" yaml:"similarity" json:"similarity"`
	Hallucination HallucinationConfig `mapstructure:"hallucination" yaml:"hallucination" json:"hallucination"`
	Orphan        OrphanConfig        `mapstructure:"orphan" yaml:"orphan" json:"orphan"`
}

// SimilarityConfig selects the text similarity algorithm and its accept
// cutoff.
type SimilarityConfig struct {
	Method    string  `mapstructure:"method" yaml:"method" json:"method"`
	Threshold float64 `mapstructure:"threshold" yaml:"threshold" json:"threshold"`
}

// HallucinationConfig contains the flagging band settings.
type HallucinationConfig struct {
	DetectionThreshold float64 `mapstructure:"detection_threshold" yaml:"detection_threshold" json:"detection_threshold"`
	DiscardThreshold   float64 `mapstructure:"discard_threshold" yaml:"discard_threshold" json:"discard_threshold"`
}

// OrphanConfig contains orphan absorption settings.
type OrphanConfig struct {
	MaxDistance float64 `mapstructure:"max_distance" yaml:"max_distance" json:"max_distance"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format          string `mapstructure:"format" yaml:"format" json:"format"`
	File            string `mapstructure:"file" yaml:"file" json:"file"`
	IncludeMetadata bool   `mapstructure:"include_metadata" yaml:"include_metadata" json:"include_metadata"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	rc := reconcile.DefaultConfig()
	return &Config{
		LogLevel: "info",
		Reconcile: ReconcileConfig{
			Similarity: SimilarityConfig{
				Method:    string(rc.SimilarityMethod),
				Threshold: rc.SimilarityThreshold,
			},
			Hallucination: HallucinationConfig{
				DetectionThreshold: rc.HallucinationThreshold,
				DiscardThreshold:   rc.DiscardThreshold,
			},
			Orphan: OrphanConfig{MaxDistance: rc.OrphanMaxDistance},
		},
		Output: OutputConfig{
			Format: string(output.FormatMarkdown),
		},
		Batch: BatchConfig{
			OutputDir:       "output",
			ContinueOnError: false,
		},
	}
}

// ToEngineConfig converts the loaded settings into the reconciliation
// engine's typed configuration.
func (c ReconcileConfig) ToEngineConfig() reconcile.Config {
	return reconcile.Config{
		SimilarityMethod:       textsim.Method(c.Similarity.Method),
		SimilarityThreshold:    c.Similarity.Threshold,
		HallucinationThreshold: c.Hallucination.DetectionThreshold,
		DiscardThreshold:       c.Hallucination.DiscardThreshold,
		OrphanMaxDistance:      c.Orphan.MaxDistance,
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (use debug, info, warn, or error)", c.LogLevel)
	}

	if err := c.Reconcile.ToEngineConfig().Validate(); err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	if _, err := output.New(output.Format(c.Output.Format), c.Output.IncludeMetadata); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	if c.Batch.OutputDir == "" {
		return fmt.Errorf("batch output directory must not be empty")
	}
	return nil
}
