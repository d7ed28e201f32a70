// Package config holds the splitting defaults and optional TOML overrides.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/segment"
)

// Config carries the tunables of the split pipeline.
type Config struct {
	// MaxLen is the maximum sub-segment duration in seconds.
	MaxLen float64 `toml:"max_len"`
	// NumJobs is the number of cuts processed in parallel.
	NumJobs int `toml:"num_jobs"`
	// WordMap overrides the written→spoken equivalence table used when
	// matching text against alignments.
	WordMap map[string]string `toml:"word_map"`
	// StripChars overrides the punctuation set removed during token
	// normalization.
	StripChars string `toml:"strip_chars"`
}

// Default returns the configuration matching the reference corpora setup.
func Default() *Config {
	return &Config{
		MaxLen:  30,
		NumJobs: 8,
	}
}

// Load reads a TOML file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot work
// with.
func (c *Config) Validate() error {
	if c.MaxLen <= 0 {
		return fmt.Errorf("max_len must be positive, got %g", c.MaxLen)
	}
	if c.NumJobs < 1 {
		return fmt.Errorf("num_jobs must be at least 1, got %d", c.NumJobs)
	}
	return nil
}

// Rules builds the matcher rules, falling back to the defaults for unset
// fields.
func (c *Config) Rules() segment.Rules {
	rules := segment.DefaultRules()
	if c.WordMap != nil {
		rules.WordMap = c.WordMap
	}
	if c.StripChars != "" {
		rules.StripChars = c.StripChars
	}
	return rules
}
