package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/claimsat/internal/claim"
	"github.com/claimsat/internal/models"
	"github.com/claimsat/internal/reunify"
)

// ClaimSection tunes the claim scorer
type ClaimSection struct {
	Weights claim.Weights `yaml:"weights"`
	Bands   claim.Bands   `yaml:"bands"`
}

// ReunifySection tunes the match engine
type ReunifySection struct {
	Weights       reunify.Weights `yaml:"weights"`
	MinConfidence float64         `yaml:"min_confidence"`
	Workers       int             `yaml:"workers"`
}

// EngineConfig holds per-deployment tuning of both engines
type EngineConfig struct {
	Claim   ClaimSection   `yaml:"claim"`
	Reunify ReunifySection `yaml:"reunify"`
	Debug   bool           `yaml:"debug"`
}

// DefaultEngineConfig returns the standard weights and thresholds. CLAIMSAT_MIN_CONFIDENCE,
// CLAIMSAT_MATCH_WORKERS and CLAIMSAT_DEBUG override the built-in values.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Claim: ClaimSection{
			Weights: claim.DefaultWeights(),
			Bands:   claim.DefaultBands(),
		},
		Reunify: ReunifySection{
			Weights:       reunify.DefaultWeights(),
			MinConfidence: GetEnvFloat("CLAIMSAT_MIN_CONFIDENCE", reunify.DefaultMinConfidence),
			Workers:       GetEnvInt("CLAIMSAT_MATCH_WORKERS", 4),
		},
		Debug: GetEnvBool("CLAIMSAT_DEBUG", false),
	}
}

// LoadEngineConfig reads a YAML engine config over the defaults. An empty path
// returns the defaults.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	cfg := DefaultEngineConfig()
	if path == "" {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid engine defaults: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read engine config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse engine config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks weights sum to 100 and thresholds are ordered
func (c *EngineConfig) Validate() error {
	if sum := c.Claim.Weights.Sum(); math.Abs(sum-100) > 1e-6 {
		return fmt.Errorf("claim weights sum to %.2f, want 100", sum)
	}
	if err := c.Claim.Bands.Validate(); err != nil {
		return err
	}
	if sum := c.Reunify.Weights.Sum(); math.Abs(sum-100) > 1e-6 {
		return fmt.Errorf("reunify weights sum to %.2f, want 100", sum)
	}
	if c.Reunify.MinConfidence < 0 || c.Reunify.MinConfidence > 100 {
		return fmt.Errorf("reunify min_confidence %.1f outside [0,100]", c.Reunify.MinConfidence)
	}
	return nil
}

// ClaimConfig converts the claim section into a scorer configuration
func (c *EngineConfig) ClaimConfig(clock models.Clock) claim.Config {
	return claim.Config{
		Weights: c.Claim.Weights,
		Bands:   c.Claim.Bands,
		Clock:   clock,
		Debug:   c.Debug,
	}
}

// ReunifyConfig converts the reunify section into an engine configuration
func (c *EngineConfig) ReunifyConfig(clock models.Clock) reunify.Config {
	return reunify.Config{
		Weights:       c.Reunify.Weights,
		MinConfidence: c.Reunify.MinConfidence,
		Clock:         clock,
		NewID:         reunify.NewMatchID,
		Debug:         c.Debug,
	}
}
