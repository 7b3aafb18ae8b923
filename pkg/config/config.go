// Package config provides configuration loading and management for the
// gamsurface demo binary. It handles loading configuration from YAML files
// and provides default values. The library itself is configured through
// pipeline.Options; this package only maps a file onto those options.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Fit parameters
	Fit struct {
		// K is the smoothing capacity: an upper bound on the basis
		// dimension of the fitted surface.
		K int `yaml:"k"`

		// ForcePositive fits on the square root of the response so
		// back-transformed predictions cannot be negative.
		ForcePositive bool `yaml:"forcePositive"`
	} `yaml:"fit"`

	// Mask parameters
	Mask struct {
		// Extrapolate predicts at every coordinate, not only measured ones.
		Extrapolate bool `yaml:"extrapolate"`

		// Dist is the range-normalized distance beyond which an
		// extrapolated prediction is discarded.
		Dist float64 `yaml:"dist"`
	} `yaml:"mask"`

	// Output parameters
	Output struct {
		// Verbose enables stage-level debug logging.
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Fit.K = 100
	cfg.Fit.ForcePositive = true

	cfg.Mask.Extrapolate = false
	cfg.Mask.Dist = 0.05

	cfg.Output.Verbose = false

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
