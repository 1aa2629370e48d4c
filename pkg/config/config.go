// Package config provides configuration loading and management for micropatch.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Normalization parameters
	Normalization struct {
		// Auto computes mean and std from the loaded dataset instead
		// of using the fixed values below
		Auto bool `yaml:"auto"`

		// Mean is the fixed normalization mean used when Auto is false
		Mean float64 `yaml:"mean"`

		// Std is the fixed normalization standard deviation used when
		// Auto is false; must be non-zero
		Std float64 `yaml:"std"`
	} `yaml:"normalization"`

	// Augmentation parameters
	Augmentation struct {
		// BaseSeed is the starting seed for augmentation; each sample
		// is augmented with BaseSeed plus its index so that a run is
		// reproducible while still varying across the dataset
		BaseSeed int64 `yaml:"baseSeed"`
	} `yaml:"augmentation"`

	// Crop parameters
	Crop struct {
		// Height of the randomly cropped training patches
		Height int `yaml:"height"`

		// Width of the randomly cropped training patches
		Width int `yaml:"width"`
	} `yaml:"crop"`

	// Noise diagnostic parameters
	Noise struct {
		// MaxLag is the largest pixel lag for the autocorrelation map
		MaxLag int `yaml:"maxLag"`

		// DirectionThreshold is the mean absolute autocorrelation above
		// which an axis is reported as the noise direction
		DirectionThreshold float64 `yaml:"directionThreshold"`

		// WindowHeight and WindowWidth are the dimensions of the dark
		// window searched for when sampling pure noise
		WindowHeight int `yaml:"windowHeight"`
		WindowWidth  int `yaml:"windowWidth"`
	} `yaml:"noise"`

	// Output parameters
	Output struct {
		// PreviewCount is the number of augmented preview pairs to save
		PreviewCount int `yaml:"previewCount"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default normalization parameters
	cfg.Normalization.Auto = true
	cfg.Normalization.Mean = 0.0
	cfg.Normalization.Std = 1.0

	// Set default augmentation parameters
	cfg.Augmentation.BaseSeed = 42

	// Set default crop parameters
	cfg.Crop.Height = 256
	cfg.Crop.Width = 256

	// Set default noise diagnostic parameters
	cfg.Noise.MaxLag = 10
	cfg.Noise.DirectionThreshold = 0.5
	cfg.Noise.WindowHeight = 64
	cfg.Noise.WindowWidth = 64

	// Set default output parameters
	cfg.Output.PreviewCount = 4
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
