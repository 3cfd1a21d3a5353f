// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config file.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Configuration holds all configuration for a planning run
type Configuration struct {
	Optimizer OptimizerConfig
	Logging   LoggingConfig
}

// OptimizerConfig tunes the order optimizer
type OptimizerConfig struct {
	// MaxExactVendors is the candidate vendor count above which the
	// optimizer degrades from exact subset search to the greedy heuristic
	MaxExactVendors int
	// MaxSubsets caps the number of enumerated vendor subsets
	MaxSubsets int
	// Workers is the number of parallel subset evaluators
	Workers int
	// ExcludedVendors are vendor ids removed before optimization
	ExcludedVendors []string
}

// LoggingConfig controls run logging
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // console or json
}

// LoadConfiguration takes a file path as input and loads the
// YAML-formatted configuration there
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &configuration, nil
}
