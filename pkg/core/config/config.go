// Package config loads the valuation policy file. Everything here is policy,
// not logic: multiples buckets, confidence weights and market-data settings
// ship with built-in defaults and a yaml file overrides them wholesale.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"arvo_valuation/pkg/core/dcf"
	"arvo_valuation/pkg/core/multiples"
)

// MarketDataConfig holds the yield-curve fetch settings.
type MarketDataConfig struct {
	YieldCurveURL  string `yaml:"yield_curve_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Config is the full policy file, config/valuation.yaml.
type Config struct {
	Multiples         *multiples.Table       `yaml:"multiples"`
	ConfidenceWeights *dcf.ConfidenceWeights `yaml:"confidence_weights"`
	MarketData        MarketDataConfig       `yaml:"market_data"`

	LLM struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
	} `yaml:"llm"`
}

// Load reads the policy file. A missing file is not an error; the shipped
// defaults apply and the caller is told nothing was overridden.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// MultiplesTable returns the configured table, or the shipped default.
func (c *Config) MultiplesTable() multiples.Table {
	if c.Multiples != nil && len(c.Multiples.Buckets) > 0 {
		return *c.Multiples
	}
	return multiples.DefaultTable()
}

// Confidence returns the configured weights, or the shipped default.
func (c *Config) Confidence() dcf.ConfidenceWeights {
	if c.ConfidenceWeights != nil {
		return *c.ConfidenceWeights
	}
	return dcf.DefaultConfidenceWeights()
}

// MarketDataTimeout returns the configured fetch timeout, or zero when the
// market-data service should use its own default.
func (c *Config) MarketDataTimeout() time.Duration {
	if c.MarketData.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.MarketData.TimeoutSeconds) * time.Second
}
