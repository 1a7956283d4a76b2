// Package config loads and validates the trading system configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration for backtests and live polling.
type Config struct {
	InitialCash    float64 `json:"initial_cash" yaml:"initial_cash"`
	FeeRate        float64 `json:"fee_rate" yaml:"fee_rate"`
	SlippageRate   float64 `json:"slippage_rate" yaml:"slippage_rate"`
	SimulateCosts  bool    `json:"simulate_costs" yaml:"simulate_costs"`
	SeriesCapacity int     `json:"series_capacity" yaml:"series_capacity"`
	PollInterval   string  `json:"poll_interval" yaml:"poll_interval"`

	Storage    StorageConfig    `json:"storage" yaml:"storage"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
	Strategies []StrategyConfig `json:"strategies" yaml:"strategies"`
}

// StorageConfig selects the ledger persistence backend.
type StorageConfig struct {
	Backend       string `json:"backend" yaml:"backend"` // memory, json, or sqlite
	PortfolioPath string `json:"portfolio_path,omitempty" yaml:"portfolio_path,omitempty"`
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	ReportPath    string `json:"report_path,omitempty" yaml:"report_path,omitempty"`
}

// LoggingConfig configures the application logger.
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

// StrategyConfig names one strategy, its aggregation weight, and its
// parameters.
type StrategyConfig struct {
	Name   string             `json:"name" yaml:"name"`
	Weight float64            `json:"weight" yaml:"weight"`
	Params map[string]float64 `json:"params" yaml:"params"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration; extension selects YAML or JSON.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if c.InitialCash <= 0 {
		return fmt.Errorf("initial_cash must be positive")
	}
	if c.FeeRate < 0 || c.SlippageRate < 0 {
		return fmt.Errorf("fee_rate and slippage_rate must not be negative")
	}
	if c.SeriesCapacity < 0 {
		return fmt.Errorf("series_capacity must not be negative")
	}
	if c.PollInterval != "" {
		if _, err := time.ParseDuration(c.PollInterval); err != nil {
			return fmt.Errorf("poll_interval: %w", err)
		}
	}
	switch c.Storage.Backend {
	case "memory", "":
	case "json":
		if c.Storage.PortfolioPath == "" {
			return fmt.Errorf("storage.portfolio_path required for json backend")
		}
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("storage.db_path required for sqlite backend")
		}
	default:
		return fmt.Errorf("storage.backend must be 'memory', 'json', or 'sqlite'")
	}
	if len(c.Strategies) == 0 {
		return fmt.Errorf("at least one strategy is required")
	}
	for i, s := range c.Strategies {
		if s.Name == "" {
			return fmt.Errorf("strategies[%d].name is required", i)
		}
		if s.Weight <= 0 || s.Weight > 1 {
			return fmt.Errorf("strategies[%d].weight must be in (0, 1]", i)
		}
	}
	return nil
}

// PollDuration parses the polling interval, defaulting to one minute.
func (c *Config) PollDuration() time.Duration {
	if c.PollInterval == "" {
		return time.Minute
	}
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return time.Minute
	}
	return d
}

// Default returns a configuration with the standard two-strategy setup.
func Default() *Config {
	return &Config{
		InitialCash:    100000,
		FeeRate:        0.001,
		SlippageRate:   0.0005,
		SimulateCosts:  true,
		SeriesCapacity: 100,
		PollInterval:   "60s",
		Storage: StorageConfig{
			Backend:       "json",
			PortfolioPath: "./portfolio.json",
			ReportPath:    "./backtest_result.json",
		},
		Logging: LoggingConfig{Level: "info"},
		Strategies: []StrategyConfig{
			{
				Name:   "MovingAverageCrossover",
				Weight: 0.6,
				Params: map[string]float64{
					"short_window":  5,
					"long_window":   20,
					"buy_fraction":  0.1,
					"sell_fraction": 0.5,
				},
			},
			{
				Name:   "RSI",
				Weight: 0.4,
				Params: map[string]float64{
					"window":        14,
					"overbought":    70,
					"oversold":      30,
					"buy_fraction":  0.05,
					"sell_fraction": 0.3,
				},
			},
		},
	}
}
