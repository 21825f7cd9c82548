// Package config loads the accounting core's runtime configuration from a
// YAML or JSON file, with environment overrides layered on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config is the complete runtime configuration.
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Risk    RiskConfig    `json:"risk" yaml:"risk"`
	Sizing  SizingConfig  `json:"sizing" yaml:"sizing"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
}

// AccountConfig initializes the account snapshot the validator reads.
type AccountConfig struct {
	ID       string  `json:"id" yaml:"id"`
	Currency string  `json:"currency" yaml:"currency"`
	Equity   float64 `json:"equity" yaml:"equity"`
}

// RiskConfig holds the validator limits.
type RiskConfig struct {
	MaxPositionPct     float64 `json:"max_position_pct" yaml:"max_position_pct"`
	MaxRiskPerTradePct float64 `json:"max_risk_per_trade_pct" yaml:"max_risk_per_trade_pct"`
	MaxOpenPositions   int     `json:"max_open_positions" yaml:"max_open_positions"`
}

// SizingConfig holds the default sizing method and its parameters.
type SizingConfig struct {
	Method        string  `json:"method" yaml:"method"`
	Percent       float64 `json:"percent,omitempty" yaml:"percent,omitempty"`
	Amount        float64 `json:"amount,omitempty" yaml:"amount,omitempty"`
	Quantity      float64 `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	ATRMultiplier float64 `json:"atr_multiplier,omitempty" yaml:"atr_multiplier,omitempty"`
}

// JournalConfig selects the history backend.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	FillsFile  string `json:"fills_file,omitempty" yaml:"fills_file,omitempty"`
}

var sizingMethods = map[string]bool{
	"fixed_amount":        true,
	"fixed_quantity":      true,
	"percent_equity":      true,
	"percent_risk":        true,
	"kelly_criterion":     true,
	"volatility_adjusted": true,
}

// LoadFromFile loads configuration from a file (YAML or JSON), applies
// environment overrides, and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envOverrides are the handful of settings worth flipping per deployment
// without editing the file. Prefixed QETTA_, e.g. QETTA_JOURNAL_DB.
type envOverrides struct {
	Equity      float64 `envconfig:"EQUITY"`
	JournalType string  `envconfig:"JOURNAL_TYPE"`
	JournalDB   string  `envconfig:"JOURNAL_DB"`
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("qetta", &env); err != nil {
		return fmt.Errorf("env overrides: %w", err)
	}
	if env.Equity > 0 {
		c.Account.Equity = env.Equity
	}
	if env.JournalType != "" {
		c.Journal.Type = env.JournalType
	}
	if env.JournalDB != "" {
		c.Journal.DBPath = env.JournalDB
	}
	return nil
}

// SaveToFile writes the configuration to a file, YAML or JSON by extension.
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

// Validate checks the configuration is coherent.
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.Equity <= 0 {
		return fmt.Errorf("account.equity must be positive")
	}
	if c.Risk.MaxPositionPct <= 0 || c.Risk.MaxPositionPct > 100 {
		return fmt.Errorf("risk.max_position_pct must be in (0, 100]")
	}
	if c.Risk.MaxRiskPerTradePct <= 0 || c.Risk.MaxRiskPerTradePct > 100 {
		return fmt.Errorf("risk.max_risk_per_trade_pct must be in (0, 100]")
	}
	if c.Risk.MaxOpenPositions <= 0 {
		return fmt.Errorf("risk.max_open_positions must be positive")
	}
	if !sizingMethods[c.Sizing.Method] {
		return fmt.Errorf("unknown sizing method: %s", c.Sizing.Method)
	}
	switch c.Journal.Type {
	case "none":
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite type")
		}
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.FillsFile == "" {
			return fmt.Errorf("journal trades_file and fills_file required for csv type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:       "ACCT-001",
			Currency: "USD",
			Equity:   100000,
		},
		Risk: RiskConfig{
			MaxPositionPct:     25,
			MaxRiskPerTradePct: 2,
			MaxOpenPositions:   5,
		},
		Sizing: SizingConfig{
			Method:  "percent_risk",
			Percent: 1,
		},
		Journal: JournalConfig{
			Type: "none",
		},
	}
}
