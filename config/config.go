// Package config loads the engine configuration. One explicit struct is
// passed to each component constructor; there are no process-wide defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/papertrader/regime"
	"github.com/rustyeddy/papertrader/risk"
	"github.com/rustyeddy/papertrader/strategies"
)

// Config is the complete engine configuration.
type Config struct {
	Account  AccountConfig     `json:"account" yaml:"account"`
	Feed     FeedConfig        `json:"feed" yaml:"feed"`
	Risk     RiskConfig        `json:"risk" yaml:"risk"`
	Regime   regime.Config     `json:"regime" yaml:"regime"`
	Strategy strategies.Config `json:"strategy" yaml:"strategy"`
	Journal  JournalConfig     `json:"journal" yaml:"journal"`
}

// AccountConfig holds the virtual account parameters.
type AccountConfig struct {
	InitialCapital float64  `json:"initial_capital" yaml:"initial_capital"`
	Symbols        []string `json:"symbols" yaml:"symbols"`
	PollInterval   string   `json:"poll_interval" yaml:"poll_interval"` // e.g. "5m"
}

func (a AccountConfig) ParsePollInterval() (time.Duration, error) {
	if a.PollInterval == "" {
		return 5 * time.Minute, nil
	}
	return time.ParseDuration(a.PollInterval)
}

// FeedConfig selects the observation source.
type FeedConfig struct {
	Mode string             `json:"mode" yaml:"mode"` // "demo" or "replay"
	File string             `json:"file,omitempty" yaml:"file,omitempty"`
	Seed int64              `json:"seed,omitempty" yaml:"seed,omitempty"`
	Base map[string]float64 `json:"base_prices,omitempty" yaml:"base_prices,omitempty"`
}

// RiskConfig mirrors risk.Policy with serialization tags.
type RiskConfig struct {
	BaselineCapital  float64 `json:"baseline_capital" yaml:"baseline_capital"`
	RiskPerTrade     float64 `json:"risk_per_trade" yaml:"risk_per_trade"`
	MaxPositionPct   float64 `json:"max_position_pct" yaml:"max_position_pct"`
	MinPositionPct   float64 `json:"min_position_pct" yaml:"min_position_pct"`
	LotSize          int     `json:"lot_size" yaml:"lot_size"`
	StopLossPct      float64 `json:"stop_loss_pct" yaml:"stop_loss_pct"`
	TakeProfitPct    float64 `json:"take_profit_pct" yaml:"take_profit_pct"`
	TrailingPct      float64 `json:"trailing_pct" yaml:"trailing_pct"`
	MaxOpenPositions int     `json:"max_open_positions" yaml:"max_open_positions"`
	MaxDailyLossPct  float64 `json:"max_daily_loss_pct" yaml:"max_daily_loss_pct"`
	MaxDrawdownPct   float64 `json:"max_drawdown_pct" yaml:"max_drawdown_pct"`
}

// Policy converts the serialized risk settings into a risk.Policy.
func (r RiskConfig) Policy() risk.Policy {
	return risk.Policy{
		BaselineCapital:  r.BaselineCapital,
		RiskPerTrade:     r.RiskPerTrade,
		MaxPositionPct:   r.MaxPositionPct,
		MinPositionPct:   r.MinPositionPct,
		LotSize:          r.LotSize,
		StopLossPct:      r.StopLossPct,
		TakeProfitPct:    r.TakeProfitPct,
		TrailingPct:      r.TrailingPct,
		MaxOpenPositions: r.MaxOpenPositions,
		MaxDailyLossPct:  r.MaxDailyLossPct,
		MaxDrawdownPct:   r.MaxDrawdownPct,
	}
}

// JournalConfig selects the journal store.
type JournalConfig struct {
	Type string `json:"type" yaml:"type"` // "json" or "sqlite"
	Path string `json:"path" yaml:"path"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML (or JSON for .json paths).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for obviously unsafe values.
func (c *Config) Validate() error {
	if c.Account.InitialCapital <= 0 {
		return fmt.Errorf("account.initial_capital must be positive")
	}
	if len(c.Account.Symbols) == 0 {
		return fmt.Errorf("account.symbols is required")
	}
	if _, err := c.Account.ParsePollInterval(); err != nil {
		return fmt.Errorf("account.poll_interval: %w", err)
	}
	if c.Risk.RiskPerTrade <= 0 || c.Risk.RiskPerTrade > 0.05 {
		return fmt.Errorf("risk.risk_per_trade must be in (0, 0.05]")
	}
	if c.Risk.MaxPositionPct > 0.5 {
		return fmt.Errorf("risk.max_position_pct too high (>50%%)")
	}
	if c.Risk.StopLossPct > 0.2 {
		return fmt.Errorf("risk.stop_loss_pct too high (>20%%)")
	}
	if c.Risk.LotSize < 1 {
		return fmt.Errorf("risk.lot_size must be at least 1")
	}
	if c.Feed.Mode != "demo" && c.Feed.Mode != "replay" {
		return fmt.Errorf("feed.mode must be 'demo' or 'replay'")
	}
	if c.Feed.Mode == "replay" && c.Feed.File == "" {
		return fmt.Errorf("feed.file required for replay mode")
	}
	if c.Journal.Type != "json" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'json' or 'sqlite'")
	}
	if c.Journal.Path == "" {
		return fmt.Errorf("journal.path is required")
	}
	return nil
}

// Default returns a configuration with the stock defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			InitialCapital: 10_000_000,
			Symbols:        []string{"FPT", "PVS", "KBC", "HPG"},
			PollInterval:   "5m",
		},
		Feed: FeedConfig{
			Mode: "demo",
			Seed: 1,
			Base: map[string]float64{"FPT": 95_000, "PVS": 38_000, "KBC": 31_000, "HPG": 27_000},
		},
		Risk: RiskConfig{
			BaselineCapital:  10_000_000,
			RiskPerTrade:     0.01,
			MaxPositionPct:   0.25,
			MinPositionPct:   0.05,
			LotSize:          100,
			StopLossPct:      0.08,
			TakeProfitPct:    0.15,
			TrailingPct:      0.05,
			MaxOpenPositions: 4,
			MaxDailyLossPct:  0.05,
			MaxDrawdownPct:   0.15,
		},
		Regime:   regime.DefaultConfig(),
		Strategy: strategies.DefaultConfig(),
		Journal: JournalConfig{
			Type: "json",
			Path: "data/trade_journal.json",
		},
	}
}
