package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.NoError(t, cfg.Validate())

	interval, err := cfg.Account.ParsePollInterval()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, interval)
}

func TestLoadFromYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `account:
  initial_capital: 20000000
  symbols: [VNM, SSI]
  poll_interval: 1m
feed:
  mode: demo
  seed: 9
risk:
  risk_per_trade: 0.02
journal:
  type: sqlite
  path: data/journal.db
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.InDelta(t, 20_000_000, cfg.Account.InitialCapital, 1e-6)
	assert.Equal(t, []string{"VNM", "SSI"}, cfg.Account.Symbols)
	assert.Equal(t, "sqlite", cfg.Journal.Type)
	assert.InDelta(t, 0.02, cfg.Risk.RiskPerTrade, 1e-9)

	// Unset fields keep the stock defaults.
	assert.Equal(t, 100, cfg.Risk.LotSize)
	assert.Equal(t, 20, cfg.Strategy.Lookback)

	interval, err := cfg.Account.ParsePollInterval()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, interval)
}

func TestSaveAndReloadJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	cfg := Default()
	cfg.Account.InitialCapital = 15_000_000
	require.NoError(t, cfg.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.InDelta(t, 15_000_000, got.Account.InitialCapital, 1e-6)
	assert.Equal(t, cfg.Account.Symbols, got.Account.Symbols)
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero capital", func(c *Config) { c.Account.InitialCapital = 0 }, "initial_capital"},
		{"no symbols", func(c *Config) { c.Account.Symbols = nil }, "symbols"},
		{"bad interval", func(c *Config) { c.Account.PollInterval = "soon" }, "poll_interval"},
		{"risk too high", func(c *Config) { c.Risk.RiskPerTrade = 0.10 }, "risk_per_trade"},
		{"position too big", func(c *Config) { c.Risk.MaxPositionPct = 0.9 }, "max_position_pct"},
		{"stop too wide", func(c *Config) { c.Risk.StopLossPct = 0.5 }, "stop_loss_pct"},
		{"zero lot", func(c *Config) { c.Risk.LotSize = 0 }, "lot_size"},
		{"unknown feed", func(c *Config) { c.Feed.Mode = "live" }, "feed.mode"},
		{"replay without file", func(c *Config) { c.Feed.Mode = "replay" }, "feed.file"},
		{"unknown journal", func(c *Config) { c.Journal.Type = "postgres" }, "journal.type"},
		{"no journal path", func(c *Config) { c.Journal.Path = "" }, "journal.path"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
