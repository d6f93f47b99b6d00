// Package strategies implements the entry-timing detectors. Two heuristics
// are supported: breakout (price clears the recent high on volume) and
// pullback (price returns to the moving average inside an uptrend).
package strategies

import (
	"github.com/rs/zerolog"

	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/regime"
)

// Type identifies which detector produced a signal.
type Type string

const (
	Breakout Type = "breakout"
	Pullback Type = "pullback"
	None     Type = "none"
)

// Signal is the result of evaluating one symbol on one tick.
//
// When Valid is true the price levels are ordered
// StopLoss < EntryPrice < TakeProfit1 < TakeProfit2 and RiskReward meets
// the configured minimum.
type Signal struct {
	Strategy    Type
	Valid       bool
	EntryPrice  float64
	StopLoss    float64
	TakeProfit1 float64
	TakeProfit2 float64
	RiskReward  float64
	Confidence  float64 // 0-100
	Reasons     []string
}

func invalid(t Type, reason string) Signal {
	return Signal{Strategy: t, Reasons: []string{reason}}
}

// Config holds detector thresholds. These are hand-tuned defaults carried
// over from live use and deliberately kept configurable.
type Config struct {
	Lookback           int     `json:"lookback" yaml:"lookback"`                                 // 20
	BreakoutVolumeMult float64 `json:"breakout_volume_mult" yaml:"breakout_volume_mult"`         // 1.5
	BreakoutMaxChase   float64 `json:"breakout_max_chase_pct" yaml:"breakout_max_chase_pct"`     // 0.05
	PullbackMATol      float64 `json:"pullback_ma_tolerance_pct" yaml:"pullback_ma_tolerance_pct"` // 0.03
	PullbackMinUptrend float64 `json:"pullback_min_uptrend_pct" yaml:"pullback_min_uptrend_pct"` // 0.05
	MinRiskReward      float64 `json:"min_risk_reward" yaml:"min_risk_reward"`                   // 1.5
}

func DefaultConfig() Config {
	return Config{
		Lookback:           20,
		BreakoutVolumeMult: 1.5,
		BreakoutMaxChase:   0.05,
		PullbackMATol:      0.03,
		PullbackMinUptrend: 0.05,
		MinRiskReward:      1.5,
	}
}

// Engine runs both detectors and keeps the better setup.
type Engine struct {
	cfg Config
	log zerolog.Logger
}

func NewEngine(cfg Config, log zerolog.Logger) *Engine {
	return &Engine{cfg: cfg, log: log}
}

// Evaluate runs both detectors against the current observation. When both
// qualify the higher-confidence setup is preferred, breakout winning ties.
// Insufficient data never produces an error, only an invalid signal.
func (e *Engine) Evaluate(symbol string, obs market.Observation, hist *market.History, _ regime.Analysis) Signal {
	breakout := e.checkBreakout(obs, hist)
	pullback := e.checkPullback(obs, hist)

	var sig Signal
	switch {
	case breakout.Valid && pullback.Valid:
		if breakout.Confidence >= pullback.Confidence {
			sig = breakout
		} else {
			sig = pullback
		}
	case breakout.Valid:
		sig = breakout
	case pullback.Valid:
		sig = pullback
	default:
		sig = invalid(None, "no clear entry setup")
	}

	if sig.Valid {
		e.log.Info().
			Str("symbol", symbol).
			Str("strategy", string(sig.Strategy)).
			Float64("entry", sig.EntryPrice).
			Float64("stop", sig.StopLoss).
			Float64("rr", sig.RiskReward).
			Float64("confidence", sig.Confidence).
			Msg("entry signal")
	}
	return sig
}
