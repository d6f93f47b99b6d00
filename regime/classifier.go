package regime

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/papertrader/indicators"
	"github.com/rustyeddy/papertrader/market"
)

// Config holds the classifier thresholds. Values are hand-tuned defaults
// inherited from live use; override via the top-level configuration.
type Config struct {
	ShockPct         float64 `json:"shock_pct" yaml:"shock_pct"`                   // single-tick move that pauses trading, e.g. 10
	SidewaysRangePct float64 `json:"sideways_range_pct" yaml:"sideways_range_pct"` // 20-period range below this is sideways, e.g. 5
	FastPeriod       int     `json:"fast_period" yaml:"fast_period"`               // 20
	SlowPeriod       int     `json:"slow_period" yaml:"slow_period"`               // 50
	SlopeShift       int     `json:"slope_shift" yaml:"slope_shift"`               // ticks back for the MA slope, 5
}

func DefaultConfig() Config {
	return Config{
		ShockPct:         10,
		SidewaysRangePct: 5,
		FastPeriod:       20,
		SlowPeriod:       50,
		SlopeShift:       5,
	}
}

// Classifier scores trend, slope, cross, volume and range signals into a
// single regime per tick. It reads history the caller has already updated
// and mutates nothing.
type Classifier struct {
	cfg Config
	log zerolog.Logger
}

func NewClassifier(cfg Config, log zerolog.Logger) *Classifier {
	return &Classifier{cfg: cfg, log: log}
}

// Classify analyzes the current observation against recorded history.
// Missing data degrades to Sideways; it never returns an error.
func (c *Classifier) Classify(symbol string, obs market.Observation, hist *market.History) Analysis {
	// Shock check short-circuits everything else.
	if abs(obs.ChangePct) >= c.cfg.ShockPct {
		return Analysis{
			Regime:     VolatileShock,
			Confidence: 90,
			Reasons:    []string{fmt.Sprintf("extreme move %+.2f%% - trading paused", obs.ChangePct)},
			CanBuy:     false,
			CanSell:    false,
		}
	}

	prices, err := hist.Prices(hist.Len())
	if err != nil || hist.Len() < c.cfg.SlowPeriod {
		return Analysis{
			Regime:     Sideways,
			Confidence: 50,
			Reasons:    []string{"insufficient history for moving averages"},
			CanBuy:     false,
			CanSell:    true,
		}
	}

	var reasons []string
	score := 0.0

	ma20, _ := indicators.SMA(prices, c.cfg.FastPeriod)
	ma50, _ := indicators.SMA(prices, c.cfg.SlowPeriod)

	// Price vs moving averages.
	switch {
	case obs.Price > ma20 && obs.Price > ma50:
		reasons = append(reasons, fmt.Sprintf("price above MA%d (%.0f) and MA%d (%.0f)", c.cfg.FastPeriod, ma20, c.cfg.SlowPeriod, ma50))
		score += 2
	case obs.Price > ma20:
		reasons = append(reasons, fmt.Sprintf("price above MA%d (%.0f) but below MA%d (%.0f)", c.cfg.FastPeriod, ma20, c.cfg.SlowPeriod, ma50))
		score += 1
	default:
		reasons = append(reasons, fmt.Sprintf("price below MA%d (%.0f) - weak trend", c.cfg.FastPeriod, ma20))
		score -= 2
	}

	// Fast MA slope over the last few ticks.
	slope, slopeErr := indicators.SlopePct(prices, c.cfg.FastPeriod, c.cfg.SlopeShift)
	switch {
	case slopeErr == nil && slope > 0.01:
		reasons = append(reasons, fmt.Sprintf("MA%d sloping up", c.cfg.FastPeriod))
		score += 2
	case slopeErr == nil && slope < -0.01:
		reasons = append(reasons, fmt.Sprintf("MA%d sloping down", c.cfg.FastPeriod))
		score -= 2
	default:
		reasons = append(reasons, fmt.Sprintf("MA%d flat - sideways market", c.cfg.FastPeriod))
		score -= 1
	}

	// Golden/death cross.
	if ma20 > ma50 {
		crossPct := (ma20/ma50 - 1) * 100
		if crossPct > 2 {
			reasons = append(reasons, fmt.Sprintf("strong golden cross - MA%d above MA%d by %.1f%%", c.cfg.FastPeriod, c.cfg.SlowPeriod, crossPct))
			score += 1
		} else {
			reasons = append(reasons, fmt.Sprintf("MA%d > MA%d (bullish)", c.cfg.FastPeriod, c.cfg.SlowPeriod))
			score += 0.5
		}
	} else {
		reasons = append(reasons, fmt.Sprintf("MA%d < MA%d (bearish)", c.cfg.FastPeriod, c.cfg.SlowPeriod))
		score -= 1
	}

	// Volume vs 20-period average; skipped when no average is available.
	volumes, _ := hist.Volumes(hist.Len())
	if avgVol, err := indicators.AvgNonzero(volumes, c.cfg.FastPeriod); err == nil && obs.Volume > 0 {
		ratio := obs.Volume / avgVol
		if ratio >= 1.0 {
			reasons = append(reasons, fmt.Sprintf("healthy volume (%.1fx average)", ratio))
			score += 1
		} else {
			reasons = append(reasons, fmt.Sprintf("low volume (%.1fx average)", ratio))
			score -= 1
		}
	}

	// Narrow range is a strong sideways signal.
	if rangePct, err := indicators.RangePct(prices, c.cfg.FastPeriod); err == nil && rangePct < c.cfg.SidewaysRangePct {
		reasons = append(reasons, fmt.Sprintf("narrow sideways range (%.1f%%)", rangePct))
		score -= 3
	}

	confidence := abs(score) * 15
	if confidence > 100 {
		confidence = 100
	}

	a := Analysis{Confidence: confidence, Reasons: reasons}
	switch {
	case score >= 3:
		a.Regime, a.CanBuy, a.CanSell = BullishTrending, true, true
	case score <= -3:
		a.Regime, a.CanBuy, a.CanSell = BearishTrending, false, true
	default:
		a.Regime, a.CanBuy, a.CanSell = Sideways, false, true
	}

	c.log.Debug().
		Str("symbol", symbol).
		Str("regime", string(a.Regime)).
		Float64("score", score).
		Float64("confidence", confidence).
		Msg("regime classified")

	return a
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
