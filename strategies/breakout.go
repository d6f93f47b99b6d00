package strategies

import (
	"fmt"
	"math"

	"github.com/rustyeddy/papertrader/indicators"
	"github.com/rustyeddy/papertrader/market"
)

// checkBreakout looks for a close above the lookback-period high with
// volume confirmation, while refusing to chase an already-extended move.
func (e *Engine) checkBreakout(obs market.Observation, hist *market.History) Signal {
	window, err := hist.Window(e.cfg.Lookback)
	if err != nil {
		return invalid(Breakout, "insufficient history for breakout analysis")
	}

	prices := make([]float64, len(window))
	volumes := make([]float64, len(window))
	for i, o := range window {
		prices[i] = o.Price
		volumes[i] = o.Volume
	}

	// Period high excludes the current observation.
	periodHigh, err := indicators.Max(prices[:len(prices)-1], len(prices)-1)
	if err != nil || obs.Price <= periodHigh {
		return invalid(Breakout, fmt.Sprintf("no break of %d-period high (%.0f)", e.cfg.Lookback, periodHigh))
	}

	var reasons []string
	breakoutPct := (obs.Price/periodHigh - 1) * 100
	reasons = append(reasons, fmt.Sprintf("broke %d-period high: %.0f -> %.0f (+%.2f%%)", e.cfg.Lookback, periodHigh, obs.Price, breakoutPct))

	if breakoutPct > e.cfg.BreakoutMaxChase*100 {
		return invalid(Breakout, fmt.Sprintf("chasing too far (+%.2f%% > %.0f%%)", breakoutPct, e.cfg.BreakoutMaxChase*100))
	}
	reasons = append(reasons, fmt.Sprintf("inside entry zone (%.2f%% from breakout)", breakoutPct))

	confidence := 40.0
	if avgVol, err := indicators.AvgNonzero(volumes[:len(volumes)-1], len(volumes)-1); err == nil && avgVol > 0 {
		ratio := obs.Volume / avgVol
		if ratio >= e.cfg.BreakoutVolumeMult {
			confidence = 75
			reasons = append(reasons, fmt.Sprintf("strong volume (%.1fx average)", ratio))
		} else {
			reasons = append(reasons, fmt.Sprintf("weak volume (%.1fx < %.1fx)", ratio, e.cfg.BreakoutVolumeMult))
		}
	}

	// Stop below the recent swing low, but never less than 3% under the
	// breakout level.
	lows := make([]float64, 0, 5)
	for _, o := range window[len(window)-5:] {
		low := o.Low
		if low == 0 {
			low = o.Price
		}
		lows = append(lows, low)
	}
	swingLow, _ := indicators.Min(lows, len(lows))
	stopLoss := math.Min(swingLow, periodHigh*0.97)

	risk := obs.Price - stopLoss
	if risk <= 0 {
		return invalid(Breakout, "stop level above entry price")
	}
	tp1 := obs.Price + risk*1.5
	tp2 := obs.Price + risk*2.0
	rr := (tp2 - obs.Price) / risk

	return Signal{
		Strategy:    Breakout,
		Valid:       confidence >= 40 && rr >= e.cfg.MinRiskReward,
		EntryPrice:  obs.Price,
		StopLoss:    stopLoss,
		TakeProfit1: tp1,
		TakeProfit2: tp2,
		RiskReward:  rr,
		Confidence:  confidence,
		Reasons:     reasons,
	}
}
