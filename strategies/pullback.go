package strategies

import (
	"fmt"
	"math"

	"github.com/rustyeddy/papertrader/indicators"
	"github.com/rustyeddy/papertrader/market"
)

// checkPullback looks for price returning to the moving average inside an
// established uptrend, with the recent support level still intact.
func (e *Engine) checkPullback(obs market.Observation, hist *market.History) Signal {
	prices, err := hist.Prices(e.cfg.Lookback)
	if err != nil {
		return invalid(Pullback, "insufficient history for pullback analysis")
	}

	ma20, _ := indicators.SMA(prices, len(prices))
	recentLow, _ := indicators.Min(prices, 10)

	// Uptrend gate: the MA must sit well above the recent low.
	uptrendPct := (ma20/recentLow - 1) * 100
	if uptrendPct < e.cfg.PullbackMinUptrend*100 {
		return invalid(Pullback, fmt.Sprintf("not in uptrend (MA only %.1f%% above low)", uptrendPct))
	}

	var reasons []string
	reasons = append(reasons, fmt.Sprintf("in uptrend (MA20 %.0f, %.1f%% above low)", ma20, uptrendPct))

	distance := math.Abs(obs.Price-ma20) / ma20
	if distance > e.cfg.PullbackMATol {
		return invalid(Pullback, fmt.Sprintf("price too far from MA20 (%.1f%% > %.0f%%)", distance*100, e.cfg.PullbackMATol*100))
	}
	reasons = append(reasons, fmt.Sprintf("price near MA20 (%.0f vs %.0f, %.1f%%)", obs.Price, ma20, distance*100))

	// Reversal confirmation; without it the setup is only tentative.
	confidence := 35.0
	if obs.ChangePct >= 0 {
		confidence = 65
		reasons = append(reasons, fmt.Sprintf("reversal confirmed (%+.2f%%)", obs.ChangePct))
	} else {
		reasons = append(reasons, "no confirming candle yet (price still falling)")
	}

	if obs.Price < recentLow {
		return invalid(Pullback, "support broken - structure invalid")
	}
	reasons = append(reasons, fmt.Sprintf("support holding (%.0f)", recentLow))

	stopLoss := recentLow * 0.98
	risk := obs.Price - stopLoss
	if risk <= 0 {
		return invalid(Pullback, "stop level above entry price")
	}
	tp1 := obs.Price + risk*1.5
	tp2 := obs.Price + risk*2.0
	rr := (tp2 - obs.Price) / risk

	return Signal{
		Strategy:    Pullback,
		Valid:       confidence >= 35 && rr >= e.cfg.MinRiskReward,
		EntryPrice:  obs.Price,
		StopLoss:    stopLoss,
		TakeProfit1: tp1,
		TakeProfit2: tp2,
		RiskReward:  rr,
		Confidence:  confidence,
		Reasons:     reasons,
	}
}
