package risk

import "math"

// SizeResult is the outcome of sizing one entry.
type SizeResult struct {
	Shares     int
	Value      float64 // shares * entry price
	RiskAmount float64 // money lost if the stop is hit as planned
}

// RiskBudget is the most a single trade may lose: the per-trade risk
// fraction of min(capital, baseline).
func (p Policy) RiskBudget(capital float64) float64 {
	base := capital
	if p.BaselineCapital > 0 && p.BaselineCapital < base {
		base = p.BaselineCapital
	}
	return base * p.RiskPerTrade
}

// Allocation returns the fraction of cash to deploy for a signal of the
// given confidence: the max-position fraction scaled by confidence,
// clamped to [MinPositionPct, MaxPositionPct].
func (p Policy) Allocation(confidence float64) float64 {
	pct := p.MaxPositionPct * confidence / 100
	if pct < p.MinPositionPct {
		pct = p.MinPositionPct
	}
	if pct > p.MaxPositionPct {
		pct = p.MaxPositionPct
	}
	return pct
}

// Allocate sizes a new entry from signal confidence. The confidence-scaled
// cash allocation is capped twice: position value never exceeds the
// max-position fraction of capital, and the loss at the stop never exceeds
// the per-trade risk budget. Shares are floored to whole units; the paper
// ledger accepts odd lots. A stop at or above the entry sizes to zero.
func (p Policy) Allocate(entry, stop, confidence, cash, capital float64) SizeResult {
	if entry <= stop || entry <= 0 {
		return SizeResult{}
	}

	amount := cash * p.Allocation(confidence)
	if maxValue := capital * p.MaxPositionPct; amount > maxValue {
		amount = maxValue
	}

	shares := int(math.Floor(amount/entry + 1e-9))

	perShare := entry - stop
	if maxShares := int(math.Floor(p.RiskBudget(capital) / perShare)); shares > maxShares {
		shares = maxShares
	}
	if shares <= 0 {
		return SizeResult{}
	}

	return SizeResult{
		Shares:     shares,
		Value:      float64(shares) * entry,
		RiskAmount: float64(shares) * perShare,
	}
}

// Size converts an entry/stop pair into a share count from the risk budget
// alone: shares = floor(budget / per-share risk), the resulting value is
// capped at the max-position fraction of capital, and shares are rounded
// down to the board lot. A stop at or above the entry sizes to zero.
func (p Policy) Size(entry, stop, capital float64) SizeResult {
	if entry <= stop || entry <= 0 {
		return SizeResult{}
	}

	riskAmount := p.RiskBudget(capital)
	shares := int(math.Floor(riskAmount / (entry - stop)))

	// Cap position value at the configured fraction of capital.
	if maxValue := capital * p.MaxPositionPct; float64(shares)*entry > maxValue {
		shares = int(math.Floor(maxValue / entry))
	}

	// Round down to the market's minimum lot.
	if p.LotSize > 1 {
		shares -= shares % p.LotSize
	}
	if shares <= 0 {
		return SizeResult{}
	}

	return SizeResult{
		Shares:     shares,
		Value:      float64(shares) * entry,
		RiskAmount: riskAmount,
	}
}
