// Package risk implements position sizing and the account-level safety
// gate: circuit breaker, daily tracking, stop-loss and trailing-stop levels.
package risk

// Policy holds every risk limit as an explicit value. It is constructed
// once at startup from configuration; there are no process-wide defaults.
type Policy struct {
	// Sizing
	BaselineCapital float64 // risk fraction applies to min(capital, baseline)
	RiskPerTrade    float64 // 0.01
	MaxPositionPct  float64 // 0.25
	MinPositionPct  float64 // 0.05
	LotSize         int     // minimum tradable share increment, 100

	// Per-position exits
	StopLossPct    float64 // 0.08
	TakeProfitPct  float64 // 0.15
	TrailingPct    float64 // 0.05

	// Account-level limits
	MaxOpenPositions int     // 4
	MaxDailyLossPct  float64 // 0.05
	MaxDrawdownPct   float64 // 0.15
}

func DefaultPolicy() Policy {
	return Policy{
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
	}
}
