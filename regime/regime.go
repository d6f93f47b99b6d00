// Package regime classifies market conditions per symbol and decides
// whether new entries are permitted at all.
package regime

// Regime is a coarse classification of directional market condition.
type Regime string

const (
	BullishTrending Regime = "bullish_trending" // entries permitted
	BearishTrending Regime = "bearish_trending" // exits only
	Sideways        Regime = "sideways"         // exits only
	VolatileShock   Regime = "volatile_shock"   // all trading paused
)

// Analysis is the per-tick classification result. It is recomputed every
// tick; only the regime label is persisted (in the journal, at entry time).
type Analysis struct {
	Regime     Regime
	Confidence float64 // 0-100
	Reasons    []string
	CanBuy     bool
	CanSell    bool
}
