package regime

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/papertrader/market"
)

func newClassifier(t *testing.T) *Classifier {
	t.Helper()
	return NewClassifier(DefaultConfig(), zerolog.Nop())
}

// fill pushes one observation per price, all with the given volume.
func fill(h *market.History, volume float64, prices ...float64) {
	for _, p := range prices {
		h.Push(market.Observation{Symbol: "FPT", Price: p, Volume: volume})
	}
}

func TestClassifyShockOverridesEverything(t *testing.T) {
	t.Parallel()

	c := newClassifier(t)
	hist := market.NewHistory(60)

	got := c.Classify("FPT", market.Observation{Symbol: "FPT", Price: 100, ChangePct: 12}, hist)

	assert.Equal(t, VolatileShock, got.Regime)
	assert.InDelta(t, 90, got.Confidence, 1e-9)
	assert.False(t, got.CanBuy)
	assert.False(t, got.CanSell)
}

func TestClassifyInsufficientHistory(t *testing.T) {
	t.Parallel()

	c := newClassifier(t)
	hist := market.NewHistory(60)
	fill(hist, 100_000, 100, 101, 102)

	got := c.Classify("FPT", market.Observation{Symbol: "FPT", Price: 102}, hist)

	assert.Equal(t, Sideways, got.Regime)
	assert.InDelta(t, 50, got.Confidence, 1e-9)
	assert.False(t, got.CanBuy)
	assert.True(t, got.CanSell)
}

func TestClassifyBullishTrend(t *testing.T) {
	t.Parallel()

	c := newClassifier(t)
	hist := market.NewHistory(60)

	// Steadily rising prices, then a volume-backed push to a new high.
	for i := 0; i < 55; i++ {
		hist.Push(market.Observation{Symbol: "FPT", Price: 100 + float64(i), Volume: 100_000})
	}
	obs := market.Observation{Symbol: "FPT", Price: 158, Volume: 200_000, ChangePct: 2.6}
	hist.Push(obs)

	got := c.Classify("FPT", obs, hist)

	require.Equal(t, BullishTrending, got.Regime)
	assert.True(t, got.CanBuy)
	assert.True(t, got.CanSell)
	assert.GreaterOrEqual(t, got.Confidence, 75.0)
	assert.NotEmpty(t, got.Reasons)
}

func TestClassifyBearishTrend(t *testing.T) {
	t.Parallel()

	c := newClassifier(t)
	hist := market.NewHistory(60)

	for i := 0; i < 55; i++ {
		hist.Push(market.Observation{Symbol: "FPT", Price: 200 - float64(i), Volume: 100_000})
	}
	obs := market.Observation{Symbol: "FPT", Price: 143, Volume: 60_000, ChangePct: -1.8}
	hist.Push(obs)

	got := c.Classify("FPT", obs, hist)

	require.Equal(t, BearishTrending, got.Regime)
	assert.False(t, got.CanBuy)
	assert.True(t, got.CanSell)
}

func TestClassifyNarrowRangeIsSideways(t *testing.T) {
	t.Parallel()

	c := newClassifier(t)
	hist := market.NewHistory(60)

	// Flat tape: every price within a fraction of a percent.
	prices := make([]float64, 55)
	for i := range prices {
		if i%2 == 0 {
			prices[i] = 100.0
		} else {
			prices[i] = 100.2
		}
	}
	fill(hist, 100_000, prices...)
	obs := market.Observation{Symbol: "FPT", Price: 100.1, Volume: 100_000}
	hist.Push(obs)

	got := c.Classify("FPT", obs, hist)

	assert.Equal(t, Sideways, got.Regime)
	assert.False(t, got.CanBuy)
	assert.True(t, got.CanSell)
}
