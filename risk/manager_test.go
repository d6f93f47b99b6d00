package risk

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newManager(t *testing.T) (*Manager, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)}
	m := NewManager(DefaultPolicy(), zerolog.Nop())
	m.SetClock(clk.now)
	return m, clk
}

func TestValidateNormal(t *testing.T) {
	t.Parallel()

	m, _ := newManager(t)

	ok, reason := m.Validate("FPT", "BUY", 1200, 0, 10_000_000)
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestValidateMaxPositions(t *testing.T) {
	t.Parallel()

	m, _ := newManager(t)

	ok, reason := m.Validate("FPT", "BUY", 1200, 4, 10_000_000)
	assert.False(t, ok)
	assert.Contains(t, reason, "maximum positions")

	// Sells are not limited by the open-position cap.
	ok, _ = m.Validate("FPT", "SELL", 1200, 4, 10_000_000)
	assert.True(t, ok)
}

func TestValidateZeroShares(t *testing.T) {
	t.Parallel()

	m, _ := newManager(t)

	ok, reason := m.Validate("FPT", "BUY", 0, 0, 10_000_000)
	assert.False(t, ok)
	assert.Contains(t, reason, "zero shares")
}

func TestDailyLossBreaker(t *testing.T) {
	t.Parallel()

	m, _ := newManager(t)
	m.ResetDaily(10_000_000)

	// -4% stays inside the 5% limit.
	assert.False(t, m.CheckDailyLossLimit(9_600_000))
	assert.Equal(t, Normal, m.State())

	// -6% trips the breaker, and the breach is sticky.
	assert.True(t, m.CheckDailyLossLimit(9_400_000))
	assert.Equal(t, DailyLimitBreached, m.State())
	assert.True(t, m.CheckDailyLossLimit(9_900_000))

	ok, reason := m.Validate("FPT", "BUY", 1200, 0, 9_400_000)
	assert.False(t, ok)
	assert.Contains(t, reason, "circuit breaker active")

	m.ClearBreaker()
	assert.Equal(t, Normal, m.State())
}

func TestDrawdownBreaker(t *testing.T) {
	t.Parallel()

	m, _ := newManager(t)

	assert.False(t, m.CheckMaxDrawdown(8_600_000, 10_000_000)) // -14%
	assert.True(t, m.CheckMaxDrawdown(8_400_000, 10_000_000))  // -16%
	assert.Equal(t, DrawdownBreached, m.State())

	active, reason := m.BreakerActive()
	assert.True(t, active)
	assert.Contains(t, reason, "drawdown")
}

func TestResetDailyOncePerDay(t *testing.T) {
	t.Parallel()

	m, clk := newManager(t)

	m.ResetDaily(10_000_000)
	m.ResetDaily(9_000_000) // same day, ignored

	pnl, pct := m.DailyPnL(10_500_000)
	assert.InDelta(t, 500_000, pnl, 1e-6)
	assert.InDelta(t, 5, pct, 1e-9)

	clk.advance(24 * time.Hour)
	m.ResetDaily(9_000_000)

	pnl, _ = m.DailyPnL(9_000_000)
	assert.InDelta(t, 0, pnl, 1e-9)
}

func TestJournalPauseMasksNormal(t *testing.T) {
	t.Parallel()

	m, _ := newManager(t)

	paused := false
	m.SetPauseSource(func() bool { return paused })
	assert.Equal(t, Normal, m.State())

	paused = true
	assert.Equal(t, JournalPaused, m.State())

	ok, reason := m.Validate("FPT", "BUY", 1200, 0, 10_000_000)
	assert.False(t, ok)
	assert.Contains(t, reason, "journal pause")

	// A tripped breaker takes precedence over the pause.
	m.ResetDaily(10_000_000)
	require.True(t, m.CheckDailyLossLimit(9_000_000))
	assert.Equal(t, DailyLimitBreached, m.State())
}

func TestDailyTradeCountResetsWithDay(t *testing.T) {
	t.Parallel()

	m, clk := newManager(t)
	m.ResetDaily(10_000_000)

	m.RecordTrade()
	m.RecordTrade()
	assert.Equal(t, 2, m.DailyTradeCount())

	clk.advance(24 * time.Hour)
	m.ResetDaily(10_000_000)
	assert.Equal(t, 0, m.DailyTradeCount())
}

func TestStopLevels(t *testing.T) {
	t.Parallel()

	m, _ := newManager(t)

	stop := m.SetStopLoss("FPT", 100_000)
	assert.InDelta(t, 92_000, stop, 1e-6)

	m.SetStop("PVS", 36_000, 38_000)
	got, ok := m.StopLevel("PVS")
	require.True(t, ok)
	assert.InDelta(t, 36_000, got, 1e-9)

	tp := m.SetTakeProfit("FPT", 100_000)
	assert.InDelta(t, 115_000, tp, 1e-6)

	m.ClearSymbol("FPT")
	_, ok = m.StopLevel("FPT")
	assert.False(t, ok)
	_, ok = m.TakeProfitLevel("FPT")
	assert.False(t, ok)
}

func TestTrailingStopOnlyRises(t *testing.T) {
	t.Parallel()

	m, _ := newManager(t)
	m.SetStop("FPT", 92_000, 100_000)

	// New high raises the stop to 5% below it.
	m.UpdateTrailingStop("FPT", 105_000)
	got, ok := m.StopLevel("FPT")
	require.True(t, ok)
	assert.InDelta(t, 99_750, got, 1e-6)

	// A pullback never lowers the stop.
	m.UpdateTrailingStop("FPT", 98_000)
	got, _ = m.StopLevel("FPT")
	assert.InDelta(t, 99_750, got, 1e-6)

	m.UpdateTrailingStop("FPT", 110_000)
	got, _ = m.StopLevel("FPT")
	assert.InDelta(t, 104_500, got, 1e-6)

	// Untracked symbols are ignored.
	m.UpdateTrailingStop("KBC", 50_000)
	_, ok = m.StopLevel("KBC")
	assert.False(t, ok)
}

func TestCheckStopLosses(t *testing.T) {
	t.Parallel()

	m, _ := newManager(t)
	m.SetStop("FPT", 92_000, 100_000)
	m.SetStop("PVS", 36_000, 38_000)
	m.SetStop("KBC", 29_000, 31_000)

	triggered := m.CheckStopLosses(map[string]float64{
		"FPT": 91_000, // below stop
		"PVS": 36_000, // at stop, triggers
		// KBC has no price this tick, skipped
	})

	symbols := make([]string, 0, len(triggered))
	for _, trig := range triggered {
		symbols = append(symbols, trig.Symbol)
		assert.Contains(t, trig.Reason, "stop-loss")
	}
	assert.Equal(t, []string{"FPT", "PVS"}, symbols)
}

func TestCheckStopLossesSymbolOrder(t *testing.T) {
	t.Parallel()

	m, _ := newManager(t)
	m.SetStop("PVS", 36_000, 38_000)
	m.SetStop("FPT", 92_000, 100_000)
	m.SetStop("KBC", 29_000, 31_000)
	m.SetStop("HPG", 26_000, 27_000)

	prices := map[string]float64{
		"PVS": 35_000,
		"FPT": 91_000,
		"KBC": 28_000,
		"HPG": 25_000,
	}

	// Triggers come back in symbol order every time, regardless of
	// insertion order or map iteration.
	for i := 0; i < 10; i++ {
		triggered := m.CheckStopLosses(prices)
		symbols := make([]string, 0, len(triggered))
		for _, trig := range triggered {
			symbols = append(symbols, trig.Symbol)
		}
		assert.Equal(t, []string{"FPT", "HPG", "KBC", "PVS"}, symbols)
	}
}
