package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewSQLiteStore(t.TempDir() + "/journal.db")
	require.NoError(t, err)
	defer store.Close()

	// Fresh database loads empty.
	doc, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, doc.Entries)
	assert.Equal(t, 0, doc.ConsecutiveLosses)

	open := Entry{
		ID:          "t1",
		Timestamp:   time.Date(2026, 8, 26, 9, 30, 0, 0, time.UTC),
		Symbol:      "FPT",
		Action:      "BUY",
		Strategy:    "breakout",
		Regime:      "bullish_trending",
		Reason:      "breakout entry",
		EntryPrice:  100_000,
		Shares:      100,
		TotalValue:  10_000_000,
		StopLoss:    92_000,
		TakeProfit1: 105_000,
		TakeProfit2: 110_000,
		RiskReward:  2.0,
		RiskAmount:  100_000,
	}

	exitTime := time.Date(2026, 8, 26, 14, 0, 0, 0, time.UTC)
	exitPrice, pnl, pnlPct := 92_000.0, -800_000.0, -8.0
	closed := open
	closed.ID = "t0"
	closed.Timestamp = open.Timestamp.Add(-time.Hour)
	closed.Symbol = "PVS"
	closed.ExitTime = &exitTime
	closed.ExitPrice = &exitPrice
	closed.ExitReason = "stop-loss triggered"
	closed.PnL = &pnl
	closed.PnLPct = &pnlPct

	pauseUntil := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(Document{
		Entries:           []Entry{closed, open},
		ConsecutiveLosses: 3,
		PauseUntil:        &pauseUntil,
		PauseReason:       "3 consecutive losses - trading paused for review",
	}))

	got, err := store.Load()
	require.NoError(t, err)
	require.Len(t, got.Entries, 2)

	// Load orders by timestamp, so the earlier closed trade comes first.
	assert.Equal(t, "t0", got.Entries[0].ID)
	require.True(t, got.Entries[0].Closed())
	assert.InDelta(t, pnl, *got.Entries[0].PnL, 1e-9)
	assert.Equal(t, "stop-loss triggered", got.Entries[0].ExitReason)
	assert.True(t, exitTime.Equal(*got.Entries[0].ExitTime))

	assert.Equal(t, "t1", got.Entries[1].ID)
	assert.False(t, got.Entries[1].Closed())
	assert.InDelta(t, 92_000, got.Entries[1].StopLoss, 1e-9)

	assert.Equal(t, 3, got.ConsecutiveLosses)
	require.NotNil(t, got.PauseUntil)
	assert.True(t, pauseUntil.Equal(*got.PauseUntil))
}

func TestSQLiteStoreSaveReplacesWholeDocument(t *testing.T) {
	t.Parallel()

	store, err := NewSQLiteStore(t.TempDir() + "/journal.db")
	require.NoError(t, err)
	defer store.Close()

	e := Entry{ID: "t1", Timestamp: time.Now().UTC(), Symbol: "FPT", Action: "BUY"}
	require.NoError(t, store.Save(Document{Entries: []Entry{e}, ConsecutiveLosses: 1}))
	require.NoError(t, store.Save(Document{ConsecutiveLosses: 0}))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, got.Entries)
	assert.Equal(t, 0, got.ConsecutiveLosses)
}
