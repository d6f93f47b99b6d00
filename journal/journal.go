// Package journal records every trade with its full pre-trade context and
// drives the auto-pause after a losing streak. It is the durable audit log:
// entries are never deleted.
package journal

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/papertrader/sim"
)

// Entry is one journaled trade. It is created when a position is opened
// (exit fields nil) and completed exactly once when the position closes.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Symbol    string    `json:"symbol"`
	Action    string    `json:"action"`
	Strategy  string    `json:"strategy"`
	Regime    string    `json:"market_regime"`
	Reason    string    `json:"entry_reason"`

	EntryPrice  float64 `json:"entry_price"`
	Shares      int     `json:"shares"`
	TotalValue  float64 `json:"total_value"`
	StopLoss    float64 `json:"stop_loss"`
	TakeProfit1 float64 `json:"take_profit_1"`
	TakeProfit2 float64 `json:"take_profit_2"`
	RiskReward  float64 `json:"risk_reward"`
	RiskAmount  float64 `json:"risk_amount"`

	ExitTime   *time.Time `json:"exit_time,omitempty"`
	ExitPrice  *float64   `json:"exit_price,omitempty"`
	ExitReason string     `json:"exit_reason,omitempty"`
	PnL        *float64   `json:"pnl,omitempty"`
	PnLPct     *float64   `json:"pnl_pct,omitempty"`
}

// Closed reports whether the exit half has been filled in.
func (e *Entry) Closed() bool { return e.ExitTime != nil }

// Document is the full persisted journal state. The store rewrites it
// whole on every mutation.
type Document struct {
	Entries           []Entry    `json:"entries"`
	ConsecutiveLosses int        `json:"consecutive_losses"`
	PauseUntil        *time.Time `json:"pause_until,omitempty"`
	PauseReason       string     `json:"pause_reason,omitempty"`
}

// Store persists the journal document.
type Store interface {
	Load() (Document, error)
	Save(Document) error
	Close() error
}

const (
	// DefaultPauseThreshold is the losing streak that triggers the pause.
	DefaultPauseThreshold = 3
	// DefaultPauseWindow is how long trading stays paused.
	DefaultPauseWindow = 48 * time.Hour

	pauseReason = "3 consecutive losses - trading paused for review"
)

// Journal is the in-memory journal backed by a Store. In-memory state
// remains authoritative when a save fails; the failure is only logged.
type Journal struct {
	mu    sync.Mutex
	store Store
	log   zerolog.Logger

	entries           []Entry
	consecutiveLosses int
	pauseUntil        *time.Time
	pauseReasonText   string

	pauseThreshold int
	pauseWindow    time.Duration
	now            func() time.Time
}

// Open loads existing state from the store and returns a ready journal.
func Open(store Store, log zerolog.Logger) (*Journal, error) {
	doc, err := store.Load()
	if err != nil {
		return nil, err
	}

	j := &Journal{
		store:             store,
		log:               log,
		entries:           doc.Entries,
		consecutiveLosses: doc.ConsecutiveLosses,
		pauseUntil:        doc.PauseUntil,
		pauseReasonText:   doc.PauseReason,
		pauseThreshold:    DefaultPauseThreshold,
		pauseWindow:       DefaultPauseWindow,
		now:               time.Now,
	}
	log.Info().Int("entries", len(doc.Entries)).Msg("journal loaded")
	return j, nil
}

// SetClock overrides the pause clock. Used by tests and replay.
func (j *Journal) SetClock(now func() time.Time) { j.now = now }

// SetPauseRule overrides the losing-streak threshold and pause window.
func (j *Journal) SetPauseRule(threshold int, window time.Duration) {
	j.pauseThreshold = threshold
	j.pauseWindow = window
}

// LogEntry appends a new open entry and persists immediately.
func (j *Journal) LogEntry(rec sim.TradeRecord, strategy, regime string, stopLoss, tp1, tp2, riskReward, riskAmount float64) string {
	j.mu.Lock()
	defer j.mu.Unlock()

	e := Entry{
		ID:          rec.ID,
		Timestamp:   rec.Time,
		Symbol:      rec.Symbol,
		Action:      string(rec.Action),
		Strategy:    strategy,
		Regime:      regime,
		Reason:      rec.Reason,
		EntryPrice:  rec.Price,
		Shares:      rec.Shares,
		TotalValue:  rec.Total,
		StopLoss:    stopLoss,
		TakeProfit1: tp1,
		TakeProfit2: tp2,
		RiskReward:  riskReward,
		RiskAmount:  riskAmount,
	}
	j.entries = append(j.entries, e)
	j.saveLocked()

	j.log.Info().Str("symbol", e.Symbol).Str("strategy", strategy).Msg("journal entry created")
	return e.ID
}

// LogExit fills the exit half of the most recent open entry for symbol and
// updates the losing-streak counter. Reaching the threshold pauses trading.
func (j *Journal) LogExit(symbol string, rec sim.TradeRecord) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for i := len(j.entries) - 1; i >= 0; i-- {
		e := &j.entries[i]
		if e.Symbol != symbol || e.Closed() {
			continue
		}

		exitTime := rec.Time
		price, pnl, pnlPct := rec.Price, rec.PnL, rec.PnLPct
		e.ExitTime = &exitTime
		e.ExitPrice = &price
		e.ExitReason = rec.Reason
		e.PnL = &pnl
		e.PnLPct = &pnlPct

		if pnl < 0 {
			j.consecutiveLosses++
			j.log.Warn().Int("streak", j.consecutiveLosses).Msg("consecutive loss")
		} else {
			j.consecutiveLosses = 0
		}

		if j.consecutiveLosses >= j.pauseThreshold {
			until := j.now().Add(j.pauseWindow)
			j.pauseUntil = &until
			j.pauseReasonText = pauseReason
			j.log.Error().Time("until", until).Msg("auto pause activated")
		}

		j.saveLocked()
		j.log.Info().Str("symbol", symbol).Float64("pnl", pnl).Msg("journal exit logged")
		return
	}

	j.log.Warn().Str("symbol", symbol).Msg("no open journal entry for exit")
}

// IsPaused reports whether trading is inside a pause window. An elapsed
// window clears itself.
func (j *Journal) IsPaused() bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.pauseUntil == nil {
		return false
	}
	if j.now().Before(*j.pauseUntil) {
		return true
	}

	j.pauseUntil = nil
	j.pauseReasonText = ""
	j.saveLocked()
	j.log.Info().Msg("pause window elapsed, trading resumed")
	return false
}

// PauseUntil returns the current pause deadline, if any.
func (j *Journal) PauseUntil() (time.Time, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.pauseUntil == nil {
		return time.Time{}, false
	}
	return *j.pauseUntil, true
}

// ManualResume clears the pause window and the losing-streak counter.
func (j *Journal) ManualResume() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.pauseUntil = nil
	j.pauseReasonText = ""
	j.consecutiveLosses = 0
	j.saveLocked()
	j.log.Info().Msg("trading resumed manually")
}

// Entries returns a copy of all journal entries, oldest first.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Close flushes state and releases the store.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.saveLocked()
	return j.store.Close()
}

func (j *Journal) saveLocked() {
	doc := Document{
		Entries:           j.entries,
		ConsecutiveLosses: j.consecutiveLosses,
		PauseUntil:        j.pauseUntil,
		PauseReason:       j.pauseReasonText,
	}
	if err := j.store.Save(doc); err != nil {
		// In-memory state stays authoritative for the current run.
		j.log.Error().Err(err).Msg("journal save failed")
	}
}
