package risk

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is the safety-gate position in its blocking state machine. Only
// Normal permits new entries.
type State string

const (
	Normal             State = "normal"
	DailyLimitBreached State = "daily_limit_breached"
	DrawdownBreached   State = "drawdown_breached"
	JournalPaused      State = "journal_paused"
)

// Trigger names a position whose stop level has been crossed.
type Trigger struct {
	Symbol string
	Reason string
}

// Manager owns the circuit breaker, daily tracking and per-symbol stop
// levels. All business-rule violations are reported as (ok, reason) pairs;
// nothing here returns an error for a rejected trade.
type Manager struct {
	mu     sync.Mutex
	policy Policy
	log    zerolog.Logger

	state         State
	breakerReason string

	tradingDay        time.Time // truncated to a calendar day
	dailyStartCapital float64
	dailyTradeCount   int

	stops       map[string]float64
	takeProfits map[string]float64
	highWater   map[string]float64

	paused func() bool // journal pause, checked live
	now    func() time.Time
}

func NewManager(policy Policy, log zerolog.Logger) *Manager {
	return &Manager{
		policy:      policy,
		log:         log,
		state:       Normal,
		stops:       make(map[string]float64),
		takeProfits: make(map[string]float64),
		highWater:   make(map[string]float64),
		now:         time.Now,
	}
}

// SetPauseSource wires the journal's pause signal into the gate.
func (m *Manager) SetPauseSource(paused func() bool) { m.paused = paused }

// SetClock overrides the day-rollover clock. Used by tests and replay.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

func (m *Manager) Policy() Policy { return m.policy }

// State reports the effective gate state. A journal pause masks Normal but
// never overrides an active breaker.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Manager) stateLocked() State {
	if m.state != Normal {
		return m.state
	}
	if m.paused != nil && m.paused() {
		return JournalPaused
	}
	return Normal
}

// ResetDaily snapshots the day-start capital on the first call of each
// calendar day. Repeat calls within the same day are no-ops.
func (m *Manager) ResetDaily(capital float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	today := m.now().Truncate(24 * time.Hour)
	if m.tradingDay.Equal(today) {
		return
	}
	m.tradingDay = today
	m.dailyStartCapital = capital
	m.dailyTradeCount = 0

	m.log.Info().Float64("capital", capital).Time("day", today).Msg("daily tracking reset")
}

// DailyPnL returns the absolute and percentage P&L since the day snapshot.
func (m *Manager) DailyPnL(capital float64) (pnl, pct float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dailyStartCapital == 0 {
		return 0, 0
	}
	pnl = capital - m.dailyStartCapital
	return pnl, pnl / m.dailyStartCapital * 100
}

// Validate decides whether a trade may proceed. Rejections carry a reason.
func (m *Manager) Validate(symbol string, action string, shares int, openPositions int, capital float64) (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch st := m.stateLocked(); st {
	case Normal:
	case JournalPaused:
		return false, "journal pause active"
	default:
		return false, fmt.Sprintf("circuit breaker active: %s", m.breakerReason)
	}

	if action == "BUY" && openPositions >= m.policy.MaxOpenPositions {
		return false, fmt.Sprintf("maximum positions (%d) reached", m.policy.MaxOpenPositions)
	}
	if shares <= 0 {
		return false, "position sizes to zero shares"
	}
	return true, ""
}

// CheckDailyLossLimit trips the breaker once the day's loss exceeds the
// limit. Idempotent while already breached.
func (m *Manager) CheckDailyLossLimit(capital float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == DailyLimitBreached {
		return true
	}
	if m.dailyStartCapital == 0 {
		return false
	}
	pct := (capital - m.dailyStartCapital) / m.dailyStartCapital * 100
	if pct < -m.policy.MaxDailyLossPct*100 {
		m.tripLocked(DailyLimitBreached,
			fmt.Sprintf("daily loss limit exceeded: %.2f%% (max: -%.0f%%)", pct, m.policy.MaxDailyLossPct*100))
		return true
	}
	return false
}

// CheckMaxDrawdown trips the breaker once drawdown from initial capital
// exceeds the limit. Idempotent while already breached.
func (m *Manager) CheckMaxDrawdown(capital, initialCapital float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == DrawdownBreached {
		return true
	}
	if initialCapital <= 0 {
		return false
	}
	drawdown := (initialCapital - capital) / initialCapital * 100
	if drawdown > m.policy.MaxDrawdownPct*100 {
		m.tripLocked(DrawdownBreached,
			fmt.Sprintf("maximum drawdown exceeded: %.2f%% (max: %.0f%%)", drawdown, m.policy.MaxDrawdownPct*100))
		return true
	}
	return false
}

func (m *Manager) tripLocked(state State, reason string) {
	m.state = state
	m.breakerReason = reason
	m.log.Error().Str("state", string(state)).Str("reason", reason).Msg("circuit breaker activated")
}

// BreakerActive reports whether a sticky breaker state is set.
func (m *Manager) BreakerActive() (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state != Normal, m.breakerReason
}

// ClearBreaker manually returns the gate to Normal.
func (m *Manager) ClearBreaker() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Normal
	m.breakerReason = ""
	m.log.Info().Msg("circuit breaker deactivated")
}

// RecordTrade counts the day's executed trades. Loss streaks live in the
// journal, whose pause signal feeds back through SetPauseSource.
func (m *Manager) RecordTrade() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dailyTradeCount++
}

// DailyTradeCount returns the number of trades executed today.
func (m *Manager) DailyTradeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dailyTradeCount
}

// SetStopLoss records the initial stop for a new position.
func (m *Manager) SetStopLoss(symbol string, entryPrice float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	stop := entryPrice * (1 - m.policy.StopLossPct)
	m.stops[symbol] = stop
	m.highWater[symbol] = entryPrice
	m.log.Info().Str("symbol", symbol).Float64("stop", stop).Msg("stop-loss set")
	return stop
}

// SetStop records an explicit stop level (from a strategy signal) instead
// of the percentage default.
func (m *Manager) SetStop(symbol string, stop, entryPrice float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops[symbol] = stop
	m.highWater[symbol] = entryPrice
}

// SetTakeProfit records the take-profit trigger for a position.
func (m *Manager) SetTakeProfit(symbol string, entryPrice float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	tp := entryPrice * (1 + m.policy.TakeProfitPct)
	m.takeProfits[symbol] = tp
	return tp
}

// TakeProfitLevel returns the recorded take-profit trigger, if any.
func (m *Manager) TakeProfitLevel(symbol string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tp, ok := m.takeProfits[symbol]
	return tp, ok
}

// StopLevel returns the recorded stop, if any.
func (m *Manager) StopLevel(symbol string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stops[symbol]
	return s, ok
}

// UpdateTrailingStop raises the stop toward the highest price seen. The
// stop only ever moves up.
func (m *Manager) UpdateTrailingStop(symbol string, currentPrice float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.stops[symbol]; !ok {
		return
	}
	if currentPrice > m.highWater[symbol] {
		m.highWater[symbol] = currentPrice
	}

	newStop := m.highWater[symbol] * (1 - m.policy.TrailingPct)
	if newStop > m.stops[symbol] {
		old := m.stops[symbol]
		m.stops[symbol] = newStop
		m.log.Info().Str("symbol", symbol).Float64("old", old).Float64("new", newStop).
			Msg("trailing stop raised")
	}
}

// CheckStopLosses returns every tracked position whose current price is at
// or below its stop, in symbol order so stop-outs execute deterministically.
func (m *Manager) CheckStopLosses(prices map[string]float64) []Trigger {
	m.mu.Lock()
	defer m.mu.Unlock()

	symbols := make([]string, 0, len(m.stops))
	for symbol := range m.stops {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var triggered []Trigger
	for _, symbol := range symbols {
		stop := m.stops[symbol]
		price, ok := prices[symbol]
		if !ok {
			continue
		}
		if price <= stop {
			triggered = append(triggered, Trigger{
				Symbol: symbol,
				Reason: fmt.Sprintf("stop-loss triggered at %.0f (stop %.0f)", price, stop),
			})
			m.log.Warn().Str("symbol", symbol).Float64("price", price).Float64("stop", stop).
				Msg("stop-loss triggered")
		}
	}
	return triggered
}

// ClearSymbol drops stop/take-profit tracking after a position closes.
func (m *Manager) ClearSymbol(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stops, symbol)
	delete(m.takeProfits, symbol)
	delete(m.highWater, symbol)
}
