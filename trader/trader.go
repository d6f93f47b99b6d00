// Package trader runs the per-tick decision pipeline: observation, regime
// classification, entry evaluation, risk gating, ledger execution and
// journaling. One tick processes all symbols sequentially, start to finish.
package trader

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/papertrader/feed"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/notify"
	"github.com/rustyeddy/papertrader/regime"
	"github.com/rustyeddy/papertrader/risk"
	"github.com/rustyeddy/papertrader/sim"
	"github.com/rustyeddy/papertrader/strategies"
)

// Trader owns the tick loop and the wiring between components. It is the
// single writer for the ledger, the risk state and the journal.
type Trader struct {
	symbols []string

	feed       feed.Feed
	history    *market.HistorySet
	store      *market.ObservationStore
	classifier *regime.Classifier
	engine     *strategies.Engine
	gate       *risk.Manager
	ledger     *sim.Simulator
	journal    *journal.Journal
	events     notify.Notifier
	calendar   *market.Calendar

	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

// Deps bundles the collaborators the trader needs.
type Deps struct {
	Symbols    []string
	Feed       feed.Feed
	Classifier *regime.Classifier
	Engine     *strategies.Engine
	Gate       *risk.Manager
	Ledger     *sim.Simulator
	Journal    *journal.Journal
	Events     notify.Notifier
	Calendar   *market.Calendar
	Interval   time.Duration
	Log        zerolog.Logger
}

func New(d Deps) *Trader {
	symbols := append([]string(nil), d.Symbols...)
	sort.Strings(symbols) // fixed, deterministic processing order

	t := &Trader{
		symbols:    symbols,
		feed:       d.Feed,
		history:    market.NewHistorySet(market.DefaultHistoryCapacity),
		store:      market.NewObservationStore(),
		classifier: d.Classifier,
		engine:     d.Engine,
		gate:       d.Gate,
		ledger:     d.Ledger,
		journal:    d.Journal,
		events:     d.Events,
		calendar:   d.Calendar,
		interval:   d.Interval,
		log:        d.Log,
		now:        time.Now,
	}
	t.gate.SetPauseSource(t.journal.IsPaused)
	return t
}

// SetClock overrides the loop clock. Used by tests and replay.
func (t *Trader) SetClock(now func() time.Time) { t.now = now }

// Run executes ticks on the configured interval until the context is
// cancelled. Cancellation completes the current tick, writes a final
// digest, then halts; it never aborts mid-mutation.
func (t *Trader) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.log.Info().Strs("symbols", t.symbols).Dur("interval", t.interval).Msg("trading loop started")

	for {
		if t.calendar == nil || t.calendar.IsOpen(t.now()) {
			t.Tick(ctx)
		} else {
			t.log.Debug().Dur("until_open", t.calendar.UntilOpen(t.now())).Msg("market closed, skipping tick")
		}

		select {
		case <-ctx.Done():
			return t.shutdown()
		case <-ticker.C:
		}
	}
}

func (t *Trader) shutdown() error {
	t.log.Info().Msg("stop requested, writing final digest")
	if c, ok := t.events.(*notify.Controller); ok {
		if err := c.FlushAll(); err != nil {
			t.log.Error().Err(err).Msg("final digest failed")
		}
	}
	t.log.Info().Str("report", t.journal.Report()).Msg("final journal report")
	return t.journal.Close()
}

// Tick runs one full pipeline pass over every symbol. Position management
// (trailing stops, stop-loss, take-profit) runs before new-entry
// evaluation, so a position stopped out this tick is never re-entered.
func (t *Trader) Tick(ctx context.Context) {
	t.gate.ResetDaily(t.ledger.PortfolioValue(t.store.Prices()))

	// Fetch phase: a symbol with no observation (and no cached fallback)
	// is skipped for the whole tick; nothing is partially mutated.
	fresh := make(map[string]market.Observation, len(t.symbols))
	for _, symbol := range t.symbols {
		obs, err := t.feed.Fetch(ctx, symbol)
		if err != nil {
			t.log.Warn().Str("symbol", symbol).Msg("no observation, skipping symbol this tick")
			continue
		}
		fresh[symbol] = obs
		t.store.Set(obs)
		t.history.Push(symbol, obs)
	}

	prices := t.store.Prices()
	closedNow := t.managePositions(prices)

	for _, symbol := range t.symbols {
		obs, ok := fresh[symbol]
		if !ok || closedNow[symbol] {
			continue
		}
		t.evaluateEntry(symbol, obs, prices)
	}

	// Account-level limits run after all mutations for the tick.
	capital := t.ledger.PortfolioValue(t.store.Prices())
	wasActive, _ := t.gate.BreakerActive()
	t.gate.CheckDailyLossLimit(capital)
	t.gate.CheckMaxDrawdown(capital, t.ledger.InitialCapital())
	if active, reason := t.gate.BreakerActive(); active && !wasActive {
		t.emit(notify.Event{
			Kind:    notify.BreakerActivated,
			Level:   notify.Critical,
			Message: reason,
		})
	}

	if c, ok := t.events.(*notify.Controller); ok {
		if err := c.FlushDigests(); err != nil {
			t.log.Error().Err(err).Msg("digest flush failed")
		}
	}
}

// managePositions updates trailing stops and executes stop-loss and
// take-profit exits. Returns the symbols closed during this tick.
func (t *Trader) managePositions(prices map[string]float64) map[string]bool {
	closed := make(map[string]bool)

	positions := t.ledger.Positions()
	symbols := make([]string, 0, len(positions))
	for sym := range positions {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		if price, ok := prices[symbol]; ok {
			t.gate.UpdateTrailingStop(symbol, price)
		}
	}

	for _, trig := range t.gate.CheckStopLosses(prices) {
		if t.closePosition(trig.Symbol, prices[trig.Symbol], 100, trig.Reason, notify.StopLossHit) {
			closed[trig.Symbol] = true
		}
	}

	for _, symbol := range symbols {
		if closed[symbol] {
			continue
		}
		price, ok := prices[symbol]
		if !ok {
			continue
		}
		if tp, ok := t.gate.TakeProfitLevel(symbol); ok && price >= tp {
			pos := positions[symbol]
			gain := (price/pos.AvgPrice - 1) * 100
			reason := fmt.Sprintf("take profit (+%.1f%%)", gain)
			if t.closePosition(symbol, price, 50, reason, notify.TakeProfitHit) {
				// Partial exit; position stays open with a raised cost basis
				// exposure, so entries remain blocked only when fully closed.
				if _, stillOpen := t.ledger.Position(symbol); !stillOpen {
					closed[symbol] = true
				}
			}
		}
	}
	return closed
}

// closePosition sells a percentage of a position and does the follow-up
// bookkeeping. Returns true when the sell executed.
func (t *Trader) closePosition(symbol string, price, percentage float64, reason string, kind notify.Kind) bool {
	rec, ok := t.ledger.Sell(symbol, price, percentage, reason)
	if !ok {
		return false
	}

	t.gate.RecordTrade()

	if _, stillOpen := t.ledger.Position(symbol); !stillOpen {
		t.journal.LogExit(symbol, rec)
		t.gate.ClearSymbol(symbol)
		if t.journal.IsPaused() {
			if until, ok := t.journal.PauseUntil(); ok {
				t.emit(notify.Event{
					Kind:    notify.PauseActivated,
					Level:   notify.Critical,
					Message: fmt.Sprintf("trading paused until %s after losing streak", until.Format(time.RFC3339)),
				})
			}
		}
	}

	t.emit(notify.Event{
		Kind:    kind,
		Level:   notify.Critical,
		Symbol:  symbol,
		Message: reason,
		Fields: map[string]any{
			"shares": rec.Shares,
			"price":  rec.Price,
			"pnl":    rec.PnL,
		},
	})
	return true
}

// evaluateEntry runs the decision pipeline for one symbol and executes a
// buy when everything lines up. All rejections are silent at this level;
// they surface only through logs and the event stream.
func (t *Trader) evaluateEntry(symbol string, obs market.Observation, prices map[string]float64) {
	hist := t.history.Get(symbol)

	analysis := t.classifier.Classify(symbol, obs, hist)
	if !analysis.CanBuy {
		return
	}

	sig := t.engine.Evaluate(symbol, obs, hist, analysis)
	if !sig.Valid {
		return
	}

	// Deploy a confidence-scaled slice of cash, capped by the risk budget
	// and the max-position fraction of capital.
	capital := t.ledger.PortfolioValue(prices)
	size := t.gate.Policy().Allocate(sig.EntryPrice, sig.StopLoss, sig.Confidence, t.ledger.Cash(), capital)

	if ok, reason := t.gate.Validate(symbol, "BUY", size.Shares, t.ledger.OpenPositionCount(), capital); !ok {
		t.log.Info().Str("symbol", symbol).Str("reason", reason).Msg("entry rejected")
		return
	}

	entryReason := fmt.Sprintf("%s entry, confidence %.0f%%, regime %s", sig.Strategy, sig.Confidence, analysis.Regime)
	rec, ok := t.ledger.Buy(symbol, sig.EntryPrice, size.Value, entryReason)
	if !ok {
		return
	}

	t.gate.SetStop(symbol, sig.StopLoss, rec.Price)
	t.gate.SetTakeProfit(symbol, rec.Price)
	t.gate.RecordTrade()
	t.journal.LogEntry(rec, string(sig.Strategy), string(analysis.Regime),
		sig.StopLoss, sig.TakeProfit1, sig.TakeProfit2, sig.RiskReward, size.RiskAmount)

	t.emit(notify.Event{
		Kind:    notify.TradeExecuted,
		Level:   notify.Critical,
		Symbol:  symbol,
		Message: entryReason,
		Fields: map[string]any{
			"shares": rec.Shares,
			"price":  rec.Price,
			"value":  rec.Total,
			"stop":   sig.StopLoss,
		},
	})
}

func (t *Trader) emit(e notify.Event) {
	if e.Time.IsZero() {
		e.Time = t.now()
	}
	if err := t.events.Notify(e); err != nil {
		t.log.Error().Err(err).Str("event", string(e.Kind)).Msg("notify failed")
	}
}
