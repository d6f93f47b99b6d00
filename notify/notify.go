// Package notify carries the engine's structured events to a delivery
// sink. The engine only emits plain data; formatting and transport are the
// sink's concern.
package notify

import (
	"time"

	"github.com/rs/zerolog"
)

// Level orders events by urgency. Critical events bypass batching.
type Level int

const (
	Critical  Level = iota // deliver immediately
	Important              // hourly digest
	Info                   // daily digest
)

// Kind names the event categories the engine produces.
type Kind string

const (
	TradeExecuted    Kind = "trade_executed"
	StopLossHit      Kind = "stop_loss_triggered"
	TakeProfitHit    Kind = "take_profit_triggered"
	BreakerActivated Kind = "circuit_breaker_activated"
	PauseActivated   Kind = "pause_activated"
	Digest           Kind = "digest"
)

// Event is one structured notification.
type Event struct {
	Kind    Kind
	Level   Level
	Time    time.Time
	Symbol  string
	Message string
	Fields  map[string]any
}

// Notifier delivers events. Implementations decide formatting and transport.
type Notifier interface {
	Notify(Event) error
}

// LogNotifier writes events to a zerolog logger. The default sink when no
// external transport is wired up.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(e Event) error {
	ev := n.log.Info()
	if e.Level == Critical {
		ev = n.log.Warn()
	}
	ev = ev.Str("event", string(e.Kind)).Time("at", e.Time)
	if e.Symbol != "" {
		ev = ev.Str("symbol", e.Symbol)
	}
	for k, v := range e.Fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(e.Message)
	return nil
}
