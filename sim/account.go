// Package sim implements the paper-trading ledger: a virtual cash balance,
// open positions and the append-only trade history. All risk gating happens
// upstream; the ledger only enforces arithmetic feasibility.
package sim

import "time"

// Action distinguishes the two trade directions.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
)

// Position is an open holding in one symbol. It exists from the first
// successful buy until shares reach zero, at which point it is deleted.
type Position struct {
	Symbol   string  `json:"symbol"`
	Shares   int     `json:"shares"`
	AvgPrice float64 `json:"avg_price"`
}

// TradeRecord is one executed trade. Records are immutable and append-only;
// only Sell records carry realized P&L.
type TradeRecord struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	Action   Action    `json:"action"`
	Symbol   string    `json:"symbol"`
	Shares   int       `json:"shares"`
	Price    float64   `json:"price"`
	Total    float64   `json:"total"`
	PnL      float64   `json:"pnl,omitempty"`
	PnLPct   float64   `json:"pnl_pct,omitempty"`
	Reason   string    `json:"reason"`
}

// Account is the full ledger state. Cash plus position market value is
// conserved across any single trade except for realized P&L moved into cash.
type Account struct {
	Cash           float64
	InitialCapital float64
	Positions      map[string]*Position
	Trades         []TradeRecord
}
