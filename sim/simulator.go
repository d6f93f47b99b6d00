package sim

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/papertrader/internal/id"
)

// Simulator executes trades against the virtual account. The trading loop
// drives it single-threaded but the mutex keeps report readers safe.
type Simulator struct {
	mu   sync.Mutex
	acct Account
	log  zerolog.Logger

	now func() time.Time
}

func New(initialCapital float64, log zerolog.Logger) *Simulator {
	return &Simulator{
		acct: Account{
			Cash:           initialCapital,
			InitialCapital: initialCapital,
			Positions:      make(map[string]*Position),
		},
		log: log,
		now: time.Now,
	}
}

// SetClock overrides the record timestamp source. Used by tests and replay.
func (s *Simulator) SetClock(now func() time.Time) { s.now = now }

func (s *Simulator) Cash() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acct.Cash
}

func (s *Simulator) InitialCapital() float64 { return s.acct.InitialCapital }

// Position returns a copy of the open position for symbol, if any.
func (s *Simulator) Position(symbol string) (Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.acct.Positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// Positions returns a copy of all open positions keyed by symbol.
func (s *Simulator) Positions() map[string]Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Position, len(s.acct.Positions))
	for sym, p := range s.acct.Positions {
		out[sym] = *p
	}
	return out
}

func (s *Simulator) OpenPositionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.acct.Positions)
}

// Trades returns a copy of the trade history, oldest first.
func (s *Simulator) Trades() []TradeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TradeRecord, len(s.acct.Trades))
	copy(out, s.acct.Trades)
	return out
}

// LastTrade returns the most recent trade record.
func (s *Simulator) LastTrade() (TradeRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.acct.Trades) == 0 {
		return TradeRecord{}, false
	}
	return s.acct.Trades[len(s.acct.Trades)-1], true
}

// Buy invests up to amount at the given price. Cash is debited by the exact
// cost of the whole shares bought, never by the requested amount, so no
// rounding drift accumulates. Repeat buys merge at weighted-average cost.
func (s *Simulator) Buy(symbol string, price, amount float64, reason string) (TradeRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount > s.acct.Cash {
		s.log.Warn().Str("symbol", symbol).Float64("amount", amount).Float64("cash", s.acct.Cash).
			Msg("insufficient cash for buy")
		return TradeRecord{}, false
	}
	if price <= 0 {
		return TradeRecord{}, false
	}

	// The tiny epsilon guards against the float quotient landing just
	// under a whole share when amount is an exact multiple of price.
	shares := int(math.Floor(amount/price + 1e-9))
	if shares < 1 {
		s.log.Warn().Str("symbol", symbol).Msg("amount too small for a single share")
		return TradeRecord{}, false
	}

	cost := float64(shares) * price
	s.acct.Cash -= cost

	if pos, ok := s.acct.Positions[symbol]; ok {
		newShares := pos.Shares + shares
		pos.AvgPrice = (float64(pos.Shares)*pos.AvgPrice + cost) / float64(newShares)
		pos.Shares = newShares
	} else {
		s.acct.Positions[symbol] = &Position{Symbol: symbol, Shares: shares, AvgPrice: price}
	}

	rec := TradeRecord{
		ID:     id.New(),
		Time:   s.now(),
		Action: Buy,
		Symbol: symbol,
		Shares: shares,
		Price:  price,
		Total:  cost,
		Reason: reason,
	}
	s.acct.Trades = append(s.acct.Trades, rec)

	s.log.Info().Str("symbol", symbol).Int("shares", shares).Float64("price", price).
		Float64("cost", cost).Float64("cash", s.acct.Cash).Msg("buy executed")
	return rec, true
}

// Sell disposes of the given percentage of the position at price. The
// position is deleted once its shares reach zero.
func (s *Simulator) Sell(symbol string, price, percentage float64, reason string) (TradeRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.acct.Positions[symbol]
	if !ok || pos.Shares == 0 {
		s.log.Warn().Str("symbol", symbol).Msg("no position to sell")
		return TradeRecord{}, false
	}

	shares := int(math.Floor(float64(pos.Shares) * percentage / 100))
	if shares < 1 {
		s.log.Warn().Str("symbol", symbol).Float64("pct", percentage).Msg("percentage sells zero shares")
		return TradeRecord{}, false
	}

	proceeds := float64(shares) * price
	s.acct.Cash += proceeds
	pos.Shares -= shares

	pnl := (price - pos.AvgPrice) * float64(shares)
	pnlPct := (price/pos.AvgPrice - 1) * 100

	rec := TradeRecord{
		ID:     id.New(),
		Time:   s.now(),
		Action: Sell,
		Symbol: symbol,
		Shares: shares,
		Price:  price,
		Total:  proceeds,
		PnL:    pnl,
		PnLPct: pnlPct,
		Reason: reason,
	}
	s.acct.Trades = append(s.acct.Trades, rec)

	if pos.Shares == 0 {
		delete(s.acct.Positions, symbol)
	}

	s.log.Info().Str("symbol", symbol).Int("shares", shares).Float64("price", price).
		Float64("pnl", pnl).Float64("cash", s.acct.Cash).Msg("sell executed")
	return rec, true
}

// PortfolioValue is cash plus position value at current prices, falling
// back to average cost for symbols without a known price.
func (s *Simulator) PortfolioValue(prices map[string]float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.acct.Cash
	for sym, pos := range s.acct.Positions {
		px, ok := prices[sym]
		if !ok {
			px = pos.AvgPrice
		}
		total += float64(pos.Shares) * px
	}
	return total
}
