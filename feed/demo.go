package feed

import (
	"context"
	"math/rand"
	"time"

	"github.com/rustyeddy/papertrader/market"
)

// Demo generates a seeded random walk per symbol, used when no market data
// source is configured. Deterministic for a given seed.
type Demo struct {
	rng    *rand.Rand
	prices map[string]float64
	now    func() time.Time
}

// NewDemo starts each symbol at the given base price.
func NewDemo(base map[string]float64, seed int64) *Demo {
	prices := make(map[string]float64, len(base))
	for sym, p := range base {
		prices[sym] = p
	}
	return &Demo{
		rng:    rand.New(rand.NewSource(seed)),
		prices: prices,
		now:    time.Now,
	}
}

// SetClock overrides observation timestamps. Used by tests.
func (d *Demo) SetClock(now func() time.Time) { d.now = now }

func (d *Demo) Fetch(_ context.Context, symbol string) (market.Observation, error) {
	prev, ok := d.prices[symbol]
	if !ok {
		return market.Observation{}, ErrUnavailable
	}

	// Gaussian step with slight upward drift, clamped well inside the
	// shock threshold so demo runs exercise the normal path.
	changePct := d.rng.NormFloat64()*1.2 + 0.05
	if changePct > 6.5 {
		changePct = 6.5
	}
	if changePct < -6.5 {
		changePct = -6.5
	}

	price := prev * (1 + changePct/100)
	d.prices[symbol] = price

	high, low := price, price
	if prev > price {
		high = prev
	} else {
		low = prev
	}

	return market.Observation{
		Symbol:    symbol,
		Price:     price,
		Volume:    float64(50_000 + d.rng.Intn(150_000)),
		High:      high,
		Low:       low,
		ChangePct: changePct,
		Time:      d.now(),
	}, nil
}
