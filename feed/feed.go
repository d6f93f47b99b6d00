// Package feed supplies per-symbol observations to the trading loop. Real
// data acquisition lives outside the engine; the implementations here are
// local collaborators (CSV replay, demo walk) satisfying the same contract.
package feed

import (
	"context"
	"errors"

	"github.com/rustyeddy/papertrader/market"
)

// ErrUnavailable signals a fetch failure or an exhausted source. The trading
// loop reuses the last known observation or skips the symbol for the tick.
var ErrUnavailable = errors.New("feed: observation unavailable")

// Feed fetches the current observation for one symbol.
type Feed interface {
	Fetch(ctx context.Context, symbol string) (market.Observation, error)
}

// Cached wraps a Feed and falls back to the last successful observation for
// a symbol when the source fails.
type Cached struct {
	src  Feed
	last map[string]market.Observation
}

func NewCached(src Feed) *Cached {
	return &Cached{src: src, last: make(map[string]market.Observation)}
}

func (c *Cached) Fetch(ctx context.Context, symbol string) (market.Observation, error) {
	obs, err := c.src.Fetch(ctx, symbol)
	if err != nil {
		if prev, ok := c.last[symbol]; ok {
			return prev, nil
		}
		return market.Observation{}, ErrUnavailable
	}
	c.last[symbol] = obs
	return obs, nil
}
