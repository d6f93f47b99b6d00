package market

import (
	"errors"
	"sync"
)

// ObservationStore keeps the latest observation per symbol. The trading loop
// is single-threaded but the store keeps a lock so readers (reports, digests)
// may run from other goroutines.
type ObservationStore struct {
	mu   sync.RWMutex
	last map[string]Observation
}

func NewObservationStore() *ObservationStore {
	return &ObservationStore{last: make(map[string]Observation)}
}

func (s *ObservationStore) Set(o Observation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[o.Symbol] = o
}

func (s *ObservationStore) Get(symbol string) (Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.last[symbol]
	if !ok {
		return Observation{}, errors.New("observation not found")
	}
	return o, nil
}

// Prices snapshots the latest price per symbol, the shape the ledger and
// the stop-loss checks consume.
func (s *ObservationStore) Prices() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.last))
	for sym, o := range s.last {
		out[sym] = o.Price
	}
	return out
}
