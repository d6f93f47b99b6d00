package market

import "errors"

// ErrInsufficientData is returned when a window larger than the recorded
// history is requested. Callers degrade gracefully instead of failing.
var ErrInsufficientData = errors.New("market: insufficient history")

// DefaultHistoryCapacity keeps enough points for MA50 plus slope lookback.
const DefaultHistoryCapacity = 60

// History is a bounded, insertion-ordered window of observations for one
// symbol. Oldest entries are evicted on overflow.
type History struct {
	capacity int
	obs      []Observation
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{capacity: capacity}
}

func (h *History) Push(o Observation) {
	h.obs = append(h.obs, o)
	if len(h.obs) > h.capacity {
		h.obs = h.obs[len(h.obs)-h.capacity:]
	}
}

func (h *History) Len() int { return len(h.obs) }

// Window returns a copy of the most recent n observations, oldest first.
func (h *History) Window(n int) ([]Observation, error) {
	if n <= 0 || len(h.obs) < n {
		return nil, ErrInsufficientData
	}
	out := make([]Observation, n)
	copy(out, h.obs[len(h.obs)-n:])
	return out, nil
}

// Prices returns the closing prices of the most recent n observations.
func (h *History) Prices(n int) ([]float64, error) {
	w, err := h.Window(n)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(w))
	for i, o := range w {
		out[i] = o.Price
	}
	return out, nil
}

// Volumes returns the volumes of the most recent n observations.
func (h *History) Volumes(n int) ([]float64, error) {
	w, err := h.Window(n)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(w))
	for i, o := range w {
		out[i] = o.Volume
	}
	return out, nil
}

// HistorySet holds one History per symbol.
type HistorySet struct {
	capacity int
	bySymbol map[string]*History
}

func NewHistorySet(capacity int) *HistorySet {
	return &HistorySet{capacity: capacity, bySymbol: make(map[string]*History)}
}

func (s *HistorySet) Push(symbol string, o Observation) {
	h, ok := s.bySymbol[symbol]
	if !ok {
		h = NewHistory(s.capacity)
		s.bySymbol[symbol] = h
	}
	h.Push(o)
}

// Get returns the history for symbol, creating an empty one if needed so
// callers never see nil.
func (s *HistorySet) Get(symbol string) *History {
	h, ok := s.bySymbol[symbol]
	if !ok {
		h = NewHistory(s.capacity)
		s.bySymbol[symbol] = h
	}
	return h
}
