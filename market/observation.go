// Package market defines the observation model shared by the regime
// classifier, entry strategies and the trading loop.
package market

import "time"

// Observation is a single polled snapshot of one symbol. It is immutable
// once created; components receive copies, never pointers.
type Observation struct {
	Symbol    string
	Price     float64
	Volume    float64
	High      float64
	Low       float64
	ChangePct float64 // percent change since the previous observation
	Time      time.Time
}
