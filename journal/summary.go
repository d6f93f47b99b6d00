package journal

import (
	"fmt"
	"strings"
	"time"
)

// Summary is the performance rollup computed over closed entries only.
type Summary struct {
	TotalTrades   int
	OpenPositions int
	Wins          int
	Losses        int
	WinRate       float64 // percent
	AvgRiskReward float64
	TotalPnL      float64
	BestStrategy  string // highest total P&L

	ConsecutiveLosses int
	IsPaused          bool
	PauseUntil        *time.Time
}

// Summary computes performance analytics from the journal.
func (j *Journal) Summary() Summary {
	paused := j.IsPaused() // may clear an elapsed window, take before the lock

	j.mu.Lock()
	defer j.mu.Unlock()

	s := Summary{
		BestStrategy:      "N/A",
		ConsecutiveLosses: j.consecutiveLosses,
		IsPaused:          paused,
		PauseUntil:        j.pauseUntil,
	}

	byStrategy := make(map[string]float64)
	var rrSum float64
	for i := range j.entries {
		e := &j.entries[i]
		if !e.Closed() {
			s.OpenPositions++
			continue
		}
		s.TotalTrades++
		rrSum += e.RiskReward
		s.TotalPnL += *e.PnL
		if *e.PnL > 0 {
			s.Wins++
		} else if *e.PnL < 0 {
			s.Losses++
		}
		byStrategy[e.Strategy] += *e.PnL
	}

	if s.TotalTrades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.TotalTrades) * 100
		s.AvgRiskReward = rrSum / float64(s.TotalTrades)
	}

	best, bestPnL := "", 0.0
	for strat, pnl := range byStrategy {
		if best == "" || pnl > bestPnL {
			best, bestPnL = strat, pnl
		}
	}
	if best != "" {
		s.BestStrategy = best
	}
	return s
}

// Report renders the summary and recent trades as plain text.
func (j *Journal) Report() string {
	s := j.Summary()

	var b strings.Builder
	fmt.Fprintf(&b, "TRADE JOURNAL SUMMARY\n\n")
	fmt.Fprintf(&b, "Total trades:  %d (open: %d)\n", s.TotalTrades, s.OpenPositions)
	fmt.Fprintf(&b, "Wins/Losses:   %d/%d (win rate %.1f%%)\n", s.Wins, s.Losses, s.WinRate)
	fmt.Fprintf(&b, "Avg RR:        %.2f\n", s.AvgRiskReward)
	fmt.Fprintf(&b, "Total P&L:     %+.0f\n", s.TotalPnL)
	fmt.Fprintf(&b, "Best strategy: %s\n", s.BestStrategy)

	entries := j.Entries()
	if n := len(entries); n > 0 {
		fmt.Fprintf(&b, "\nRecent trades:\n")
		start := n - 5
		if start < 0 {
			start = 0
		}
		for _, e := range entries[start:] {
			status := "open"
			if e.Closed() {
				status = fmt.Sprintf("%+.0f", *e.PnL)
			}
			fmt.Fprintf(&b, "  %s %s %s (%s)\n", e.Symbol, e.Action, e.Strategy, status)
		}
	}

	if s.IsPaused && s.PauseUntil != nil {
		fmt.Fprintf(&b, "\nPAUSED until %s\n", s.PauseUntil.Format(time.RFC3339))
	}
	return b.String()
}
