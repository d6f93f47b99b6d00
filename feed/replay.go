package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/papertrader/market"
)

// Replay serves observations from a CSV file, one row per symbol per tick.
// Expected header: symbol,time,price,volume,high,low,change_pct. Rows must
// be grouped by tick; Fetch consumes the next row for the requested symbol.
type Replay struct {
	rows   map[string][]market.Observation
	cursor map[string]int
}

func NewReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	if _, err := r.Read(); err != nil { // header
		return nil, fmt.Errorf("read replay header: %w", err)
	}

	rp := &Replay{rows: make(map[string][]market.Observation), cursor: make(map[string]int)}
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read replay row: %w", err)
		}
		obs, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("replay line %d: %w", line, err)
		}
		rp.rows[obs.Symbol] = append(rp.rows[obs.Symbol], obs)
	}
	return rp, nil
}

func (r *Replay) Fetch(_ context.Context, symbol string) (market.Observation, error) {
	rows := r.rows[symbol]
	i := r.cursor[symbol]
	if i >= len(rows) {
		return market.Observation{}, ErrUnavailable
	}
	r.cursor[symbol] = i + 1
	return rows[i], nil
}

// Remaining reports how many observations are left for symbol.
func (r *Replay) Remaining(symbol string) int {
	return len(r.rows[symbol]) - r.cursor[symbol]
}

func parseRow(rec []string) (market.Observation, error) {
	if len(rec) < 7 {
		return market.Observation{}, fmt.Errorf("expected 7 fields, got %d", len(rec))
	}

	t, err := time.Parse(time.RFC3339, rec[1])
	if err != nil {
		return market.Observation{}, fmt.Errorf("parse time: %w", err)
	}

	vals := make([]float64, 5)
	for i, field := range rec[2:7] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return market.Observation{}, fmt.Errorf("parse field %d: %w", i+2, err)
		}
		vals[i] = v
	}

	return market.Observation{
		Symbol:    rec[0],
		Time:      t,
		Price:     vals[0],
		Volume:    vals[1],
		High:      vals[2],
		Low:       vals[3],
		ChangePct: vals[4],
	}, nil
}
