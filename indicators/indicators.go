// Package indicators provides the price-series arithmetic used by the
// regime classifier and the entry strategies. All functions operate on the
// most recent `period` samples of the given series.
package indicators

import "fmt"

// SMA calculates the simple moving average over the last period samples.
func SMA(series []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(series) < period {
		return 0, fmt.Errorf("not enough samples: need %d, got %d", period, len(series))
	}

	sum := 0.0
	for i := len(series) - period; i < len(series); i++ {
		sum += series[i]
	}
	return sum / float64(period), nil
}

// SlopePct returns the fractional change of the period-SMA between now and
// `shift` samples ago. A value of 0.01 means the average rose 1%.
func SlopePct(series []float64, period, shift int) (float64, error) {
	if len(series) < period+shift {
		return 0, fmt.Errorf("not enough samples: need %d, got %d", period+shift, len(series))
	}

	now, err := SMA(series, period)
	if err != nil {
		return 0, err
	}
	then, err := SMA(series[:len(series)-shift], period)
	if err != nil {
		return 0, err
	}
	if then == 0 {
		return 0, fmt.Errorf("zero baseline average")
	}
	return now/then - 1, nil
}

// AvgNonzero averages the nonzero samples in the last period. Zero-volume
// ticks (halts, missing data) are excluded rather than dragging the mean.
func AvgNonzero(series []float64, period int) (float64, error) {
	if len(series) < period {
		return 0, fmt.Errorf("not enough samples: need %d, got %d", period, len(series))
	}

	sum, n := 0.0, 0
	for i := len(series) - period; i < len(series); i++ {
		if series[i] > 0 {
			sum += series[i]
			n++
		}
	}
	if n == 0 {
		return 0, fmt.Errorf("no nonzero samples in window")
	}
	return sum / float64(n), nil
}

// Max returns the maximum of the last period samples.
func Max(series []float64, period int) (float64, error) {
	if period <= 0 || len(series) < period {
		return 0, fmt.Errorf("not enough samples: need %d, got %d", period, len(series))
	}
	m := series[len(series)-period]
	for _, v := range series[len(series)-period:] {
		if v > m {
			m = v
		}
	}
	return m, nil
}

// Min returns the minimum of the last period samples.
func Min(series []float64, period int) (float64, error) {
	if period <= 0 || len(series) < period {
		return 0, fmt.Errorf("not enough samples: need %d, got %d", period, len(series))
	}
	m := series[len(series)-period]
	for _, v := range series[len(series)-period:] {
		if v < m {
			m = v
		}
	}
	return m, nil
}

// RangePct returns (high-low)/mean over the last period samples, as a
// percentage. Narrow values flag a sideways market.
func RangePct(series []float64, period int) (float64, error) {
	if len(series) < period {
		return 0, fmt.Errorf("not enough samples: need %d, got %d", period, len(series))
	}

	window := series[len(series)-period:]
	high, low, sum := window[0], window[0], 0.0
	for _, v := range window {
		if v > high {
			high = v
		}
		if v < low {
			low = v
		}
		sum += v
	}
	mean := sum / float64(len(window))
	if mean == 0 {
		return 0, fmt.Errorf("zero mean price")
	}
	return (high - low) / mean * 100, nil
}
