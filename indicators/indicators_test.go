package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ascending(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func TestSMA(t *testing.T) {
	t.Parallel()

	series := ascending(10) // 100..109

	got, err := SMA(series, 5)
	assert.NoError(t, err)
	// Last 5: 105,106,107,108,109 => 535/5 = 107
	assert.InDelta(t, 107, got, 1e-9)

	_, err = SMA(series, 11)
	assert.Error(t, err)

	_, err = SMA(series, 0)
	assert.Error(t, err)
}

func TestSlopePct(t *testing.T) {
	t.Parallel()

	series := ascending(25) // 100..124

	got, err := SlopePct(series, 20, 5)
	assert.NoError(t, err)
	// SMA20 now = avg 105..124 = 114.5, five samples ago = avg 100..119 = 109.5
	assert.InDelta(t, 114.5/109.5-1, got, 1e-9)

	_, err = SlopePct(series, 20, 6)
	assert.Error(t, err)
}

func TestAvgNonzero(t *testing.T) {
	t.Parallel()

	series := []float64{0, 100, 0, 200, 300}

	got, err := AvgNonzero(series, 5)
	assert.NoError(t, err)
	assert.InDelta(t, 200, got, 1e-9)

	_, err = AvgNonzero([]float64{0, 0, 0}, 3)
	assert.Error(t, err)
}

func TestMaxMin(t *testing.T) {
	t.Parallel()

	series := []float64{5, 9, 1, 7, 3}

	mx, err := Max(series, 3)
	assert.NoError(t, err)
	assert.InDelta(t, 7, mx, 1e-9)

	mn, err := Min(series, 3)
	assert.NoError(t, err)
	assert.InDelta(t, 1, mn, 1e-9)

	_, err = Max(series, 6)
	assert.Error(t, err)
}

func TestRangePct(t *testing.T) {
	t.Parallel()

	series := []float64{98, 100, 102, 100}

	got, err := RangePct(series, 4)
	assert.NoError(t, err)
	// (102-98)/100 = 4%
	assert.InDelta(t, 4, got, 1e-9)
}
