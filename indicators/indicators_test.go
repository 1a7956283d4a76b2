package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}

	v, err := SMA(closes, 5)
	assert.NoError(t, err)
	assert.InDelta(t, 3.0, v, 1e-9)

	v, err = SMA(closes, 2)
	assert.NoError(t, err)
	assert.InDelta(t, 4.5, v, 1e-9)
}

func TestSMAErrors(t *testing.T) {
	_, err := SMA([]float64{1, 2}, 3)
	assert.Error(t, err)

	_, err = SMA([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestRSIKnownValue(t *testing.T) {
	// Deltas over window 4: +1, -1, +2, -2. avgGain=0.75, avgLoss=0.75,
	// RS=1, RSI=50.
	closes := []float64{10, 11, 10, 12, 10}

	v, err := RSI(closes, 4)
	assert.NoError(t, err)
	assert.InDelta(t, 50.0, v, 1e-9)
}

func TestRSIZeroLossIsMaximalOverbought(t *testing.T) {
	closes := []float64{10, 11, 12, 13, 14}

	v, err := RSI(closes, 4)
	assert.NoError(t, err)
	assert.Equal(t, 100.0, v)
}

func TestRSIZeroGainIsZero(t *testing.T) {
	closes := []float64{14, 13, 12, 11, 10}

	v, err := RSI(closes, 4)
	assert.NoError(t, err)
	assert.InDelta(t, 0.0, v, 1e-9)
}

func TestRSINotEnoughData(t *testing.T) {
	_, err := RSI([]float64{10, 11}, 2)
	assert.Error(t, err)
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		window int
		want   float64
		ok     bool
	}{
		{"rising", []float64{1, 2, 3, 4}, 4, 1.0, true},
		{"falling", []float64{4, 3, 2, 1}, 4, -1.0, true},
		{"flat", []float64{2, 2, 2}, 3, 0.0, true},
		{"uses last window only", []float64{100, 1, 2, 3}, 3, 1.0, true},
		{"insufficient", []float64{1, 2}, 3, 0, false},
		{"window too small", []float64{1, 2}, 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Trend(tt.prices, tt.window)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}
