// Package indicators provides the technical analysis calculations used by the
// trading strategies.
package indicators

import "fmt"

// SMA calculates the Simple Moving Average of the last period closes.
func SMA(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(closes) < period {
		return 0, fmt.Errorf("not enough closes: need %d, got %d", period, len(closes))
	}

	sum := 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(period), nil
}

// RSI calculates the Relative Strength Index over the last period price
// changes, using simple rolling means of gains and losses.
//
// A zero average loss yields RSI 100 (maximal overbought) rather than a
// division fault.
func RSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	// period deltas require period+1 closes.
	if len(closes) < period+1 {
		return 0, fmt.Errorf("not enough closes: need %d, got %d", period+1, len(closes))
	}

	var gains, losses float64
	for i := len(closes) - period; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100, nil
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}

// Trend returns the mean of successive price differences over the last window
// observations. ok is false when fewer than window observations exist.
func Trend(prices []float64, window int) (trend float64, ok bool) {
	if window < 2 || len(prices) < window {
		return 0, false
	}

	recent := prices[len(prices)-window:]
	sum := 0.0
	for i := 1; i < len(recent); i++ {
		sum += recent[i] - recent[i-1]
	}
	return sum / float64(len(recent)-1), true
}
