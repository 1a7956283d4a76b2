// Package market defines the shared market data types used across the system.
package market

import "time"

// Bar represents one OHLCV (Open, High, Low, Close, Volume) bar for a symbol.
type Bar struct {
	Symbol string
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Synthetic builds a bar whose OHLC all equal price, with zero volume. Replay
// and live polling splice these into a symbol's history so indicators see the
// newest observation immediately.
func Synthetic(symbol string, date time.Time, price float64) Bar {
	return Bar{
		Symbol: symbol,
		Date:   date,
		Open:   price,
		High:   price,
		Low:    price,
		Close:  price,
	}
}

// Day truncates t to midnight UTC. Replay keys bars by calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Closes extracts the close column from a bar history.
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
