// Package feed provides market data sources for live polling and offline
// runs.
package feed

import (
	"context"
	"time"

	"github.com/qtsys/quant/market"
)

// Source supplies symbols, current prices, and historical bar series. A
// source is a collaborator that may be slow, stale, or unavailable; callers
// must treat a zero current price as "no data".
type Source interface {
	// Symbols returns the universe of tradable symbols.
	Symbols(ctx context.Context) ([]string, error)

	// CurrentPrice returns the latest price for symbol, 0 when unavailable.
	CurrentPrice(ctx context.Context, symbol string) (float64, error)

	// HistoricalBars returns the daily bars for symbol within [start, end].
	HistoricalBars(ctx context.Context, symbol string, start, end time.Time) ([]market.Bar, error)
}
