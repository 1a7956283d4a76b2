// Package backtest replays historical bars through the combined strategy and
// the ledger, reproducing live semantics day by day.
package backtest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/qtsys/quant/market"
	"github.com/qtsys/quant/portfolio"
	"github.com/qtsys/quant/series"
	"github.com/qtsys/quant/strategy"
)

// Result is the summary of one replay run.
type Result struct {
	InitialCash  float64                 `json:"initial_cash"`
	FinalValue   float64                 `json:"final_portfolio_value"`
	TotalReturn  float64                 `json:"total_return"`
	Transactions []portfolio.Transaction `json:"transactions"`
}

// Runner drives the ledger forward over the sorted union of all calendar
// dates in the input data. Identical inputs yield identical transaction
// logs and identical total return.
type Runner struct {
	Combined *strategy.Combined
	Ledger   *portfolio.Ledger
	Prices   *series.Store
}

// Run executes the replay loop:
//  1. for each date, feed every symbol's close into the price series and the
//     ledger's latest-price cache, and grow a working copy of each symbol's
//     history with a synthetic bar (the caller's input is never mutated)
//  2. invoke the aggregator once per date
//  3. apply all buys, then all sells, to the ledger
//
// A store failure aborts the run: a partially persisted ledger mid-replay is
// not recoverable.
func (r *Runner) Run(ctx context.Context, data map[string][]market.Bar) (Result, error) {
	if r.Combined == nil {
		return Result{}, fmt.Errorf("backtest: Combined is required")
	}
	if r.Ledger == nil {
		return Result{}, fmt.Errorf("backtest: Ledger is required")
	}
	if r.Prices == nil {
		return Result{}, fmt.Errorf("backtest: Prices is required")
	}

	symbols, dates, bySymbol := index(data)
	working := make(map[string][]market.Bar, len(symbols))
	cursor := make(map[string]int, len(symbols))

	zap.L().Info("backtest starting",
		zap.Int("symbols", len(symbols)),
		zap.Int("dates", len(dates)),
		zap.Float64("initial_cash", r.Ledger.InitialCash()))

	for _, date := range dates {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		for _, symbol := range symbols {
			bars := bySymbol[symbol]
			i := cursor[symbol]
			// At most one bar per symbol per date; duplicates keep the last close.
			matched := false
			var closePrice float64
			for i < len(bars) && market.Day(bars[i].Date).Equal(date) {
				closePrice = bars[i].Close
				matched = true
				i++
			}
			cursor[symbol] = i
			if !matched {
				continue
			}

			r.Prices.Add(symbol, date, closePrice)
			if err := r.Ledger.SetLatestPrice(symbol, closePrice); err != nil {
				return Result{}, fmt.Errorf("backtest: %w", err)
			}
			working[symbol] = append(working[symbol], market.Synthetic(symbol, date, closePrice))
		}

		buys, sells := r.Combined.Decide(working, r.Ledger.Snapshot(), r.Prices)
		for _, p := range buys {
			if err := r.Ledger.Buy(p.Symbol, p.Price, p.Quantity, date); err != nil {
				return Result{}, fmt.Errorf("backtest: %w", err)
			}
		}
		for _, p := range sells {
			if err := r.Ledger.Sell(p.Symbol, p.Price, p.Quantity, date); err != nil {
				return Result{}, fmt.Errorf("backtest: %w", err)
			}
		}
	}

	initial := r.Ledger.InitialCash()
	final := r.Ledger.Valuate()
	res := Result{
		InitialCash:  initial,
		FinalValue:   final,
		TotalReturn:  (final - initial) / initial,
		Transactions: r.Ledger.Transactions(),
	}

	zap.L().Info("backtest complete",
		zap.Float64("final_value", res.FinalValue),
		zap.Float64("total_return", res.TotalReturn),
		zap.Int("transactions", len(res.Transactions)))

	return res, nil
}

// index sorts symbols, sorts each symbol's bars by date into a private copy,
// and computes the ascending union of all distinct calendar dates.
func index(data map[string][]market.Bar) (symbols []string, dates []time.Time, bySymbol map[string][]market.Bar) {
	bySymbol = make(map[string][]market.Bar, len(data))
	seen := make(map[time.Time]struct{})

	for symbol, bars := range data {
		symbols = append(symbols, symbol)
		cp := make([]market.Bar, len(bars))
		copy(cp, bars)
		sort.SliceStable(cp, func(i, j int) bool { return cp[i].Date.Before(cp[j].Date) })
		bySymbol[symbol] = cp

		for _, b := range cp {
			seen[market.Day(b.Date)] = struct{}{}
		}
	}

	sort.Strings(symbols)
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	return symbols, dates, bySymbol
}
