// Package live runs the decision pipeline against a polling price source.
//
// A background goroutine wakes on a fixed interval, refreshes prices,
// re-runs the combined strategy, and publishes the resulting proposals to a
// buffered signal channel. A separate consumer drains the channel and
// approves or rejects each signal. Stopping is cooperative: the loop checks
// for cancellation at iteration boundaries and finishes the iteration in
// flight.
package live

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qtsys/quant/feed"
	"github.com/qtsys/quant/internal/retry"
	"github.com/qtsys/quant/market"
	"github.com/qtsys/quant/pkg/id"
	"github.com/qtsys/quant/portfolio"
	"github.com/qtsys/quant/series"
	"github.com/qtsys/quant/strategy"
)

const (
	fetchAttempts  = 3
	fetchBaseDelay = time.Second
	queueCapacity  = 256
)

// Trader polls a price source and publishes trade signals for operator
// approval.
type Trader struct {
	source   feed.Source
	ledger   *portfolio.Ledger
	combined *strategy.Combined
	prices   *series.Store
	interval time.Duration
	history  time.Duration

	signals  chan Signal
	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a Trader. interval <= 0 defaults to one minute; history is how
// far back historical bars are fetched each cycle (default two years).
func New(source feed.Source, ledger *portfolio.Ledger, combined *strategy.Combined, prices *series.Store, interval, history time.Duration) *Trader {
	if interval <= 0 {
		interval = time.Minute
	}
	if history <= 0 {
		history = 2 * 365 * 24 * time.Hour
	}
	return &Trader{
		source:   source,
		ledger:   ledger,
		combined: combined,
		prices:   prices,
		interval: interval,
		history:  history,
		signals:  make(chan Signal, queueCapacity),
		stop:     make(chan struct{}),
	}
}

// Signals returns the channel the polling loop publishes proposals on.
func (t *Trader) Signals() <-chan Signal { return t.signals }

// Stop requests a cooperative shutdown. The iteration in flight completes;
// Run returns afterwards.
func (t *Trader) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Run executes polling cycles until Stop is called or ctx is cancelled. A
// failed cycle is logged and the loop continues at the next tick; only
// cancellation ends the loop.
func (t *Trader) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	defer close(t.signals)

	for {
		if err := t.iterate(ctx); err != nil {
			zap.L().Error("trading cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.stop:
			return nil
		case <-ticker.C:
		}
	}
}

// iterate runs one polling cycle: refresh prices, decide, publish.
func (t *Trader) iterate(ctx context.Context) error {
	symbols, err := t.source.Symbols(ctx)
	if err != nil {
		return fmt.Errorf("fetch symbols: %w", err)
	}
	sort.Strings(symbols)

	now := time.Now()
	start := now.Add(-t.history)
	data := make(map[string][]market.Bar, len(symbols))

	for _, symbol := range symbols {
		bars, price, ok := t.fetchSymbol(ctx, symbol, start, now)
		if !ok {
			continue
		}

		t.prices.Add(symbol, now, price)
		if err := t.ledger.SetLatestPrice(symbol, price); err != nil {
			return err
		}
		data[symbol] = append(bars, market.Synthetic(symbol, now, price))
	}

	buys, sells := t.combined.Decide(data, t.ledger.Snapshot(), t.prices)
	t.publish(portfolio.TypeBuy, buys, now)
	t.publish(portfolio.TypeSell, sells, now)

	zap.L().Info("trading cycle complete",
		zap.Int("symbols", len(data)),
		zap.Int("buy_signals", len(buys)),
		zap.Int("sell_signals", len(sells)))

	return nil
}

// fetchSymbol pulls one symbol's history and current price with bounded
// retry. Gaps are logged and skipped; they never fail the cycle.
func (t *Trader) fetchSymbol(ctx context.Context, symbol string, start, now time.Time) (bars []market.Bar, price float64, ok bool) {
	err := retry.Do(ctx, fetchAttempts, fetchBaseDelay, func() error {
		var ferr error
		bars, ferr = t.source.HistoricalBars(ctx, symbol, start, now)
		return ferr
	})
	if err != nil {
		zap.L().Warn("historical fetch failed, skipping symbol",
			zap.String("symbol", symbol),
			zap.Error(err))
		return nil, 0, false
	}

	err = retry.Do(ctx, fetchAttempts, fetchBaseDelay, func() error {
		var ferr error
		price, ferr = t.source.CurrentPrice(ctx, symbol)
		return ferr
	})
	if err != nil {
		zap.L().Warn("price fetch failed, skipping symbol",
			zap.String("symbol", symbol),
			zap.Error(err))
		return nil, 0, false
	}
	if price <= 0 {
		zap.L().Warn("no usable current price, skipping symbol",
			zap.String("symbol", symbol),
			zap.Float64("price", price))
		return nil, 0, false
	}

	return bars, price, true
}

// publish pushes proposals onto the signal channel. A full queue drops the
// signal with a warning rather than blocking the polling loop.
func (t *Trader) publish(typ string, proposals []strategy.Proposal, now time.Time) {
	for _, p := range proposals {
		sig := Signal{
			ID:       id.New(),
			Type:     typ,
			Symbol:   p.Symbol,
			Price:    p.Price,
			Quantity: p.Quantity,
			Time:     now,
		}
		select {
		case t.signals <- sig:
		default:
			zap.L().Warn("signal queue full, dropping signal",
				zap.String("id", sig.ID),
				zap.String("symbol", sig.Symbol))
		}
	}
}

// Approve executes an operator-approved signal against the ledger. quantity
// overrides the proposed size when positive.
func (t *Trader) Approve(sig Signal, quantity int64) error {
	if quantity <= 0 {
		quantity = sig.Quantity
	}

	switch sig.Type {
	case portfolio.TypeBuy:
		return t.ledger.Buy(sig.Symbol, sig.Price, quantity, time.Now())
	case portfolio.TypeSell:
		return t.ledger.Sell(sig.Symbol, sig.Price, quantity, time.Now())
	default:
		return fmt.Errorf("unknown signal type %q", sig.Type)
	}
}
