package backtest

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qtsys/quant/config"
	"github.com/qtsys/quant/market"
	"github.com/qtsys/quant/portfolio"
	"github.com/qtsys/quant/series"
	"github.com/qtsys/quant/store"
	"github.com/qtsys/quant/strategy"
)

func barsFrom(t *testing.T, symbol string, closes ...float64) []market.Bar {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Bar, len(closes))
	for i, c := range closes {
		out[i] = market.Synthetic(symbol, start.AddDate(0, 0, i), c)
	}
	return out
}

func newRunner(t *testing.T, strategies ...strategy.Strategy) *Runner {
	t.Helper()
	ledger, err := portfolio.NewLedger(100000, store.NewMemory())
	require.NoError(t, err)
	return &Runner{
		Combined: strategy.NewCombined(strategies...),
		Ledger:   ledger,
		Prices:   series.NewStore(series.DefaultCapacity),
	}
}

func TestRunBuysOnCrossover(t *testing.T) {
	r := newRunner(t, strategy.NewMACross(2, 3, 0.1, 0.5, 1.0))
	data := map[string][]market.Bar{"X": barsFrom(t, "X", 10, 10, 10, 14)}

	res, err := r.Run(context.Background(), data)
	require.NoError(t, err)

	require.Len(t, res.Transactions, 1)
	tx := res.Transactions[0]
	assert.Equal(t, portfolio.TypeBuy, tx.Type)
	assert.Equal(t, "X", tx.Symbol)
	assert.Equal(t, 14.0, tx.Price)
	// Trend over the live series is rising, so the buy fraction is tilted:
	// int64(100000 * 0.11 / 14).
	assert.Equal(t, int64(785), tx.Quantity)

	assert.Equal(t, 100000.0, res.InitialCash)
	assert.InDelta(t, (res.FinalValue-100000)/100000, res.TotalReturn, 1e-12)
	assert.Equal(t, int64(785), r.Ledger.Holding("X"))
}

func TestRunIsDeterministic(t *testing.T) {
	data := map[string][]market.Bar{}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for s, base := range map[string]float64{"600000": 50, "600036": 120} {
		bars := make([]market.Bar, 0, 60)
		for i := 0; i < 60; i++ {
			price := base + 8*math.Sin(float64(i)/4) + 0.3*float64(i)
			bars = append(bars, market.Synthetic(s, start.AddDate(0, 0, i), price))
		}
		data[s] = bars
	}

	run := func() Result {
		strategies, err := strategy.DefaultRegistry().FromConfig(config.Default().Strategies)
		require.NoError(t, err)
		r := newRunner(t, strategies...)
		res, err := r.Run(context.Background(), data)
		require.NoError(t, err)
		return res
	}

	first := run()
	second := run()

	assert.NotEmpty(t, first.Transactions)
	require.Equal(t, first, second)
}

func TestRunDoesNotMutateInput(t *testing.T) {
	// Bars deliberately out of order: Run sorts a private copy.
	bars := barsFrom(t, "X", 10, 10, 10, 14)
	bars[0], bars[3] = bars[3], bars[0]
	original := make([]market.Bar, len(bars))
	copy(original, bars)

	r := newRunner(t, strategy.NewMACross(2, 3, 0.1, 0.5, 1.0))
	_, err := r.Run(context.Background(), map[string][]market.Bar{"X": bars})
	require.NoError(t, err)

	assert.Equal(t, original, bars)
}

func TestRunGapDatesSkipSymbol(t *testing.T) {
	// Y only trades on the first two dates; X covers four. Missing dates must
	// not produce prices or bars for Y.
	r := newRunner(t, strategy.NewMACross(2, 3, 0.1, 0.5, 1.0))
	data := map[string][]market.Bar{
		"X": barsFrom(t, "X", 10, 10, 10, 14),
		"Y": barsFrom(t, "Y", 5, 5),
	}

	_, err := r.Run(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, 2, r.Prices.Len("Y"))
	assert.Equal(t, 4, r.Prices.Len("X"))
}

func TestRunValidatesDependencies(t *testing.T) {
	ledger, err := portfolio.NewLedger(100000, store.NewMemory())
	require.NoError(t, err)

	r := &Runner{Ledger: ledger, Prices: series.NewStore(10)}
	_, err = r.Run(context.Background(), nil)
	assert.ErrorContains(t, err, "Combined is required")
}

func TestRunHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newRunner(t, strategy.NewMACross(2, 3, 0.1, 0.5, 1.0))
	_, err := r.Run(ctx, map[string][]market.Bar{"X": barsFrom(t, "X", 10, 11)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunEmptyDataIsFlat(t *testing.T) {
	r := newRunner(t, strategy.NewMACross(2, 3, 0.1, 0.5, 1.0))

	res, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 100000.0, res.FinalValue)
	assert.Zero(t, res.TotalReturn)
	assert.Empty(t, res.Transactions)
}
