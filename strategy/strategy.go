// Package strategy implements the trading strategies and their weighted
// combination into a single buy list and sell list per cycle.
package strategy

import (
	"sort"

	"go.uber.org/zap"

	"github.com/qtsys/quant/indicators"
	"github.com/qtsys/quant/market"
	"github.com/qtsys/quant/portfolio"
	"github.com/qtsys/quant/series"
)

// Proposal is one proposed trade for a symbol.
type Proposal struct {
	Symbol   string  `json:"symbol"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

// Strategy is a pure decision function: historical bars per symbol, a ledger
// snapshot, and the live price series in; proposed buys and sells out.
type Strategy interface {
	// Name returns the registry identifier for this strategy.
	Name() string

	// Weight returns the aggregation weight configured for this strategy.
	Weight() float64

	// Decide returns buy and sell proposals. It must not mutate its inputs.
	Decide(data map[string][]market.Bar, snap portfolio.State, prices *series.Store) (buys, sells []Proposal)
}

// signalFunc evaluates a discrete {-1, 0, 1} indicator at index idx of the
// close series, seeing only closes[:idx+1].
type signalFunc func(closes []float64, idx int) int

// propose runs the shared transition-detection loop: a trade fires only when
// the discrete signal changes between the last two bars — rising fires a
// buy, falling fires a sell. Sustained levels never trade.
func propose(
	name string,
	data map[string][]market.Bar,
	snap portfolio.State,
	prices *series.Store,
	signalAt signalFunc,
	trendWindow int,
	buyFraction, sellFraction, weight float64,
) (buys, sells []Proposal) {
	symbols := make([]string, 0, len(data))
	for symbol := range data {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		bars := data[symbol]
		if len(bars) < 2 {
			// No previous period, so no transition to detect.
			continue
		}

		closes := market.Closes(bars)
		last := signalAt(closes, len(closes)-1)
		prev := signalAt(closes, len(closes)-2)
		if last == prev {
			continue
		}

		price, ok := prices.Latest(symbol)
		if !ok {
			zap.L().Warn("no current price for symbol, skipping",
				zap.String("strategy", name),
				zap.String("symbol", symbol))
			continue
		}
		if price <= 0 {
			zap.L().Warn("invalid current price for symbol, skipping",
				zap.String("strategy", name),
				zap.String("symbol", symbol),
				zap.Float64("price", price))
			continue
		}

		adjBuy, adjSell := adjustFractions(buyFraction, sellFraction, prices.Prices(symbol), trendWindow)

		if last > prev {
			qty := int64(snap.Cash * adjBuy * weight / price)
			if qty > 0 {
				buys = append(buys, Proposal{Symbol: symbol, Price: price, Quantity: qty})
				zap.L().Info("buy signal",
					zap.String("strategy", name),
					zap.String("symbol", symbol),
					zap.Float64("price", price),
					zap.Int64("quantity", qty))
			}
		} else if held := snap.Holdings[symbol]; held > 0 {
			qty := int64(float64(held) * adjSell * weight)
			if qty > 0 {
				sells = append(sells, Proposal{Symbol: symbol, Price: price, Quantity: qty})
				zap.L().Info("sell signal",
					zap.String("strategy", name),
					zap.String("symbol", symbol),
					zap.Float64("price", price),
					zap.Int64("quantity", qty))
			}
		}
	}

	return buys, sells
}

// adjustFractions tilts the configured fractions by the short-horizon trend
// of the live series: a rising trend favors buying, otherwise selling. Too
// few observations leave the fractions unchanged.
func adjustFractions(buyFraction, sellFraction float64, livePrices []float64, window int) (float64, float64) {
	trend, ok := indicators.Trend(livePrices, window)
	if !ok {
		return buyFraction, sellFraction
	}
	if trend > 0 {
		return buyFraction * 1.1, sellFraction * 0.9
	}
	return buyFraction * 0.9, sellFraction * 1.1
}
