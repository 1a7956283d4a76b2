package strategy

import (
	"github.com/qtsys/quant/indicators"
	"github.com/qtsys/quant/market"
	"github.com/qtsys/quant/portfolio"
	"github.com/qtsys/quant/series"
)

// RSIStrategy trades Relative Strength Index reversals: -1 above the
// overbought threshold, +1 below the oversold threshold, 0 between. Trades
// fire on transitions only.
type RSIStrategy struct {
	window       int
	overbought   float64
	oversold     float64
	buyFraction  float64
	sellFraction float64
	weight       float64
}

// NewRSI creates an RSI strategy.
func NewRSI(window int, overbought, oversold, buyFraction, sellFraction, weight float64) *RSIStrategy {
	return &RSIStrategy{
		window:       window,
		overbought:   overbought,
		oversold:     oversold,
		buyFraction:  buyFraction,
		sellFraction: sellFraction,
		weight:       weight,
	}
}

func (s *RSIStrategy) Name() string    { return "RSI" }
func (s *RSIStrategy) Weight() float64 { return s.weight }

// Decide implements Strategy.
func (s *RSIStrategy) Decide(data map[string][]market.Bar, snap portfolio.State, prices *series.Store) (buys, sells []Proposal) {
	return propose(s.Name(), data, snap, prices, s.signalAt, s.window,
		s.buyFraction, s.sellFraction, s.weight)
}

// signalAt maps RSI at idx onto {-1, 0, 1}. Insufficient history is neutral.
func (s *RSIStrategy) signalAt(closes []float64, idx int) int {
	rsi, err := indicators.RSI(closes[:idx+1], s.window)
	if err != nil {
		return 0
	}
	switch {
	case rsi > s.overbought:
		return -1
	case rsi < s.oversold:
		return 1
	default:
		return 0
	}
}
