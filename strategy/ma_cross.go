package strategy

import (
	"github.com/qtsys/quant/indicators"
	"github.com/qtsys/quant/market"
	"github.com/qtsys/quant/portfolio"
	"github.com/qtsys/quant/series"
)

// MACross trades moving-average crossovers: the signal is the sign of
// MA(short) - MA(long), and trades fire on sign transitions only.
type MACross struct {
	shortWindow  int
	longWindow   int
	buyFraction  float64
	sellFraction float64
	weight       float64
}

// NewMACross creates a moving-average crossover strategy.
func NewMACross(shortWindow, longWindow int, buyFraction, sellFraction, weight float64) *MACross {
	return &MACross{
		shortWindow:  shortWindow,
		longWindow:   longWindow,
		buyFraction:  buyFraction,
		sellFraction: sellFraction,
		weight:       weight,
	}
}

func (s *MACross) Name() string    { return "MovingAverageCrossover" }
func (s *MACross) Weight() float64 { return s.weight }

// Decide implements Strategy.
func (s *MACross) Decide(data map[string][]market.Bar, snap portfolio.State, prices *series.Store) (buys, sells []Proposal) {
	return propose(s.Name(), data, snap, prices, s.signalAt, s.longWindow,
		s.buyFraction, s.sellFraction, s.weight)
}

// signalAt is +1 when the short MA is above the long MA at idx, else -1.
// Insufficient history compares as "not above", so the signal is -1.
func (s *MACross) signalAt(closes []float64, idx int) int {
	window := closes[:idx+1]
	short, errS := indicators.SMA(window, s.shortWindow)
	long, errL := indicators.SMA(window, s.longWindow)
	if errS != nil || errL != nil {
		return -1
	}
	if short > long {
		return 1
	}
	return -1
}
