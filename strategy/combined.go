package strategy

import (
	"sort"

	"github.com/qtsys/quant/market"
	"github.com/qtsys/quant/portfolio"
	"github.com/qtsys/quant/series"
)

// Combined aggregates the proposals of several weighted strategies into one
// buy list and one sell list per cycle.
//
// Same-side proposals for a symbol sum their weight-scaled quantities; their
// prices merge by running average, (existing + new) / 2, deliberately not
// quantity-weighted to match the system's established behavior. Buys and
// sells for one symbol are never netted against each other.
type Combined struct {
	strategies []Strategy
}

// NewCombined creates the aggregator over the given strategies. Strategy
// order is preserved: it determines the price-merge order and must stay
// stable for reproducible runs.
func NewCombined(strategies ...Strategy) *Combined {
	return &Combined{strategies: strategies}
}

// Strategies returns the aggregated strategies in order.
func (c *Combined) Strategies() []Strategy { return c.strategies }

// Decide runs every strategy and merges the results.
func (c *Combined) Decide(data map[string][]market.Bar, snap portfolio.State, prices *series.Store) (buys, sells []Proposal) {
	buyM := make(map[string]*Proposal)
	sellM := make(map[string]*Proposal)

	for _, s := range c.strategies {
		b, sl := s.Decide(data, snap, prices)
		merge(buyM, b, s.Weight())
		merge(sellM, sl, s.Weight())
	}

	return flatten(buyM), flatten(sellM)
}

func merge(m map[string]*Proposal, proposals []Proposal, weight float64) {
	for _, p := range proposals {
		weighted := int64(float64(p.Quantity) * weight)
		if existing, ok := m[p.Symbol]; ok {
			existing.Quantity += weighted
			existing.Price = (existing.Price + p.Price) / 2
		} else {
			m[p.Symbol] = &Proposal{Symbol: p.Symbol, Price: p.Price, Quantity: weighted}
		}
	}
}

func flatten(m map[string]*Proposal) []Proposal {
	out := make([]Proposal, 0, len(m))
	for _, p := range m {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
