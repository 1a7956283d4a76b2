package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qtsys/quant/market"
	"github.com/qtsys/quant/portfolio"
	"github.com/qtsys/quant/series"
)

// stub is a fixed-output Strategy for aggregator tests.
type stub struct {
	name   string
	weight float64
	buys   []Proposal
	sells  []Proposal
}

func (s *stub) Name() string    { return s.name }
func (s *stub) Weight() float64 { return s.weight }

func (s *stub) Decide(map[string][]market.Bar, portfolio.State, *series.Store) ([]Proposal, []Proposal) {
	return s.buys, s.sells
}

func decide(c *Combined) (buys, sells []Proposal) {
	return c.Decide(nil, portfolio.State{}, series.NewStore(series.DefaultCapacity))
}

func TestCombinedMergesSameSideProposals(t *testing.T) {
	c := NewCombined(
		&stub{name: "a", weight: 0.5, buys: []Proposal{{Symbol: "X", Price: 100, Quantity: 10}}},
		&stub{name: "b", weight: 0.5, buys: []Proposal{{Symbol: "X", Price: 102, Quantity: 10}}},
	)

	buys, sells := decide(c)

	assert.Empty(t, sells)
	require.Len(t, buys, 1)
	// Quantities sum weight-scaled; prices merge by running average.
	assert.Equal(t, Proposal{Symbol: "X", Price: 101, Quantity: 10}, buys[0])
}

func TestCombinedDoesNotNetOpposingSides(t *testing.T) {
	c := NewCombined(
		&stub{name: "a", weight: 1.0, buys: []Proposal{{Symbol: "X", Price: 100, Quantity: 10}}},
		&stub{name: "b", weight: 1.0, sells: []Proposal{{Symbol: "X", Price: 100, Quantity: 4}}},
	)

	buys, sells := decide(c)

	require.Len(t, buys, 1)
	require.Len(t, sells, 1)
	assert.Equal(t, int64(10), buys[0].Quantity)
	assert.Equal(t, int64(4), sells[0].Quantity)
}

func TestCombinedOutputSortedBySymbol(t *testing.T) {
	c := NewCombined(
		&stub{name: "a", weight: 1.0, buys: []Proposal{
			{Symbol: "ZZZ", Price: 1, Quantity: 1},
			{Symbol: "AAA", Price: 1, Quantity: 1},
			{Symbol: "MMM", Price: 1, Quantity: 1},
		}},
	)

	buys, _ := decide(c)

	require.Len(t, buys, 3)
	assert.Equal(t, "AAA", buys[0].Symbol)
	assert.Equal(t, "MMM", buys[1].Symbol)
	assert.Equal(t, "ZZZ", buys[2].Symbol)
}

func TestCombinedWeightScalingTruncates(t *testing.T) {
	c := NewCombined(
		&stub{name: "a", weight: 0.4, buys: []Proposal{{Symbol: "X", Price: 10, Quantity: 7}}},
	)

	buys, _ := decide(c)

	require.Len(t, buys, 1)
	assert.Equal(t, int64(2), buys[0].Quantity) // int64(7 * 0.4)
}
