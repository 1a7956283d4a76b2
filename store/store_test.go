package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qtsys/quant/portfolio"
)

func sampleState() portfolio.State {
	return portfolio.State{
		Cash: 87500.25,
		Holdings: map[string]int64{
			"600000": 150,
			"600036": 30,
		},
		Lots: map[string][]portfolio.Lot{
			"600000": {{Price: 10.0, Quantity: 100}, {Price: 11.0, Quantity: 50}},
			"600036": {{Price: 30.5, Quantity: 30}},
		},
		Transactions: []portfolio.Transaction{
			{
				Type: portfolio.TypeBuy, Symbol: "600000", Price: 10.0, Quantity: 100,
				Time: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Cost: 1000,
			},
			{
				Type: portfolio.TypeSell, Symbol: "600000", Price: 12.0, Quantity: 20,
				Time: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Revenue: 240,
			},
		},
		LatestPrices: map[string]float64{"600000": 11.2, "600036": 31.0},
	}
}

func assertStateEqual(t *testing.T, want, got portfolio.State) {
	t.Helper()
	assert.Equal(t, want.Cash, got.Cash)
	assert.Equal(t, want.Holdings, got.Holdings)
	assert.Equal(t, want.Lots, got.Lots)
	assert.Equal(t, want.LatestPrices, got.LatestPrices)

	require.Len(t, got.Transactions, len(want.Transactions))
	for i, w := range want.Transactions {
		g := got.Transactions[i]
		assert.Equal(t, w.Type, g.Type)
		assert.Equal(t, w.Symbol, g.Symbol)
		assert.Equal(t, w.Price, g.Price)
		assert.Equal(t, w.Quantity, g.Quantity)
		assert.Equal(t, w.Cost, g.Cost)
		assert.Equal(t, w.Revenue, g.Revenue)
		assert.True(t, w.Time.Equal(g.Time), "transaction %d time: want %v got %v", i, w.Time, g.Time)
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory()

	_, found, err := m.Load()
	require.NoError(t, err)
	assert.False(t, found)

	want := sampleState()
	require.NoError(t, m.Save(want))

	got, found, err := m.Load()
	require.NoError(t, err)
	require.True(t, found)
	assertStateEqual(t, want, got)
}

func TestMemorySaveDetaches(t *testing.T) {
	m := NewMemory()
	state := sampleState()
	require.NoError(t, m.Save(state))

	state.Holdings["600000"] = 999

	got, _, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(150), got.Holdings["600000"])
}

func TestJSONFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.json")
	j := NewJSONFile(path)

	want := sampleState()
	require.NoError(t, j.Save(want))

	got, found, err := j.Load()
	require.NoError(t, err)
	require.True(t, found)
	assertStateEqual(t, want, got)
}

func TestJSONFileMissingStartsFresh(t *testing.T) {
	j := NewJSONFile(filepath.Join(t.TempDir(), "absent.json"))

	state, found, err := j.Load()
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, state.Cash)
}

func TestJSONFileCorruptStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, found, err := NewJSONFile(path).Load()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteRoundTrip(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "quant.db"))
	require.NoError(t, err)
	defer s.Close()

	_, found, err := s.Load()
	require.NoError(t, err)
	assert.False(t, found)

	want := sampleState()
	require.NoError(t, s.Save(want))

	got, found, err := s.Load()
	require.NoError(t, err)
	require.True(t, found)
	assertStateEqual(t, want, got)
}

func TestSQLiteSaveReplacesPreviousState(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "quant.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(sampleState()))

	smaller := portfolio.State{
		Cash:         100000,
		Holdings:     map[string]int64{},
		Lots:         map[string][]portfolio.Lot{},
		LatestPrices: map[string]float64{},
	}
	require.NoError(t, s.Save(smaller))

	got, found, err := s.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 100000.0, got.Cash)
	assert.Empty(t, got.Holdings)
	assert.Empty(t, got.Lots)
	assert.Empty(t, got.Transactions)
}

func TestSQLiteLotOrderSurvivesRoundTrip(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "quant.db"))
	require.NoError(t, err)
	defer s.Close()

	state := sampleState()
	require.NoError(t, s.Save(state))

	got, _, err := s.Load()
	require.NoError(t, err)
	require.Len(t, got.Lots["600000"], 2)
	assert.Equal(t, 10.0, got.Lots["600000"][0].Price)
	assert.Equal(t, 11.0, got.Lots["600000"][1].Price)
}

func TestSQLiteSaveReport(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "quant.db"))
	require.NoError(t, err)
	defer s.Close()

	state := sampleState()
	require.NoError(t, s.SaveReport(
		time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC),
		100000, 105000, 0.05, state.Transactions,
	))
	require.NoError(t, s.SaveReport(
		time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC),
		100000, 98000, -0.02, nil,
	))

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM reports`).Scan(&count))
	assert.Equal(t, 2, count)

	var totalReturn float64
	var blob string
	require.NoError(t, s.db.QueryRow(
		`SELECT total_return, transactions FROM reports ORDER BY id LIMIT 1`,
	).Scan(&totalReturn, &blob))
	assert.Equal(t, 0.05, totalReturn)
	assert.Contains(t, blob, `"600000"`)
}
