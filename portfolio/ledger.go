// Package portfolio implements the cash/position ledger with FIFO cost-basis
// accounting.
//
// The ledger is single-writer: a mutex serializes buy/sell/reset so the
// multi-step lot consumption never interleaves with another operation on the
// same symbol. Every successful mutation is written through to the configured
// Store before the call returns.
package portfolio

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Ledger owns cash, holdings, FIFO buy lots, the transaction log, and the
// latest-price cache.
type Ledger struct {
	mu sync.Mutex

	initialCash  float64
	cash         float64
	holdings     map[string]int64
	lots         map[string][]Lot
	transactions []Transaction
	latestPrices map[string]float64

	store         Store
	feeRate       float64
	slippageRate  float64
	simulateCosts bool
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithCosts enables trading cost simulation: buys pay price*qty*(1+fee+slip),
// sells receive price*qty*(1-fee-slip).
func WithCosts(feeRate, slippageRate float64) Option {
	return func(l *Ledger) {
		l.feeRate = feeRate
		l.slippageRate = slippageRate
		l.simulateCosts = true
	}
}

// NewLedger creates a ledger with the given starting cash, restoring any
// previously persisted state from st.
func NewLedger(initialCash float64, st Store, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		initialCash:  initialCash,
		cash:         initialCash,
		holdings:     make(map[string]int64),
		lots:         make(map[string][]Lot),
		latestPrices: make(map[string]float64),
		store:        st,
	}
	for _, opt := range opts {
		opt(l)
	}

	state, found, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}
	if found {
		l.apply(state.Clone())
		zap.L().Info("portfolio restored",
			zap.Float64("cash", l.cash),
			zap.Int("holdings", len(l.holdings)))
	}

	return l, nil
}

func (l *Ledger) apply(s State) {
	l.cash = s.Cash
	l.holdings = s.Holdings
	l.lots = s.Lots
	l.transactions = s.Transactions
	l.latestPrices = s.LatestPrices
	if l.holdings == nil {
		l.holdings = make(map[string]int64)
	}
	if l.lots == nil {
		l.lots = make(map[string][]Lot)
	}
	if l.latestPrices == nil {
		l.latestPrices = make(map[string]float64)
	}
}

// Buy purchases qty of symbol at price. Insufficient cash is a business
// rejection: logged, no state change, nil error. A non-nil error means the
// backing store failed.
func (l *Ledger) Buy(symbol string, price float64, qty int64, ts time.Time) error {
	if qty <= 0 || price <= 0 {
		zap.L().Debug("buy skipped: non-positive size",
			zap.String("symbol", symbol),
			zap.Float64("price", price),
			zap.Int64("quantity", qty))
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cost := price * float64(qty)
	if l.simulateCosts {
		cost *= 1 + l.feeRate + l.slippageRate
	}

	if l.cash < cost {
		zap.L().Warn("buy rejected: insufficient cash",
			zap.String("symbol", symbol),
			zap.Float64("cost", cost),
			zap.Float64("cash", l.cash))
		return nil
	}

	l.cash -= cost
	l.holdings[symbol] += qty
	l.lots[symbol] = append(l.lots[symbol], Lot{Price: price, Quantity: qty})
	l.transactions = append(l.transactions, Transaction{
		Type:     TypeBuy,
		Symbol:   symbol,
		Price:    price,
		Quantity: qty,
		Time:     ts,
		Cost:     cost,
	})

	zap.L().Info("bought",
		zap.String("symbol", symbol),
		zap.Int64("quantity", qty),
		zap.Float64("price", price),
		zap.Float64("cost", cost))

	return l.persistLocked()
}

// Sell disposes qty of symbol at price, consuming buy lots FIFO from the
// head. Insufficient holdings is a business rejection: logged, no state
// change, nil error. A non-nil error means the backing store failed.
func (l *Ledger) Sell(symbol string, price float64, qty int64, ts time.Time) error {
	if qty <= 0 || price <= 0 {
		zap.L().Debug("sell skipped: non-positive size",
			zap.String("symbol", symbol),
			zap.Float64("price", price),
			zap.Int64("quantity", qty))
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	held := l.holdings[symbol]
	if held < qty {
		zap.L().Warn("sell rejected: insufficient holdings",
			zap.String("symbol", symbol),
			zap.Int64("requested", qty),
			zap.Int64("held", held))
		return nil
	}

	revenue := price * float64(qty)
	if l.simulateCosts {
		revenue *= 1 - l.feeRate - l.slippageRate
	}

	l.cash += revenue
	l.holdings[symbol] -= qty
	if l.holdings[symbol] == 0 {
		delete(l.holdings, symbol)
	}

	// Consume lots oldest-first; a partially consumed lot keeps its price.
	remaining := qty
	lots := l.lots[symbol]
	for remaining > 0 && len(lots) > 0 {
		take := lots[0].Quantity
		if take > remaining {
			take = remaining
		}
		lots[0].Quantity -= take
		remaining -= take
		if lots[0].Quantity == 0 {
			lots = lots[1:]
		}
	}
	if len(lots) == 0 {
		delete(l.lots, symbol)
	} else {
		l.lots[symbol] = lots
	}

	l.transactions = append(l.transactions, Transaction{
		Type:     TypeSell,
		Symbol:   symbol,
		Price:    price,
		Quantity: qty,
		Time:     ts,
		Revenue:  revenue,
	})

	zap.L().Info("sold",
		zap.String("symbol", symbol),
		zap.Int64("quantity", qty),
		zap.Float64("price", price),
		zap.Float64("revenue", revenue))

	return l.persistLocked()
}

// SetLatestPrice updates the latest-price cache for symbol and persists.
func (l *Ledger) SetLatestPrice(symbol string, price float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.latestPrices[symbol] = price
	return l.persistLocked()
}

// Valuate returns cash plus the marked value of all holdings. A symbol with
// no known latest price contributes zero and is logged as a gap.
func (l *Ledger) Valuate() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := l.cash
	for symbol, qty := range l.holdings {
		price, ok := l.latestPrices[symbol]
		if !ok {
			zap.L().Warn("valuation gap: no latest price",
				zap.String("symbol", symbol),
				zap.Int64("quantity", qty))
			continue
		}
		total += price * float64(qty)
	}
	return total
}

// AverageCost returns the quantity-weighted average lot price for symbol,
// or 0 when no lots remain.
func (l *Ledger) AverageCost(symbol string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return averageCost(l.lots[symbol])
}

func averageCost(lots []Lot) float64 {
	var value float64
	var qty int64
	for _, lot := range lots {
		value += lot.Price * float64(lot.Quantity)
		qty += lot.Quantity
	}
	if qty == 0 {
		return 0
	}
	return value / float64(qty)
}

// Positions reports every holding with its average cost, latest price, and
// unrealized profit, sorted by symbol.
func (l *Ledger) Positions() []Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Position, 0, len(l.holdings))
	for symbol, qty := range l.holdings {
		avg := averageCost(l.lots[symbol])
		latest := l.latestPrices[symbol]
		out = append(out, Position{
			Symbol:       symbol,
			Quantity:     qty,
			AverageCost:  avg,
			LatestPrice:  latest,
			UnrealizedPL: (latest - avg) * float64(qty),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Reset restores the ledger to its initial state and persists immediately.
func (l *Ledger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cash = l.initialCash
	l.holdings = make(map[string]int64)
	l.lots = make(map[string][]Lot)
	l.transactions = nil
	l.latestPrices = make(map[string]float64)

	zap.L().Info("portfolio reset", zap.Float64("cash", l.cash))
	return l.persistLocked()
}

// Snapshot returns a deep copy of the current state for readers (strategies,
// dashboards, persistence).
func (l *Ledger) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stateLocked().Clone()
}

// Cash returns the available cash.
func (l *Ledger) Cash() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cash
}

// InitialCash returns the configured starting cash.
func (l *Ledger) InitialCash() float64 { return l.initialCash }

// Holding returns the quantity held for symbol, zero if none.
func (l *Ledger) Holding(symbol string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holdings[symbol]
}

// Transactions returns a copy of the append-only transaction log.
func (l *Ledger) Transactions() []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

func (l *Ledger) stateLocked() State {
	return State{
		Cash:         l.cash,
		Holdings:     l.holdings,
		Lots:         l.lots,
		Transactions: l.transactions,
		LatestPrices: l.latestPrices,
	}
}

func (l *Ledger) persistLocked() error {
	if err := l.store.Save(l.stateLocked().Clone()); err != nil {
		return fmt.Errorf("save portfolio: %w", err)
	}
	return nil
}
