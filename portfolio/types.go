package portfolio

import "time"

// Transaction types.
const (
	TypeBuy  = "buy"
	TypeSell = "sell"
)

// Lot is a single FIFO purchase layer for one symbol. Lots are consumed from
// the head of the queue on sale; a partially consumed lot keeps its price.
type Lot struct {
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

// Transaction is one immutable, append-only ledger entry. Exactly one of
// Cost (buys) or Revenue (sells) is set.
type Transaction struct {
	Type     string    `json:"type"`
	Symbol   string    `json:"symbol"`
	Price    float64   `json:"price"`
	Quantity int64     `json:"quantity"`
	Time     time.Time `json:"time"`
	Cost     float64   `json:"cost,omitempty"`
	Revenue  float64   `json:"revenue,omitempty"`
}

// State is the serializable shape of a ledger, as persisted by a Store.
type State struct {
	Cash         float64            `json:"cash"`
	Holdings     map[string]int64   `json:"holdings"`
	Lots         map[string][]Lot   `json:"buy_lots"`
	Transactions []Transaction      `json:"transactions"`
	LatestPrices map[string]float64 `json:"latest_prices"`
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := State{Cash: s.Cash}

	out.Holdings = make(map[string]int64, len(s.Holdings))
	for sym, qty := range s.Holdings {
		out.Holdings[sym] = qty
	}

	out.Lots = make(map[string][]Lot, len(s.Lots))
	for sym, lots := range s.Lots {
		cp := make([]Lot, len(lots))
		copy(cp, lots)
		out.Lots[sym] = cp
	}

	out.Transactions = make([]Transaction, len(s.Transactions))
	copy(out.Transactions, s.Transactions)

	out.LatestPrices = make(map[string]float64, len(s.LatestPrices))
	for sym, p := range s.LatestPrices {
		out.LatestPrices[sym] = p
	}

	return out
}

// Store persists ledger state. Implementations live in the store package.
//
// Load returns found=false (and a zero State) when nothing usable has been
// persisted yet — a missing or corrupt file is a fresh start, not an error.
// Errors are reserved for real collaborator failures.
type Store interface {
	Load() (state State, found bool, err error)
	Save(State) error
}

// Position summarizes one holding for reporting: quantity held, FIFO average
// cost, the latest known price, and the resulting unrealized profit.
type Position struct {
	Symbol       string  `json:"symbol"`
	Quantity     int64   `json:"quantity"`
	AverageCost  float64 `json:"average_cost"`
	LatestPrice  float64 `json:"latest_price"`
	UnrealizedPL float64 `json:"unrealized_pl"`
}
