package live

import "time"

// Signal is a proposed trade awaiting operator approval. Signals travel from
// the polling goroutine to the consumer over a channel; no mutable state is
// shared across the two contexts.
type Signal struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"` // portfolio.TypeBuy or portfolio.TypeSell
	Symbol   string    `json:"symbol"`
	Price    float64   `json:"price"`
	Quantity int64     `json:"quantity"`
	Time     time.Time `json:"time"`
}
