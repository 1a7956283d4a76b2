// Package series implements the bounded, per-symbol price time series store.
//
// The store is an explicitly constructed instance injected into whatever
// needs it (strategies, replay runner, live trader), so independent runs stay
// isolated. Every mutating call is internally synchronized: a live polling
// goroutine and a consumer may touch the store concurrently.
package series

import (
	"sync"
	"time"
)

// DefaultCapacity bounds each symbol's series when no capacity is given.
const DefaultCapacity = 100

// Point is one timestamped price observation.
type Point struct {
	Time  time.Time
	Price float64
}

// Store holds one bounded, insertion-ordered price series per symbol.
// Exceeding capacity evicts the oldest observation.
type Store struct {
	mu       sync.RWMutex
	capacity int
	series   map[string][]Point
}

// NewStore creates an empty store. capacity <= 0 selects DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		series:   make(map[string][]Point),
	}
}

// Add records a price observation in call order. An observation with a
// timestamp already present for the symbol updates that entry in place
// instead of appending a duplicate.
func (s *Store) Add(symbol string, ts time.Time, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pts := s.series[symbol]
	for i := range pts {
		if pts[i].Time.Equal(ts) {
			pts[i].Price = price
			return
		}
	}

	pts = append(pts, Point{Time: ts, Price: price})
	if len(pts) > s.capacity {
		pts = pts[len(pts)-s.capacity:]
	}
	s.series[symbol] = pts
}

// Get returns a copy of the series for symbol, empty if unseen.
func (s *Store) Get(symbol string) []Point {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pts := s.series[symbol]
	out := make([]Point, len(pts))
	copy(out, pts)
	return out
}

// All returns a copy of every series keyed by symbol. Callers may not mutate
// the store through the returned map.
func (s *Store) All() map[string][]Point {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]Point, len(s.series))
	for symbol, pts := range s.series {
		cp := make([]Point, len(pts))
		copy(cp, pts)
		out[symbol] = cp
	}
	return out
}

// Prices returns just the prices for symbol, oldest first.
func (s *Store) Prices(symbol string) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pts := s.series[symbol]
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = p.Price
	}
	return out
}

// Latest returns the most recent price for symbol. ok is false when the
// symbol has no observations.
func (s *Store) Latest(symbol string) (price float64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pts := s.series[symbol]
	if len(pts) == 0 {
		return 0, false
	}
	return pts[len(pts)-1].Price, true
}

// Len reports the number of observations held for symbol.
func (s *Store) Len(symbol string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.series[symbol])
}

// Clear empties all series.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = make(map[string][]Point)
}
