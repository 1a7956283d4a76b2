// Package store provides the persistence backends for ledger state and
// backtest reports: in-memory, JSON file, and SQLite.
package store

import (
	"sync"

	"github.com/qtsys/quant/portfolio"
)

// Memory keeps ledger state in process memory. Backtests and tests use it so
// write-through persistence costs nothing.
type Memory struct {
	mu    sync.Mutex
	state portfolio.State
	saved bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory { return &Memory{} }

// Load returns the last saved state, if any.
func (m *Memory) Load() (portfolio.State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saved {
		return portfolio.State{}, false, nil
	}
	return m.state.Clone(), true, nil
}

// Save replaces the stored state.
func (m *Memory) Save(s portfolio.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s.Clone()
	m.saved = true
	return nil
}
