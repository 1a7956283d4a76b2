package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/qtsys/quant/portfolio"
)

// SQLite persists ledger state and backtest reports in a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path and ensures the
// schema exists.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Load reads the persisted ledger state. found is false when no state row
// has ever been saved.
func (s *SQLite) Load() (portfolio.State, bool, error) {
	state := portfolio.State{
		Holdings:     make(map[string]int64),
		Lots:         make(map[string][]portfolio.Lot),
		LatestPrices: make(map[string]float64),
	}

	err := s.db.QueryRow(`SELECT cash FROM portfolio WHERE id = 1`).Scan(&state.Cash)
	if err == sql.ErrNoRows {
		return portfolio.State{}, false, nil
	}
	if err != nil {
		return portfolio.State{}, false, fmt.Errorf("load cash: %w", err)
	}

	if err := s.loadHoldings(&state); err != nil {
		return portfolio.State{}, false, err
	}
	if err := s.loadLots(&state); err != nil {
		return portfolio.State{}, false, err
	}
	if err := s.loadTransactions(&state); err != nil {
		return portfolio.State{}, false, err
	}
	if err := s.loadLatestPrices(&state); err != nil {
		return portfolio.State{}, false, err
	}

	return state, true, nil
}

func (s *SQLite) loadHoldings(state *portfolio.State) error {
	rows, err := s.db.Query(`SELECT symbol, quantity FROM holdings`)
	if err != nil {
		return fmt.Errorf("load holdings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var symbol string
		var qty int64
		if err := rows.Scan(&symbol, &qty); err != nil {
			return fmt.Errorf("scan holding: %w", err)
		}
		state.Holdings[symbol] = qty
	}
	return rows.Err()
}

func (s *SQLite) loadLots(state *portfolio.State) error {
	rows, err := s.db.Query(`SELECT symbol, price, quantity FROM buy_lots ORDER BY symbol, seq`)
	if err != nil {
		return fmt.Errorf("load lots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var symbol string
		var lot portfolio.Lot
		if err := rows.Scan(&symbol, &lot.Price, &lot.Quantity); err != nil {
			return fmt.Errorf("scan lot: %w", err)
		}
		state.Lots[symbol] = append(state.Lots[symbol], lot)
	}
	return rows.Err()
}

func (s *SQLite) loadTransactions(state *portfolio.State) error {
	rows, err := s.db.Query(`SELECT type, symbol, price, quantity, time, amount FROM transactions ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tx portfolio.Transaction
		var amount float64
		if err := rows.Scan(&tx.Type, &tx.Symbol, &tx.Price, &tx.Quantity, &tx.Time, &amount); err != nil {
			return fmt.Errorf("scan transaction: %w", err)
		}
		if tx.Type == portfolio.TypeBuy {
			tx.Cost = amount
		} else {
			tx.Revenue = amount
		}
		state.Transactions = append(state.Transactions, tx)
	}
	return rows.Err()
}

func (s *SQLite) loadLatestPrices(state *portfolio.State) error {
	rows, err := s.db.Query(`SELECT symbol, price FROM latest_prices`)
	if err != nil {
		return fmt.Errorf("load latest prices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var symbol string
		var price float64
		if err := rows.Scan(&symbol, &price); err != nil {
			return fmt.Errorf("scan latest price: %w", err)
		}
		state.LatestPrices[symbol] = price
	}
	return rows.Err()
}

// Save replaces the persisted ledger state in a single transaction.
func (s *SQLite) Save(state portfolio.State) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"portfolio", "holdings", "buy_lots", "transactions", "latest_prices"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO portfolio (id, cash) VALUES (1, ?)`, state.Cash); err != nil {
		return fmt.Errorf("save cash: %w", err)
	}

	for symbol, qty := range state.Holdings {
		if _, err := tx.Exec(`INSERT INTO holdings (symbol, quantity) VALUES (?, ?)`, symbol, qty); err != nil {
			return fmt.Errorf("save holding: %w", err)
		}
	}

	for symbol, lots := range state.Lots {
		for seq, lot := range lots {
			if _, err := tx.Exec(
				`INSERT INTO buy_lots (symbol, seq, price, quantity) VALUES (?, ?, ?, ?)`,
				symbol, seq, lot.Price, lot.Quantity,
			); err != nil {
				return fmt.Errorf("save lot: %w", err)
			}
		}
	}

	for seq, rec := range state.Transactions {
		amount := rec.Cost
		if rec.Type == portfolio.TypeSell {
			amount = rec.Revenue
		}
		if _, err := tx.Exec(
			`INSERT INTO transactions (seq, type, symbol, price, quantity, time, amount) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			seq, rec.Type, rec.Symbol, rec.Price, rec.Quantity, rec.Time, amount,
		); err != nil {
			return fmt.Errorf("save transaction: %w", err)
		}
	}

	for symbol, price := range state.LatestPrices {
		if _, err := tx.Exec(`INSERT INTO latest_prices (symbol, price) VALUES (?, ?)`, symbol, price); err != nil {
			return fmt.Errorf("save latest price: %w", err)
		}
	}

	return tx.Commit()
}

// SaveReport appends a backtest report row. The transaction log is stored as
// a JSON document alongside the summary columns.
func (s *SQLite) SaveReport(ranAt time.Time, initialCash, finalValue, totalReturn float64, transactions []portfolio.Transaction) error {
	blob, err := json.Marshal(transactions)
	if err != nil {
		return fmt.Errorf("marshal report transactions: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO reports (ran_at, initial_cash, final_value, total_return, transactions) VALUES (?, ?, ?, ?, ?)`,
		ranAt, initialCash, finalValue, totalReturn, string(blob),
	)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error { return s.db.Close() }
