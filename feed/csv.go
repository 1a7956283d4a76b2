package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/qtsys/quant/market"
)

// CSVDir serves bars from per-symbol CSV files in a directory: the file base
// name is the symbol, rows are "date,open,high,low,close,volume" with dates
// formatted 2006-01-02. The newest close doubles as the current price.
type CSVDir struct {
	dir string
}

// NewCSVDir creates a source over the CSV files in dir.
func NewCSVDir(dir string) *CSVDir {
	return &CSVDir{dir: dir}
}

// Symbols lists the CSV file base names in the directory, sorted.
func (c *CSVDir) Symbols(ctx context.Context) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("list csv files: %w", err)
	}

	symbols := make([]string, 0, len(matches))
	for _, m := range matches {
		symbols = append(symbols, strings.TrimSuffix(filepath.Base(m), ".csv"))
	}
	sort.Strings(symbols)
	return symbols, nil
}

// CurrentPrice returns the last close in the symbol's file, 0 when the file
// is missing or empty.
func (c *CSVDir) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	bars, err := ReadFile(filepath.Join(c.dir, symbol+".csv"), symbol)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	if len(bars) == 0 {
		return 0, nil
	}
	return bars[len(bars)-1].Close, nil
}

// HistoricalBars returns the symbol's bars within [start, end]. Zero start
// or end leaves that side unbounded.
func (c *CSVDir) HistoricalBars(ctx context.Context, symbol string, start, end time.Time) ([]market.Bar, error) {
	bars, err := ReadFile(filepath.Join(c.dir, symbol+".csv"), symbol)
	if err != nil {
		return nil, err
	}

	out := bars[:0:0]
	for _, b := range bars {
		if !start.IsZero() && b.Date.Before(start) {
			continue
		}
		if !end.IsZero() && b.Date.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// LoadDir reads every CSV file in dir into a bars-by-symbol map.
func LoadDir(dir string) (map[string][]market.Bar, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("list csv files: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no csv files in %s", dir)
	}

	data := make(map[string][]market.Bar, len(matches))
	for _, path := range matches {
		symbol := strings.TrimSuffix(filepath.Base(path), ".csv")
		bars, err := ReadFile(path, symbol)
		if err != nil {
			return nil, err
		}
		data[symbol] = bars
	}
	return data, nil
}

// ReadFile parses one symbol's CSV file. A header row is detected and
// skipped.
func ReadFile(path, symbol string) ([]market.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var bars []market.Bar
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if len(row) == 0 {
			continue
		}
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(row[0]), "date") {
				continue
			}
		}

		bar, err := parseRow(row, symbol)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		bars = append(bars, bar)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func parseRow(row []string, symbol string) (market.Bar, error) {
	if len(row) < 5 {
		return market.Bar{}, fmt.Errorf("want at least 5 fields (date,open,high,low,close[,volume]), got %d", len(row))
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(row[0]))
	if err != nil {
		return market.Bar{}, fmt.Errorf("bad date %q: %w", row[0], err)
	}

	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return market.Bar{}, fmt.Errorf("bad number %q: %w", row[i+1], err)
		}
		vals[i] = v
	}

	bar := market.Bar{
		Symbol: symbol,
		Date:   date,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
	}
	if len(row) > 5 {
		if v, err := strconv.ParseFloat(strings.TrimSpace(row[5]), 64); err == nil {
			bar.Volume = v
		}
	}
	return bar, nil
}
