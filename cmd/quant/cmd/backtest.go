package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/qtsys/quant/backtest"
	"github.com/qtsys/quant/feed"
	"github.com/qtsys/quant/portfolio"
	"github.com/qtsys/quant/series"
	"github.com/qtsys/quant/store"
	"github.com/qtsys/quant/strategy"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay historical bars through the combined strategy",
	Long: `Backtest replays per-symbol daily bar CSV files through the configured
strategies day by day, applies the merged trades to a fresh ledger, and
writes a JSON report with the total return and the full transaction log.

Example:
  quant backtest --data ./data --out backtest_result.json`,
	RunE: runBacktest,
}

var (
	btDataDir string
	btOutPath string
	btDBPath  string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btDataDir, "data", "d", "", "directory of per-symbol bar CSV files (required)")
	backtestCmd.Flags().StringVarP(&btOutPath, "out", "o", "", "report path (default from config)")
	backtestCmd.Flags().StringVar(&btDBPath, "db", "", "also persist the report into this SQLite database")

	backtestCmd.MarkFlagRequired("data")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	data, err := feed.LoadDir(btDataDir)
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}

	strategies, err := strategy.DefaultRegistry().FromConfig(cfg.Strategies)
	if err != nil {
		return fmt.Errorf("build strategies: %w", err)
	}

	// Replay always starts from a fresh in-memory ledger so runs stay
	// isolated from the live portfolio file.
	var opts []portfolio.Option
	if cfg.SimulateCosts {
		opts = append(opts, portfolio.WithCosts(cfg.FeeRate, cfg.SlippageRate))
	}
	ledger, err := portfolio.NewLedger(cfg.InitialCash, store.NewMemory(), opts...)
	if err != nil {
		return fmt.Errorf("ledger: %w", err)
	}

	runner := &backtest.Runner{
		Combined: strategy.NewCombined(strategies...),
		Ledger:   ledger,
		Prices:   series.NewStore(cfg.SeriesCapacity),
	}

	res, err := runner.Run(context.Background(), data)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	outPath := btOutPath
	if outPath == "" {
		outPath = cfg.Storage.ReportPath
	}
	if outPath != "" {
		if err := backtest.WriteReport(outPath, res); err != nil {
			return err
		}
	}

	if btDBPath != "" {
		db, err := store.NewSQLite(btDBPath)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()
		if err := db.SaveReport(time.Now(), res.InitialCash, res.FinalValue, res.TotalReturn, res.Transactions); err != nil {
			return err
		}
	}

	fmt.Printf("Backtest complete!\n")
	fmt.Printf("  Initial cash: %.2f\n", res.InitialCash)
	fmt.Printf("  Final value:  %.2f\n", res.FinalValue)
	fmt.Printf("  Total return: %.2f%%\n", res.TotalReturn*100)
	fmt.Printf("  Transactions: %d\n", len(res.Transactions))
	if outPath != "" {
		fmt.Printf("  Report: %s\n", outPath)
	}

	return nil
}
