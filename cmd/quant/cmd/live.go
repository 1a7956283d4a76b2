package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/qtsys/quant/feed"
	"github.com/qtsys/quant/live"
	"github.com/qtsys/quant/portfolio"
	"github.com/qtsys/quant/series"
	"github.com/qtsys/quant/store"
	"github.com/qtsys/quant/strategy"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Poll prices and emit trade signals for approval",
	Long: `Live wakes on a fixed interval, refreshes prices from the data source,
re-runs the configured strategies, and publishes trade signals. Signals are
printed as they arrive; with --approve each one is applied to the ledger
immediately instead of waiting for an operator.

Example:
  quant live --data ./data --interval 60s`,
	RunE: runLive,
}

var (
	liveDataDir  string
	liveInterval time.Duration
	liveApprove  bool
)

func init() {
	rootCmd.AddCommand(liveCmd)

	liveCmd.Flags().StringVarP(&liveDataDir, "data", "d", "", "directory of per-symbol bar CSV files (required)")
	liveCmd.Flags().DurationVar(&liveInterval, "interval", 0, "poll interval (default from config)")
	liveCmd.Flags().BoolVar(&liveApprove, "approve", false, "apply every signal to the ledger without asking")

	liveCmd.MarkFlagRequired("data")
}

func runLive(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	// Live trades are real: no simulated fees or slippage.
	ledger, err := portfolio.NewLedger(cfg.InitialCash, st)
	if err != nil {
		return fmt.Errorf("ledger: %w", err)
	}

	strategies, err := strategy.DefaultRegistry().FromConfig(cfg.Strategies)
	if err != nil {
		return fmt.Errorf("build strategies: %w", err)
	}

	interval := liveInterval
	if interval <= 0 {
		interval = cfg.PollDuration()
	}

	trader := live.New(
		feed.NewCSVDir(liveDataDir),
		ledger,
		strategy.NewCombined(strategies...),
		series.NewStore(cfg.SeriesCapacity),
		interval,
		0,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		trader.Stop()
	}()

	done := make(chan error, 1)
	go func() { done <- trader.Run(ctx) }()

	fmt.Printf("Polling every %s. Ctrl-C to stop.\n\n", interval)

	for sig := range trader.Signals() {
		fmt.Printf("[%s] %s %s x%d @ %.2f (%s)\n",
			sig.Time.Format(time.RFC3339), sig.Type, sig.Symbol, sig.Quantity, sig.Price, sig.ID)
		if liveApprove {
			if err := trader.Approve(sig, 0); err != nil {
				return fmt.Errorf("apply signal: %w", err)
			}
		}
	}

	if err := <-done; err != nil && err != context.Canceled {
		return err
	}

	fmt.Printf("\nStopped. Cash: %.2f, value: %.2f\n", ledger.Cash(), ledger.Valuate())
	return nil
}

// openStore builds the configured persistence backend.
func openStore() (portfolio.Store, func(), error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		db, err := store.NewSQLite(cfg.Storage.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open db: %w", err)
		}
		return db, func() { db.Close() }, nil
	case "json":
		return store.NewJSONFile(cfg.Storage.PortfolioPath), func() {}, nil
	default:
		return store.NewMemory(), func() {}, nil
	}
}
