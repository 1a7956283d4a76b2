package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qtsys/quant/portfolio"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Show or reset the persisted portfolio",
	Long: `Portfolio prints the persisted cash, holdings, and per-position average
cost and unrealized profit.

Subcommands:
  show  - Print the current portfolio
  reset - Restore the portfolio to its initial cash`,
}

var portfolioShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current portfolio",
	RunE:  runPortfolioShow,
}

var portfolioResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the portfolio to its initial cash",
	RunE:  runPortfolioReset,
}

func init() {
	rootCmd.AddCommand(portfolioCmd)
	portfolioCmd.AddCommand(portfolioShowCmd)
	portfolioCmd.AddCommand(portfolioResetCmd)
}

func openLedger() (*portfolio.Ledger, func(), error) {
	st, closeStore, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	ledger, err := portfolio.NewLedger(cfg.InitialCash, st)
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("ledger: %w", err)
	}
	return ledger, closeStore, nil
}

func runPortfolioShow(cmd *cobra.Command, args []string) error {
	ledger, closeStore, err := openLedger()
	if err != nil {
		return err
	}
	defer closeStore()

	fmt.Printf("Cash: %.2f\n", ledger.Cash())
	fmt.Printf("Value: %.2f\n\n", ledger.Valuate())

	positions := ledger.Positions()
	if len(positions) == 0 {
		fmt.Println("No holdings.")
		return nil
	}

	fmt.Printf("%-10s %10s %12s %12s %12s\n", "SYMBOL", "QTY", "AVG COST", "LATEST", "UNREAL P/L")
	for _, p := range positions {
		fmt.Printf("%-10s %10d %12.2f %12.2f %12.2f\n",
			p.Symbol, p.Quantity, p.AverageCost, p.LatestPrice, p.UnrealizedPL)
	}

	fmt.Printf("\nTransactions: %d\n", len(ledger.Transactions()))
	return nil
}

func runPortfolioReset(cmd *cobra.Command, args []string) error {
	ledger, closeStore, err := openLedger()
	if err != nil {
		return err
	}
	defer closeStore()

	if err := ledger.Reset(); err != nil {
		return err
	}
	fmt.Printf("Portfolio reset to %.2f cash.\n", ledger.Cash())
	return nil
}
