package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/qtsys/quant/config"
)

var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "A rule-based multi-strategy trading simulator",
	Long: `Quant runs a rule-based multi-strategy trading process against
historical or live price series, keeping an auditable cash/position ledger
with FIFO cost-basis accounting.

It provides tools for:
  - Backtesting the combined strategy over historical daily bars
  - Live polling with operator-approved trade signals
  - Portfolio persistence in JSON or SQLite
  - Weighted aggregation of moving-average and RSI strategies`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	cfgPath  string
	logLevel string
	cfg      *config.Config
)

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

// setup loads the configuration and installs the global logger before any
// subcommand runs.
func setup(cmd *cobra.Command, args []string) error {
	if cfgPath != "" {
		loaded, err := config.LoadFromFile(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}

	lc := zap.NewDevelopmentConfig()
	lc.Level = zap.NewAtomicLevelAt(parseLevel(level))
	logger, err := lc.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	zap.ReplaceGlobals(logger)

	return nil
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
