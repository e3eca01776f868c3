package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/config"
)

var rootCmd = &cobra.Command{
	Use:   "papertrader",
	Short: "A paper-trading simulator for equities and options",
	Long: `Papertrader simulates a brokerage account without touching real money.

It provides tools for:
  - Depositing and withdrawing simulated cash
  - Buying and closing equity and option positions
  - Resting GTC and DAY limit orders that fill on market ticks
  - Exercising or expiring option positions at expiration
  - Replaying bar data from CSV to drive the market
  - Reviewing the audit ledger and equity curve

State is persisted after every operation, so each command picks up where
the last one left off.`,
	SilenceUsage: true,
}

var cfgFile string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "papertrader.yaml", "config file (YAML or JSON)")
}

// loadConfig reads the config file, or falls back to defaults when it does
// not exist. A .env file and PAPERTRADER_* variables override either.
func loadConfig() (*config.Config, error) {
	config.LoadEnv()

	cfg, err := config.LoadFromFile(cfgFile)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg = config.Default()
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func warnPersist(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: state not saved: %v\n", err)
	}
}
