package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/replay"
	"github.com/rustyeddy/papertrader/sim"
)

var tickCmd = &cobra.Command{
	Use:   "tick <bars.csv>",
	Short: "Replay bar data into the engine",
	Long: `Feed bars from a CSV file (time,symbol,open,high,low,close[,volume])
into the engine, one tick per distinct timestamp. Limit orders fill or
expire, positions are marked and expired options are settled.

Example:
  papertrader tick data/aapl-2025-02-12.csv --from 2025-02-12T14:30:00Z`,
	Args: cobra.ExactArgs(1),
	RunE: runTick,
}

var (
	tickFrom   string
	tickTo     string
	tickStrict bool
)

func init() {
	rootCmd.AddCommand(tickCmd)

	tickCmd.Flags().StringVar(&tickFrom, "from", "", "skip bars before this RFC3339 time")
	tickCmd.Flags().StringVar(&tickTo, "to", "", "stop after this RFC3339 time")
	tickCmd.Flags().BoolVar(&tickStrict, "strict", false, "stop at the first rejected tick")
}

func runTick(cmd *cobra.Command, args []string) error {
	opts := replay.Options{StopOnError: tickStrict}
	var err error
	if tickFrom != "" {
		if opts.From, err = time.Parse(time.RFC3339, tickFrom); err != nil {
			return fmt.Errorf("--from: %w", err)
		}
	}
	if tickTo != "" {
		if opts.To, err = time.Parse(time.RFC3339, tickTo); err != nil {
			return fmt.Errorf("--to: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return withEngine(func(e *sim.Engine) error {
		fmt.Printf("Replaying bars from: %s\n", args[0])
		stats, err := replay.CSV(ctx, args[0], e, opts)
		if err != nil {
			return fmt.Errorf("replay: %w", err)
		}

		pnl := e.AccountPNL()
		fmt.Printf("✓ Replayed %d ticks (%d skipped)", stats.Ticks, stats.Skipped)
		if stats.Ticks > 0 {
			fmt.Printf(" from %s to %s", stats.First.Format(time.RFC3339), stats.Last.Format(time.RFC3339))
		}
		fmt.Println()
		fmt.Printf("  Open orders:   %d\n", len(e.OpenOrders()))
		fmt.Printf("  Cash:          %s\n", e.Balance().StringFixed(2))
		fmt.Printf("  Account value: %s\n", e.AccountValue().StringFixed(2))
		fmt.Printf("  P/L:           %s (%s%%)\n", pnl.Value.StringFixed(2), pnl.Percent.StringFixed(2))
		return nil
	})
}
