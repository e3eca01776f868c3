package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/portfolio"
	"github.com/rustyeddy/papertrader/sim"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "List held positions with market value and unrealized P/L",
	Args:  cobra.NoArgs,
	RunE:  runPortfolio,
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List open limit orders",
	Args:  cobra.NoArgs,
	RunE:  runOrders,
}

var symbolsCmd = &cobra.Command{
	Use:   "symbols [all|open|closed|limit]",
	Short: "List symbols by scope",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSymbols,
}

func init() {
	rootCmd.AddCommand(portfolioCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(symbolsCmd)
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	return withEngine(func(e *sim.Engine) error {
		rows := e.Portfolio()
		if len(rows) == 0 {
			fmt.Println("No open positions")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tINSTRUMENT\tQTY\tAVG COST\tPRICE\tVALUE\tP/L\tP/L %")
		for _, h := range rows {
			name := h.Symbol
			if h.Type == portfolio.AssetOption {
				name = h.ContractID
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
				h.Type, name, h.Qty,
				h.AvgCost.StringFixed(2), h.CurrentPrice.StringFixed(2),
				h.MarketValue.StringFixed(2), h.UnrealizedPL.StringFixed(2), h.UnrealizedPct.StringFixed(2))
		}
		return w.Flush()
	})
}

func runOrders(cmd *cobra.Command, args []string) error {
	return withEngine(func(e *sim.Engine) error {
		open := e.OpenOrders()
		if len(open) == 0 {
			fmt.Println("No open orders")
			return nil
		}
		for _, o := range open {
			fmt.Printf("%s  (%s)\n", o, o.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	})
}

func runSymbols(cmd *cobra.Command, args []string) error {
	scope := sim.ScopeAll
	if len(args) == 1 {
		var err error
		if scope, err = sim.ParseScope(args[0]); err != nil {
			return err
		}
	}
	return withEngine(func(e *sim.Engine) error {
		for _, sym := range e.Symbols(scope) {
			fmt.Println(sym)
		}
		return nil
	})
}
