package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/orders"
	"github.com/rustyeddy/papertrader/sim"
)

var buyCmd = &cobra.Command{
	Use:   "buy <symbol> <qty>",
	Short: "Buy shares or option contracts",
	Long: `Buy immediately at --price, or rest a limit order with --limit.

Examples:
  papertrader buy AAPL 10 --price 187.50
  papertrader buy AAPL 10 --limit 180 --tif DAY
  papertrader buy NVDA 2 --contract O:NVDA250221C00139000 --price 3.10`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error { return runTrade(args, orders.Buy) },
}

var closeCmd = &cobra.Command{
	Use:   "close <symbol> <qty>",
	Short: "Sell held shares or option contracts",
	Long: `Sell immediately at --price, or rest a limit sell with --limit. The
position must be held when the order is placed.

Examples:
  papertrader close AAPL 5 --price 190
  papertrader close AAPL 5 --limit 200`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error { return runTrade(args, orders.Sell) },
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <symbol>",
	Short: "Cancel open limit orders",
	Long: `Cancel the first open order matching symbol, --limit and --qty, every
open order for symbol with --all, or one order by --id.

Examples:
  papertrader cancel AAPL --limit 180 --qty 10
  papertrader cancel AAPL --all
  papertrader cancel --id 7`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCancel,
}

var (
	tradePrice    string
	tradeLimit    string
	tradeTIF      string
	tradeContract string
	tradeNote     string

	cancelLimit string
	cancelQty   int64
	cancelAll   bool
	cancelID    int64
	cancelNote  string
)

func init() {
	rootCmd.AddCommand(buyCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(cancelCmd)

	for _, c := range []*cobra.Command{buyCmd, closeCmd} {
		c.Flags().StringVarP(&tradePrice, "price", "p", "", "execution price for an immediate trade")
		c.Flags().StringVarP(&tradeLimit, "limit", "l", "", "limit price; rests an order instead of trading now")
		c.Flags().StringVar(&tradeTIF, "tif", "GTC", "time in force for limit orders: GTC or DAY")
		c.Flags().StringVar(&tradeContract, "contract", "", "option contract id, e.g. O:NVDA250221C00139000")
		c.Flags().StringVarP(&tradeNote, "note", "n", "", "note recorded in the ledger")
	}

	cancelCmd.Flags().StringVarP(&cancelLimit, "limit", "l", "", "limit price of the order to cancel")
	cancelCmd.Flags().Int64VarP(&cancelQty, "qty", "q", 0, "quantity of the order to cancel")
	cancelCmd.Flags().BoolVar(&cancelAll, "all", false, "cancel every open order for the symbol")
	cancelCmd.Flags().Int64Var(&cancelID, "id", 0, "cancel one order by id")
	cancelCmd.Flags().StringVarP(&cancelNote, "note", "n", "", "note recorded in the ledger")
}

func buildRequest(args []string) (sim.OrderRequest, error) {
	qty, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return sim.OrderRequest{}, fmt.Errorf("qty %q: %w", args[1], err)
	}
	tif, err := orders.ParseTIF(tradeTIF)
	if err != nil {
		return sim.OrderRequest{}, err
	}

	req := sim.OrderRequest{
		Symbol:     args[0],
		Qty:        qty,
		Note:       tradeNote,
		TIF:        tif,
		ContractID: tradeContract,
	}

	switch {
	case tradeLimit != "":
		limit, err := parseDecimal("limit", tradeLimit)
		if err != nil {
			return req, err
		}
		req.Limit = &limit
	case tradePrice != "":
		price, err := parseDecimal("price", tradePrice)
		if err != nil {
			return req, err
		}
		req.Price = price
	default:
		return req, fmt.Errorf("one of --price or --limit is required")
	}
	return req, nil
}

func runTrade(args []string, side orders.Side) error {
	req, err := buildRequest(args)
	if err != nil {
		return err
	}

	return withEngine(func(e *sim.Engine) error {
		var id int64
		if side == orders.Buy {
			id, err = e.Buy(req)
		} else {
			id, err = e.Close(req)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", side, err)
		}

		if req.Limit != nil {
			fmt.Printf("✓ Order #%d placed: %s %d %s @ %s %s\n", id, side, req.Qty, instrumentOf(req), req.Limit, req.TIF)
		} else {
			fmt.Printf("✓ Order #%d executed: %s %d %s @ %s\n", id, side, req.Qty, instrumentOf(req), req.Price)
		}
		fmt.Printf("  Cash: %s\n", e.Balance().StringFixed(2))
		return nil
	})
}

func runCancel(cmd *cobra.Command, args []string) error {
	return withEngine(func(e *sim.Engine) error {
		var cancelled []orders.Order

		switch {
		case cancelID != 0:
			o, err := e.CancelOrder(cancelID, cancelNote)
			if err != nil {
				return err
			}
			cancelled = append(cancelled, o)

		case len(args) == 0:
			return fmt.Errorf("symbol is required unless --id is given")

		case cancelAll:
			all, err := e.CancelAll(args[0], cancelNote)
			if err != nil {
				return err
			}
			cancelled = all

		default:
			if cancelLimit == "" || cancelQty <= 0 {
				return fmt.Errorf("--limit and --qty are required, or use --all / --id")
			}
			limit, err := parseDecimal("limit", cancelLimit)
			if err != nil {
				return err
			}
			o, err := e.Cancel(args[0], limit, cancelQty, cancelNote)
			if err != nil {
				return err
			}
			cancelled = append(cancelled, o)
		}

		for _, o := range cancelled {
			fmt.Printf("✓ Cancelled %s\n", o)
		}
		return nil
	})
}

func instrumentOf(req sim.OrderRequest) string {
	if req.ContractID != "" {
		return req.ContractID
	}
	return req.Symbol
}
