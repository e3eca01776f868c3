package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/sim"
)

var creditCmd = &cobra.Command{
	Use:   "credit <amount>",
	Short: "Deposit simulated cash",
	Args:  cobra.ExactArgs(1),
	RunE:  runCredit,
}

var debitCmd = &cobra.Command{
	Use:   "debit <amount>",
	Short: "Withdraw simulated cash",
	Args:  cobra.ExactArgs(1),
	RunE:  runDebit,
}

var pnlCmd = &cobra.Command{
	Use:   "pnl",
	Short: "Show cash, account value and profit and loss",
	Args:  cobra.NoArgs,
	RunE:  runPNL,
}

var cashNote string

func init() {
	rootCmd.AddCommand(creditCmd)
	rootCmd.AddCommand(debitCmd)
	rootCmd.AddCommand(pnlCmd)

	creditCmd.Flags().StringVarP(&cashNote, "note", "n", "", "note recorded with the transaction")
	debitCmd.Flags().StringVarP(&cashNote, "note", "n", "", "note recorded with the transaction")
}

func runCredit(cmd *cobra.Command, args []string) error {
	amount, err := parseDecimal("amount", args[0])
	if err != nil {
		return err
	}
	return withEngine(func(e *sim.Engine) error {
		if err := e.Credit(amount, cashNote); err != nil {
			return fmt.Errorf("credit: %w", err)
		}
		fmt.Printf("✓ Credited %s, cash %s\n", amount.StringFixed(2), e.Balance().StringFixed(2))
		return nil
	})
}

func runDebit(cmd *cobra.Command, args []string) error {
	amount, err := parseDecimal("amount", args[0])
	if err != nil {
		return err
	}
	return withEngine(func(e *sim.Engine) error {
		if err := e.Debit(amount, cashNote); err != nil {
			return fmt.Errorf("debit: %w", err)
		}
		fmt.Printf("✓ Debited %s, cash %s\n", amount.StringFixed(2), e.Balance().StringFixed(2))
		return nil
	})
}

func runPNL(cmd *cobra.Command, args []string) error {
	return withEngine(func(e *sim.Engine) error {
		pnl := e.AccountPNL()
		fmt.Printf("Cash:          %s\n", e.Balance().StringFixed(2))
		fmt.Printf("Account value: %s\n", e.AccountValue().StringFixed(2))
		fmt.Printf("P/L:           %s (%s%%)\n", pnl.Value.StringFixed(2), pnl.Percent.StringFixed(2))
		return nil
	})
}
