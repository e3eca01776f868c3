// Package ledger holds the cash account, its transaction log, and the
// append-only audit ledger of every state-changing event.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// TxKind is the direction of a cash transaction.
type TxKind string

const (
	TxCredit TxKind = "credit"
	TxDebit  TxKind = "debit"
)

// Transaction is one cash movement. It is never modified once appended.
type Transaction struct {
	Time   time.Time       `json:"timestamp"`
	Kind   TxKind          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

// Account is the cash balance plus the transactions that produced it.
type Account struct {
	Cash         decimal.Decimal
	Transactions []Transaction
}

// Credit adds amount to cash.
func (a *Account) Credit(at time.Time, amount decimal.Decimal, note string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("credit %s: %w", amount, ErrInvalidAmount)
	}
	a.Cash = a.Cash.Add(amount)
	a.Transactions = append(a.Transactions, Transaction{Time: at, Kind: TxCredit, Amount: amount, Note: note})
	return nil
}

// Debit removes amount from cash. Nothing changes if cash would go negative.
func (a *Account) Debit(at time.Time, amount decimal.Decimal, note string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("debit %s: %w", amount, ErrInvalidAmount)
	}
	if a.Cash.LessThan(amount) {
		return fmt.Errorf("debit %s with balance %s: %w", amount, a.Cash, ErrInsufficientFunds)
	}
	a.Cash = a.Cash.Sub(amount)
	a.Transactions = append(a.Transactions, Transaction{Time: at, Kind: TxDebit, Amount: amount, Note: note})
	return nil
}

// NetInvested is total credits minus total debits.
func (a *Account) NetInvested() decimal.Decimal {
	net := decimal.Zero
	for _, tx := range a.Transactions {
		switch tx.Kind {
		case TxCredit:
			net = net.Add(tx.Amount)
		case TxDebit:
			net = net.Sub(tx.Amount)
		}
	}
	return net
}

// PNL is profit and loss measured against net invested cash.
type PNL struct {
	Value   decimal.Decimal
	Percent decimal.Decimal
}

// ComputePNL values accountValue against net invested cash. Percent is zero
// when nothing is invested.
func ComputePNL(accountValue, netInvested decimal.Decimal) PNL {
	value := accountValue.Sub(netInvested)
	if netInvested.IsZero() {
		return PNL{Value: value, Percent: decimal.Zero}
	}
	return PNL{
		Value:   value,
		Percent: value.Div(netInvested).Mul(decimal.NewFromInt(100)),
	}
}
