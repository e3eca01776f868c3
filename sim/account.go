package sim

import (
	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"

	"github.com/rustyeddy/papertrader/ledger"
)

// Credit deposits amount.
func (e *Engine) Credit(amount decimal.Decimal, note string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	at := e.now()
	if err := e.acct.Credit(at, amount, note); err != nil {
		logs.Warnf("credit rejected: %v", err)
		return err
	}

	mark := e.ledger.Len()
	e.appendLocked(ledger.Entry{Time: at, Kind: ledger.KindCredit, Price: amount, Note: note})
	e.commitLocked(mark)
	return nil
}

// Debit withdraws amount. Cash never goes negative.
func (e *Engine) Debit(amount decimal.Decimal, note string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	at := e.now()
	if err := e.acct.Debit(at, amount, note); err != nil {
		logs.Warnf("debit rejected: %v", err)
		return err
	}

	mark := e.ledger.Len()
	e.appendLocked(ledger.Entry{Time: at, Kind: ledger.KindDebit, Price: amount, Note: note})
	e.commitLocked(mark)
	return nil
}

// Balance is the current cash balance.
func (e *Engine) Balance() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acct.Cash
}

// AccountValue is cash plus every position valued at its mark, or at
// average cost when it has never been marked.
func (e *Engine) AccountValue() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.accountValueLocked()
}

func (e *Engine) accountValueLocked() decimal.Decimal {
	return e.acct.Cash.Add(e.book.Value())
}

// AccountPNL measures account value against total credits minus debits.
func (e *Engine) AccountPNL() ledger.PNL {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ledger.ComputePNL(e.accountValueLocked(), e.acct.NetInvested())
}

// Transactions returns a copy of the cash transaction log.
func (e *Engine) Transactions() []ledger.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]ledger.Transaction(nil), e.acct.Transactions...)
}

// Ledger returns a copy of the audit trail.
func (e *Engine) Ledger() []ledger.Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Entries()
}
