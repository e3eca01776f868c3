// Package journal mirrors the engine's ledger entries and equity curve to
// an external sink for later review.
package journal

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/papertrader/ledger"
)

// EquitySnapshot is the account valuation after a tick.
type EquitySnapshot struct {
	Time         time.Time
	Cash         decimal.Decimal
	AccountValue decimal.Decimal
	PNL          decimal.Decimal
	PNLPercent   decimal.Decimal
}

type Journal interface {
	RecordEntry(ledger.Entry) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordEntry(ledger.Entry) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }

// Open builds a journal by type: "csv", "sqlite" or "none".
func Open(kind, entriesPath, equityPath, dbPath string) (Journal, error) {
	switch kind {
	case "csv":
		return NewCSV(entriesPath, equityPath)
	case "sqlite":
		return NewSQLite(dbPath)
	}
	return Nop{}, nil
}
