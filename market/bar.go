package market

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one OHLCV observation for a symbol or option contract.
type Bar struct {
	Symbol string
	Time   time.Time

	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume int64
}

// Snapshot is the set of bars delivered together in one tick, keyed by
// symbol. Option contracts may appear under their contract identifier.
type Snapshot map[string]Bar

// NewSnapshot builds a snapshot from bars; a later bar for the same symbol
// replaces an earlier one.
func NewSnapshot(bars ...Bar) Snapshot {
	s := make(Snapshot, len(bars))
	for _, b := range bars {
		s[b.Symbol] = b
	}
	return s
}

// Prices builds a snapshot carrying only closing prices.
func Prices(closes map[string]float64) Snapshot {
	s := make(Snapshot, len(closes))
	for sym, c := range closes {
		s[sym] = Bar{Symbol: sym, Close: decimal.NewFromFloat(c)}
	}
	return s
}

// Price returns the closing price for symbol.
func (s Snapshot) Price(symbol string) (decimal.Decimal, bool) {
	b, ok := s[symbol]
	if !ok {
		return decimal.Zero, false
	}
	return b.Close, true
}

// Symbols returns the snapshot's keys in sorted order.
func (s Snapshot) Symbols() []string {
	out := make([]string, 0, len(s))
	for sym := range s {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}
