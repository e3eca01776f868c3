package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/papertrader/pkg/id"
)

// Kind classifies a ledger entry.
type Kind string

const (
	KindCredit          Kind = "credit"
	KindDebit           Kind = "debit"
	KindBuy             Kind = "buy"
	KindSell            Kind = "sell"
	KindOptionBuy       Kind = "option_buy"
	KindOptionSell      Kind = "option_sell"
	KindLimitBuyOrder   Kind = "limit_buy_order"
	KindLimitSellOrder  Kind = "limit_sell_order"
	KindLimitBuyFilled  Kind = "limit_buy_filled"
	KindLimitSellFilled Kind = "limit_sell_filled"
	KindCancel          Kind = "cancel"
	KindOrderExpired    Kind = "order_expired"
	KindAssignment      Kind = "option_assignment"
	KindOptionExpired   Kind = "option_expired"
)

// Entry is one audit record. OrderID is zero for events with no order.
type Entry struct {
	ID         string          `json:"id"`
	Time       time.Time       `json:"datetime"`
	Kind       Kind            `json:"type"`
	OrderID    int64           `json:"order_id,omitempty"`
	Symbol     string          `json:"symbol,omitempty"`
	ContractID string          `json:"contract_ticker,omitempty"`
	Qty        int64           `json:"qty,omitempty"`
	Price      decimal.Decimal `json:"price"`
	Note       string          `json:"note,omitempty"`
}

// Ledger is the append-only audit trail.
type Ledger struct {
	entries []Entry
}

// NewLedger wraps previously persisted entries.
func NewLedger(entries []Entry) *Ledger {
	return &Ledger{entries: entries}
}

// Append stamps e with an ID when it has none and records it.
func (l *Ledger) Append(e Entry) Entry {
	if e.ID == "" {
		e.ID = id.At(e.Time)
	}
	l.entries = append(l.entries, e)
	return e
}

// Len is the number of recorded entries.
func (l *Ledger) Len() int { return len(l.entries) }

// Entries returns a copy of the trail.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Since returns a copy of the entries recorded at or after index n.
func (l *Ledger) Since(n int) []Entry {
	if n >= len(l.entries) {
		return nil
	}
	if n < 0 {
		n = 0
	}
	out := make([]Entry, len(l.entries)-n)
	copy(out, l.entries[n:])
	return out
}
