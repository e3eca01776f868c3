// Package orders is the registry of resting limit orders.
package orders

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidTIF    = errors.New("invalid time in force")
)

// Side picks the order variant: a limit buy or a limit sell.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Crosses reports whether market satisfies limit for this side. Buys fill
// at or below the limit, sells at or above it.
func (s Side) Crosses(market, limit decimal.Decimal) bool {
	switch s {
	case Buy:
		return market.LessThanOrEqual(limit)
	case Sell:
		return market.GreaterThanOrEqual(limit)
	}
	return false
}

// TIF is the order's time in force.
type TIF string

const (
	GTC TIF = "GTC"
	Day TIF = "DAY"
)

// ParseTIF accepts GTC or DAY in any case; empty means GTC.
func ParseTIF(s string) (TIF, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(GTC):
		return GTC, nil
	case string(Day):
		return Day, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTIF, s)
}

// Status is the order lifecycle state. Every status but Open is terminal.
type Status string

const (
	Open      Status = "open"
	Filled    Status = "filled"
	Cancelled Status = "cancelled"
	Expired   Status = "expired"
)

func (s Status) Terminal() bool { return s != Open }

// Order is a resting limit order. ContractID is set for option orders.
type Order struct {
	ID         int64           `json:"order_id"`
	Symbol     string          `json:"symbol"`
	Side       Side            `json:"side"`
	Qty        int64           `json:"qty"`
	Limit      decimal.Decimal `json:"limit"`
	TIF        TIF             `json:"tif"`
	ContractID string          `json:"contract_ticker,omitempty"`
	CreatedAt  time.Time       `json:"datetime"`
	Note       string          `json:"note,omitempty"`
	Status     Status          `json:"status"`
}

// IsOption reports whether the order trades an option contract.
func (o Order) IsOption() bool { return o.ContractID != "" }

// Instrument is the contract id for option orders, otherwise the symbol.
func (o Order) Instrument() string {
	if o.IsOption() {
		return o.ContractID
	}
	return o.Symbol
}

// Notional is qty × limit.
func (o Order) Notional() decimal.Decimal {
	return o.Limit.Mul(decimal.NewFromInt(o.Qty))
}

func (o Order) String() string {
	return fmt.Sprintf("#%d %s %d %s @ %s %s", o.ID, o.Side, o.Qty, o.Instrument(), o.Limit, o.TIF)
}
