package portfolio

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/papertrader/market"
)

// AssetType distinguishes equity rows from option rows in a Holding.
type AssetType string

const (
	AssetStock  AssetType = "stock"
	AssetOption AssetType = "option"
)

// Holding is a read-only view of one position with its valuation.
type Holding struct {
	Type       AssetType
	Symbol     string // equity symbol or option underlying
	ContractID string

	Qty           int64
	AvgCost       decimal.Decimal
	CurrentPrice  decimal.Decimal
	MarketValue   decimal.Decimal
	UnrealizedPL  decimal.Decimal
	UnrealizedPct decimal.Decimal

	Expiration time.Time
	Right      market.Right
	Strike     decimal.Decimal
	Multiplier int64
}

func newHolding(p Position) Holding {
	mv := p.MarketValue()
	basis := p.CostBasis()
	pl := mv.Sub(basis)
	pct := decimal.Zero
	if !basis.IsZero() {
		pct = pl.Div(basis).Mul(decimal.NewFromInt(100))
	}
	return Holding{
		Qty:           p.Qty,
		AvgCost:       p.AvgCost,
		CurrentPrice:  p.Mark(),
		MarketValue:   mv,
		UnrealizedPL:  pl,
		UnrealizedPct: pct,
	}
}

// Holdings lists equities (by symbol) followed by options (by contract id).
func (b *Book) Holdings() []Holding {
	out := make([]Holding, 0, len(b.equities)+len(b.options))
	for _, sym := range b.Symbols() {
		h := newHolding(*b.equities[sym])
		h.Type = AssetStock
		h.Symbol = sym
		out = append(out, h)
	}
	for _, cid := range b.Contracts() {
		p := b.options[cid]
		h := newHolding(p.Position)
		h.Type = AssetOption
		h.Symbol = p.Underlying
		h.ContractID = cid
		h.Expiration = p.Expiration
		h.Right = p.Right
		h.Strike = p.Strike
		h.Multiplier = p.Multiplier
		out = append(out, h)
	}
	return out
}
