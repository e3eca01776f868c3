// Package portfolio keeps weighted-average-cost positions for equities and
// option contracts.
package portfolio

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/papertrader/market"
)

var (
	ErrInsufficientPosition = errors.New("insufficient position")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
)

// Position is a long holding with its average cost and last mark.
type Position struct {
	Qty          int64            `json:"qty"`
	AvgCost      decimal.Decimal  `json:"average_cost"`
	CurrentPrice *decimal.Decimal `json:"current_price,omitempty"`
}

// Mark returns the current price, or the average cost when unmarked.
func (p Position) Mark() decimal.Decimal {
	if p.CurrentPrice != nil {
		return *p.CurrentPrice
	}
	return p.AvgCost
}

// MarketValue is qty times mark.
func (p Position) MarketValue() decimal.Decimal {
	return p.Mark().Mul(decimal.NewFromInt(p.Qty))
}

// CostBasis is qty times average cost.
func (p Position) CostBasis() decimal.Decimal {
	return p.AvgCost.Mul(decimal.NewFromInt(p.Qty))
}

// add merges qty at price into the position.
func (p *Position) add(qty int64, price decimal.Decimal) {
	newQty := p.Qty + qty
	if newQty == 0 {
		p.AvgCost = decimal.Zero
	} else {
		total := p.AvgCost.Mul(decimal.NewFromInt(p.Qty)).Add(price.Mul(decimal.NewFromInt(qty)))
		p.AvgCost = total.Div(decimal.NewFromInt(newQty))
	}
	p.Qty = newQty
	px := price
	p.CurrentPrice = &px
}

// OptionPosition is a Position in one option contract.
type OptionPosition struct {
	Position
	Underlying string          `json:"underlying"`
	Expiration time.Time       `json:"expiration"`
	Right      market.Right    `json:"option_type"`
	Strike     decimal.Decimal `json:"strike"`
	Multiplier int64           `json:"multiplier"`
}

// Book holds equity positions by symbol and option positions by contract id.
type Book struct {
	equities map[string]*Position
	options  map[string]*OptionPosition
}

func NewBook() *Book {
	return &Book{
		equities: make(map[string]*Position),
		options:  make(map[string]*OptionPosition),
	}
}

// Restore rebuilds a book from persisted positions. Entries with a
// non-positive quantity are dropped.
func Restore(equities map[string]Position, options map[string]OptionPosition) *Book {
	b := NewBook()
	for sym, p := range equities {
		if p.Qty <= 0 {
			continue
		}
		p := p
		b.equities[sym] = &p
	}
	for cid, p := range options {
		if p.Qty <= 0 {
			continue
		}
		p := p
		b.options[cid] = &p
	}
	return b
}

// Buy merges qty shares of symbol at price.
func (b *Book) Buy(symbol string, qty int64, price decimal.Decimal) error {
	if qty <= 0 {
		return fmt.Errorf("buy %d %s: %w", qty, symbol, ErrInvalidQuantity)
	}
	p, ok := b.equities[symbol]
	if !ok {
		p = &Position{}
		b.equities[symbol] = p
	}
	p.add(qty, price)
	return nil
}

// Sell removes qty shares of symbol. Average cost is unchanged; the
// position is deleted when it reaches zero.
func (b *Book) Sell(symbol string, qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("sell %d %s: %w", qty, symbol, ErrInvalidQuantity)
	}
	p, ok := b.equities[symbol]
	if !ok || p.Qty < qty {
		return fmt.Errorf("sell %d %s holding %d: %w", qty, symbol, b.Held(symbol), ErrInsufficientPosition)
	}
	p.Qty -= qty
	if p.Qty == 0 {
		delete(b.equities, symbol)
	}
	return nil
}

// BuyOption merges qty contracts of contractID at price. The identifier
// must decode.
func (b *Book) BuyOption(contractID string, qty int64, price decimal.Decimal) error {
	if qty <= 0 {
		return fmt.Errorf("buy %d %s: %w", qty, contractID, ErrInvalidQuantity)
	}
	p, ok := b.options[contractID]
	if !ok {
		c, err := market.ParseContract(contractID)
		if err != nil {
			return err
		}
		p = &OptionPosition{
			Underlying: c.Underlying,
			Expiration: c.Expiration,
			Right:      c.Right,
			Strike:     c.Strike,
			Multiplier: c.Multiplier,
		}
		b.options[contractID] = p
	}
	p.add(qty, price)
	return nil
}

// SellOption removes qty contracts of contractID.
func (b *Book) SellOption(contractID string, qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("sell %d %s: %w", qty, contractID, ErrInvalidQuantity)
	}
	p, ok := b.options[contractID]
	if !ok || p.Qty < qty {
		return fmt.Errorf("sell %d %s holding %d: %w", qty, contractID, b.HeldOption(contractID), ErrInsufficientPosition)
	}
	p.Qty -= qty
	if p.Qty == 0 {
		delete(b.options, contractID)
	}
	return nil
}

// RemoveOption drops a contract position entirely.
func (b *Book) RemoveOption(contractID string) {
	delete(b.options, contractID)
}

// Held is the share count for symbol.
func (b *Book) Held(symbol string) int64 {
	if p, ok := b.equities[symbol]; ok {
		return p.Qty
	}
	return 0
}

// HeldOption is the contract count for contractID.
func (b *Book) HeldOption(contractID string) int64 {
	if p, ok := b.options[contractID]; ok {
		return p.Qty
	}
	return 0
}

// Mark sets the current price of an equity position, if held.
func (b *Book) Mark(symbol string, price decimal.Decimal) {
	if p, ok := b.equities[symbol]; ok {
		px := price
		p.CurrentPrice = &px
	}
}

// MarkOption sets the current price of an option position, if held.
func (b *Book) MarkOption(contractID string, price decimal.Decimal) {
	if p, ok := b.options[contractID]; ok {
		px := price
		p.CurrentPrice = &px
	}
}

// Equity returns a copy of the position for symbol.
func (b *Book) Equity(symbol string) (Position, bool) {
	p, ok := b.equities[symbol]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// Option returns a copy of the position for contractID.
func (b *Book) Option(contractID string) (OptionPosition, bool) {
	p, ok := b.options[contractID]
	if !ok {
		return OptionPosition{}, false
	}
	return *p, true
}

// Equities returns a copy of every equity position.
func (b *Book) Equities() map[string]Position {
	out := make(map[string]Position, len(b.equities))
	for sym, p := range b.equities {
		out[sym] = *p
	}
	return out
}

// Options returns a copy of every option position.
func (b *Book) Options() map[string]OptionPosition {
	out := make(map[string]OptionPosition, len(b.options))
	for cid, p := range b.options {
		out[cid] = *p
	}
	return out
}

// Symbols returns held equity symbols, sorted.
func (b *Book) Symbols() []string {
	return sortedKeys(b.equities)
}

// Contracts returns held contract ids, sorted.
func (b *Book) Contracts() []string {
	return sortedKeys(b.options)
}

// Value is Σ qty × mark across equities and options.
func (b *Book) Value() decimal.Decimal {
	total := decimal.Zero
	for _, p := range b.equities {
		total = total.Add(p.MarketValue())
	}
	for _, p := range b.options {
		total = total.Add(p.MarketValue())
	}
	return total
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
