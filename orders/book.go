package orders

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Book holds open orders in submission order and hands out order ids.
type Book struct {
	open   []Order
	nextID int64
}

// NewBook restores a book. nextID below 1, or not above the largest
// restored id, is raised so ids stay unique.
func NewBook(open []Order, nextID int64) *Book {
	if nextID < 1 {
		nextID = 1
	}
	b := &Book{open: make([]Order, 0, len(open))}
	for _, o := range open {
		if o.Status != "" && o.Status.Terminal() {
			continue
		}
		o.Status = Open
		b.open = append(b.open, o)
		if o.ID >= nextID {
			nextID = o.ID + 1
		}
	}
	b.nextID = nextID
	return b
}

// NextID is the id the next order will receive.
func (b *Book) NextID() int64 { return b.nextID }

// Allocate consumes and returns an order id.
func (b *Book) Allocate() int64 {
	id := b.nextID
	b.nextID++
	return id
}

// Submit assigns an id to o, marks it open and appends it.
func (b *Book) Submit(o Order) Order {
	o.ID = b.Allocate()
	o.Status = Open
	b.open = append(b.open, o)
	return o
}

// Get returns the open order with id.
func (b *Book) Get(id int64) (Order, bool) {
	for _, o := range b.open {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

// Resolve moves the open order with id to a terminal status and removes it.
func (b *Book) Resolve(id int64, status Status) (Order, error) {
	if !status.Terminal() {
		return Order{}, fmt.Errorf("resolve order %d to %q: status is not terminal", id, status)
	}
	for i, o := range b.open {
		if o.ID != id {
			continue
		}
		b.open = append(b.open[:i], b.open[i+1:]...)
		o.Status = status
		return o, nil
	}
	return Order{}, fmt.Errorf("order %d: %w", id, ErrOrderNotFound)
}

// FindMatch returns the first open order, in submission order, with exactly
// this symbol, limit and quantity.
func (b *Book) FindMatch(symbol string, limit decimal.Decimal, qty int64) (Order, bool) {
	for _, o := range b.open {
		if o.Symbol == symbol && o.Qty == qty && o.Limit.Equal(limit) {
			return o, true
		}
	}
	return Order{}, false
}

// ForSymbol returns open orders for symbol in submission order.
func (b *Book) ForSymbol(symbol string) []Order {
	var out []Order
	for _, o := range b.open {
		if o.Symbol == symbol {
			out = append(out, o)
		}
	}
	return out
}

// Open returns a copy of every open order in submission order.
func (b *Book) Open() []Order {
	out := make([]Order, len(b.open))
	copy(out, b.open)
	return out
}

// Len is the number of open orders.
func (b *Book) Len() int { return len(b.open) }
