package sim

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"

	"github.com/rustyeddy/papertrader/ledger"
	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/orders"
)

// OrderRequest describes a buy or a close. A nil Limit executes immediately
// at Price; otherwise a resting limit order is created and Price is unused.
// ContractID selects an option contract instead of the Symbol's shares.
type OrderRequest struct {
	Symbol     string
	Time       time.Time
	Price      decimal.Decimal
	Qty        int64
	Note       string
	Limit      *decimal.Decimal
	TIF        orders.TIF
	ContractID string
}

func (r *OrderRequest) validate() error {
	if r.Qty <= 0 {
		return fmt.Errorf("qty %d: %w", r.Qty, ErrInvalidQuantity)
	}
	if r.ContractID != "" {
		c, err := market.ParseContract(r.ContractID)
		if err != nil {
			return err
		}
		if r.Symbol == "" {
			r.Symbol = c.Underlying
		}
	}
	if r.Symbol == "" {
		return ErrMissingSymbol
	}
	if r.Limit != nil && !r.Limit.IsPositive() {
		return fmt.Errorf("limit %s: %w", r.Limit, ErrInvalidAmount)
	}
	if r.TIF == "" {
		r.TIF = orders.GTC
	}
	return nil
}

// Buy purchases shares or contracts, or rests a limit buy. It returns the
// order id consumed by the request.
func (e *Engine) Buy(req OrderRequest) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := req.validate(); err != nil {
		logs.Warnf("buy %s rejected: %v", req.Symbol, err)
		return 0, err
	}
	if req.Time.IsZero() {
		req.Time = e.now()
	}

	mark := e.ledger.Len()
	if req.Limit != nil {
		o := e.submitLocked(req, orders.Buy)
		e.appendLocked(ledger.Entry{
			Time:       req.Time,
			Kind:       ledger.KindLimitBuyOrder,
			OrderID:    o.ID,
			Symbol:     o.Symbol,
			ContractID: o.ContractID,
			Qty:        o.Qty,
			Price:      o.Limit,
			Note:       o.Note,
		})
		e.commitLocked(mark)
		logs.Infof("limit order placed: %s", o)
		return o.ID, nil
	}

	cost := req.Price.Mul(decimal.NewFromInt(req.Qty))
	if err := e.acct.Debit(req.Time, cost, buyNote(req)); err != nil {
		logs.Warnf("buy %d %s @ %s rejected: %v", req.Qty, instrument(req), req.Price, err)
		return 0, err
	}

	kind := ledger.KindBuy
	if req.ContractID != "" {
		kind = ledger.KindOptionBuy
		// The contract id was validated above.
		_ = e.book.BuyOption(req.ContractID, req.Qty, req.Price)
	} else {
		_ = e.book.Buy(req.Symbol, req.Qty, req.Price)
	}

	id := e.orders.Allocate()
	e.appendLocked(ledger.Entry{
		Time:       req.Time,
		Kind:       kind,
		OrderID:    id,
		Symbol:     req.Symbol,
		ContractID: req.ContractID,
		Qty:        req.Qty,
		Price:      req.Price,
		Note:       req.Note,
	})
	e.commitLocked(mark)
	logs.Infof("bought %d %s @ %s", req.Qty, instrument(req), req.Price)
	return id, nil
}

// Close sells held shares or contracts, or rests a limit sell. A limit
// close still requires the position to be held now; it is checked again at
// fill time.
func (e *Engine) Close(req OrderRequest) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := req.validate(); err != nil {
		logs.Warnf("close %s rejected: %v", req.Symbol, err)
		return 0, err
	}
	if req.Time.IsZero() {
		req.Time = e.now()
	}

	held := e.heldLocked(req.Symbol, req.ContractID)
	if held < req.Qty {
		err := fmt.Errorf("close %d %s holding %d: %w", req.Qty, instrument(req), held, ErrInsufficientPosition)
		logs.Warnf("close rejected: %v", err)
		return 0, err
	}

	mark := e.ledger.Len()
	if req.Limit != nil {
		o := e.submitLocked(req, orders.Sell)
		e.appendLocked(ledger.Entry{
			Time:       req.Time,
			Kind:       ledger.KindLimitSellOrder,
			OrderID:    o.ID,
			Symbol:     o.Symbol,
			ContractID: o.ContractID,
			Qty:        o.Qty,
			Price:      o.Limit,
			Note:       o.Note,
		})
		e.commitLocked(mark)
		logs.Infof("limit order placed: %s", o)
		return o.ID, nil
	}

	kind := ledger.KindSell
	if req.ContractID != "" {
		kind = ledger.KindOptionSell
		_ = e.book.SellOption(req.ContractID, req.Qty)
	} else {
		_ = e.book.Sell(req.Symbol, req.Qty)
	}
	e.creditProceedsLocked(req.Time, req.Price.Mul(decimal.NewFromInt(req.Qty)), sellNote(req))

	id := e.orders.Allocate()
	e.appendLocked(ledger.Entry{
		Time:       req.Time,
		Kind:       kind,
		OrderID:    id,
		Symbol:     req.Symbol,
		ContractID: req.ContractID,
		Qty:        req.Qty,
		Price:      req.Price,
		Note:       req.Note,
	})
	e.commitLocked(mark)
	logs.Infof("sold %d %s @ %s", req.Qty, instrument(req), req.Price)
	return id, nil
}

// Cancel cancels the first open order, in submission order, with exactly
// this symbol, limit and quantity.
func (e *Engine) Cancel(symbol string, limit decimal.Decimal, qty int64, note string) (orders.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.orders.FindMatch(symbol, limit, qty)
	if !ok {
		err := fmt.Errorf("cancel %d %s @ %s: %w", qty, symbol, limit, ErrOrderNotFound)
		logs.Warnf("%v", err)
		return orders.Order{}, err
	}

	mark := e.ledger.Len()
	o = e.cancelLocked(o.ID, note)
	e.commitLocked(mark)
	return o, nil
}

// CancelOrder cancels the open order with id.
func (e *Engine) CancelOrder(id int64, note string) (orders.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.orders.Get(id); !ok {
		err := fmt.Errorf("cancel order %d: %w", id, ErrOrderNotFound)
		logs.Warnf("%v", err)
		return orders.Order{}, err
	}

	mark := e.ledger.Len()
	o := e.cancelLocked(id, note)
	e.commitLocked(mark)
	return o, nil
}

// CancelAll cancels every open order for symbol.
func (e *Engine) CancelAll(symbol, note string) ([]orders.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	open := e.orders.ForSymbol(symbol)
	if len(open) == 0 {
		err := fmt.Errorf("cancel all %s: %w", symbol, ErrOrderNotFound)
		logs.Warnf("%v", err)
		return nil, err
	}

	mark := e.ledger.Len()
	cancelled := make([]orders.Order, 0, len(open))
	for _, o := range open {
		cancelled = append(cancelled, e.cancelLocked(o.ID, note))
	}
	e.commitLocked(mark)
	return cancelled, nil
}

// OpenOrders returns the open orders in submission order.
func (e *Engine) OpenOrders() []orders.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.orders.Open()
}

func (e *Engine) cancelLocked(id int64, note string) orders.Order {
	o, _ := e.orders.Resolve(id, orders.Cancelled)
	e.appendLocked(ledger.Entry{
		Kind:       ledger.KindCancel,
		OrderID:    o.ID,
		Symbol:     o.Symbol,
		ContractID: o.ContractID,
		Qty:        o.Qty,
		Price:      o.Limit,
		Note:       note,
	})
	logs.Infof("order cancelled: %s", o)
	return o
}

func (e *Engine) submitLocked(req OrderRequest, side orders.Side) orders.Order {
	return e.orders.Submit(orders.Order{
		Symbol:     req.Symbol,
		Side:       side,
		Qty:        req.Qty,
		Limit:      *req.Limit,
		TIF:        req.TIF,
		ContractID: req.ContractID,
		CreatedAt:  req.Time,
		Note:       req.Note,
	})
}

func (e *Engine) heldLocked(symbol, contractID string) int64 {
	if contractID != "" {
		return e.book.HeldOption(contractID)
	}
	return e.book.Held(symbol)
}

// creditProceedsLocked credits sale proceeds. A zero-priced sale moves no
// cash.
func (e *Engine) creditProceedsLocked(at time.Time, amount decimal.Decimal, note string) {
	if !amount.IsPositive() {
		return
	}
	_ = e.acct.Credit(at, amount, note)
}

func instrument(req OrderRequest) string {
	if req.ContractID != "" {
		return req.ContractID
	}
	return req.Symbol
}

func buyNote(req OrderRequest) string {
	return fmt.Sprintf("Buy %d %s @ %s", req.Qty, instrument(req), req.Price)
}

func sellNote(req OrderRequest) string {
	return fmt.Sprintf("Sell %d %s @ %s", req.Qty, instrument(req), req.Price)
}
