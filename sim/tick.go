package sim

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"

	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/ledger"
	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/orders"
)

// Tick advances the engine to now with the bars in snap. Open orders whose
// instrument is priced fill or expire, positions are marked, expired option
// positions are exercised or written off, and the state is persisted.
// Ticks must arrive in timestamp order; an older tick is ignored.
func (e *Engine) Tick(snap market.Snapshot, now time.Time) error {
	e.mu.Lock()

	if !e.lastTick.IsZero() && now.Before(e.lastTick) {
		last := e.lastTick
		e.mu.Unlock()
		logs.Warnf("tick at %s ignored: last tick was %s", now.Format(time.RFC3339), last.Format(time.RFC3339))
		return fmt.Errorf("tick at %s: %w", now.Format(time.RFC3339), ErrStaleTick)
	}
	e.lastTick = now

	mark := e.ledger.Len()
	e.resolved = e.resolved[:0]

	e.matchOrdersLocked(snap, now)
	e.markLocked(snap)
	e.settleOptionsLocked(snap, now)
	e.commitLocked(mark)

	pnl := ledger.ComputePNL(e.accountValueLocked(), e.acct.NetInvested())
	if err := e.journal.RecordEquity(journal.EquitySnapshot{
		Time:         now,
		Cash:         e.acct.Cash,
		AccountValue: e.accountValueLocked(),
		PNL:          pnl.Value,
		PNLPercent:   pnl.Percent,
	}); err != nil {
		logs.Warnf("journal equity: %+v", err)
	}

	listener := e.listener
	resolved := append([]orders.Order(nil), e.resolved...)
	e.mu.Unlock()

	if listener != nil {
		for _, o := range resolved {
			listener.OnOrderResolved(o)
		}
	}
	return nil
}

func (e *Engine) matchOrdersLocked(snap market.Snapshot, now time.Time) {
	for _, o := range e.orders.Open() {
		px, ok := orderPrice(snap, o)
		if !ok {
			continue
		}

		// A DAY order lives until the session close of the day it was placed.
		var closeAt time.Time
		if o.TIF == orders.Day {
			closeAt = e.sessionClose(o.CreatedAt)
			if now.After(closeAt) {
				e.expireLocked(o, now)
				continue
			}
		}

		if o.Side.Crosses(px, o.Limit) {
			err := e.fillLocked(o, now)
			if err == nil {
				continue
			}
			logs.Warnf("order %s crossed at %s but did not fill: %v", o, px, err)
		}

		if o.TIF == orders.Day && !now.Before(closeAt) {
			e.expireLocked(o, now)
		}
	}
}

// orderPrice looks up an option order by contract id first, then by symbol.
// Falling back to the underlying's price is logged.
func orderPrice(snap market.Snapshot, o orders.Order) (decimal.Decimal, bool) {
	if !o.IsOption() {
		return snap.Price(o.Symbol)
	}
	if px, ok := snap.Price(o.ContractID); ok {
		return px, true
	}
	px, ok := snap.Price(o.Symbol)
	if ok {
		logs.Warnf("order %d: no price for %s, using underlying %s at %s", o.ID, o.ContractID, o.Symbol, px)
	}
	return px, ok
}

// fillLocked executes o at its limit. Cash, position and order state change
// together or not at all.
func (e *Engine) fillLocked(o orders.Order, now time.Time) error {
	qty := decimal.NewFromInt(o.Qty)
	var kind ledger.Kind

	switch o.Side {
	case orders.Buy:
		if o.IsOption() {
			if _, err := market.ParseContract(o.ContractID); err != nil {
				return err
			}
		}
		note := fmt.Sprintf("Limit Buy executed for order %d", o.ID)
		if err := e.acct.Debit(now, o.Notional(), note); err != nil {
			return err
		}
		if o.IsOption() {
			_ = e.book.BuyOption(o.ContractID, o.Qty, o.Limit)
		} else {
			_ = e.book.Buy(o.Symbol, o.Qty, o.Limit)
		}
		kind = ledger.KindLimitBuyFilled

	case orders.Sell:
		var err error
		if o.IsOption() {
			err = e.book.SellOption(o.ContractID, o.Qty)
		} else {
			err = e.book.Sell(o.Symbol, o.Qty)
		}
		if err != nil {
			return err
		}
		note := fmt.Sprintf("Limit Sell executed for order %d", o.ID)
		e.creditProceedsLocked(now, o.Limit.Mul(qty), note)
		kind = ledger.KindLimitSellFilled

	default:
		return fmt.Errorf("order %d has unknown side %q", o.ID, o.Side)
	}

	filled, _ := e.orders.Resolve(o.ID, orders.Filled)
	e.appendLocked(ledger.Entry{
		Time:       now,
		Kind:       kind,
		OrderID:    o.ID,
		Symbol:     o.Symbol,
		ContractID: o.ContractID,
		Qty:        o.Qty,
		Price:      o.Limit,
		Note:       o.Note,
	})
	e.resolved = append(e.resolved, filled)
	logs.Infof("order filled: %s", filled)
	return nil
}

func (e *Engine) expireLocked(o orders.Order, now time.Time) {
	expired, _ := e.orders.Resolve(o.ID, orders.Expired)
	e.appendLocked(ledger.Entry{
		Time:       now,
		Kind:       ledger.KindOrderExpired,
		OrderID:    o.ID,
		Symbol:     o.Symbol,
		ContractID: o.ContractID,
		Qty:        o.Qty,
		Price:      o.Limit,
		Note:       "DAY order expired at session close",
	})
	e.resolved = append(e.resolved, expired)
	logs.Infof("order expired: %s", expired)
}

func (e *Engine) markLocked(snap market.Snapshot) {
	for _, sym := range e.book.Symbols() {
		if px, ok := snap.Price(sym); ok {
			e.book.Mark(sym, px)
		}
	}
	for _, cid := range e.book.Contracts() {
		if px, ok := snap.Price(cid); ok {
			e.book.MarkOption(cid, px)
		}
	}
}

// settleOptionsLocked exercises in-the-money calls and writes off every
// other option whose expiration has passed. A call that cannot be paid for
// stays held and is retried on the next tick.
func (e *Engine) settleOptionsLocked(snap market.Snapshot, now time.Time) {
	for _, cid := range e.book.Contracts() {
		c, err := market.ParseContract(cid)
		if err != nil {
			logs.Warnf("option position %s skipped: %v", cid, err)
			continue
		}
		if now.Before(c.ExpiresAt(e.loc)) {
			continue
		}

		pos, _ := e.book.Option(cid)
		underlying, priced := snap.Price(c.Underlying)

		if c.Right == market.Call && priced && underlying.GreaterThan(c.Strike) {
			if err := e.exerciseLocked(cid, c, pos.Qty, now); err != nil {
				logs.Warnf("exercise %s: %v", cid, err)
			}
			continue
		}

		e.book.RemoveOption(cid)
		e.appendLocked(ledger.Entry{
			Time:       now,
			Kind:       ledger.KindOptionExpired,
			OrderID:    e.orders.Allocate(),
			Symbol:     c.Underlying,
			ContractID: cid,
			Qty:        pos.Qty,
			Price:      decimal.Zero,
			Note:       "Option expired worthless",
		})
		logs.Infof("option %s expired worthless", cid)
	}
}

func (e *Engine) exerciseLocked(cid string, c market.Contract, contracts int64, now time.Time) error {
	shares := contracts * c.Multiplier
	cost := c.Strike.Mul(decimal.NewFromInt(shares))
	note := fmt.Sprintf("Exercise %d %s", contracts, cid)
	if err := e.acct.Debit(now, cost, note); err != nil {
		return err
	}

	_ = e.book.Buy(c.Underlying, shares, c.Strike)
	e.book.RemoveOption(cid)
	e.appendLocked(ledger.Entry{
		Time:       now,
		Kind:       ledger.KindAssignment,
		OrderID:    e.orders.Allocate(),
		Symbol:     c.Underlying,
		ContractID: cid,
		Qty:        shares,
		Price:      c.Strike,
		Note:       note,
	})
	logs.Infof("option %s exercised: %d %s @ %s", cid, shares, c.Underlying, c.Strike)
	return nil
}
