// Package sim is the paper-trading engine. An Engine owns the cash account,
// the audit ledger, the position book and the open order book, and advances
// them on direct calls and on market ticks. Every mutation is persisted
// through a store.Store before the call returns.
package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/yanun0323/logs"

	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/ledger"
	"github.com/rustyeddy/papertrader/orders"
	"github.com/rustyeddy/papertrader/portfolio"
	"github.com/rustyeddy/papertrader/store"
)

type Engine struct {
	mu      sync.Mutex
	store   store.Store
	journal journal.Journal

	loc        *time.Location
	closeHour  int
	closeMin   int
	clock      func() time.Time
	listener   OrderListener
	resolved   []orders.Order
	lastTick   time.Time
	persistErr error

	acct   ledger.Account
	ledger *ledger.Ledger
	book   *portfolio.Book
	orders *orders.Book
}

// OrderListener is notified when the engine fills or expires an order
// during a tick. It is called after the engine lock is released.
type OrderListener interface {
	OnOrderResolved(o orders.Order)
}

// Option configures an Engine.
type Option func(*Engine)

// WithJournal mirrors every new ledger entry, and an equity snapshot per
// tick, into j.
func WithJournal(j journal.Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithLocation sets the market session time zone. Default is time.Local.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

// WithSessionClose sets the wall-clock time at which DAY orders expire.
// Default is 16:00.
func WithSessionClose(hour, minute int) Option {
	return func(e *Engine) {
		e.closeHour = hour
		e.closeMin = minute
	}
}

// WithClock sets the time source for operations that carry no timestamp.
func WithClock(fn func() time.Time) Option {
	return func(e *Engine) { e.clock = fn }
}

// NewEngine restores engine state from st. A store holding nothing, or
// holding unparsable documents, yields an empty engine rather than an error.
func NewEngine(st store.Store, opts ...Option) (*Engine, error) {
	snap, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	e := &Engine{
		store:     st,
		journal:   journal.Nop{},
		loc:       time.Local,
		closeHour: 16,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.acct = ledger.Account{
		Cash:         snap.Settings.CashBalance,
		Transactions: snap.Transactions,
	}
	e.ledger = ledger.NewLedger(snap.Ledger)
	e.book = portfolio.Restore(snap.Positions, snap.OptionPositions)
	e.orders = orders.NewBook(snap.OpenOrders, snap.Settings.NextOrderID)
	e.lastTick = snap.Settings.LastTick

	logs.Infof("engine restored: cash %s, %d positions, %d options, %d open orders, %d ledger entries",
		e.acct.Cash, len(snap.Positions), len(snap.OptionPositions), e.orders.Len(), e.ledger.Len())
	return e, nil
}

// SetOrderListener sets an optional listener for orders resolved by ticks.
func (e *Engine) SetOrderListener(l OrderListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = l
}

// PersistErr returns the last save failure, or nil once a save succeeds.
func (e *Engine) PersistErr() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persistErr
}

// Shutdown releases the journal. The store is owned by the caller.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.journal.Close()
}

func (e *Engine) now() time.Time {
	return e.clock().In(e.loc)
}

func (e *Engine) sessionClose(at time.Time) time.Time {
	local := at.In(e.loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, e.closeHour, e.closeMin, 0, 0, e.loc)
}

func (e *Engine) snapshotLocked() store.Snapshot {
	open := e.orders.Open()
	equities := e.book.Equities()
	options := e.book.Options()
	return store.Snapshot{
		Settings: store.Settings{
			CashBalance: e.acct.Cash,
			NextOrderID: e.orders.NextID(),
			LastTick:    e.lastTick,
		},
		Transactions:    append([]ledger.Transaction(nil), e.acct.Transactions...),
		Ledger:          e.ledger.Entries(),
		Positions:       equities,
		OptionPositions: options,
		OpenOrders:      open,
	}
}

// commitLocked saves the snapshot and mirrors ledger entries recorded since
// mark into the journal. Neither failure undoes the in-memory mutation.
func (e *Engine) commitLocked(mark int) {
	if err := e.store.Save(e.snapshotLocked()); err != nil {
		e.persistErr = fmt.Errorf("%w: %w", ErrPersistence, err)
		logs.Errorf("save snapshot: %+v", err)
	} else {
		e.persistErr = nil
	}

	for _, entry := range e.ledger.Since(mark) {
		if err := e.journal.RecordEntry(entry); err != nil {
			logs.Warnf("journal entry %s: %+v", entry.ID, err)
		}
	}
}

func (e *Engine) appendLocked(entry ledger.Entry) ledger.Entry {
	if entry.Time.IsZero() {
		entry.Time = e.now()
	}
	return e.ledger.Append(entry)
}
