// Package store persists the engine's durable state. A Snapshot is encoded
// as six named JSON documents; every adapter writes all six atomically and
// decodes each one independently on load.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"

	"github.com/rustyeddy/papertrader/ledger"
	"github.com/rustyeddy/papertrader/orders"
	"github.com/rustyeddy/papertrader/portfolio"
)

// ErrUnknownStore is returned by Open for an unsupported store type.
var ErrUnknownStore = errors.New("unknown store type")

// Document names, in write order.
const (
	DocSettings        = "settings"
	DocTransactions    = "transactions"
	DocLedger          = "ledger"
	DocPositions       = "positions"
	DocOptionPositions = "option_positions"
	DocOpenOrders      = "open_orders"
)

// Documents lists every document a snapshot is made of.
var Documents = []string{
	DocSettings,
	DocTransactions,
	DocLedger,
	DocPositions,
	DocOptionPositions,
	DocOpenOrders,
}

// Store is the persistence port the engine writes through.
type Store interface {
	// Load returns the last saved snapshot. A store that has never been
	// written returns an empty snapshot and no error.
	Load() (Snapshot, error)
	// Save replaces the stored snapshot.
	Save(Snapshot) error
	Close() error
}

// Settings holds the scalar engine state.
type Settings struct {
	CashBalance decimal.Decimal `json:"cash_balance"`
	NextOrderID int64           `json:"next_order_id"`
	LastTick    time.Time       `json:"last_tick"`
}

// Snapshot is the full durable image of the engine.
type Snapshot struct {
	Settings        Settings
	Transactions    []ledger.Transaction
	Ledger          []ledger.Entry
	Positions       map[string]portfolio.Position
	OptionPositions map[string]portfolio.OptionPosition
	OpenOrders      []orders.Order
}

// Empty returns a zero snapshot with non-nil collections.
func Empty() Snapshot {
	return Snapshot{
		Settings:        Settings{NextOrderID: 1},
		Positions:       map[string]portfolio.Position{},
		OptionPositions: map[string]portfolio.OptionPosition{},
	}
}

// Encode renders s as its six documents.
func Encode(s Snapshot) (map[string][]byte, error) {
	parts := map[string]any{
		DocSettings:        s.Settings,
		DocTransactions:    nonNil(s.Transactions),
		DocLedger:          nonNil(s.Ledger),
		DocPositions:       s.Positions,
		DocOptionPositions: s.OptionPositions,
		DocOpenOrders:      nonNil(s.OpenOrders),
	}
	docs := make(map[string][]byte, len(parts))
	for name, v := range parts {
		b, err := json.MarshalIndent(v, "", "    ")
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		docs[name] = b
	}
	return docs, nil
}

// Decode rebuilds a snapshot from documents. A missing or unparsable
// document falls back to its empty value and is logged; Decode never fails.
func Decode(docs map[string][]byte) Snapshot {
	s := Empty()
	for _, name := range Documents {
		raw, ok := docs[name]
		if !ok || len(raw) == 0 {
			logs.Infof("store: document %s not found, starting empty", name)
			continue
		}
		if err := decodeDoc(name, raw, &s); err != nil {
			logs.Warnf("store: document %s unreadable, starting empty: %+v", name, err)
		}
	}
	if s.Settings.NextOrderID < 1 {
		s.Settings.NextOrderID = 1
	}
	return s
}

func decodeDoc(name string, raw []byte, s *Snapshot) error {
	switch name {
	case DocSettings:
		var v Settings
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		s.Settings = v
	case DocTransactions:
		var v []ledger.Transaction
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		s.Transactions = v
	case DocLedger:
		var v []ledger.Entry
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		s.Ledger = v
	case DocPositions:
		v := map[string]portfolio.Position{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		s.Positions = v
	case DocOptionPositions:
		v := map[string]portfolio.OptionPosition{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		s.OptionPositions = v
	case DocOpenOrders:
		var v []orders.Order
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		s.OpenOrders = v
	default:
		return fmt.Errorf("unknown document %q", name)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Open builds a store by type: "file", "sqlite", "pebble" or "memory".
func Open(kind, path string) (Store, error) {
	switch kind {
	case "file", "":
		return NewFileStore(path)
	case "sqlite":
		return NewSQLiteStore(path)
	case "pebble":
		return NewPebbleStore(path)
	case "memory":
		return NewMemStore(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStore, kind)
}
