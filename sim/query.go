package sim

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rustyeddy/papertrader/ledger"
	"github.com/rustyeddy/papertrader/portfolio"
)

// Scope selects which symbols Symbols reports.
type Scope string

const (
	// ScopeAll is every symbol that appears in the ledger.
	ScopeAll Scope = "all"
	// ScopeOpen is every symbol with shares held.
	ScopeOpen Scope = "open"
	// ScopeClosed is every symbol traded as shares but no longer held.
	ScopeClosed Scope = "closed"
	// ScopeLimit is every symbol with an open limit order.
	ScopeLimit Scope = "limit"
)

func ParseScope(s string) (Scope, error) {
	switch sc := Scope(strings.ToLower(strings.TrimSpace(s))); sc {
	case "":
		return ScopeAll, nil
	case ScopeAll, ScopeOpen, ScopeClosed, ScopeLimit:
		return sc, nil
	}
	return "", fmt.Errorf("unknown symbol scope %q", s)
}

// Portfolio returns one row per held equity and option position.
func (e *Engine) Portfolio() []portfolio.Holding {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Holdings()
}

// Symbols returns the sorted symbols in scope.
func (e *Engine) Symbols(scope Scope) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	set := map[string]struct{}{}
	switch scope {
	case ScopeAll:
		for _, entry := range e.ledger.Entries() {
			if entry.Symbol != "" {
				set[entry.Symbol] = struct{}{}
			}
		}
	case ScopeOpen:
		for _, sym := range e.book.Symbols() {
			set[sym] = struct{}{}
		}
	case ScopeClosed:
		for _, entry := range e.ledger.Entries() {
			if entry.Symbol == "" || !tradesShares(entry) {
				continue
			}
			if e.book.Held(entry.Symbol) == 0 {
				set[entry.Symbol] = struct{}{}
			}
		}
	case ScopeLimit:
		for _, o := range e.orders.Open() {
			set[o.Symbol] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for sym := range set {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

func tradesShares(entry ledger.Entry) bool {
	switch entry.Kind {
	case ledger.KindBuy, ledger.KindSell, ledger.KindAssignment:
		return true
	case ledger.KindLimitBuyFilled, ledger.KindLimitSellFilled:
		return entry.ContractID == ""
	}
	return false
}
