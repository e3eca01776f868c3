package sim

import (
	"errors"

	"github.com/rustyeddy/papertrader/ledger"
	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/orders"
	"github.com/rustyeddy/papertrader/portfolio"
)

var (
	ErrInsufficientFunds    = ledger.ErrInsufficientFunds
	ErrInvalidAmount        = ledger.ErrInvalidAmount
	ErrInsufficientPosition = portfolio.ErrInsufficientPosition
	ErrInvalidQuantity      = portfolio.ErrInvalidQuantity
	ErrInvalidContract      = market.ErrInvalidContract
	ErrOrderNotFound        = orders.ErrOrderNotFound

	// ErrPersistence wraps a failed snapshot save. The operation that
	// triggered the save still took effect in memory.
	ErrPersistence = errors.New("persistence failure")

	ErrMissingSymbol = errors.New("order has no symbol")

	// ErrStaleTick is returned for a tick older than the last one processed.
	ErrStaleTick = errors.New("tick older than last processed tick")
)
