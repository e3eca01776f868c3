package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/papertrader/config"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/sim"
	"github.com/rustyeddy/papertrader/store"
)

// openEngine builds an engine from cfg. The returned func releases the
// journal and the store.
func openEngine(cfg *config.Config) (*sim.Engine, func(), error) {
	loc, err := cfg.Session.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("session timezone: %w", err)
	}
	hour, minute, err := cfg.Session.CloseTime()
	if err != nil {
		return nil, nil, err
	}

	st, err := store.Open(cfg.Store.Type, cfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	j, err := journal.Open(cfg.Journal.Type, cfg.Journal.EntriesFile, cfg.Journal.EquityFile, cfg.Journal.DBPath)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}

	e, err := sim.NewEngine(st,
		sim.WithJournal(j),
		sim.WithLocation(loc),
		sim.WithSessionClose(hour, minute),
	)
	if err != nil {
		j.Close()
		st.Close()
		return nil, nil, err
	}

	if cfg.Account.InitialDeposit > 0 && len(e.Ledger()) == 0 {
		if err := e.Credit(decimal.NewFromFloat(cfg.Account.InitialDeposit), "initial deposit"); err != nil {
			e.Shutdown()
			st.Close()
			return nil, nil, fmt.Errorf("initial deposit: %w", err)
		}
	}

	cleanup := func() {
		warnPersist(e.PersistErr())
		e.Shutdown()
		st.Close()
	}
	return e, cleanup, nil
}

// withEngine loads config, opens the engine and runs fn against it.
func withEngine(fn func(e *sim.Engine) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	e, cleanup, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(e)
}

func parseDecimal(name, s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s %q: %w", name, s, err)
	}
	return v, nil
}
