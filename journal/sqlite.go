package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/papertrader/ledger"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// RecordEntry ignores an entry whose id is already journaled, so replaying
// a ledger into the same database is harmless.
func (j *SQLite) RecordEntry(e ledger.Entry) error {
	_, err := j.db.Exec(`
		INSERT OR IGNORE INTO entries
		(id, time, type, order_id, symbol, contract, qty, price, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Time.UTC(), string(e.Kind), e.OrderID, e.Symbol,
		e.ContractID, e.Qty, e.Price.String(), e.Note,
	)
	return err
}

func (j *SQLite) RecordEquity(s EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, cash, account_value, pnl, pnl_percent)
		VALUES (?, ?, ?, ?, ?)`,
		s.Time.UTC(), s.Cash.String(), s.AccountValue.String(), s.PNL.String(), s.PNLPercent.String(),
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
