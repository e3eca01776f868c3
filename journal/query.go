package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rustyeddy/papertrader/ledger"
)

const entryColumns = `id, time, type, order_id, symbol, contract, qty, price, note`

// GetEntry returns a single ledger entry by ID.
func (j *SQLite) GetEntry(id string) (ledger.Entry, error) {
	row := j.db.QueryRow(`SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)

	e, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return ledger.Entry{}, fmt.Errorf("entry %q not found", id)
		}
		return ledger.Entry{}, err
	}
	return e, nil
}

// ListEntriesBetween returns entries whose time is within [start, end).
func (j *SQLite) ListEntriesBetween(start, end time.Time) ([]ledger.Entry, error) {
	rows, err := j.db.Query(`
		SELECT `+entryColumns+`
		FROM entries
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, id ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

// ListEntriesByOrder returns the history of one order: creation, then its
// fill, cancellation or expiry.
func (j *SQLite) ListEntriesByOrder(orderID int64) ([]ledger.Entry, error) {
	rows, err := j.db.Query(`
		SELECT `+entryColumns+`
		FROM entries
		WHERE order_id = ?
		ORDER BY time ASC, id ASC`, orderID)
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

// ListEquityBetween returns equity snapshots within [start, end).
func (j *SQLite) ListEquityBetween(start, end time.Time) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, cash, account_value, pnl, pnl_percent
		FROM equity
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var s EquitySnapshot
		if err := rows.Scan(&s.Time, &s.Cash, &s.AccountValue, &s.PNL, &s.PNLPercent); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (ledger.Entry, error) {
	var (
		e    ledger.Entry
		kind string
	)
	err := row.Scan(
		&e.ID,
		&e.Time,
		&kind,
		&e.OrderID,
		&e.Symbol,
		&e.ContractID,
		&e.Qty,
		&e.Price,
		&e.Note,
	)
	e.Kind = ledger.Kind(kind)
	return e, err
}

func collectEntries(rows *sql.Rows) ([]ledger.Entry, error) {
	defer rows.Close()

	var out []ledger.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
