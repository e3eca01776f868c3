package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/papertrader/ledger"
)

var (
	entryHeader  = []string{"id", "time", "type", "order_id", "symbol", "contract", "qty", "price", "note"}
	equityHeader = []string{"time", "cash", "account_value", "pnl", "pnl_percent"}
)

type CSVJournal struct {
	entries *csv.Writer
	equity  *csv.Writer
	ef, qf  *os.File
}

// NewCSV appends to entriesPath and equityPath, writing headers to files
// that are new or empty.
func NewCSV(entriesPath, equityPath string) (*CSVJournal, error) {
	ef, ew, err := openCSV(entriesPath, entryHeader)
	if err != nil {
		return nil, err
	}
	qf, qw, err := openCSV(equityPath, equityHeader)
	if err != nil {
		ef.Close()
		return nil, err
	}
	return &CSVJournal{entries: ew, equity: qw, ef: ef, qf: qf}, nil
}

func openCSV(path string, header []string) (*os.File, *csv.Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(header); err != nil {
			f.Close()
			return nil, nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, nil, err
		}
	}
	return f, w, nil
}

func (j *CSVJournal) RecordEntry(e ledger.Entry) error {
	err := j.entries.Write([]string{
		e.ID,
		e.Time.Format(time.RFC3339),
		string(e.Kind),
		strconv.FormatInt(e.OrderID, 10),
		e.Symbol,
		e.ContractID,
		strconv.FormatInt(e.Qty, 10),
		e.Price.String(),
		e.Note,
	})
	if err != nil {
		return err
	}
	j.entries.Flush()
	return j.entries.Error()
}

func (j *CSVJournal) RecordEquity(s EquitySnapshot) error {
	err := j.equity.Write([]string{
		s.Time.Format(time.RFC3339),
		s.Cash.StringFixed(2),
		s.AccountValue.StringFixed(2),
		s.PNL.StringFixed(2),
		s.PNLPercent.StringFixed(4),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	j.entries.Flush()
	if err := j.entries.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.ef.Close(); err != nil {
		return err
	}
	if err := j.qf.Close(); err != nil {
		return err
	}
	return nil
}
