package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CSVFeed replays bars from a CSV file, grouping rows that share a
// timestamp into one Snapshot.
//
// Expected columns:
// time,symbol,open,high,low,close,volume
// A header row is allowed; volume may be omitted.
type CSVFeed struct {
	f *os.File
	r *csv.Reader

	pending  *Bar
	sawFirst bool
	last     time.Time
}

func NewCSVFeed(path string) (*CSVFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return newCSVFeed(f, f), nil
}

// NewCSVFeedReader reads bars from r instead of a file.
func NewCSVFeedReader(r io.Reader) *CSVFeed {
	return newCSVFeed(r, nil)
}

func newCSVFeed(r io.Reader, f *os.File) *CSVFeed {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return &CSVFeed{f: f, r: cr}
}

func (f *CSVFeed) Close() error {
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

// Next returns the next snapshot and its timestamp. ok is false at EOF.
// Rows must be ordered by time.
func (f *CSVFeed) Next() (snap Snapshot, at time.Time, ok bool, err error) {
	snap = Snapshot{}
	if f.pending != nil {
		b := *f.pending
		f.pending = nil
		snap[b.Symbol] = b
		at = b.Time
	}

	for {
		bar, more, err := f.readBar()
		if err != nil {
			return nil, time.Time{}, false, err
		}
		if !more {
			break
		}
		if len(snap) == 0 {
			snap[bar.Symbol] = bar
			at = bar.Time
			continue
		}
		if !bar.Time.Equal(at) {
			f.pending = &bar
			break
		}
		snap[bar.Symbol] = bar
	}

	if len(snap) == 0 {
		return nil, time.Time{}, false, nil
	}
	if !f.last.IsZero() && at.Before(f.last) {
		return nil, time.Time{}, false, fmt.Errorf("bars out of order: %s after %s", at.Format(time.RFC3339), f.last.Format(time.RFC3339))
	}
	f.last = at
	return snap, at, true, nil
}

func (f *CSVFeed) readBar() (Bar, bool, error) {
	for {
		row, err := f.r.Read()
		if err == io.EOF {
			return Bar{}, false, nil
		}
		if err != nil {
			return Bar{}, false, err
		}
		if len(row) == 0 {
			continue
		}

		if !f.sawFirst {
			f.sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		if len(row) < 6 {
			return Bar{}, false, fmt.Errorf("too few columns (expected >=6): %v", row)
		}
		b, err := parseBarRow(row)
		if err != nil {
			return Bar{}, false, err
		}
		return b, true, nil
	}
}

func parseBarRow(row []string) (Bar, error) {
	ts := strings.TrimSpace(row[0])
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return Bar{}, fmt.Errorf("bad time %q: %w", ts, err)
	}

	sym := strings.TrimSpace(row[1])
	if sym == "" {
		return Bar{}, fmt.Errorf("empty symbol at %s", ts)
	}

	var px [4]decimal.Decimal
	for i := range px {
		v, err := decimal.NewFromString(strings.TrimSpace(row[2+i]))
		if err != nil {
			return Bar{}, fmt.Errorf("bad price %q: %w", row[2+i], err)
		}
		px[i] = v
	}

	var vol int64
	if len(row) > 6 && strings.TrimSpace(row[6]) != "" {
		vol, err = strconv.ParseInt(strings.TrimSpace(row[6]), 10, 64)
		if err != nil {
			return Bar{}, fmt.Errorf("bad volume %q: %w", row[6], err)
		}
	}

	return Bar{
		Symbol: sym,
		Time:   t,
		Open:   px[0],
		High:   px[1],
		Low:    px[2],
		Close:  px[3],
		Volume: vol,
	}, nil
}
