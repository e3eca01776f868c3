package journal

import (
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/papertrader/ledger"
)

var t0 = time.Date(2025, 2, 12, 14, 30, 0, 0, time.UTC)

func sampleEntry(id string, at time.Time, orderID int64) ledger.Entry {
	return ledger.Entry{
		ID:      id,
		Time:    at,
		Kind:    ledger.KindLimitBuyFilled,
		OrderID: orderID,
		Symbol:  "AAPL",
		Qty:     10,
		Price:   decimal.RequireFromString("100.25"),
		Note:    "dip buy",
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	entriesPath := filepath.Join(dir, "entries.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(entriesPath, equityPath)
	require.NoError(t, err)

	require.NoError(t, j.RecordEntry(sampleEntry("E1", t0, 3)))
	require.NoError(t, j.RecordEquity(EquitySnapshot{
		Time:         t0,
		Cash:         decimal.RequireFromString("8997.5"),
		AccountValue: decimal.RequireFromString("10000"),
		PNL:          decimal.RequireFromString("1002.5"),
		PNLPercent:   decimal.RequireFromString("11.142"),
	}))
	require.NoError(t, j.Close())

	rows := readCSV(t, entriesPath)
	require.Len(t, rows, 2)
	assert.Equal(t, entryHeader, rows[0])
	assert.Equal(t, []string{"E1", "2025-02-12T14:30:00Z", "limit_buy_filled", "3", "AAPL", "", "10", "100.25", "dip buy"}, rows[1])

	rows = readCSV(t, equityPath)
	require.Len(t, rows, 2)
	assert.Equal(t, equityHeader, rows[0])
	assert.Equal(t, []string{"2025-02-12T14:30:00Z", "8997.50", "10000.00", "1002.50", "11.1420"}, rows[1])

	// Reopening appends without repeating the header.
	j, err = NewCSV(entriesPath, equityPath)
	require.NoError(t, err)
	require.NoError(t, j.RecordEntry(sampleEntry("E2", t0, 4)))
	require.NoError(t, j.Close())

	rows = readCSV(t, entriesPath)
	require.Len(t, rows, 3)
	assert.Equal(t, "E2", rows[2][0])
}

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('entries','equity')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	assert.True(t, found["entries"])
	assert.True(t, found["equity"])
}

func TestSQLiteEntriesQueries(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	created := sampleEntry("E1", t0, 7)
	created.Kind = ledger.KindLimitBuyOrder
	filled := sampleEntry("E2", t0.Add(time.Hour), 7)
	other := sampleEntry("E3", t0.Add(26*time.Hour), 8)

	for _, e := range []ledger.Entry{created, filled, other, filled} {
		require.NoError(t, j.RecordEntry(e))
	}

	got, err := j.GetEntry("E2")
	require.NoError(t, err)
	assert.Equal(t, ledger.KindLimitBuyFilled, got.Kind)
	assert.Equal(t, int64(7), got.OrderID)
	assert.True(t, got.Time.Equal(filled.Time))
	assert.Equal(t, "100.25", got.Price.String())
	assert.Equal(t, "dip buy", got.Note)

	_, err = j.GetEntry("missing")
	assert.Error(t, err)

	history, err := j.ListEntriesByOrder(7)
	require.NoError(t, err)
	require.Len(t, history, 2, "duplicate ids are ignored")
	assert.Equal(t, ledger.KindLimitBuyOrder, history[0].Kind)
	assert.Equal(t, ledger.KindLimitBuyFilled, history[1].Kind)

	day, err := j.ListEntriesBetween(t0.Truncate(24*time.Hour), t0.Truncate(24*time.Hour).Add(24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, day, 2)
}

func TestSQLiteEquity(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	for i := 0; i < 3; i++ {
		require.NoError(t, j.RecordEquity(EquitySnapshot{
			Time:         t0.Add(time.Duration(i) * time.Minute),
			Cash:         decimal.NewFromInt(int64(1000 + i)),
			AccountValue: decimal.NewFromInt(2000),
			PNL:          decimal.Zero,
			PNLPercent:   decimal.Zero,
		}))
	}

	got, err := j.ListEquityBetween(t0, t0.Add(2*time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1001", got[1].Cash.String())
}

func TestFormatEntryOrg(t *testing.T) {
	t.Parallel()

	e := sampleEntry("01JKXABCDEFGH", t0, 3)
	e.ContractID = "O:NVDA250221C00139000"
	out := FormatEntryOrg(e)

	assert.Contains(t, out, "** limit_buy_filled: O:NVDA250221C00139000 (01JKXABC)")
	assert.Contains(t, out, ":ORDER_ID: 3")
	assert.Contains(t, out, ":TIME: 2025-02-12T14:30:00Z")
	assert.Contains(t, out, ":PRICE: 100.25")
	assert.Contains(t, out, ":NOTE: dip buy")
	assert.True(t, strings.HasSuffix(out, ":END:\n"))

	both := FormatEntriesOrg([]ledger.Entry{e, sampleEntry("short", t0, 0)})
	assert.Contains(t, both, "(short)")
	assert.NotContains(t, FormatEntryOrg(sampleEntry("x", t0, 0)), ":ORDER_ID:")
}

func TestOpenNone(t *testing.T) {
	j, err := Open("none", "", "", "")
	require.NoError(t, err)
	assert.NoError(t, j.RecordEntry(ledger.Entry{}))
	assert.NoError(t, j.Close())
}
