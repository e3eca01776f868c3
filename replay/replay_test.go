package replay

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/sim"
	"github.com/rustyeddy/papertrader/store"
)

// Scripted scenario: a limit buy at 100 rests while AAPL trades down
// through it, then a limit sell at 104 takes profit on the way back up.
const bars = `time,symbol,open,high,low,close,volume
2025-02-12T14:30:00Z,AAPL,106,106,104,105,1000
2025-02-12T14:31:00Z,AAPL,105,105,100.5,101,1200
2025-02-12T14:32:00Z,AAPL,101,101,98.5,99,900
2025-02-12T14:33:00Z,AAPL,99,102,99,101.5,800
2025-02-12T14:34:00Z,AAPL,101.5,105,101,104.5,1500
`

func writeBars(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(bars), 0o644))
	return path
}

func TestReplayLimitRoundTrip(t *testing.T) {
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "journal.sqlite")
	j, err := journal.NewSQLite(dbPath)
	require.NoError(t, err)

	engine, err := sim.NewEngine(store.NewMemStore(), sim.WithJournal(j), sim.WithLocation(time.UTC))
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Shutdown() })

	require.NoError(t, engine.Credit(decimal.NewFromInt(10_000), "seed"))
	buyLimit := decimal.NewFromInt(100)
	_, err = engine.Buy(sim.OrderRequest{Symbol: "AAPL", Qty: 10, Limit: &buyLimit})
	require.NoError(t, err)

	stats, err := CSV(ctx, writeBars(t), engine, Options{To: time.Date(2025, 2, 12, 14, 32, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Ticks)
	require.Len(t, engine.Portfolio(), 1)

	sellLimit := decimal.NewFromInt(104)
	_, err = engine.Close(sim.OrderRequest{Symbol: "AAPL", Qty: 10, Limit: &sellLimit})
	require.NoError(t, err)

	stats, err = CSV(ctx, writeBars(t), engine, Options{From: time.Date(2025, 2, 12, 14, 33, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Ticks)
	assert.Equal(t, 3, stats.Skipped)

	assert.Empty(t, engine.Portfolio())
	assert.Equal(t, "10040", engine.Balance().String())

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(`SELECT type FROM entries ORDER BY time, id`)
	require.NoError(t, err)
	defer rows.Close()

	var types []string
	for rows.Next() {
		var s string
		require.NoError(t, rows.Scan(&s))
		types = append(types, s)
	}
	require.NoError(t, rows.Err())
	assert.Contains(t, types, "limit_buy_filled")
	assert.Contains(t, types, "limit_sell_filled")

	var equityRows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM equity`).Scan(&equityRows))
	assert.Equal(t, 5, equityRows)
}

type failingTicker struct{ calls int }

func (f *failingTicker) Tick(market.Snapshot, time.Time) error {
	f.calls++
	return errors.New("rejected")
}

func TestRunStopOnError(t *testing.T) {
	feed := market.NewCSVFeedReader(strings.NewReader(bars))
	ft := &failingTicker{}

	_, err := Run(context.Background(), feed, ft, Options{StopOnError: true})
	require.Error(t, err)
	assert.Equal(t, 1, ft.calls)

	feed = market.NewCSVFeedReader(strings.NewReader(bars))
	ft = &failingTicker{}
	stats, err := Run(context.Background(), feed, ft, Options{})
	require.NoError(t, err)
	assert.Equal(t, 5, ft.calls)
	assert.Equal(t, 5, stats.Skipped)
}

func TestRunHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	feed := market.NewCSVFeedReader(strings.NewReader(bars))
	_, err := Run(ctx, feed, &failingTicker{}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCSVMissingFile(t *testing.T) {
	_, err := CSV(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), &failingTicker{}, Options{})
	assert.Error(t, err)
}
