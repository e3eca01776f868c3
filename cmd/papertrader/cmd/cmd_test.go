package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/papertrader/config"
	"github.com/rustyeddy/papertrader/orders"
	"github.com/rustyeddy/papertrader/store"
)

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	start, end, err := dayBounds(loc, "2025-02-12")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 12, 5, 0, 0, 0, time.UTC), start.UTC())
	assert.Equal(t, 24*time.Hour, end.Sub(start))

	_, _, err = dayBounds(loc, "12/02/2025")
	assert.Error(t, err)
}

func TestBuildRequest(t *testing.T) {
	t.Cleanup(func() { tradePrice, tradeLimit, tradeTIF = "", "", "GTC" })

	tradePrice, tradeLimit, tradeTIF = "", "101.5", "day"
	req, err := buildRequest([]string{"AAPL", "10"})
	require.NoError(t, err)
	require.NotNil(t, req.Limit)
	assert.Equal(t, "101.5", req.Limit.String())
	assert.Equal(t, orders.Day, req.TIF)

	tradePrice, tradeLimit, tradeTIF = "99", "", "GTC"
	req, err = buildRequest([]string{"AAPL", "10"})
	require.NoError(t, err)
	assert.Nil(t, req.Limit)
	assert.Equal(t, "99", req.Price.String())

	tradePrice = ""
	_, err = buildRequest([]string{"AAPL", "10"})
	assert.Error(t, err)

	_, err = buildRequest([]string{"AAPL", "ten"})
	assert.Error(t, err)
}

func run(t *testing.T, args ...string) {
	t.Helper()
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
}

func TestCommandsPersistBetweenRuns(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Account.InitialDeposit = 1000
	cfg.Store = config.StoreConfig{Type: "sqlite", Path: filepath.Join(dir, "state.db")}
	cfg.Journal = config.JournalConfig{Type: "none"}
	cfg.Session.Timezone = "UTC"
	path := filepath.Join(dir, "papertrader.yaml")
	require.NoError(t, cfg.SaveToFile(path))

	run(t, "--config", path, "buy", "AAPL", "5", "--price", "10")
	run(t, "--config", path, "credit", "50", "--note", "top up")
	run(t, "--config", path, "portfolio")

	st, err := store.NewSQLiteStore(cfg.Store.Path)
	require.NoError(t, err)
	defer st.Close()

	snap, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "1000", snap.Settings.CashBalance.String())
	assert.Equal(t, int64(5), snap.Positions["AAPL"].Qty)
	assert.Len(t, snap.Ledger, 3, "initial deposit, buy, credit")
}
