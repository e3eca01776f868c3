package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/papertrader/ledger"
	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/portfolio"
)

const nvdaCall = "O:NVDA250221C00139000"

var expiry = time.Date(2025, 2, 21, 0, 0, 0, 0, time.UTC)

func buyCall(t *testing.T, e *Engine, contract string, qty int64) {
	t.Helper()
	_, err := e.Buy(OrderRequest{ContractID: contract, Price: d("3"), Qty: qty, Time: at(10, 0)})
	require.NoError(t, err)
}

func TestInTheMoneyCallIsExercised(t *testing.T) {
	e, _, _ := newEngine(t, "30000")
	buyCall(t, e, nvdaCall, 2)
	assert.Equal(t, "29994", e.Balance().String())

	require.NoError(t, e.Tick(market.Prices(map[string]float64{"NVDA": 145}), expiry))

	assert.Equal(t, "2194", e.Balance().String(), "strike 139 × 2 contracts × 100 = 27800")

	rows := e.Portfolio()
	require.Len(t, rows, 1)
	assert.Equal(t, portfolio.AssetStock, rows[0].Type)
	assert.Equal(t, "NVDA", rows[0].Symbol)
	assert.Equal(t, int64(200), rows[0].Qty)
	assert.Equal(t, "139", rows[0].AvgCost.String())

	entries := e.Ledger()
	last := entries[len(entries)-1]
	assert.Equal(t, ledger.KindAssignment, last.Kind)
	assert.Equal(t, nvdaCall, last.ContractID)
	assert.Equal(t, int64(200), last.Qty)
	assert.Equal(t, "139", last.Price.String())
}

func TestOptionNotSettledBeforeExpiration(t *testing.T) {
	e, _, _ := newEngine(t, "30000")
	buyCall(t, e, nvdaCall, 1)

	require.NoError(t, e.Tick(market.Prices(map[string]float64{"NVDA": 150}), expiry.Add(-time.Minute)))

	rows := e.Portfolio()
	require.Len(t, rows, 1)
	assert.Equal(t, portfolio.AssetOption, rows[0].Type)
}

func TestOptionsExpireWorthless(t *testing.T) {
	tests := []struct {
		name     string
		contract string
		closes   map[string]float64
	}{
		{"out of the money call", nvdaCall, map[string]float64{"NVDA": 130}},
		{"at the money call", nvdaCall, map[string]float64{"NVDA": 139}},
		{"call without underlying price", nvdaCall, map[string]float64{"AAPL": 200}},
		{"in the money put", "O:NVDA250221P00139000", map[string]float64{"NVDA": 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := newEngine(t, "30000")
			buyCall(t, e, tt.contract, 2)
			cash := e.Balance()

			require.NoError(t, e.Tick(market.Prices(tt.closes), expiry.Add(time.Hour)))

			assert.Empty(t, e.Portfolio())
			assert.True(t, cash.Equal(e.Balance()))

			entries := e.Ledger()
			last := entries[len(entries)-1]
			assert.Equal(t, ledger.KindOptionExpired, last.Kind)
			assert.Equal(t, tt.contract, last.ContractID)
			assert.Equal(t, int64(2), last.Qty)
		})
	}
}

func TestUnfundedExerciseIsRetried(t *testing.T) {
	e, _, _ := newEngine(t, "100")
	buyCall(t, e, nvdaCall, 1)

	require.NoError(t, e.Tick(market.Prices(map[string]float64{"NVDA": 150}), expiry))
	rows := e.Portfolio()
	require.Len(t, rows, 1)
	assert.Equal(t, portfolio.AssetOption, rows[0].Type)
	assert.Equal(t, "97", e.Balance().String())

	require.NoError(t, e.Credit(d("14000"), "margin call"))
	require.NoError(t, e.Tick(market.Prices(map[string]float64{"NVDA": 150}), expiry.Add(time.Minute)))

	rows = e.Portfolio()
	require.Len(t, rows, 1)
	assert.Equal(t, "NVDA", rows[0].Symbol)
	assert.Equal(t, int64(100), rows[0].Qty)
	assert.Equal(t, "197", e.Balance().String())
}

func TestOptionLimitOrderUsesContractPrice(t *testing.T) {
	e, _, _ := newEngine(t, "1000")

	_, err := e.Buy(OrderRequest{ContractID: nvdaCall, Qty: 2, Limit: limit("2.5")})
	require.NoError(t, err)
	open := e.OpenOrders()
	require.Len(t, open, 1)
	assert.Equal(t, "NVDA", open[0].Symbol)

	// The underlying trades far above the limit; the contract price decides.
	tick(t, e, at(10, 0), map[string]float64{"NVDA": 150, nvdaCall: 2.4})

	assert.Empty(t, e.OpenOrders())
	assert.Equal(t, "995", e.Balance().String())

	rows := e.Portfolio()
	require.Len(t, rows, 1)
	assert.Equal(t, nvdaCall, rows[0].ContractID)
	assert.Equal(t, "2.4", rows[0].CurrentPrice.String())
	assert.Equal(t, int64(100), rows[0].Multiplier)

	_, err = e.Close(OrderRequest{ContractID: nvdaCall, Qty: 2, Limit: limit("3")})
	require.NoError(t, err)
	tick(t, e, at(10, 1), map[string]float64{nvdaCall: 3.1})
	assert.Empty(t, e.Portfolio())
	assert.Equal(t, "1001", e.Balance().String())

	last := e.Ledger()[len(e.Ledger())-1]
	assert.Equal(t, ledger.KindLimitSellFilled, last.Kind)
}

func TestOptionOrderFallsBackToUnderlyingPrice(t *testing.T) {
	e, _, _ := newEngine(t, "1000")

	_, err := e.Buy(OrderRequest{ContractID: nvdaCall, Qty: 2, Limit: limit("2.5")})
	require.NoError(t, err)

	tick(t, e, at(10, 0), map[string]float64{"NVDA": 150})
	assert.Len(t, e.OpenOrders(), 1)

	tick(t, e, at(10, 1), map[string]float64{"NVDA": 2})
	assert.Empty(t, e.OpenOrders())
	assert.Equal(t, "995", e.Balance().String())
}

func TestImmediateOptionClose(t *testing.T) {
	e, _, _ := newEngine(t, "1000")
	buyCall(t, e, nvdaCall, 3)

	_, err := e.Close(OrderRequest{ContractID: nvdaCall, Price: d("4"), Qty: 4})
	require.ErrorIs(t, err, ErrInsufficientPosition)

	_, err = e.Close(OrderRequest{ContractID: nvdaCall, Price: d("4"), Qty: 3})
	require.NoError(t, err)
	assert.Equal(t, "1003", e.Balance().String())

	kindsSeen := kinds(e.Ledger())
	assert.Equal(t, []ledger.Kind{ledger.KindCredit, ledger.KindOptionBuy, ledger.KindOptionSell}, kindsSeen)
}
