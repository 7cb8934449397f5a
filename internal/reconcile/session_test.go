package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"arbscan/internal/reconcile"
)

func TestSessionDeltas(t *testing.T) {
	rq := require.New(t)

	session := reconcile.NewSession()
	session.Init(map[string]map[string]float64{
		"Binance": {"USDT": 10000},
		"Bybit":   {"USDT": 10000},
	})

	deltas := session.Deltas(map[string]map[string]float64{
		"Binance": {"USDT": 10000},
		"Bybit":   {"USDT": 10048},
	})

	rq.Zero(deltas["Binance"]["USDT"])
	rq.InDelta(48.0, deltas["Bybit"]["USDT"], 1e-9)
}

func TestSessionDeltaTolerance(t *testing.T) {
	rq := require.New(t)

	session := reconcile.NewSession()
	session.Init(map[string]map[string]float64{
		"Binance": {"USDT": 10000},
	})

	// Drift below 1e-4 is floating-point noise, reported as exactly zero.
	deltas := session.Deltas(map[string]map[string]float64{
		"Binance": {"USDT": 10000 + 5e-5},
	})

	rq.Zero(deltas["Binance"]["USDT"])
}

func TestSessionInitIsIdempotent(t *testing.T) {
	rq := require.New(t)

	session := reconcile.NewSession()
	session.Init(map[string]map[string]float64{
		"Binance": {"USDT": 10000},
	})
	session.Init(map[string]map[string]float64{
		"Binance": {"USDT": 999},
	})

	deltas := session.Deltas(map[string]map[string]float64{
		"Binance": {"USDT": 10010},
	})

	rq.InDelta(10.0, deltas["Binance"]["USDT"], 1e-9)
}

func TestSessionCurrencyAbsentFromSnapshot(t *testing.T) {
	rq := require.New(t)

	session := reconcile.NewSession()
	session.Init(map[string]map[string]float64{
		"Binance": {"USDT": 10000},
	})

	deltas := session.Deltas(map[string]map[string]float64{
		"Binance": {"USDT": 10000, "BTC": 0.5},
	})

	rq.InDelta(0.5, deltas["Binance"]["BTC"], 1e-9)
}

func TestSessionReset(t *testing.T) {
	rq := require.New(t)

	session := reconcile.NewSession()
	session.Init(map[string]map[string]float64{
		"Binance": {"USDT": 10000},
	})

	session.Reset()

	session.Init(map[string]map[string]float64{
		"Binance": {"USDT": 20000},
	})

	deltas := session.Deltas(map[string]map[string]float64{
		"Binance": {"USDT": 20005},
	})

	rq.InDelta(5.0, deltas["Binance"]["USDT"], 1e-9)
}
