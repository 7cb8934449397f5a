package server_test

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"arbscan/internal/domain/entity"
	"arbscan/internal/domain/service/market"
	"arbscan/internal/ledger"
	"arbscan/internal/server"
	"arbscan/pkg/rest"
	"arbscan/pkg/tests"
)

const testBatchSize = 200

func newTestServer(t *testing.T) (*httptest.Server, *ledger.Ledger) {
	t.Helper()
	rq := require.New(t)

	assets := entity.DefaultAssets()
	exchanges := entity.DefaultExchanges()

	generator, err := market.NewGenerator(assets, exchanges, rand.New(rand.NewSource(1))) //nolint:gosec
	rq.NoError(err)

	dealLedger := ledger.New(exchanges)

	srv := server.NewServer(
		server.NewScannerServer(generator, testBatchSize),
		server.NewDashboardServer(dealLedger),
		server.NewDealServer(dealLedger),
		server.NewStreamServer(assets, exchanges, 50*time.Millisecond),
	)

	router := chi.NewRouter()
	srv.RegisterRoutes(router)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return ts, dealLedger
}

func TestGetScanner(t *testing.T) {
	rq := require.New(t)

	ts, _ := newTestServer(t)
	client := tests.NewAPIClient(ts.URL, ts.Client())

	var response rest.ScannerResponse

	resp, err := client.Get(context.Background(), "/v1/scanner", nil, &response, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)

	rq.Equal(1, response.Pagination.Page)
	rq.Equal(50, response.Pagination.Limit)
	rq.Equal(testBatchSize, response.Pagination.Total)
	rq.Len(response.Results, 50)
	rq.Equal(testBatchSize, response.Summary.TotalOpportunities)

	for i, opp := range response.Results {
		rq.Greater(opp.SellPrice, opp.BuyPrice)
		rq.Positive(opp.Spread)

		if i > 0 {
			rq.GreaterOrEqual(response.Results[i-1].Spread, opp.Spread)
		}
	}
}

func TestGetScannerFilters(t *testing.T) {
	rq := require.New(t)

	ts, _ := newTestServer(t)
	client := tests.NewAPIClient(ts.URL, ts.Client())

	var response rest.ScannerResponse

	endpoint := "/v1/scanner?minVolume=10000&currencies=BTC&currencies=ETH&sort=volume&direction=asc"

	resp, err := client.Get(context.Background(), endpoint, nil, &response, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.NotEmpty(response.Results)

	for i, opp := range response.Results {
		rq.GreaterOrEqual(opp.Volume, 10000.0)
		rq.Contains([]string{"BTC", "ETH"}, opp.Coin)

		if i > 0 {
			rq.LessOrEqual(response.Results[i-1].Volume, opp.Volume)
		}
	}
}

func TestGetScannerInvalidPaging(t *testing.T) {
	rq := require.New(t)

	ts, _ := newTestServer(t)
	client := tests.NewAPIClient(ts.URL, ts.Client())

	testCases := []struct {
		name     string
		endpoint string
	}{
		{name: "zero page", endpoint: "/v1/scanner?page=0"},
		{name: "negative limit", endpoint: "/v1/scanner?limit=-1"},
		{name: "malformed page", endpoint: "/v1/scanner?page=abc"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			var errResponse rest.Error

			resp, err := client.Get(context.Background(), tc.endpoint, nil, nil, &errResponse)
			rq.NoError(err)
			rq.Equal(http.StatusBadRequest, resp.StatusCode)
			rq.Equal("InvalidPaging", errResponse.Code)
		})
	}
}

func TestGetScannerUnknownSortField(t *testing.T) {
	rq := require.New(t)

	ts, _ := newTestServer(t)
	client := tests.NewAPIClient(ts.URL, ts.Client())

	var errResponse rest.Error

	resp, err := client.Get(context.Background(), "/v1/scanner?sort=commission", nil, nil, &errResponse)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)
	rq.Equal("InvalidSortField", errResponse.Code)
}

func TestPostDealAndDashboard(t *testing.T) {
	rq := require.New(t)

	ts, dealLedger := newTestServer(t)
	client := tests.NewAPIClient(ts.URL, ts.Client())

	now := time.Now().UTC().Format(time.RFC3339)

	deal := rest.Deal{
		Opportunity: rest.Opportunity{
			ID:           1,
			Coin:         "BTC",
			BuyExchange:  "Binance",
			SellExchange: "Bybit",
			BuyPrice:     45000,
			SellPrice:    45450,
			Volume:       1000,
			Spread:       1,
			Profit:       50,
			LastUpdate:   now,
		},
		Commission: 2,
		NetProfit:  48,
		Status:     "executed",
		ExecutedAt: now,
	}

	var ack rest.DealAck

	resp, err := client.Post(context.Background(), "/v1/deals", nil, deal, &ack, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.True(ack.Success)
	rq.Equal(int64(1), ack.DealID)

	var dashboard rest.DashboardResponse

	resp, err = client.Get(context.Background(), "/v1/dashboard", nil, &dashboard, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)

	rq.InDelta(48.0, dashboard.Metrics.TotalProfit, 1e-9)
	rq.Len(dashboard.Deals, 1)
	rq.Len(dashboard.ProfitChart, 7)

	var balances rest.BalancesResponse

	resp, err = client.Get(context.Background(), "/v1/balances", nil, &balances, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.InDelta(10048.0, balances.Balances["Bybit"][ledger.QuoteCurrency], 1e-9)

	var reset rest.ResetResponse

	resp, err = client.Post(context.Background(), "/v1/dashboard/reset", nil, struct{}{}, &reset, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.True(reset.Success)

	rq.Empty(dealLedger.History())
	rq.InDelta(10000.0, dealLedger.Balances()["Bybit"][ledger.QuoteCurrency], 1e-9)
}

func TestPostDealSameExchangeRejected(t *testing.T) {
	rq := require.New(t)

	ts, _ := newTestServer(t)
	client := tests.NewAPIClient(ts.URL, ts.Client())

	now := time.Now().UTC().Format(time.RFC3339)

	deal := rest.Deal{
		Opportunity: rest.Opportunity{
			Coin:        "BTC",
			BuyExchange: "Binance", SellExchange: "Binance",
			BuyPrice: 45000, SellPrice: 45450, Volume: 1000,
			LastUpdate: now,
		},
		Status:     "executed",
		ExecutedAt: now,
	}

	var errResponse rest.Error

	resp, err := client.Post(context.Background(), "/v1/deals", nil, deal, nil, &errResponse)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestPostDealStaleRejected(t *testing.T) {
	rq := require.New(t)

	ts, _ := newTestServer(t)
	client := tests.NewAPIClient(ts.URL, ts.Client())

	now := time.Now().UTC().Format(time.RFC3339)

	deal := rest.Deal{
		Opportunity: rest.Opportunity{
			ID:          1,
			Coin:        "BTC",
			BuyExchange: "Binance", SellExchange: "Bybit",
			BuyPrice: 45450, SellPrice: 45000, Volume: 1000,
			LastUpdate: now,
		},
		Status:     "executed",
		ExecutedAt: now,
	}

	var errResponse rest.Error

	resp, err := client.Post(context.Background(), "/v1/deals", nil, deal, nil, &errResponse)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)
	rq.Equal("OpportunityStale", errResponse.Code)
}

func TestStreamFeed(t *testing.T) {
	rq := require.New(t)

	ts, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil) //nolint:bodyclose
	rq.NoError(err)
	defer conn.Close()

	rq.NoError(conn.SetReadDeadline(time.Now().Add(3 * time.Second)))

	var msg rest.WSMessage
	rq.NoError(conn.ReadJSON(&msg))

	rq.Equal(rest.WSTypePriceUpdates, msg.Type)
	rq.NotEmpty(msg.Data)

	seen := map[string]bool{}
	for _, update := range msg.Data {
		rq.NotEmpty(update.Pair)
		rq.Positive(update.Price)
		rq.False(seen[update.Pair+"-"+update.Exchange])
		seen[update.Pair+"-"+update.Exchange] = true
	}

	// Speed the feed up and make sure ticks keep flowing.
	rq.NoError(conn.WriteJSON(rest.WSMessage{Type: rest.WSTypeSetUpdatePeriod, Period: 1}))

	rq.NoError(conn.SetReadDeadline(time.Now().Add(3 * time.Second)))
	rq.NoError(conn.ReadJSON(&msg))
	rq.Equal(rest.WSTypePriceUpdates, msg.Type)
}
