package scanner_test

import (
	"testing"
	"time"

	"git.appkode.ru/pub/go/failure"
	"github.com/stretchr/testify/require"

	"arbscan/internal/domain/entity"
	"arbscan/internal/domain/service/scanner"
	"arbscan/pkg/tests"
)

func testBatch() []entity.Opportunity {
	now := time.Now()

	opps := []entity.Opportunity{
		{ID: 1, Coin: "BTC", BuyExchange: "Binance", SellExchange: "Bybit", BuyPrice: 45000, SellPrice: 45450, Volume: 100000, LastUpdate: now},
		{ID: 2, Coin: "ETH", BuyExchange: "OKX", SellExchange: "Huobi", BuyPrice: 2500, SellPrice: 2505, Volume: 50000, LastUpdate: now},
		{ID: 3, Coin: "SOL", BuyExchange: "Bybit", SellExchange: "Binance", BuyPrice: 100, SellPrice: 101.5, Volume: 25000, LastUpdate: now},
		{ID: 4, Coin: "XRP", BuyExchange: "Huobi", SellExchange: "OKX", BuyPrice: 0.5, SellPrice: 0.503, Volume: 15000, LastUpdate: now},
		{ID: 5, Coin: "BTC", BuyExchange: "Bybit", SellExchange: "OKX", BuyPrice: 45100, SellPrice: 45200, Volume: 800, LastUpdate: now},
	}

	for i := range opps {
		opps[i].Recalculate()
	}

	return opps
}

func TestRunRejectsInvalidPaging(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name  string
		page  int
		limit int
	}{
		{name: "zero page", page: 0, limit: 10},
		{name: "negative page", page: -1, limit: 10},
		{name: "zero limit", page: 1, limit: 0},
		{name: "negative limit", page: 1, limit: -5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			_, err := scanner.Run(testBatch(), scanner.Query{Page: tc.page, Limit: tc.limit})
			rq.Error(err)
			rq.True(failure.IsInvalidArgumentError(err))
		})
	}
}

func TestRunIsPure(t *testing.T) {
	rq := require.New(t)

	batch := testBatch()
	query := scanner.Query{Page: 1, Limit: 10, Filter: scanner.FilterSpec{MinVolume: 1000}}

	first, err := scanner.Run(batch, query)
	rq.NoError(err)

	second, err := scanner.Run(batch, query)
	rq.NoError(err)

	rq.Equal(first.Results, second.Results)
	rq.Equal(first.Total, second.Total)
	rq.Equal(first.Summary.TotalOpportunities, second.Summary.TotalOpportunities)
	rq.Equal(first.Summary.AvgSpread, second.Summary.AvgSpread)
	rq.Equal(first.Summary.TotalVolume, second.Summary.TotalVolume)
}

func TestRunDefaultSortIsSpreadDescending(t *testing.T) {
	rq := require.New(t)

	result, err := scanner.Run(testBatch(), scanner.Query{Page: 1, Limit: 10})
	rq.NoError(err)

	for i := 1; i < len(result.Results); i++ {
		rq.GreaterOrEqual(result.Results[i-1].Spread, result.Results[i].Spread)
	}
}

func TestRunPaginationCoversFilteredSetOnce(t *testing.T) {
	rq := require.New(t)

	batch := testBatch()
	limit := 2

	full, err := scanner.Run(batch, scanner.Query{Page: 1, Limit: len(batch)})
	rq.NoError(err)

	var pages []entity.Opportunity

	for page := 1; ; page++ {
		result, err := scanner.Run(batch, scanner.Query{Page: page, Limit: limit})
		rq.NoError(err)

		if len(result.Results) == 0 {
			break
		}

		pages = append(pages, result.Results...)
	}

	rq.Equal(full.Results, pages)
}

func TestRunSummaryCoversFilteredSetNotPage(t *testing.T) {
	rq := require.New(t)

	result, err := scanner.Run(testBatch(), scanner.Query{Page: 1, Limit: 1})
	rq.NoError(err)

	rq.Len(result.Results, 1)
	rq.Equal(5, result.Summary.TotalOpportunities)
	rq.Equal(5, result.Total)
}

func TestRunMinProfitExcludesFromResultsAndSummary(t *testing.T) {
	rq := require.New(t)

	low := entity.Opportunity{
		ID: 10, Coin: "ADA", BuyExchange: "Binance", SellExchange: "OKX",
		BuyPrice: 0.4, SellPrice: 0.4001, Volume: 1000,
	}
	low.Recalculate()
	rq.Less(low.Profit, 0.5)

	result, err := scanner.Run([]entity.Opportunity{low}, scanner.Query{
		Page:   1,
		Limit:  10,
		Filter: scanner.FilterSpec{MinVolume: 0, MinProfit: 0.5},
	})
	rq.NoError(err)

	rq.Empty(result.Results)
	rq.Equal(0, result.Summary.TotalOpportunities)
	rq.Zero(result.Summary.TotalVolume)
}

func TestRunFilterPredicates(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name    string
		filter  scanner.FilterSpec
		wantIDs []int64
	}{
		{
			name:    "unconstrained keeps everything",
			filter:  scanner.FilterSpec{},
			wantIDs: []int64{1, 2, 3, 4, 5},
		},
		{
			name:    "min volume",
			filter:  scanner.FilterSpec{MinVolume: 20000},
			wantIDs: []int64{1, 2, 3},
		},
		{
			name:    "max volume",
			filter:  scanner.FilterSpec{MaxVolume: 1000},
			wantIDs: []int64{5},
		},
		{
			name:    "buy exchange allow-list",
			filter:  scanner.FilterSpec{BuyExchanges: []string{"Binance", "OKX"}},
			wantIDs: []int64{1, 2},
		},
		{
			name:    "currency allow-list",
			filter:  scanner.FilterSpec{Currencies: []string{"BTC"}},
			wantIDs: []int64{1, 5},
		},
		{
			// Commission is volume*0.001*2, so 15000 -> 30.
			name:    "max commission",
			filter:  scanner.FilterSpec{MaxCommission: 35},
			wantIDs: []int64{4, 5},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			result, err := scanner.Run(testBatch(), scanner.Query{
				Page:   1,
				Limit:  10,
				Filter: tc.filter,
				Sort:   scanner.SortSpec{Field: scanner.SortByVolume, Direction: scanner.SortAsc},
			})
			rq.NoError(err)

			ids := make([]int64, 0, len(result.Results))
			for _, opp := range result.Results {
				ids = append(ids, opp.ID)
			}

			rq.ElementsMatch(tc.wantIDs, ids)
		})
	}
}

func TestRunUnknownSortField(t *testing.T) {
	rq := require.New(t)

	_, err := scanner.Run(testBatch(), scanner.Query{
		Page:  1,
		Limit: 10,
		Sort:  scanner.SortSpec{Field: "commission", Direction: scanner.SortDesc},
	})
	rq.Error(err)
	rq.True(failure.IsInvalidArgumentError(err))
}

func TestMatchVolumeBounds(t *testing.T) {
	rq := require.New(t)

	rnd := tests.NewRandomizer()
	filter := scanner.FilterSpec{MinVolume: 20000, MaxVolume: 80000}

	for range 200 {
		volume := rnd.Float64() * 100000
		opp := entity.Opportunity{Coin: "BTC", Volume: volume}

		want := volume >= 20000 && volume <= 80000
		rq.Equal(want, filter.Match(opp), "volume %f", volume)
	}
}

func TestSortStable(t *testing.T) {
	rq := require.New(t)

	opps := []entity.Opportunity{
		{ID: 1, Spread: 1.0},
		{ID: 2, Spread: 1.0},
		{ID: 3, Spread: 2.0},
	}

	rq.NoError(scanner.Sort(opps, scanner.DefaultSort()))

	rq.Equal(int64(3), opps[0].ID)
	rq.Equal(int64(1), opps[1].ID)
	rq.Equal(int64(2), opps[2].ID)
}
