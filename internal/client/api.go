// Package client is the scanner API as consumed by the reconciliation
// client: the HTTP query/ledger endpoints and the websocket feed.
package client

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"arbscan/internal/domain/entity"
	"arbscan/internal/domain/service/scanner"
	"arbscan/pkg/lox"
	"arbscan/pkg/rest"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

type API struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPI(baseURL string, httpClient *http.Client) API {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return API{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Query runs one scanner query and converts the page into domain records.
func (a API) Query(ctx context.Context, q scanner.Query) (scanner.Result, error) {
	endpoint := a.baseURL + "/v1/scanner?" + queryValues(q).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return scanner.Result{}, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	var response rest.ScannerResponse
	if err := a.do(req, &response); err != nil {
		return scanner.Result{}, err
	}

	return newDomainResult(response)
}

// Submit sends an executed deal to the ledger endpoint.
func (a API) Submit(ctx context.Context, deal entity.Deal) (bool, error) {
	body, err := json.Marshal(newRESTDeal(deal))
	if err != nil {
		return false, fmt.Errorf("json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, a.baseURL+"/v1/deals", bytes.NewReader(body),
	)
	if err != nil {
		return false, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	var ack rest.DealAck
	if err := a.do(req, &ack); err != nil {
		return false, err
	}

	return ack.Success, nil
}

// Balances fetches the live exchange balance table.
func (a API) Balances(ctx context.Context) (map[string]map[string]float64, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, a.baseURL+"/v1/balances", http.NoBody,
	)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	var response rest.BalancesResponse
	if err := a.do(req, &response); err != nil {
		return nil, err
	}

	return response.Balances, nil
}

func (a API) do(req *http.Request, dest any) error {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpClient.Do: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var restErr rest.Error
		if err := json.NewDecoder(resp.Body).Decode(&restErr); err == nil && restErr.Code != "" {
			return fmt.Errorf("server: %s (%s)", restErr.Message, restErr.Code)
		}

		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("json.Decode: %w", err)
	}

	return nil
}

func queryValues(q scanner.Query) url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("limit", strconv.Itoa(q.Limit))

	setFloat := func(name string, v float64) {
		if v > 0 {
			values.Set(name, strconv.FormatFloat(v, 'f', -1, 64))
		}
	}

	setFloat("minVolume", q.Filter.MinVolume)
	setFloat("maxVolume", q.Filter.MaxVolume)
	setFloat("minProfit", q.Filter.MinProfit)
	setFloat("spread", q.Filter.MinSpread)
	setFloat("maxCommission", q.Filter.MaxCommission)

	for _, e := range q.Filter.BuyExchanges {
		values.Add("buyExchanges", e)
	}
	for _, e := range q.Filter.SellExchanges {
		values.Add("sellExchanges", e)
	}
	for _, c := range q.Filter.Currencies {
		values.Add("currencies", c)
	}

	if q.Sort.Field != "" {
		values.Set("sort", string(q.Sort.Field))
		values.Set("direction", string(q.Sort.Direction))
	}

	return values
}

func newDomainResult(response rest.ScannerResponse) (scanner.Result, error) {
	results, err := lox.MapErr(response.Results, newDomainOpportunity)
	if err != nil {
		return scanner.Result{}, fmt.Errorf("newDomainOpportunity: %w", err)
	}

	lastUpdate, err := time.Parse(time.RFC3339, response.Summary.LastUpdateTime)
	if err != nil {
		return scanner.Result{}, fmt.Errorf("parse lastUpdateTime: %w", err)
	}

	return scanner.Result{
		Results: results,
		Summary: entity.Summary{
			TotalOpportunities: response.Summary.TotalOpportunities,
			AvgSpread:          response.Summary.AvgSpread,
			TotalVolume:        response.Summary.TotalVolume,
			LastUpdateTime:     lastUpdate,
		},
		Page:  response.Pagination.Page,
		Limit: response.Pagination.Limit,
		Total: response.Pagination.Total,
	}, nil
}

func newDomainOpportunity(opp rest.Opportunity) (entity.Opportunity, error) {
	lastUpdate, err := time.Parse(time.RFC3339, opp.LastUpdate)
	if err != nil {
		return entity.Opportunity{}, fmt.Errorf("parse lastUpdate: %w", err)
	}

	return entity.Opportunity{
		ID:           opp.ID,
		Coin:         opp.Coin,
		BuyExchange:  opp.BuyExchange,
		SellExchange: opp.SellExchange,
		BuyPrice:     opp.BuyPrice,
		SellPrice:    opp.SellPrice,
		Volume:       opp.Volume,
		Spread:       opp.Spread,
		Profit:       opp.Profit,
		LastUpdate:   lastUpdate,
	}, nil
}

func newRESTDeal(deal entity.Deal) rest.Deal {
	return rest.Deal{
		Opportunity: rest.Opportunity{
			ID:           deal.Opportunity.ID,
			Coin:         deal.Opportunity.Coin,
			BuyExchange:  deal.Opportunity.BuyExchange,
			SellExchange: deal.Opportunity.SellExchange,
			BuyPrice:     deal.Opportunity.BuyPrice,
			SellPrice:    deal.Opportunity.SellPrice,
			Volume:       deal.Opportunity.Volume,
			Spread:       deal.Opportunity.Spread,
			Profit:       deal.Opportunity.Profit,
			LastUpdate:   deal.Opportunity.LastUpdate.Format(time.RFC3339),
		},
		Commission: deal.Commission,
		NetProfit:  deal.NetProfit,
		Status:     string(deal.Status),
		ExecutedAt: deal.ExecutedAt.Format(time.RFC3339),
	}
}
