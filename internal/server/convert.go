package server

import (
	"fmt"
	"time"

	"arbscan/internal/domain/entity"
	"arbscan/internal/domain/service/scanner"
	"arbscan/internal/ledger"
	"arbscan/pkg/lox"
	"arbscan/pkg/rest"
)

func newRESTScannerResponse(result scanner.Result) rest.ScannerResponse {
	return rest.ScannerResponse{
		Results: lox.Map(result.Results, newRESTOpportunity),
		Summary: rest.Summary{
			TotalOpportunities: result.Summary.TotalOpportunities,
			AvgSpread:          result.Summary.AvgSpread,
			TotalVolume:        result.Summary.TotalVolume,
			LastUpdateTime:     result.Summary.LastUpdateTime.Format(time.RFC3339),
		},
		Pagination: rest.Pagination{
			Page:  result.Page,
			Limit: result.Limit,
			Total: result.Total,
		},
	}
}

func newRESTOpportunity(opp entity.Opportunity) rest.Opportunity {
	return rest.Opportunity{
		ID:           opp.ID,
		Coin:         opp.Coin,
		BuyExchange:  opp.BuyExchange,
		SellExchange: opp.SellExchange,
		BuyPrice:     opp.BuyPrice,
		SellPrice:    opp.SellPrice,
		Volume:       opp.Volume,
		Spread:       opp.Spread,
		Profit:       opp.Profit,
		LastUpdate:   opp.LastUpdate.Format(time.RFC3339),
	}
}

func newRESTDeal(deal entity.Deal) rest.Deal {
	return rest.Deal{
		Opportunity: newRESTOpportunity(deal.Opportunity),
		Commission:  deal.Commission,
		NetProfit:   deal.NetProfit,
		Status:      string(deal.Status),
		ExecutedAt:  deal.ExecutedAt.Format(time.RFC3339),
	}
}

func newRESTProfitPoint(point ledger.ProfitPoint) rest.ProfitPoint {
	return rest.ProfitPoint{
		Date:  point.Date.Format(time.DateOnly),
		Value: entity.Round2(point.Value),
	}
}

func newRESTPriceUpdate(update entity.PriceUpdate) rest.PriceUpdate {
	return rest.PriceUpdate{
		Pair:      update.Pair,
		Exchange:  update.Exchange,
		Price:     update.Price,
		Timestamp: update.Timestamp.UnixMilli(),
	}
}

func newDomainDeal(deal rest.Deal) (entity.Deal, error) {
	opp, err := newDomainOpportunity(deal.Opportunity)
	if err != nil {
		return entity.Deal{}, fmt.Errorf("newDomainOpportunity: %w", err)
	}

	executedAt, err := time.Parse(time.RFC3339, deal.ExecutedAt)
	if err != nil {
		return entity.Deal{}, fmt.Errorf("parse executedAt: %w", err)
	}

	return entity.Deal{
		Opportunity: opp,
		Commission:  deal.Commission,
		NetProfit:   deal.NetProfit,
		Status:      entity.DealStatus(deal.Status),
		ExecutedAt:  executedAt,
	}, nil
}

func newDomainOpportunity(opp rest.Opportunity) (entity.Opportunity, error) {
	if opp.BuyExchange == opp.SellExchange {
		return entity.Opportunity{}, fmt.Errorf("buy and sell exchange must differ")
	}

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
