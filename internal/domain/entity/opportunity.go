package entity

import (
	"math"
	"time"
)

// Commission rate per leg; every deal has a buy leg and a sell leg.
const CommissionRatePerLeg = 0.001

// Opportunity is a synthetic candidate arbitrage trade: buy Coin on
// BuyExchange, sell it on SellExchange. Spread and Profit are derived from
// the two leg prices and must be recomputed whenever a leg changes.
type Opportunity struct {
	ID           int64     `json:"id"`
	Coin         string    `json:"coin"`
	BuyExchange  string    `json:"buyExchange"`
	SellExchange string    `json:"sellExchange"`
	BuyPrice     float64   `json:"buyPrice"`
	SellPrice    float64   `json:"sellPrice"`
	Volume       float64   `json:"volume"`
	Spread       float64   `json:"spread"`
	Profit       float64   `json:"profit"`
	LastUpdate   time.Time `json:"lastUpdate"`
}

// Recalculate re-derives Spread and Profit from the leg prices. Volume is
// denominated in the quote currency, so profit converts it into base-asset
// units at the buy price first:
//
//	profit = (sell - buy) * (volume / buy)
func (o *Opportunity) Recalculate() {
	o.Spread = Round2((o.SellPrice - o.BuyPrice) / o.BuyPrice * 100)
	o.Profit = Round2((o.SellPrice - o.BuyPrice) * (o.Volume / o.BuyPrice))
}

// Viable reports whether the record still carries a positive spread. A
// patched opportunity whose sell leg no longer exceeds its buy leg is stale
// and must be dropped from any working set.
func (o Opportunity) Viable() bool {
	return o.SellPrice > o.BuyPrice
}

// Commission is derived, never stored: 0.1% of volume per leg, two legs.
func (o Opportunity) Commission() float64 {
	return o.Volume * CommissionRatePerLeg * 2
}

// PriceUpdate is an ephemeral tick for one (coin, exchange) pair. The Pair
// field carries the coin symbol; the name survives from the wire format.
type PriceUpdate struct {
	Pair      string    `json:"pair"`
	Exchange  string    `json:"exchange"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary aggregates a filtered batch.
type Summary struct {
	TotalOpportunities int       `json:"totalOpportunities"`
	AvgSpread          float64   `json:"avgSpread"`
	TotalVolume        float64   `json:"totalVolume"`
	LastUpdateTime     time.Time `json:"lastUpdateTime"`
}

// Summarize computes summary statistics over the whole batch it is given;
// callers must pass the filtered set, not a page of it.
func Summarize(batch []Opportunity, now time.Time) Summary {
	s := Summary{LastUpdateTime: now}

	for _, opp := range batch {
		s.AvgSpread += opp.Spread
		s.TotalVolume += opp.Volume
	}

	s.TotalOpportunities = len(batch)
	if s.TotalOpportunities > 0 {
		s.AvgSpread = Round2(s.AvgSpread / float64(s.TotalOpportunities))
	}

	return s
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
