package entity

import "time"

type DealStatus string

const DealStatusExecuted DealStatus = "executed"

// Deal freezes an executed opportunity: every Opportunity field at execution
// time plus the derived commission and the net result.
type Deal struct {
	ID          int64       `json:"id"`
	Opportunity Opportunity `json:"opportunity"`
	Commission  float64     `json:"commission"`
	NetProfit   float64     `json:"netProfit"`
	Status      DealStatus  `json:"status"`
	ExecutedAt  time.Time   `json:"executedAt"`
}

// NewDeal settles an opportunity into a deal record. Net profit is the
// opportunity profit minus the two-leg commission.
func NewDeal(opp Opportunity, now time.Time) Deal {
	commission := opp.Commission()

	return Deal{
		Opportunity: opp,
		Commission:  commission,
		NetProfit:   opp.Profit - commission,
		Status:      DealStatusExecuted,
		ExecutedAt:  now,
	}
}
