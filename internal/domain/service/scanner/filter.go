package scanner

import (
	"slices"

	"arbscan/internal/domain/entity"
)

// FilterSpec is a conjunction of independent predicates. A zero numeric
// bound or an empty allow-list means "unconstrained" — the documented
// consequence is that a legitimate bound of exactly zero cannot be
// expressed.
type FilterSpec struct {
	MinVolume     float64
	MaxVolume     float64
	MinProfit     float64
	MinSpread     float64
	MaxCommission float64

	BuyExchanges  []string
	SellExchanges []string
	Currencies    []string
}

// Match applies every constrained predicate; commission is derived from the
// volume at match time, never read from the record.
func (f FilterSpec) Match(opp entity.Opportunity) bool {
	if f.MinVolume > 0 && opp.Volume < f.MinVolume {
		return false
	}

	if f.MaxVolume > 0 && opp.Volume > f.MaxVolume {
		return false
	}

	if f.MinProfit > 0 && opp.Profit < f.MinProfit {
		return false
	}

	if f.MinSpread > 0 && opp.Spread < f.MinSpread {
		return false
	}

	if f.MaxCommission > 0 && opp.Commission() > f.MaxCommission {
		return false
	}

	if len(f.BuyExchanges) > 0 && !slices.Contains(f.BuyExchanges, opp.BuyExchange) {
		return false
	}

	if len(f.SellExchanges) > 0 && !slices.Contains(f.SellExchanges, opp.SellExchange) {
		return false
	}

	if len(f.Currencies) > 0 && !slices.Contains(f.Currencies, opp.Coin) {
		return false
	}

	return true
}
