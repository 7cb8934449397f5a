// Package ledger is the in-memory deal history and exchange balance table.
// It is constructed once in main and passed to whoever needs it; process
// restart wipes it, Reset wipes it on demand.
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"

	"arbscan/internal/domain/entity"
	"arbscan/internal/metrics"
)

// QuoteCurrency denominates volumes, profits and seeded balances.
const QuoteCurrency = "USDT"

const seedBalance = 10000

type Metrics struct {
	TotalProfit float64
	DailyProfit float64
	SuccessRate float64
	ActiveDeals int
	Volume24h   float64
	AvgSpread   float64
}

type ProfitPoint struct {
	Date  time.Time
	Value float64
}

type Ledger struct {
	mu        sync.Mutex
	exchanges []string
	deals     []entity.Deal
	balances  map[string]map[string]float64
	nextID    int64
}

func New(exchanges []string) *Ledger {
	l := &Ledger{exchanges: exchanges}
	l.seed()

	return l
}

// Submit records the deal and folds its net profit into the sell exchange's
// quote balance. The returned deal carries the assigned identifier.
func (l *Ledger) Submit(_ context.Context, deal entity.Deal) (entity.Deal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	deal.ID = l.nextID

	if deal.ExecutedAt.IsZero() {
		deal.ExecutedAt = time.Now()
	}

	l.deals = append(l.deals, deal)
	l.creditLocked(deal.Opportunity.SellExchange, QuoteCurrency, deal.NetProfit)

	metrics.DealsExecuted.Inc()

	return deal, nil
}

// Reset drops the history and re-seeds every balance.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.deals = nil
	l.nextID = 0
	l.seed()
}

func (l *Ledger) History() []entity.Deal {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]entity.Deal(nil), l.deals...)
}

// Balances returns a deep copy of the exchange balance table.
func (l *Ledger) Balances() map[string]map[string]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]map[string]float64, len(l.balances))
	for exchange, currencies := range l.balances {
		out[exchange] = make(map[string]float64, len(currencies))
		for currency, amount := range currencies {
			out[exchange][currency] = amount
		}
	}

	return out
}

// Metrics derives the portfolio view from the deal history.
func (l *Ledger) Metrics(now time.Time) Metrics {
	l.mu.Lock()
	defer l.mu.Unlock()

	m := Metrics{}

	if len(l.deals) == 0 {
		return m
	}

	profitable := 0

	for _, deal := range l.deals {
		m.TotalProfit += deal.NetProfit
		m.AvgSpread += deal.Opportunity.Spread

		if deal.NetProfit > 0 {
			profitable++
		}

		age := now.Sub(deal.ExecutedAt)
		if age <= 24*time.Hour {
			m.DailyProfit += deal.NetProfit
			m.Volume24h += deal.Opportunity.Volume
		}

		if age <= time.Hour {
			m.ActiveDeals++
		}
	}

	m.TotalProfit = entity.Round2(m.TotalProfit)
	m.DailyProfit = entity.Round2(m.DailyProfit)
	m.AvgSpread = entity.Round2(m.AvgSpread / float64(len(l.deals)))
	m.SuccessRate = entity.Round2(float64(profitable) / float64(len(l.deals)) * 100)

	return m
}

// ProfitChart buckets net profit per calendar day (in now's zone) over the
// trailing week, oldest bucket first.
func (l *Ledger) ProfitChart(now time.Time, days int) []ProfitPoint {
	l.mu.Lock()
	defer l.mu.Unlock()

	points := make([]ProfitPoint, days)
	for i := range points {
		points[i].Date = dayOf(now.AddDate(0, 0, i-days+1))
	}

	for _, deal := range l.deals {
		day := dayOf(deal.ExecutedAt.In(now.Location()))

		if _, idx, ok := lo.FindIndexOf(points, func(p ProfitPoint) bool {
			return p.Date.Equal(day)
		}); ok {
			points[idx].Value += deal.NetProfit
		}
	}

	return points
}

// dayOf is midnight of t's calendar day in t's zone. Truncate would align
// to absolute 24h epochs and shift late-evening deals into the next chart
// day.
func dayOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func (l *Ledger) seed() {
	l.balances = make(map[string]map[string]float64, len(l.exchanges))
	for _, exchange := range l.exchanges {
		l.balances[exchange] = map[string]float64{QuoteCurrency: seedBalance}
	}
}

func (l *Ledger) creditLocked(exchange, currency string, amount float64) {
	if _, ok := l.balances[exchange]; !ok {
		l.balances[exchange] = map[string]float64{}
	}

	l.balances[exchange][currency] += amount
}
