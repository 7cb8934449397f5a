package server

import (
	"net/http"
	"time"

	"arbscan/internal/domain/entity"
	"arbscan/internal/ledger"
	"arbscan/pkg/httpx/reply"
	"arbscan/pkg/lox"
	"arbscan/pkg/rest"
)

const profitChartDays = 7

type dealLedger interface {
	Metrics(now time.Time) ledger.Metrics
	ProfitChart(now time.Time, days int) []ledger.ProfitPoint
	History() []entity.Deal
	Balances() map[string]map[string]float64
	Reset()
}

type DashboardServer struct {
	ledger dealLedger
}

func NewDashboardServer(dealLedger dealLedger) DashboardServer {
	return DashboardServer{
		ledger: dealLedger,
	}
}

func (s DashboardServer) getV1Dashboard(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	now := time.Now()

	m := s.ledger.Metrics(now)

	response := rest.DashboardResponse{
		Metrics: rest.DashboardMetrics{
			TotalProfit: m.TotalProfit,
			DailyProfit: m.DailyProfit,
			SuccessRate: m.SuccessRate,
			ActiveDeals: m.ActiveDeals,
			Volume24h:   m.Volume24h,
			AvgSpread:   m.AvgSpread,
		},
		ProfitChart: lox.Map(s.ledger.ProfitChart(now, profitChartDays), newRESTProfitPoint),
		Deals:       lox.Map(s.ledger.History(), newRESTDeal),
	}

	reply.JSON(ctx, w, http.StatusOK, response)

	return nil
}

func (s DashboardServer) postV1DashboardReset(w http.ResponseWriter, r *http.Request) error {
	s.ledger.Reset()

	reply.JSON(r.Context(), w, http.StatusOK, rest.ResetResponse{
		Success: true,
		Message: "Dashboard state has been reset",
	})

	return nil
}

func (s DashboardServer) getV1Balances(w http.ResponseWriter, r *http.Request) error {
	reply.JSON(r.Context(), w, http.StatusOK, rest.BalancesResponse{
		Balances: s.ledger.Balances(),
	})

	return nil
}
