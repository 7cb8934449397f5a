// Wire-level types of the scanner HTTP API and the websocket feed.
package rest

// Opportunity is a candidate arbitrage trade between two exchanges.
type Opportunity struct {
	ID           int64   `json:"id"`
	Coin         string  `json:"coin"`
	BuyExchange  string  `json:"buyExchange"`
	SellExchange string  `json:"sellExchange"`
	BuyPrice     float64 `json:"buyPrice"`
	SellPrice    float64 `json:"sellPrice"`
	Volume       float64 `json:"volume"`
	Spread       float64 `json:"spread"`
	Profit       float64 `json:"profit"`
	LastUpdate   string  `json:"lastUpdate"`
}

// Summary aggregates the whole filtered set, not a single page.
type Summary struct {
	TotalOpportunities int     `json:"totalOpportunities"`
	AvgSpread          float64 `json:"avgSpread"`
	TotalVolume        float64 `json:"totalVolume"`
	LastUpdateTime     string  `json:"lastUpdateTime"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type ScannerResponse struct {
	Results    []Opportunity `json:"results"`
	Summary    Summary       `json:"summary"`
	Pagination Pagination    `json:"pagination"`
}

type PriceUpdate struct {
	Pair      string  `json:"pair"`
	Exchange  string  `json:"exchange"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}

// Websocket envelope. Type is "price_updates" for server pushes and
// "set_update_period" for the client control message.
type WSMessage struct {
	Type   string        `json:"type"`
	Data   []PriceUpdate `json:"data,omitempty"`
	Period int           `json:"period,omitempty"`
}

const (
	WSTypePriceUpdates    = "price_updates"
	WSTypeSetUpdatePeriod = "set_update_period"
)

// Deal is a ledger submission of an executed opportunity.
type Deal struct {
	Opportunity Opportunity `json:"opportunity" validate:"required"`
	Commission  float64     `json:"commission" validate:"gte=0"`
	NetProfit   float64     `json:"netProfit"`
	Status      string      `json:"status" validate:"required"`
	ExecutedAt  string      `json:"executedAt"`
}

type DealAck struct {
	Success bool  `json:"success"`
	DealID  int64 `json:"dealId,omitempty"`
}

type DashboardMetrics struct {
	TotalProfit float64 `json:"totalProfit"`
	DailyProfit float64 `json:"dailyProfit"`
	SuccessRate float64 `json:"successRate"`
	ActiveDeals int     `json:"activeDeals"`
	Volume24h   float64 `json:"volume24h"`
	AvgSpread   float64 `json:"avgSpread"`
}

type ProfitPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type DashboardResponse struct {
	Metrics     DashboardMetrics `json:"metrics"`
	ProfitChart []ProfitPoint    `json:"profitChart"`
	Deals       []Deal           `json:"deals"`
}

type ResetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// BalancesResponse maps exchange -> currency -> amount.
type BalancesResponse struct {
	Balances map[string]map[string]float64 `json:"balances"`
}

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code string `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`
}
