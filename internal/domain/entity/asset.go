package entity

// Asset is one row of the immutable reference table: the coin symbol with
// the base price and base volume all synthetic data is derived from.
type Asset struct {
	Symbol     string
	BasePrice  float64
	BaseVolume float64
}

// DefaultAssets lists every coin the scanner quotes. Loaded once at process
// start and never mutated.
func DefaultAssets() []Asset {
	return []Asset{
		{Symbol: "BTC", BasePrice: 45000, BaseVolume: 100000},
		{Symbol: "ETH", BasePrice: 2500, BaseVolume: 50000},
		{Symbol: "SOL", BasePrice: 100, BaseVolume: 25000},
		{Symbol: "AVAX", BasePrice: 35, BaseVolume: 20000},
		{Symbol: "BNB", BasePrice: 300, BaseVolume: 30000},
		{Symbol: "XRP", BasePrice: 0.5, BaseVolume: 15000},
		{Symbol: "ADA", BasePrice: 0.4, BaseVolume: 10000},
		{Symbol: "MATIC", BasePrice: 0.8, BaseVolume: 12000},
		{Symbol: "DOT", BasePrice: 7, BaseVolume: 18000},
		{Symbol: "DOGE", BasePrice: 0.08, BaseVolume: 8000},
		{Symbol: "SHIB", BasePrice: 0.00001, BaseVolume: 5000},
		{Symbol: "LINK", BasePrice: 15, BaseVolume: 20000},
		{Symbol: "UNI", BasePrice: 5, BaseVolume: 15000},
		{Symbol: "ATOM", BasePrice: 10, BaseVolume: 20000},
		{Symbol: "TRX", BasePrice: 0.08, BaseVolume: 10000},
	}
}

// DefaultExchanges lists the venues opportunities are generated across.
func DefaultExchanges() []string {
	return []string{"Binance", "Bybit", "OKX", "Huobi"}
}
