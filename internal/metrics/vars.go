package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ScannerQueries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arbscan_scanner_queries_total",
		Help: "Number of scanner query requests served",
	})

	PriceUpdatesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arbscan_price_updates_sent_total",
		Help: "Number of price updates pushed over websocket connections",
	})

	StreamConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "arbscan_stream_connections",
		Help: "Currently open websocket feed connections",
	})

	DealsExecuted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arbscan_deals_executed_total",
		Help: "Number of deals recorded by the ledger",
	})
)

func init() {
	prometheus.MustRegister(
		ScannerQueries,
		PriceUpdatesSent,
		StreamConnections,
		DealsExecuted,
	)
}
