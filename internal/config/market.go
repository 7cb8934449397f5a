package config

import "time"

type Market struct {
	// BatchSize is how many opportunities one scanner query generates
	// before filtering.
	BatchSize int `env:"MARKET_BATCH_SIZE" envDefault:"200"`

	// UpdatePeriod is the initial broadcast period for a fresh websocket
	// connection; clients adjust it per connection afterwards.
	UpdatePeriod time.Duration `env:"MARKET_UPDATE_PERIOD" envDefault:"5s"`
}
