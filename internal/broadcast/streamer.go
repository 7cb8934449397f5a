// Package broadcast drives the per-connection price feed. Every websocket
// connection owns exactly one Streamer: its ticker, its random source and
// its last-known-price table live and die with the connection.
package broadcast

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"git.appkode.ru/pub/go/failure"

	"arbscan/internal/domain/entity"
	"arbscan/internal/domain/service/market"
	"arbscan/internal/metrics"
	"arbscan/pkg/errcodes"
)

const (
	DefaultPeriod = 5 * time.Second

	minPeriodSeconds = 1
	maxPeriodSeconds = 300

	// Share of the asset table touched per tick, and the exchange fan-out
	// per touched asset.
	assetShare   = 0.2
	minExchanges = 2
	maxExchanges = 3
)

// Sink receives one batch of updates per tick. A send error means the
// connection is gone; the streamer stops and cleans up.
type Sink interface {
	SendPriceUpdates(ctx context.Context, updates []entity.PriceUpdate) error
}

// Streamer walks prices per (coin, exchange) key continuously across ticks;
// the walk never restarts from the base price while the connection lives.
type Streamer struct {
	assets    []entity.Asset
	exchanges []string
	model     *market.Model
	sink      Sink
	rnd       *rand.Rand

	period     time.Duration
	periodCh   chan time.Duration
	ticker     *time.Ticker
	lastPrices map[string]float64
}

func NewStreamer(assets []entity.Asset, exchanges []string, sink Sink, rnd *rand.Rand) *Streamer {
	return &Streamer{
		assets:     assets,
		exchanges:  exchanges,
		model:      market.NewModel(assets, rnd),
		sink:       sink,
		rnd:        rnd,
		period:     DefaultPeriod,
		periodCh:   make(chan time.Duration, 1),
		lastPrices: make(map[string]float64, len(assets)*len(exchanges)),
	}
}

func (s *Streamer) WithPeriod(period time.Duration) *Streamer {
	s.period = period
	return s
}

// SetPeriod requests a ticker restart with the new period. The running loop
// cancels its current ticker and creates a fresh one, so at most one ticker
// is ever live for the connection.
func (s *Streamer) SetPeriod(seconds int) error {
	if seconds < minPeriodSeconds || seconds > maxPeriodSeconds {
		return failure.NewInvalidArgumentError(
			fmt.Sprintf("update period must be within [%d, %d] seconds", minPeriodSeconds, maxPeriodSeconds),
			failure.WithCode(errcodes.InvalidUpdatePeriod),
		)
	}

	period := time.Duration(seconds) * time.Second

	// Collapse a pending unconsumed restart; the latest request wins.
	select {
	case <-s.periodCh:
	default:
	}
	s.periodCh <- period

	return nil
}

// Run streams until the context is cancelled or the sink reports the
// connection dead. The ticker is always stopped on the way out.
func (s *Streamer) Run(ctx context.Context) error {
	s.ticker = time.NewTicker(s.period)

	// The closure reads s.ticker at teardown time; a plain deferred Stop
	// would bind the initial ticker and leave a restarted one running.
	defer func() { s.ticker.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case period := <-s.periodCh:
			s.ticker.Stop()
			s.ticker = time.NewTicker(period)
		case <-s.ticker.C:
			updates, err := s.nextBatch(time.Now())
			if err != nil {
				return fmt.Errorf("nextBatch: %w", err)
			}

			if err := s.sink.SendPriceUpdates(ctx, updates); err != nil {
				return fmt.Errorf("sink.SendPriceUpdates: %w", err)
			}

			metrics.PriceUpdatesSent.Add(float64(len(updates)))
		}
	}
}

// nextBatch advances ~20% of the asset table (never less than one asset) on
// 2-3 distinct exchanges each.
func (s *Streamer) nextBatch(now time.Time) ([]entity.PriceUpdate, error) {
	count := int(math.Ceil(float64(len(s.assets)) * assetShare))
	if count < 1 {
		count = 1
	}

	picked := s.rnd.Perm(len(s.assets))[:count]
	updates := make([]entity.PriceUpdate, 0, count*maxExchanges)

	for _, idx := range picked {
		asset := s.assets[idx]

		fanOut := minExchanges + s.rnd.Intn(maxExchanges-minExchanges+1)
		if fanOut > len(s.exchanges) {
			fanOut = len(s.exchanges)
		}

		for _, e := range s.rnd.Perm(len(s.exchanges))[:fanOut] {
			exchange := s.exchanges[e]
			key := asset.Symbol + "-" + exchange

			current, ok := s.lastPrices[key]
			if !ok {
				current = asset.BasePrice
			}

			next, err := s.model.NextPrice(asset.Symbol, current)
			if err != nil {
				return nil, err
			}

			s.lastPrices[key] = next

			updates = append(updates, entity.PriceUpdate{
				Pair:      asset.Symbol,
				Exchange:  exchange,
				Price:     next,
				Timestamp: now,
			})
		}
	}

	return updates, nil
}
