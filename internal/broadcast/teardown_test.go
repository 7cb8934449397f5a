package broadcast

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"arbscan/internal/domain/entity"
)

type countingSink struct {
	batches chan []entity.PriceUpdate
}

func (s countingSink) SendPriceUpdates(ctx context.Context, updates []entity.PriceUpdate) error {
	select {
	case s.batches <- updates:
	case <-ctx.Done():
	}

	return nil
}

// A period restart replaces the ticker mid-loop; teardown must stop the
// replacement, not the ticker Run started with.
func TestTeardownStopsReplacementTicker(t *testing.T) {
	rq := require.New(t)

	sink := countingSink{batches: make(chan []entity.PriceUpdate, 16)}
	streamer := NewStreamer(
		entity.DefaultAssets(),
		entity.DefaultExchanges(),
		sink,
		rand.New(rand.NewSource(1)), //nolint:gosec
	).WithPeriod(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- streamer.Run(ctx) }()

	rq.NoError(streamer.SetPeriod(1))

	select {
	case <-sink.batches:
	case <-time.After(3 * time.Second):
		rq.FailNow("no tick after period change")
	}

	cancel()
	rq.NoError(<-done)

	replacement := streamer.ticker

	// Drain a tick delivered before teardown finished; the channel holds
	// at most one.
	select {
	case <-replacement.C:
	default:
	}

	select {
	case <-replacement.C:
		rq.FailNow("replacement ticker still firing after teardown")
	case <-time.After(1500 * time.Millisecond):
	}
}
