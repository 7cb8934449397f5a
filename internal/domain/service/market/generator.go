package market

import (
	"math/rand"
	"sync"
	"time"

	"arbscan/internal/domain"
	"arbscan/internal/domain/entity"
	"arbscan/pkg/errcodes"
)

const (
	minSpreadRate = 0.001
	maxSpreadRate = 0.02

	volumeJitterRate = 0.2

	// Rejection sampling for a sell exchange distinct from the buy one is
	// bounded; with >= 2 exchanges the fallback picks the next venue.
	maxExchangeRetries = 8
)

// Generator produces batches of internally consistent opportunities: the
// sell leg always prices strictly above the buy leg.
type Generator struct {
	assets    []entity.Asset
	exchanges []string
	model     *Model

	mu     sync.Mutex
	rnd    *rand.Rand
	nextID int64
}

// NewGenerator requires at least two exchanges; anything less cannot host a
// cross-exchange trade and is rejected up front.
func NewGenerator(assets []entity.Asset, exchanges []string, rnd *rand.Rand) (*Generator, error) {
	if len(exchanges) < 2 {
		return nil, domain.NewError(errcodes.TooFewExchanges, "at least two exchanges required")
	}

	if len(assets) == 0 {
		return nil, domain.NewError(errcodes.UnknownAsset, "empty asset table")
	}

	return &Generator{
		assets:    assets,
		exchanges: exchanges,
		model:     NewModel(assets, rnd),
		rnd:       rnd,
	}, nil
}

// Generate produces count opportunities, walking the asset table round-robin
// so every coin stays represented in large batches.
func (g *Generator) Generate(count int) []entity.Opportunity {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	batch := make([]entity.Opportunity, 0, count)

	for i := 0; i < count; i++ {
		asset := g.assets[i%len(g.assets)]

		buyExchange := g.exchanges[g.rnd.Intn(len(g.exchanges))]
		sellExchange := g.pickDistinctExchange(buyExchange)

		// The buy leg is sampled first; the sell leg is derived from it
		// with a strictly positive spread. This ordering is what makes a
		// non-positive spread impossible.
		buyPrice, _ := g.model.PriceAround(asset.Symbol)
		spreadRate := minSpreadRate + g.rnd.Float64()*(maxSpreadRate-minSpreadRate)
		sellPrice := buyPrice * (1 + spreadRate)

		volume := entity.Round2(asset.BaseVolume * (1 - volumeJitterRate + g.rnd.Float64()*2*volumeJitterRate))

		g.nextID++
		opp := entity.Opportunity{
			ID:           g.nextID,
			Coin:         asset.Symbol,
			BuyExchange:  buyExchange,
			SellExchange: sellExchange,
			BuyPrice:     buyPrice,
			SellPrice:    sellPrice,
			Volume:       volume,
			LastUpdate:   now,
		}
		opp.Recalculate()

		batch = append(batch, opp)
	}

	return batch
}

func (g *Generator) pickDistinctExchange(buyExchange string) string {
	for i := 0; i < maxExchangeRetries; i++ {
		candidate := g.exchanges[g.rnd.Intn(len(g.exchanges))]
		if candidate != buyExchange {
			return candidate
		}
	}

	for i, exchange := range g.exchanges {
		if exchange == buyExchange {
			return g.exchanges[(i+1)%len(g.exchanges)]
		}
	}

	return g.exchanges[0]
}
