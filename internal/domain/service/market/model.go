// Package market holds the synthetic price model and the opportunity
// generator built on top of it.
package market

import (
	"math"
	"math/rand"

	"arbscan/internal/domain"
	"arbscan/internal/domain/entity"
)

const (
	// Each step moves the price by at most this share of the asset's base
	// price. Stepping relative to the base, not the current price, keeps
	// drift from accumulating.
	maxStepRate = 0.005

	// Hard band around the base price; no walk ever leaves it.
	bandRate = 0.02
)

// Model is the per-asset price source. It owns its random source, so a
// Model instance must not be shared across goroutines; every consumer
// (generator, per-connection streamer) constructs its own.
type Model struct {
	assets map[string]entity.Asset
	rnd    *rand.Rand
}

func NewModel(assets []entity.Asset, rnd *rand.Rand) *Model {
	bySymbol := make(map[string]entity.Asset, len(assets))
	for _, a := range assets {
		bySymbol[a.Symbol] = a
	}

	return &Model{
		assets: bySymbol,
		rnd:    rnd,
	}
}

// BasePrice returns the configured base price for the asset.
func (m *Model) BasePrice(symbol string) (float64, error) {
	asset, ok := m.assets[symbol]
	if !ok {
		return 0, domain.ErrUnknownAsset(symbol)
	}

	return asset.BasePrice, nil
}

// NextPrice advances the bounded random walk for one asset: a step of at
// most ±0.5% of the base price, clamped into [base×0.98, base×1.02].
func (m *Model) NextPrice(symbol string, current float64) (float64, error) {
	asset, ok := m.assets[symbol]
	if !ok {
		return 0, domain.ErrUnknownAsset(symbol)
	}

	base := asset.BasePrice
	step := (m.rnd.Float64()*2 - 1) * base * maxStepRate
	next := current + step

	next = math.Min(math.Max(next, base*(1-bandRate)), base*(1+bandRate))

	return RoundPrice(next, base), nil
}

// PriceAround samples a quote within ±1% of the asset's base price. Used
// by the generator for the buy leg of a fresh opportunity.
func (m *Model) PriceAround(symbol string) (float64, error) {
	asset, ok := m.assets[symbol]
	if !ok {
		return 0, domain.ErrUnknownAsset(symbol)
	}

	variation := (m.rnd.Float64() - 0.5) * 0.02

	return RoundPrice(asset.BasePrice*(1+variation), asset.BasePrice), nil
}

// RoundPrice keeps 8 decimal digits for small-denomination assets
// (base < 0.01) and 2 for everything else.
func RoundPrice(price, base float64) float64 {
	scale := 100.0
	if base < 0.01 {
		scale = 1e8
	}

	return math.Round(price*scale) / scale
}
