package reconcile

import (
	"math"
	"strings"

	"github.com/patrickmn/go-cache"
)

// Deltas smaller than this are floating-point noise and display as zero.
const deltaTolerance = 1e-4

// Session holds the per-exchange, per-currency balance snapshot taken once
// at session start. It exists only to compute change-since-start deltas;
// nothing but re-initialization ever mutates it.
type Session struct {
	snapshot    *cache.Cache
	initialized bool
}

func NewSession() *Session {
	return &Session{
		snapshot: cache.New(cache.NoExpiration, 0),
	}
}

// Init records the starting balances. Repeated calls within one session are
// ignored; Reset starts a new session.
func (s *Session) Init(balances map[string]map[string]float64) {
	if s.initialized {
		return
	}

	for exchange, currencies := range balances {
		for currency, amount := range currencies {
			s.snapshot.Set(snapshotKey(exchange, currency), amount, cache.NoExpiration)
		}
	}

	s.initialized = true
}

func (s *Session) Reset() {
	s.snapshot.Flush()
	s.initialized = false
}

// Deltas subtracts the snapshot from the live balances. Currencies absent
// from the snapshot count from zero.
func (s *Session) Deltas(current map[string]map[string]float64) map[string]map[string]float64 {
	deltas := make(map[string]map[string]float64, len(current))

	for exchange, currencies := range current {
		deltas[exchange] = make(map[string]float64, len(currencies))

		for currency, amount := range currencies {
			var initial float64
			if v, ok := s.snapshot.Get(snapshotKey(exchange, currency)); ok {
				initial = v.(float64)
			}

			delta := amount - initial
			if math.Abs(delta) < deltaTolerance {
				delta = 0
			}

			deltas[exchange][currency] = delta
		}
	}

	return deltas
}

func snapshotKey(exchange, currency string) string {
	return strings.Join([]string{exchange, currency}, "/")
}
