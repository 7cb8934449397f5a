// Package reconcile keeps a client-local working set of opportunities
// consistent with the last full query result and the price updates streamed
// in after it, without re-querying on every tick.
package reconcile

import (
	"context"
	"sync"
	"time"

	"git.appkode.ru/pub/go/failure"

	"arbscan/internal/domain"
	"arbscan/internal/domain/entity"
	"arbscan/internal/domain/service/scanner"
	"arbscan/pkg/contextx"
	"arbscan/pkg/errcodes"
	"arbscan/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Querier is the scanner query endpoint as the store sees it.
type Querier interface {
	Query(ctx context.Context, q scanner.Query) (scanner.Result, error)
}

// Ledger is the external deal collaborator; the store only needs its
// acknowledgement.
type Ledger interface {
	Submit(ctx context.Context, deal entity.Deal) (bool, error)
}

type Store struct {
	querier Querier
	ledger  Ledger

	mu             sync.Mutex
	page           int
	limit          int
	filter         scanner.FilterSpec
	sort           scanner.SortSpec
	opportunities  []entity.Opportunity
	summary        entity.Summary
	refetchPending bool
}

func NewStore(querier Querier, ledger Ledger) *Store {
	return &Store{
		querier: querier,
		ledger:  ledger,
		page:    1,
		limit:   50,
		sort:    scanner.DefaultSort(),
	}
}

// Configure sets the active query view. The next Refresh and every later
// reconciliation pass use these bounds.
func (s *Store) Configure(page, limit int, filter scanner.FilterSpec, sort scanner.SortSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.page = page
	s.limit = limit
	s.filter = filter
	s.sort = sort
}

// Refresh replaces the whole working set with a fresh page from the server.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	q := s.query()
	s.mu.Unlock()

	result, err := s.querier.Query(ctx, q)
	if err != nil {
		return domain.WrapError(err, errcodes.RefetchFailed, "refetch failed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.opportunities = result.Results
	s.summary = result.Summary

	return nil
}

// ApplyUpdates patches the working set with one broadcast batch. Updates
// are applied strictly in the order received, so a later update for the
// same (coin, exchange) key wins within the batch. Records whose patched
// sell leg no longer clears the buy leg are dropped as stale. After the
// pass the local summary is recomputed and the set re-sorted; if any
// surviving record drifted below the active minimum bounds, one
// asynchronous refetch is issued — never more than one in flight.
func (s *Store) ApplyUpdates(ctx context.Context, updates []entity.PriceUpdate) {
	if len(updates) == 0 {
		return
	}

	s.mu.Lock()

	for _, update := range updates {
		s.patchLocked(update)
	}

	s.dropStaleLocked()
	s.summary = entity.Summarize(s.opportunities, time.Now())

	if err := scanner.Sort(s.opportunities, s.sort); err != nil {
		logger(ctx).Error("scanner.Sort", logx.Error(err))
	}

	drifted := s.driftedLocked()
	refetch := drifted && !s.refetchPending
	if refetch {
		s.refetchPending = true
	}

	s.mu.Unlock()

	if refetch {
		go s.refetch(ctx)
	}
}

// Execute removes the opportunity optimistically, settles it into a deal
// and submits the deal to the ledger. If the ledger rejects it, the
// opportunity is put back into the working set and the error surfaced.
func (s *Store) Execute(ctx context.Context, opportunityID int64) (entity.Deal, error) {
	s.mu.Lock()
	opp, ok := s.removeLocked(opportunityID)
	s.mu.Unlock()

	if !ok {
		return entity.Deal{}, failure.NewNotFoundError(
			"opportunity not in working set",
			failure.WithCode(errcodes.OpportunityNotFound),
		)
	}

	deal := entity.NewDeal(opp, time.Now())

	acked, err := s.ledger.Submit(ctx, deal)
	if err != nil || !acked {
		s.reinsert(ctx, opp)

		return entity.Deal{}, domain.WrapError(err, errcodes.DealRejected, "deal submission failed")
	}

	return deal, nil
}

// Snapshot returns a copy of the working set and its summary.
func (s *Store) Snapshot() ([]entity.Opportunity, entity.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]entity.Opportunity(nil), s.opportunities...), s.summary
}

// RefetchPending reports whether a drift refetch is in flight.
func (s *Store) RefetchPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.refetchPending
}

func (s *Store) query() scanner.Query {
	return scanner.Query{
		Page:   s.page,
		Limit:  s.limit,
		Filter: s.filter,
		Sort:   s.sort,
	}
}

// patchLocked updates every local record holding the touched
// (coin, exchange) pair on either leg and re-derives its numbers.
func (s *Store) patchLocked(update entity.PriceUpdate) {
	for i := range s.opportunities {
		opp := &s.opportunities[i]
		if opp.Coin != update.Pair {
			continue
		}

		switch update.Exchange {
		case opp.BuyExchange:
			opp.BuyPrice = update.Price
		case opp.SellExchange:
			opp.SellPrice = update.Price
		default:
			continue
		}

		opp.Recalculate()
		opp.LastUpdate = update.Timestamp
	}
}

func (s *Store) dropStaleLocked() {
	kept := s.opportunities[:0]
	for _, opp := range s.opportunities {
		if opp.Viable() {
			kept = append(kept, opp)
		}
	}

	s.opportunities = kept
}

func (s *Store) driftedLocked() bool {
	for _, opp := range s.opportunities {
		if s.filter.MinProfit > 0 && opp.Profit < s.filter.MinProfit {
			return true
		}

		if s.filter.MinSpread > 0 && opp.Spread < s.filter.MinSpread {
			return true
		}
	}

	return false
}

// refetch resolves one drift trigger. Patches already applied stay visible
// until the server response lands; the pending flag clears on completion
// and on failure alike.
func (s *Store) refetch(ctx context.Context) {
	err := s.Refresh(ctx)

	s.mu.Lock()
	s.refetchPending = false
	s.mu.Unlock()

	if err != nil {
		logger(ctx).Error("drift refetch", logx.Error(err))
	}
}

func (s *Store) removeLocked(id int64) (entity.Opportunity, bool) {
	for i, opp := range s.opportunities {
		if opp.ID == id {
			s.opportunities = append(s.opportunities[:i], s.opportunities[i+1:]...)
			return opp, true
		}
	}

	return entity.Opportunity{}, false
}

func (s *Store) reinsert(ctx context.Context, opp entity.Opportunity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.opportunities = append(s.opportunities, opp)

	if err := scanner.Sort(s.opportunities, s.sort); err != nil {
		logger(ctx).Error("scanner.Sort", logx.Error(err))
	}
}
