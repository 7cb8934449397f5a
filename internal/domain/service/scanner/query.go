// Package scanner filters, sorts and paginates opportunity batches.
package scanner

import (
	"sort"
	"time"

	"git.appkode.ru/pub/go/failure"
	"github.com/samber/lo"

	"arbscan/internal/domain/entity"
	"arbscan/pkg/errcodes"
)

type SortField string

const (
	SortBySpread SortField = "spread"
	SortByProfit SortField = "profit"
	SortByVolume SortField = "volume"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type SortSpec struct {
	Field     SortField
	Direction SortDirection
}

// DefaultSort orders by spread, best first.
func DefaultSort() SortSpec {
	return SortSpec{Field: SortBySpread, Direction: SortDesc}
}

type Query struct {
	Page   int
	Limit  int
	Filter FilterSpec
	Sort   SortSpec
}

type Result struct {
	Results []entity.Opportunity
	Summary entity.Summary
	Page    int
	Limit   int
	Total   int
}

// Run applies the query to the batch: filter, stable sort, page slice. The
// summary always covers the whole filtered set, not the returned page.
// Non-positive page or limit values are invalid input, rejected before any
// filtering happens.
func Run(batch []entity.Opportunity, q Query) (Result, error) {
	if q.Page <= 0 || q.Limit <= 0 {
		return Result{}, failure.NewInvalidArgumentError(
			"page and limit must be positive",
			failure.WithCode(errcodes.InvalidPaging),
		)
	}

	if q.Sort == (SortSpec{}) {
		q.Sort = DefaultSort()
	}

	key, err := sortKey(q.Sort.Field)
	if err != nil {
		return Result{}, err
	}

	filtered := lo.Filter(batch, func(opp entity.Opportunity, _ int) bool {
		return q.Filter.Match(opp)
	})

	sortBatch(filtered, q.Sort, key)

	skip := (q.Page - 1) * q.Limit
	if skip > len(filtered) {
		skip = len(filtered)
	}

	end := min(skip+q.Limit, len(filtered))

	return Result{
		Results: filtered[skip:end],
		Summary: entity.Summarize(filtered, time.Now()),
		Page:    q.Page,
		Limit:   q.Limit,
		Total:   len(filtered),
	}, nil
}

// Sort orders the batch in place by the given spec. The underlying
// comparison is stable, so equal keys keep their relative order.
func Sort(batch []entity.Opportunity, spec SortSpec) error {
	if spec == (SortSpec{}) {
		spec = DefaultSort()
	}

	key, err := sortKey(spec.Field)
	if err != nil {
		return err
	}

	sortBatch(batch, spec, key)

	return nil
}

func sortBatch(batch []entity.Opportunity, spec SortSpec, key func(entity.Opportunity) float64) {
	sort.SliceStable(batch, func(i, j int) bool {
		if spec.Direction == SortAsc {
			return key(batch[i]) < key(batch[j])
		}
		return key(batch[i]) > key(batch[j])
	})
}

func sortKey(field SortField) (func(entity.Opportunity) float64, error) {
	switch field {
	case SortBySpread:
		return func(o entity.Opportunity) float64 { return o.Spread }, nil
	case SortByProfit:
		return func(o entity.Opportunity) float64 { return o.Profit }, nil
	case SortByVolume:
		return func(o entity.Opportunity) float64 { return o.Volume }, nil
	default:
		return nil, failure.NewInvalidArgumentError(
			"unknown sort field "+string(field),
			failure.WithCode(errcodes.InvalidSortField),
		)
	}
}
