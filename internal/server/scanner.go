package server

import (
	"net/http"
	"net/url"
	"strconv"

	"git.appkode.ru/pub/go/failure"

	"arbscan/internal/domain/entity"
	"arbscan/internal/domain/service/scanner"
	"arbscan/internal/metrics"
	"arbscan/pkg/errcodes"
	"arbscan/pkg/httpx/reply"
)

const (
	defaultPage  = 1
	defaultLimit = 50
)

type opportunitySource interface {
	Generate(count int) []entity.Opportunity
}

type ScannerServer struct {
	source    opportunitySource
	batchSize int
}

func NewScannerServer(source opportunitySource, batchSize int) ScannerServer {
	return ScannerServer{
		source:    source,
		batchSize: batchSize,
	}
}

func (s ScannerServer) getV1Scanner(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	query, err := parseScannerQuery(r.URL.Query())
	if err != nil {
		return err
	}

	result, err := scanner.Run(s.source.Generate(s.batchSize), query)
	if err != nil {
		return err
	}

	metrics.ScannerQueries.Inc()

	reply.JSON(ctx, w, http.StatusOK, newRESTScannerResponse(result))

	return nil
}

// parseScannerQuery reads paging, bounds and allow-lists from the URL.
// Allow-list parameters accept repeated keys. Absent numeric bounds stay
// zero, which the filter treats as unconstrained.
func parseScannerQuery(values url.Values) (scanner.Query, error) {
	page, err := intParam(values, "page", defaultPage)
	if err != nil {
		return scanner.Query{}, err
	}

	limit, err := intParam(values, "limit", defaultLimit)
	if err != nil {
		return scanner.Query{}, err
	}

	if page <= 0 || limit <= 0 {
		return scanner.Query{}, failure.NewInvalidArgumentError(
			"page and limit must be positive",
			failure.WithCode(errcodes.InvalidPaging),
		)
	}

	filter := scanner.FilterSpec{
		BuyExchanges:  values["buyExchanges"],
		SellExchanges: values["sellExchanges"],
		Currencies:    values["currencies"],
	}

	bounds := map[string]*float64{
		"minVolume":     &filter.MinVolume,
		"maxVolume":     &filter.MaxVolume,
		"minProfit":     &filter.MinProfit,
		"spread":        &filter.MinSpread,
		"maxCommission": &filter.MaxCommission,
	}

	for name, dest := range bounds {
		v, err := floatParam(values, name)
		if err != nil {
			return scanner.Query{}, err
		}

		*dest = v
	}

	sort := scanner.SortSpec{
		Field:     scanner.SortField(values.Get("sort")),
		Direction: scanner.SortDirection(values.Get("direction")),
	}
	if sort.Field == "" {
		sort = scanner.DefaultSort()
	} else if sort.Direction == "" {
		sort.Direction = scanner.SortDesc
	}

	return scanner.Query{
		Page:   page,
		Limit:  limit,
		Filter: filter,
		Sort:   sort,
	}, nil
}

func intParam(values url.Values, name string, fallback int) (int, error) {
	raw := values.Get(name)
	if raw == "" {
		return fallback, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, failure.NewInvalidArgumentError(
			"malformed parameter "+name,
			failure.WithCode(errcodes.InvalidPaging),
		)
	}

	return v, nil
}

func floatParam(values url.Values, name string) (float64, error) {
	raw := values.Get(name)
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, failure.NewInvalidArgumentError(
			"malformed parameter "+name,
			failure.WithCode(errcodes.InvalidFilter),
		)
	}

	return v, nil
}
