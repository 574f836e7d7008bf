package report

import (
	"fmt"
	"time"

	"github.com/rumor-ml/commons.systems/findash/internal/domain"
)

// FilterByDate keeps the rows whose payment date falls between the first
// day of reference's month and reference itself, both inclusive.
//
// Row order is preserved. A single unparsable payment date fails the call
// with a *domain.ParseError and no rows are returned.
func (e *Engine) FilterByDate(ds *domain.Dataset, reference string) (*domain.Dataset, error) {
	end, err := parseReference(reference)
	if err != nil {
		return nil, err
	}
	start := startOfMonth(end)

	if ds.IsEmpty() {
		e.log.Debug().Str("reference", reference).Msg("Date filter on empty dataset")
		return ds.Select(func(int, domain.Transaction) bool { return false }), nil
	}
	if err := ds.Require(domain.ColumnPaymentDate); err != nil {
		return nil, fmt.Errorf("filter by date: %w", err)
	}

	dates, err := paymentDates(ds)
	if err != nil {
		return nil, fmt.Errorf("filter by date: %w", err)
	}

	filtered := ds.Select(func(i int, _ domain.Transaction) bool {
		return within(dates[i], start, end)
	})

	e.log.Info().
		Str("from", start.Format(time.DateOnly)).
		Str("to", end.Format(time.DateOnly)).
		Int("rows_in", ds.Len()).
		Int("rows_out", filtered.Len()).
		Msg("Filtered transactions by date")
	return filtered, nil
}
