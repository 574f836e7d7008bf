package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/rumor-ml/commons.systems/findash/internal/domain"
	"github.com/shopspring/decimal"
)

// SpendingByCategory totals one category per calendar month over a window
// that starts on the first of the month 90 days before asOf and ends on
// asOf. An empty asOf means today.
//
// Totals sum raw signed amounts, so refunds reduce them. Months are
// returned most recent first. Any unparsable payment date in the dataset
// fails the call, even on rows of other categories.
func (e *Engine) SpendingByCategory(ds *domain.Dataset, category, asOf string) ([]domain.MonthlyCategorySpend, error) {
	end := truncateDay(e.now())
	if asOf != "" {
		var err error
		if end, err = parseReference(asOf); err != nil {
			return nil, err
		}
	}
	start := startOfMonth(end.AddDate(0, 0, -spendLookbackDays))

	if ds.IsEmpty() {
		return []domain.MonthlyCategorySpend{}, nil
	}
	if err := ds.Require(domain.ColumnPaymentDate, domain.ColumnCategory, domain.ColumnAmount); err != nil {
		return nil, fmt.Errorf("spending by category: %w", err)
	}
	dates, err := paymentDates(ds)
	if err != nil {
		return nil, fmt.Errorf("spending by category: %w", err)
	}

	totals := make(map[string]decimal.Decimal)
	for i := 0; i < ds.Len(); i++ {
		t := ds.Row(i)
		if t.Category == nil || *t.Category != category || !within(dates[i], start, end) {
			continue
		}
		month := dates[i].Format("2006-01")
		amount := decimal.Zero
		if t.Amount != nil {
			amount = *t.Amount
		}
		totals[month] = totals[month].Add(amount)
	}

	log := e.log.With().
		Str("category", category).
		Str("from", start.Format(time.DateOnly)).
		Str("to", end.Format(time.DateOnly)).
		Logger()

	if len(totals) == 0 {
		log.Warn().Msg("No spending found for category")
		return []domain.MonthlyCategorySpend{}, nil
	}

	months := make([]domain.MonthlyCategorySpend, 0, len(totals))
	for month, total := range totals {
		months = append(months, domain.MonthlyCategorySpend{
			YearMonth: month,
			Category:  category,
			Total:     total.Round(2),
		})
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].YearMonth > months[j].YearMonth
	})

	log.Info().Int("months", len(months)).Msg("Computed category spending")
	return months, nil
}
