package report

import (
	"sort"
	"time"

	"github.com/rumor-ml/commons.systems/findash/internal/domain"
	"github.com/shopspring/decimal"
)

// CashbackByCategory sums cashback per category for the rows paid in the
// given calendar month. Blank cashback counts as zero. Entries are ordered
// by cashback descending, equal totals keeping first-seen order.
//
// This operation never fails. Missing columns, unparsable dates and an
// invalid month are logged and produce an empty breakdown.
func (e *Engine) CashbackByCategory(ds *domain.Dataset, year, month int) domain.CashbackBreakdown {
	log := e.log.With().Int("year", year).Int("month", month).Logger()

	if month < 1 || month > 12 {
		log.Warn().Msg("Invalid month for cashback report")
		return domain.CashbackBreakdown{}
	}
	if err := ds.Require(domain.ColumnPaymentDate, domain.ColumnCategory, domain.ColumnCashback); err != nil {
		log.Warn().Err(err).Msg("Cashback report unavailable")
		return domain.CashbackBreakdown{}
	}
	dates, err := paymentDates(ds)
	if err != nil {
		log.Warn().Err(err).Msg("Cashback report unavailable")
		return domain.CashbackBreakdown{}
	}

	index := make(map[string]int)
	breakdown := domain.CashbackBreakdown{}
	for i := 0; i < ds.Len(); i++ {
		t := ds.Row(i)
		d := dates[i]
		if d.IsZero() || d.Year() != year || d.Month() != time.Month(month) || t.Category == nil {
			continue
		}
		cashback := decimal.Zero
		if t.Cashback != nil {
			cashback = *t.Cashback
		}
		pos, seen := index[*t.Category]
		if !seen {
			pos = len(breakdown)
			index[*t.Category] = pos
			breakdown = append(breakdown, domain.CategoryCashback{Category: *t.Category})
		}
		breakdown[pos].Cashback = breakdown[pos].Cashback.Add(cashback)
	}

	if len(breakdown) == 0 {
		log.Warn().Msg("No transactions for cashback month")
		return breakdown
	}
	for i := range breakdown {
		breakdown[i].Cashback = breakdown[i].Cashback.Round(2)
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Cashback.GreaterThan(breakdown[j].Cashback)
	})

	log.Info().Int("categories", len(breakdown)).Msg("Computed category cashback")
	return breakdown
}
