package report

import (
	"fmt"
	"sort"

	"github.com/rumor-ml/commons.systems/findash/internal/domain"
)

// TopTransactions returns up to k rows with the largest absolute amount,
// largest first. Equal magnitudes keep dataset order and rows without an
// amount sort last.
func (e *Engine) TopTransactions(ds *domain.Dataset, k int) ([]domain.RankedTransaction, error) {
	if k <= 0 || ds.IsEmpty() {
		return []domain.RankedTransaction{}, nil
	}
	if err := ds.Require(domain.ColumnAmount); err != nil {
		return nil, fmt.Errorf("top transactions: %w", err)
	}

	rows := ds.Rows()
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Amount, rows[j].Amount
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.Abs().GreaterThan(b.Abs())
	})

	if len(rows) > k {
		rows = rows[:k]
	}
	ranked := make([]domain.RankedTransaction, len(rows))
	for i, t := range rows {
		ranked[i] = domain.RankedTransaction{
			Date:        t.OperationDate,
			Amount:      t.Amount,
			Category:    t.Category,
			Description: t.Description,
		}
	}

	e.log.Debug().Int("k", k).Int("returned", len(ranked)).Msg("Ranked top transactions")
	return ranked, nil
}
