package validate

import (
	"fmt"
	"strings"

	"github.com/rumor-ml/commons.systems/findash/internal/dedup"
	"github.com/rumor-ml/commons.systems/findash/internal/domain"
	"github.com/rumor-ml/commons.systems/findash/internal/report"
)

// dashboardColumns are the columns the dashboard operations require.
var dashboardColumns = []domain.Column{
	domain.ColumnPaymentDate,
	domain.ColumnCardNumber,
	domain.ColumnAmount,
}

// ValidationResult contains all validation errors and warnings for a dataset
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// Valid reports whether no errors were found. Warnings do not count.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// ValidationError is an issue that makes a reporting operation fail
type ValidationError struct {
	Row     int // 1-based; 0 for dataset-level issues
	Field   string
	Value   string
	Message string
}

// ValidationWarning is an issue that makes rows drop out of reports silently
type ValidationWarning struct {
	Row     int
	Field   string
	Value   string
	Message string
}

func (e ValidationError) String() string {
	return describe(e.Row, e.Field, e.Message)
}

func (w ValidationWarning) String() string {
	return describe(w.Row, w.Field, w.Message)
}

func describe(row int, field, message string) string {
	if row == 0 {
		return fmt.Sprintf("%s: %s", field, message)
	}
	return fmt.Sprintf("row %d %s: %s", row, field, message)
}

// ValidateDataset checks a loaded dataset against what the reporting
// operations expect. Dates that would abort a report are errors; rows that
// reports would quietly skip are warnings.
func ValidateDataset(ds *domain.Dataset) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
	}
	if ds.IsEmpty() {
		return result
	}

	for _, c := range dashboardColumns {
		if !ds.HasColumn(c) {
			result.Errors = append(result.Errors, ValidationError{
				Field:   string(c),
				Message: "required column is missing",
			})
		}
	}
	if !ds.HasColumn(domain.ColumnCategory) {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   string(domain.ColumnCategory),
			Message: "column is missing; category reports will be empty",
		})
	}

	seen := make(map[string]int)
	for i, t := range ds.Rows() {
		row := i + 1

		// Validate date formats
		for _, d := range []struct {
			field domain.Column
			value *string
		}{
			{domain.ColumnPaymentDate, t.PaymentDate},
			{domain.ColumnOperationDate, t.OperationDate},
		} {
			if d.value == nil {
				continue
			}
			if _, err := report.ParseDate(*d.value); err != nil {
				result.Errors = append(result.Errors, ValidationError{
					Row:     row,
					Field:   string(d.field),
					Value:   *d.value,
					Message: fmt.Sprintf("invalid date: %v", err),
				})
			}
		}

		if t.PaymentDate == nil && ds.HasColumn(domain.ColumnPaymentDate) {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Row:     row,
				Field:   string(domain.ColumnPaymentDate),
				Message: "blank payment date; row is outside every date window",
			})
		}
		if t.Amount == nil && ds.HasColumn(domain.ColumnAmount) {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Row:     row,
				Field:   string(domain.ColumnAmount),
				Message: "blank amount; row is not counted as an expense",
			})
		}
		if t.IsExpense() && t.CardNumber == nil && ds.HasColumn(domain.ColumnCardNumber) {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Row:     row,
				Field:   string(domain.ColumnCardNumber),
				Value:   t.Amount.String(),
				Message: "expense without card number; excluded from card summaries",
			})
		}
		if t.Cashback != nil && t.Cashback.IsNegative() {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Row:     row,
				Field:   string(domain.ColumnCashback),
				Value:   t.Cashback.String(),
				Message: "negative cashback",
			})
		}
		if t.Category != nil && strings.TrimSpace(*t.Category) != *t.Category {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Row:     row,
				Field:   string(domain.ColumnCategory),
				Value:   *t.Category,
				Message: "category has surrounding whitespace; exact matches will miss it",
			})
		}

		// Check for repeated rows
		fp := dedup.GenerateFingerprint(t)
		if first, ok := seen[fp]; ok {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Row:     row,
				Field:   "row",
				Message: fmt.Sprintf("identical to row %d", first),
			})
			continue
		}
		seen[fp] = row
	}

	return result
}
