package parser

import (
	"fmt"
	"strings"

	"github.com/rumor-ml/commons.systems/findash/internal/domain"
	"github.com/rumor-ml/commons.systems/findash/internal/schema"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// BuildDataset converts a header row and its records into a dataset.
//
// Columns come from resolving the header against s; unknown headers are
// dropped. Blank cells become absent fields and fully blank records are
// skipped. An unparsable amount or cashback fails the whole table.
func BuildDataset(header []string, records [][]string, s *schema.Schema) (*domain.Dataset, error) {
	mapping := s.Resolve(header)
	if mapping.Len() == 0 {
		return nil, fmt.Errorf("no recognized columns in header %q", header)
	}

	rows := make([]domain.Transaction, 0, len(records))
	for i, record := range records {
		if isBlank(record) {
			continue
		}
		cell := func(c domain.Column) *string {
			v, ok := mapping.Cell(record, c)
			if !ok {
				return nil
			}
			return Text(v)
		}

		t := domain.Transaction{
			OperationDate: cell(domain.ColumnOperationDate),
			PaymentDate:   cell(domain.ColumnPaymentDate),
			CardNumber:    cell(domain.ColumnCardNumber),
			Category:      cell(domain.ColumnCategory),
			Description:   cell(domain.ColumnDescription),
		}

		var err error
		if t.Amount, err = numberCell(cell(domain.ColumnAmount)); err != nil {
			return nil, &domain.ParseError{Row: i, Field: string(domain.ColumnAmount), Value: *cell(domain.ColumnAmount), Err: err}
		}
		if t.Cashback, err = numberCell(cell(domain.ColumnCashback)); err != nil {
			return nil, &domain.ParseError{Row: i, Field: string(domain.ColumnCashback), Value: *cell(domain.ColumnCashback), Err: err}
		}
		rows = append(rows, t)
	}

	return domain.NewDataset(mapping.Columns(), rows), nil
}

// Text trims and NFC-normalizes a cell. Blank cells yield nil.
func Text(cell string) *string {
	v := strings.TrimSpace(norm.NFC.String(cell))
	if v == "" {
		return nil
	}
	return &v
}

func numberCell(v *string) (*decimal.Decimal, error) {
	if v == nil {
		return nil, nil
	}
	d, err := ParseAmount(*v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ParseAmount parses a money amount as written in bank exports.
// Space and no-break space group separators, a decimal comma, a
// Unicode minus and a leading plus sign are accepted.
// Examples: "-1 234,56" → -1234.56, "1,234.56" → 1234.56, "+100" → 100
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\'':
			return -1
		case '\u2212':
			return '-'
		}
		return r
	}, strings.TrimSpace(s))
	cleaned = strings.TrimPrefix(cleaned, "+")

	switch {
	case strings.Contains(cleaned, ",") && strings.Contains(cleaned, "."):
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			// 1.234,56
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			// 1,234.56
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case strings.Count(cleaned, ",") == 1:
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}

	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount: %w", err)
	}
	return d, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
