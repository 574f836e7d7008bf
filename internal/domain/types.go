package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Column identifies one field of the transaction table.
// Use ValidateColumn to ensure validity before use.
type Column string

const (
	ColumnOperationDate Column = "operation_date"
	ColumnPaymentDate   Column = "payment_date"
	ColumnCardNumber    Column = "card_number"
	ColumnAmount        Column = "amount"
	ColumnCategory      Column = "category"
	ColumnCashback      Column = "cashback"
	ColumnDescription   Column = "description"
)

var validColumns = map[Column]struct{}{
	ColumnOperationDate: {}, ColumnPaymentDate: {}, ColumnCardNumber: {},
	ColumnAmount: {}, ColumnCategory: {}, ColumnCashback: {},
	ColumnDescription: {},
}

// Transaction is one row of a bank export.
//
// Every field is optional: a nil pointer means the cell was blank or the
// column is absent from the export. Dates stay in their textual day-first
// form (DD.MM.YYYY); reporting operations parse them and decide how strict
// to be about failures.
//
// Sign convention for Amount:
//
//	Negative = expense
//	Zero or positive = income or refund
type Transaction struct {
	OperationDate *string          `json:"operation_date"`
	PaymentDate   *string          `json:"payment_date"`
	CardNumber    *string          `json:"card_number"`
	Amount        *decimal.Decimal `json:"amount"`
	Category      *string          `json:"category"`
	Cashback      *decimal.Decimal `json:"cashback"`
	Description   *string          `json:"description"`
}

// IsExpense reports whether the row carries a negative amount.
func (t Transaction) IsExpense() bool {
	return t.Amount != nil && t.Amount.IsNegative()
}

// CardSummary is the spend rollup for one card.
type CardSummary struct {
	LastDigits string          `json:"last4"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	Cashback   decimal.Decimal `json:"cashback"`
}

// RankedTransaction is the display projection used by the top-N list.
// Date is the operation date, not the payment date.
type RankedTransaction struct {
	Date        *string          `json:"date"`
	Amount      *decimal.Decimal `json:"amount"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
}

// MonthlyCategorySpend is the total of one category in one calendar month.
type MonthlyCategorySpend struct {
	YearMonth string          `json:"year_month"` // YYYY-MM
	Category  string          `json:"category"`
	Total     decimal.Decimal `json:"total"`
}

// CategoryCashback is one entry of a CashbackBreakdown.
type CategoryCashback struct {
	Category string
	Cashback decimal.Decimal
}

// CashbackBreakdown maps category to cashback, ordered by cashback descending.
// It serializes as a JSON object whose keys keep that order.
type CashbackBreakdown []CategoryCashback

// Get returns the cashback recorded for category.
func (b CashbackBreakdown) Get(category string) (decimal.Decimal, bool) {
	for _, entry := range b {
		if entry.Category == category {
			return entry.Cashback, true
		}
	}
	return decimal.Zero, false
}

// Total returns the sum of all entries.
func (b CashbackBreakdown) Total() decimal.Decimal {
	total := decimal.Zero
	for _, entry := range b {
		total = total.Add(entry.Cashback)
	}
	return total
}

// MarshalJSON implements custom JSON marshaling for CashbackBreakdown
func (b CashbackBreakdown) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, entry := range b {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(entry.Category)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(entry.Cashback)
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, value...)
	}
	return append(buf, '}'), nil
}

// CurrencyRate is one exchange rate returned by a rate provider.
type CurrencyRate struct {
	Currency string          `json:"currency"`
	Rate     decimal.Decimal `json:"rate"`
}

// StockPrice is one equity quote returned by a price provider.
type StockPrice struct {
	Stock string          `json:"stock"`
	Price decimal.Decimal `json:"price"`
}

// ValidateColumn checks if column is a known transaction field
func ValidateColumn(c Column) bool {
	_, ok := validColumns[c]
	return ok
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// DecimalPtr returns a pointer to d.
func DecimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
