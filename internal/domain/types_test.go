package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateColumn(t *testing.T) {
	t.Run("valid columns", func(t *testing.T) {
		for _, c := range []Column{
			ColumnOperationDate, ColumnPaymentDate, ColumnCardNumber,
			ColumnAmount, ColumnCategory, ColumnCashback, ColumnDescription,
		} {
			assert.True(t, ValidateColumn(c), "expected %s to be valid", c)
		}
	})

	t.Run("invalid columns", func(t *testing.T) {
		for _, c := range []Column{"", "Amount", "amount ", "Сумма платежа", "mcc"} {
			assert.False(t, ValidateColumn(c), "expected %q to be invalid", c)
		}
	})
}

func TestTransaction_IsExpense(t *testing.T) {
	tests := []struct {
		name   string
		amount *decimal.Decimal
		want   bool
	}{
		{"negative", DecimalPtr(decimal.RequireFromString("-0.01")), true},
		{"zero", DecimalPtr(decimal.Zero), false},
		{"positive", DecimalPtr(decimal.NewFromInt(10)), false},
		{"absent", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Transaction{Amount: tt.amount}.IsExpense())
		})
	}
}

func TestDataset_NewDatasetCopiesInput(t *testing.T) {
	rows := []Transaction{{Category: StringPtr("Еда")}}
	cols := []Column{ColumnCategory, ColumnCategory, "bogus"}

	ds := NewDataset(cols, rows)
	rows[0] = Transaction{Category: StringPtr("Другое")}

	assert.Equal(t, []Column{ColumnCategory}, ds.Columns())
	assert.Equal(t, "Еда", *ds.Row(0).Category)
}

func TestDataset_RowsIsDefensiveCopy(t *testing.T) {
	ds := NewDataset([]Column{ColumnCategory}, []Transaction{{Category: StringPtr("A")}})

	rows := ds.Rows()
	rows[0].Category = StringPtr("B")

	assert.Equal(t, "A", *ds.Row(0).Category)
}

func TestDataset_NilBehavesAsEmpty(t *testing.T) {
	var ds *Dataset
	assert.Equal(t, 0, ds.Len())
	assert.True(t, ds.IsEmpty())
	assert.Empty(t, ds.Columns())
	assert.Empty(t, ds.Rows())
	assert.False(t, ds.HasColumn(ColumnAmount))
	assert.NoError(t, ds.Require(ColumnAmount))
}

func TestDataset_Require(t *testing.T) {
	t.Run("empty dataset satisfies any requirement", func(t *testing.T) {
		assert.NoError(t, EmptyDataset().Require(ColumnAmount, ColumnPaymentDate))
	})

	t.Run("non-empty dataset missing column", func(t *testing.T) {
		ds := NewDataset([]Column{ColumnAmount}, []Transaction{{}})
		err := ds.Require(ColumnAmount, ColumnPaymentDate)
		require.Error(t, err)

		var missing *MissingColumnError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, ColumnPaymentDate, missing.Column)
		assert.ErrorIs(t, err, ErrMissingColumn)
	})

	t.Run("all columns present", func(t *testing.T) {
		ds := NewDataset([]Column{ColumnAmount, ColumnPaymentDate}, []Transaction{{}})
		assert.NoError(t, ds.Require(ColumnAmount, ColumnPaymentDate))
	})
}

func TestDataset_SelectKeepsOrderAndSource(t *testing.T) {
	ds := NewDataset([]Column{ColumnDescription}, []Transaction{
		{Description: StringPtr("a")},
		{Description: StringPtr("b")},
		{Description: StringPtr("c")},
		{Description: StringPtr("d")},
	})

	odd := ds.Select(func(i int, _ Transaction) bool { return i%2 == 1 })

	require.Equal(t, 2, odd.Len())
	assert.Equal(t, "b", *odd.Row(0).Description)
	assert.Equal(t, "d", *odd.Row(1).Description)
	assert.Equal(t, ds.Columns(), odd.Columns())
	assert.Equal(t, 4, ds.Len(), "source dataset must not change")
}

func TestCashbackBreakdown_MarshalJSONKeepsOrder(t *testing.T) {
	b := CashbackBreakdown{
		{Category: "Транспорт", Cashback: decimal.NewFromInt(150)},
		{Category: "Еда", Cashback: decimal.RequireFromString("12.5")},
	}

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, `{"Транспорт":"150","Еда":"12.5"}`, string(data))

	empty, err := json.Marshal(CashbackBreakdown{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(empty))
}

func TestCashbackBreakdown_GetAndTotal(t *testing.T) {
	b := CashbackBreakdown{
		{Category: "A", Cashback: decimal.NewFromInt(3)},
		{Category: "B", Cashback: decimal.RequireFromString("1.25")},
	}

	v, ok := b.Get("B")
	assert.True(t, ok)
	assert.True(t, v.Equal(decimal.RequireFromString("1.25")))

	_, ok = b.Get("C")
	assert.False(t, ok)

	assert.True(t, b.Total().Equal(decimal.RequireFromString("4.25")))
}

func TestParseError(t *testing.T) {
	cause := errors.New("bad layout")

	rowErr := &ParseError{Row: 2, Field: "payment_date", Value: "32.13.2024", Err: cause}
	assert.Equal(t, `row 3: cannot parse payment_date "32.13.2024": bad layout`, rowErr.Error())

	paramErr := &ParseError{Row: -1, Field: "reference date", Value: "x", Err: cause}
	assert.Equal(t, `cannot parse reference date "x": bad layout`, paramErr.Error())

	wrapped := fmt.Errorf("filter: %w", rowErr)
	assert.ErrorIs(t, wrapped, ErrParse)
	assert.ErrorIs(t, wrapped, cause)
	assert.NotErrorIs(t, wrapped, ErrMissingColumn)
}
