package domain

import "encoding/json"

// Dataset is an immutable in-memory transaction table.
//
// The column set records which fields the source export actually had, so
// that "column missing" can be told apart from "cell blank". Every method
// that derives a new table returns a fresh Dataset; the receiver is never
// modified. A nil *Dataset behaves like an empty one.
type Dataset struct {
	columns []Column
	rows    []Transaction
}

// NewDataset creates a dataset over copies of columns and rows.
// Duplicate and unknown columns are dropped.
func NewDataset(columns []Column, rows []Transaction) *Dataset {
	seen := make(map[Column]bool, len(columns))
	cols := make([]Column, 0, len(columns))
	for _, c := range columns {
		if !ValidateColumn(c) || seen[c] {
			continue
		}
		seen[c] = true
		cols = append(cols, c)
	}
	return &Dataset{
		columns: cols,
		rows:    append([]Transaction(nil), rows...),
	}
}

// EmptyDataset returns a dataset with no columns and no rows.
func EmptyDataset() *Dataset {
	return &Dataset{columns: []Column{}, rows: []Transaction{}}
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// IsEmpty reports whether the dataset has no rows.
func (d *Dataset) IsEmpty() bool {
	return d.Len() == 0
}

// Columns returns a defensive copy of the column set
func (d *Dataset) Columns() []Column {
	if d == nil {
		return []Column{}
	}
	return append([]Column{}, d.columns...)
}

// HasColumn reports whether the source export had column c.
func (d *Dataset) HasColumn(c Column) bool {
	if d == nil {
		return false
	}
	for _, existing := range d.columns {
		if existing == c {
			return true
		}
	}
	return false
}

// Rows returns a defensive copy of the rows slice
func (d *Dataset) Rows() []Transaction {
	if d == nil {
		return []Transaction{}
	}
	return append([]Transaction{}, d.rows...)
}

// Row returns the i-th row. It panics if i is out of range.
func (d *Dataset) Row(i int) Transaction {
	return d.rows[i]
}

// Require returns a *MissingColumnError for the first of cols the dataset
// lacks. Datasets without rows satisfy any requirement.
func (d *Dataset) Require(cols ...Column) error {
	if d.IsEmpty() {
		return nil
	}
	for _, c := range cols {
		if !d.HasColumn(c) {
			return &MissingColumnError{Column: c}
		}
	}
	return nil
}

// Select returns a new dataset with the same columns holding the rows for
// which keep returns true, in their original order.
func (d *Dataset) Select(keep func(i int, t Transaction) bool) *Dataset {
	selected := &Dataset{columns: d.Columns(), rows: []Transaction{}}
	for i := 0; i < d.Len(); i++ {
		if keep(i, d.rows[i]) {
			selected.rows = append(selected.rows, d.rows[i])
		}
	}
	return selected
}

// MarshalJSON implements custom JSON marshaling for Dataset
func (d *Dataset) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Columns []Column      `json:"columns"`
		Rows    []Transaction `json:"rows"`
	}{
		Columns: d.Columns(),
		Rows:    d.Rows(),
	})
}
