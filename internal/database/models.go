package database

import (
	"time"
)

// Column describes one column of a result set.
type Column struct {
	Name     string
	DataType string
}

// Table holds the materialized rows of a query, in result-set order.
//
// Cell values are always one of nil, int64, float64, string, bool or
// time.Time; drivers pass raw values through Normalize before storing them.
type Table struct {
	Columns  []Column
	Rows     [][]any
	Duration time.Duration
}

// NewTable creates an empty table with the given column names.
func NewTable(names ...string) *Table {
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Name: n}
	}
	return &Table{Columns: cols}
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// Value returns the cell at row, col or nil when out of range.
func (t *Table) Value(row, col int) any {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return nil
	}
	return r[col]
}

// AppendRow normalizes and appends one row.
func (t *Table) AppendRow(values ...any) {
	row := make([]any, len(t.Columns))
	for i := range row {
		if i < len(values) {
			row[i] = Normalize(values[i])
		}
	}
	t.Rows = append(t.Rows, row)
}

// Clone returns a deep copy of the table structure. Cell values are
// immutable scalars and are shared.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		Columns:  append([]Column(nil), t.Columns...),
		Rows:     make([][]any, len(t.Rows)),
		Duration: t.Duration,
	}
	for i, r := range t.Rows {
		out.Rows[i] = append([]any(nil), r...)
	}
	return out
}
