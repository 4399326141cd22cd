package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Column describes one column of a table.
type Column struct {
	Name string
	Kind Kind
}

// Row is one record; cells are positional and align with the table columns.
type Row []Value

// Table is an ordered set of rows sharing one column schema.
// Tables are treated as immutable once built; every transformation returns a
// new table that may share rows with its input.
type Table struct {
	name    string
	columns []Column
	index   map[string]int
	rows    []Row
}

// NewTable builds a table. Rows shorter than the schema are padded with the
// zero value of each missing column's kind; longer rows are truncated.
func NewTable(name string, columns []Column, rows []Row) *Table {
	cols := make([]Column, len(columns))
	copy(cols, columns)

	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, dup := index[c.Name]; !dup {
			index[c.Name] = i
		}
	}

	aligned := make([]Row, 0, len(rows))
	for _, r := range rows {
		aligned = append(aligned, alignRow(r, cols))
	}

	return &Table{name: name, columns: cols, index: index, rows: aligned}
}

func alignRow(r Row, cols []Column) Row {
	if len(r) == len(cols) {
		return r
	}
	out := make(Row, len(cols))
	for i, c := range cols {
		if i < len(r) {
			out[i] = r[i]
		} else {
			out[i] = zeroValue(c.Kind)
		}
	}
	return out
}

// derive returns a table with the same schema over a different row set.
func (t *Table) derive(rows []Row) *Table {
	return &Table{name: t.name, columns: t.columns, index: t.index, rows: rows}
}

// Name returns the logical table name.
func (t *Table) Name() string {
	return t.name
}

// Columns returns a copy of the column schema.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.Name
	}
	return out
}

// HasColumn reports whether the table has a column with exactly this name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool {
	return len(t.rows) == 0
}

// Row returns row i. Callers must not modify it.
func (t *Table) Row(i int) Row {
	return t.rows[i]
}

// Value returns the cell of row i in the named column. An unknown column
// reads as empty text.
func (t *Table) Value(i int, column string) Value {
	c, ok := t.index[column]
	if !ok {
		return Text("")
	}
	return t.rows[i][c]
}

// Empty returns a table with the same name and schema and no rows.
func (t *Table) Empty() *Table {
	return t.derive(nil)
}

// Where keeps the rows for which keep returns true, in order.
func (t *Table) Where(keep func(i int) bool) *Table {
	rows := make([]Row, 0, len(t.rows))
	for i, r := range t.rows {
		if keep(i) {
			rows = append(rows, r)
		}
	}
	return t.derive(rows)
}

// Head returns at most the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n >= len(t.rows) {
		return t
	}
	return t.derive(t.rows[:n])
}

// SortBy returns a copy ordered by the named column. The sort is stable so
// ties keep their current order. An unknown column leaves the order as is.
func (t *Table) SortBy(column string, desc bool) *Table {
	c, ok := t.index[column]
	rows := make([]Row, len(t.rows))
	copy(rows, t.rows)
	if !ok {
		return t.derive(rows)
	}
	sort.SliceStable(rows, func(a, b int) bool {
		cmp := rows[a][c].Compare(rows[b][c])
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return t.derive(rows)
}

// Sum adds the numeric cells of a column. Unknown or non-numeric columns sum to zero.
func (t *Table) Sum(column string) decimal.Decimal {
	total := decimal.Zero
	c, ok := t.index[column]
	if !ok {
		return total
	}
	for _, r := range t.rows {
		total = total.Add(r[c].Decimal())
	}
	return total
}

// Distinct returns the distinct values of a column in first-appearance order.
func (t *Table) Distinct(column string) []Value {
	c, ok := t.index[column]
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	var out []Value
	for _, r := range t.rows {
		k := r[c].Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r[c])
	}
	return out
}

// Project returns a table with only the named columns, in the given order.
// Unknown names are skipped.
func (t *Table) Project(columns ...string) *Table {
	var cols []Column
	var idx []int
	for _, name := range columns {
		if i, ok := t.index[name]; ok {
			cols = append(cols, t.columns[i])
			idx = append(idx, i)
		}
	}
	rows := make([]Row, len(t.rows))
	for ri, r := range t.rows {
		out := make(Row, len(idx))
		for ci, i := range idx {
			out[ci] = r[i]
		}
		rows[ri] = out
	}
	return NewTable(t.name, cols, rows)
}

// Rename returns the same table under a new logical name.
func (t *Table) Rename(name string) *Table {
	return &Table{name: name, columns: t.columns, index: t.index, rows: t.rows}
}
