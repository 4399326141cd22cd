package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type columnJSON struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type tableJSON struct {
	Name    string       `json:"name"`
	Columns []columnJSON `json:"columns"`
	Rows    [][]string   `json:"rows"`
}

// MarshalJSON encodes the table with cells in their canonical text form.
func (t *Table) MarshalJSON() ([]byte, error) {
	out := tableJSON{
		Name:    t.name,
		Columns: make([]columnJSON, len(t.columns)),
		Rows:    make([][]string, len(t.rows)),
	}
	for i, c := range t.columns {
		out.Columns[i] = columnJSON{Name: c.Name, Kind: c.Kind.String()}
	}
	for i, r := range t.rows {
		cells := make([]string, len(r))
		for j, v := range r {
			cells[j] = v.String()
		}
		out.Rows[i] = cells
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a table written by MarshalJSON, reading each cell
// as its column's kind.
func (t *Table) UnmarshalJSON(data []byte) error {
	var in tableJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	cols := make([]Column, len(in.Columns))
	for i, c := range in.Columns {
		k, ok := ParseKind(c.Kind)
		if !ok {
			return fmt.Errorf("column %q: unknown kind %q", c.Name, c.Kind)
		}
		cols[i] = Column{Name: c.Name, Kind: k}
	}
	rows := make([]Row, len(in.Rows))
	for i, cells := range in.Rows {
		if len(cells) != len(cols) {
			return fmt.Errorf("row %d: %d cells for %d columns", i, len(cells), len(cols))
		}
		row := make(Row, len(cells))
		for j, s := range cells {
			v, err := decodeCell(s, cols[j].Kind)
			if err != nil {
				return fmt.Errorf("row %d column %q: %w", i, cols[j].Name, err)
			}
			row[j] = v
		}
		rows[i] = row
	}
	*t = *NewTable(in.Name, cols, rows)
	return nil
}

func decodeCell(s string, k Kind) (Value, error) {
	switch k {
	case KindNumeric:
		d, err := decimal.NewFromString(s)
		if err != nil {
			return Value{}, err
		}
		return Number(d), nil
	case KindDate:
		if s == "" {
			return MissingDate(), nil
		}
		d, err := time.Parse(DateLayout, s)
		if err != nil {
			return Value{}, err
		}
		return Day(d), nil
	default:
		return Text(s), nil
	}
}
