package ledger

import (
	"strings"

	"golang.org/x/text/cases"
)

// HeaderKey folds a raw header for matching: case-insensitive, with spaces,
// underscores and hyphens removed. "Sold_By", "sold by" and "SOLD-BY" share a key.
func HeaderKey(header string) string {
	folded := cases.Fold().String(strings.TrimSpace(header))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '\t':
			return -1
		}
		return r
	}, folded)
}

// Normalize maps a loaded table onto a schema and always returns a fully
// typed table: the schema columns in order, then the derived columns, then
// any unrecognised source columns unchanged.
//
// Absent columns are filled with their defaults, unparsable numerics read as
// zero and unparsable dates as the missing-date sentinel. Normalize never
// fails and Normalize(Normalize(t, s), s) equals Normalize(t, s).
func Normalize(t *Table, s Schema) *Table {
	if t == nil {
		t = NewTable(s.Name, nil, nil)
	}

	sourceOf, consumed := resolveColumns(t, s)

	derivedKeys := make(map[string]struct{}, len(s.Derived))
	for _, d := range s.Derived {
		derivedKeys[HeaderKey(d.Name)] = struct{}{}
	}

	columns := make([]Column, 0, len(s.Columns)+len(s.Derived)+len(t.columns))
	for _, c := range s.Columns {
		columns = append(columns, Column{Name: c.Name, Kind: c.Kind})
	}
	for _, d := range s.Derived {
		columns = append(columns, Column{Name: d.Name, Kind: d.Kind})
	}
	var extras []int
	for i, c := range t.columns {
		if consumed[i] {
			continue
		}
		// A stored copy of a derived column is recomputed, not carried.
		if _, derived := derivedKeys[HeaderKey(c.Name)]; derived {
			continue
		}
		extras = append(extras, i)
		columns = append(columns, c)
	}

	rows := make([]Row, 0, len(t.rows))
	for _, src := range t.rows {
		row := make(Row, 0, len(columns))
		cells := make(map[string]Value, len(s.Columns)+len(s.Derived))

		for ci, spec := range s.Columns {
			var v Value
			if idx := sourceOf[ci]; idx >= 0 {
				v = coerce(src[idx], spec)
			} else {
				v = spec.defaultValue()
			}
			row = append(row, v)
			cells[spec.Name] = v
		}

		get := func(column string) Value {
			if v, ok := cells[column]; ok {
				return v
			}
			return Text("")
		}
		for _, d := range s.Derived {
			v := d.Compute(get)
			if v.Kind() != d.Kind {
				v = zeroValue(d.Kind)
			}
			row = append(row, v)
			cells[d.Name] = v
		}

		for _, idx := range extras {
			row = append(row, src[idx])
		}
		rows = append(rows, row)
	}

	return NewTable(s.Name, columns, rows)
}

// resolveColumns finds the source column for each schema column. An exact
// canonical name wins; otherwise the first unclaimed column whose folded
// header matches the name or an alias is used.
func resolveColumns(t *Table, s Schema) ([]int, map[int]bool) {
	sourceOf := make([]int, len(s.Columns))
	consumed := make(map[int]bool, len(s.Columns))

	for ci, spec := range s.Columns {
		sourceOf[ci] = -1
		if idx, ok := t.index[spec.Name]; ok && !consumed[idx] {
			sourceOf[ci] = idx
			consumed[idx] = true
		}
	}

	for ci, spec := range s.Columns {
		if sourceOf[ci] >= 0 {
			continue
		}
		keys := map[string]struct{}{HeaderKey(spec.Name): {}}
		for _, a := range spec.Aliases {
			keys[HeaderKey(a)] = struct{}{}
		}
		for idx, c := range t.columns {
			if consumed[idx] {
				continue
			}
			if _, ok := keys[HeaderKey(c.Name)]; ok {
				sourceOf[ci] = idx
				consumed[idx] = true
				break
			}
		}
	}
	return sourceOf, consumed
}
