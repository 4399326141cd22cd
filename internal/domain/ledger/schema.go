package ledger

// ColumnSpec is one required column of a source schema.
type ColumnSpec struct {
	Name string
	Kind Kind
	// Default fills absent columns and empty text cells. A default whose
	// kind differs from Kind is ignored in favour of the kind's zero value.
	Default Value
	// Aliases are alternative raw headers accepted for this column.
	Aliases []string
	// Layouts are date layouts tried before the common ones.
	Layouts []string
}

func (c ColumnSpec) defaultValue() Value {
	if c.Default.Kind() != c.Kind {
		return zeroValue(c.Kind)
	}
	return c.Default
}

// Getter reads an already normalized cell of the current row.
type Getter func(column string) Value

// DerivedColumn is computed from the normalized cells of the same row.
// Derived columns may read derived columns declared before them.
type DerivedColumn struct {
	Name    string
	Kind    Kind
	Compute func(get Getter) Value
}

// Schema is the column contract of one logical source table.
type Schema struct {
	Name    string
	Columns []ColumnSpec
	Derived []DerivedColumn
}

// ColumnNames lists the required then derived column names.
func (s Schema) ColumnNames() []string {
	out := make([]string, 0, len(s.Columns)+len(s.Derived))
	for _, c := range s.Columns {
		out = append(out, c.Name)
	}
	for _, d := range s.Derived {
		out = append(out, d.Name)
	}
	return out
}

// Lookup finds a required column by canonical name.
func (s Schema) Lookup(name string) (ColumnSpec, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSpec{}, false
}
