package report

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tafa/dashboard/internal/domain/ledger"
)

// ColumnResponse describes one column of a result table
type ColumnResponse struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// TableResponse is a result table rendered for JSON. Numeric cells are
// numbers, dates are yyyy-mm-dd strings and missing dates are null.
type TableResponse struct {
	Name    string                   `json:"name"`
	Columns []ColumnResponse         `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
	Empty   bool                     `json:"empty"`
}

// NewTableResponse renders t
func NewTableResponse(t *ledger.Table) TableResponse {
	cols := t.Columns()
	resp := TableResponse{
		Name:    t.Name(),
		Columns: make([]ColumnResponse, len(cols)),
		Rows:    make([]map[string]interface{}, t.Len()),
		Empty:   t.IsEmpty(),
	}
	for i, c := range cols {
		resp.Columns[i] = ColumnResponse{Name: c.Name, Kind: c.Kind.String()}
	}
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		m := make(map[string]interface{}, len(cols))
		for j, c := range cols {
			m[c.Name] = cellValue(row[j])
		}
		resp.Rows[i] = m
	}
	return resp
}

func cellValue(v ledger.Value) interface{} {
	switch v.Kind() {
	case ledger.KindNumeric:
		return toFloat64(v.Decimal())
	case ledger.KindDate:
		if v.IsMissing() {
			return nil
		}
		return v.String()
	default:
		return v.String()
	}
}

// RangeResponse is the effective date range of a page
type RangeResponse struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

func newRangeResponse(w window) RangeResponse {
	if !w.Known {
		return RangeResponse{}
	}
	return RangeResponse{
		Start: w.Range.Start.Format(ledger.DateLayout),
		End:   w.Range.End.Format(ledger.DateLayout),
	}
}

// LeaderResponse names the top entry of a ranking
type LeaderResponse struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Sections holds the result tables of a page by section name so they can
// be exported individually.
type Sections struct {
	tables map[string]*ledger.Table
}

// add registers t under name and renders it
func (s *Sections) add(name string, t *ledger.Table) TableResponse {
	if s.tables == nil {
		s.tables = make(map[string]*ledger.Table)
	}
	t = t.Rename(name)
	s.tables[name] = t
	return NewTableResponse(t)
}

// Section returns the result table registered under name
func (s Sections) Section(name string) (*ledger.Table, bool) {
	t, ok := s.tables[name]
	return t, ok
}

// SectionNames lists the registered sections in sorted order
func (s Sections) SectionNames() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Exportable is a page result whose sections can be downloaded
type Exportable interface {
	Section(name string) (*ledger.Table, bool)
	SectionNames() []string
}

func toFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
