package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tafa/dashboard/internal/domain/ledger"
)

// DateColumn is the key column of a combined table.
const DateColumn = "date"

// Axis selects which dates a combined table covers.
type Axis string

const (
	// AxisUnion covers every date present in any source.
	AxisUnion Axis = "union"
	// AxisOverlap covers the dates inside the intersection of the sources'
	// date ranges. Empty sources have no range and do not narrow it.
	AxisOverlap Axis = "overlap"
)

// Source is one table feeding a combined view. Metrics are sums or counts
// over the source's rows of each date.
type Source struct {
	Table      *ledger.Table
	DateColumn string
	Metrics    []Metric
}

// CombineOptions configures Combine.
type CombineOptions struct {
	Axis    Axis
	Derived []DerivedMetric
}

// Combine joins several sources on their date column into one table sorted
// by date ascending: the date, then every source's metrics, then the derived
// metrics. A source without rows on a date contributes zero. Rows with a
// missing date are ignored. When every source is empty the result is empty.
func Combine(sources []Source, opts CombineOptions) *ledger.Table {
	columns := []ledger.Column{{Name: DateColumn, Kind: ledger.KindDate}}
	for _, src := range sources {
		for _, m := range src.Metrics {
			columns = append(columns, ledger.Column{Name: m.Name, Kind: ledger.KindNumeric})
		}
	}
	for _, d := range opts.Derived {
		columns = append(columns, ledger.Column{Name: d.Name, Kind: ledger.KindNumeric})
	}

	perDate := make(map[time.Time]map[string]decimal.Decimal)
	var ranges []ledger.DateRange
	for _, src := range sources {
		if src.Table == nil || src.Table.IsEmpty() {
			continue
		}
		dated := src.Table.Where(func(i int) bool {
			_, ok := src.Table.Value(i, src.DateColumn).Date()
			return ok
		})
		if r, ok := ledger.DateBounds(dated, src.DateColumn); ok {
			ranges = append(ranges, r)
		}

		agg := Aggregate(dated, Spec{By: []string{src.DateColumn}, Metrics: src.Metrics})
		for i := 0; i < agg.Len(); i++ {
			day, _ := agg.Value(i, src.DateColumn).Date()
			values, ok := perDate[day]
			if !ok {
				values = make(map[string]decimal.Decimal)
				perDate[day] = values
			}
			for _, m := range src.Metrics {
				values[m.Name] = values[m.Name].Add(agg.Value(i, m.Name).Decimal())
			}
		}
	}

	name := "combined"
	if len(perDate) == 0 {
		return ledger.NewTable(name, columns, nil)
	}

	days := make([]time.Time, 0, len(perDate))
	for d := range perDate {
		days = append(days, d)
	}
	sort.Slice(days, func(a, b int) bool { return days[a].Before(days[b]) })

	if opts.Axis == AxisOverlap {
		window, ok := ledger.OverlapBounds(ranges...)
		if !ok {
			return ledger.NewTable(name, columns, nil)
		}
		kept := days[:0]
		for _, d := range days {
			if window.Contains(d) {
				kept = append(kept, d)
			}
		}
		days = kept
	}

	rows := make([]ledger.Row, 0, len(days))
	for _, d := range days {
		values := perDate[d]
		row := make(ledger.Row, 0, len(columns))
		row = append(row, ledger.Day(d))
		for _, c := range columns[1 : len(columns)-len(opts.Derived)] {
			row = append(row, ledger.Number(values[c.Name]))
		}
		for _, dm := range opts.Derived {
			row = append(row, ledger.Number(dm.apply(values)))
		}
		rows = append(rows, row)
	}
	return ledger.NewTable(name, columns, rows)
}
