// Package report turns normalized ledger tables into summary tables:
// grouped aggregates, rankings and the per-date cross-table view.
package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tafa/dashboard/internal/domain/ledger"
)

// ErrUnknownColumn is returned by Spec.Validate.
var ErrUnknownColumn = errors.New("unknown column")

// ErrUnknownOp is returned by Spec.Validate for an unsupported operation.
var ErrUnknownOp = errors.New("unknown aggregation")

// Op is an aggregation operation.
type Op string

const (
	OpSum   Op = "sum"
	OpCount Op = "count"
	OpLast  Op = "last"
)

// Metric is one summary column of an aggregate.
type Metric struct {
	Name   string
	Source string
	Op     Op
}

// Sum totals a numeric column into name.
func Sum(name, source string) Metric {
	return Metric{Name: name, Source: source, Op: OpSum}
}

// Count counts the rows of each group into name.
func Count(name string) Metric {
	return Metric{Name: name, Op: OpCount}
}

// Last keeps the value of the group's last row.
func Last(name, source string) Metric {
	return Metric{Name: name, Source: source, Op: OpLast}
}

// DerivedMetric is sum(Plus) - sum(Minus) over summary columns of the same row.
type DerivedMetric struct {
	Name  string
	Plus  []string
	Minus []string
}

// Difference is the common a - b derived metric.
func Difference(name, plus, minus string) DerivedMetric {
	return DerivedMetric{Name: name, Plus: []string{plus}, Minus: []string{minus}}
}

// Spec describes an aggregation. An empty By produces a single totals row.
type Spec struct {
	By      []string
	Metrics []Metric
	Derived []DerivedMetric
}

// Validate checks that every grouping and source column exists in t.
// Aggregate itself never fails; this is for caller-chosen dimensions.
func (s Spec) Validate(t *ledger.Table) error {
	for _, c := range s.By {
		if !t.HasColumn(c) {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
	}
	for _, m := range s.Metrics {
		switch m.Op {
		case OpCount:
		case OpSum, OpLast:
			if !t.HasColumn(m.Source) {
				return fmt.Errorf("%w: %q", ErrUnknownColumn, m.Source)
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownOp, m.Op)
		}
	}
	return nil
}

type group struct {
	keys  ledger.Row
	sums  []decimal.Decimal
	lasts []ledger.Value
	count int64
}

// Aggregate groups t by the distinct combinations of s.By in order of first
// appearance and computes every metric per group. The result has the key
// columns, then the metrics, then the derived metrics. Unknown columns read
// as empty text or zero, and an empty input yields an empty table with the
// full result schema.
func Aggregate(t *ledger.Table, s Spec) *ledger.Table {
	columns := resultColumns(t, s)

	groups := make(map[string]*group)
	var order []*group
	for i := 0; i < t.Len(); i++ {
		keys := make(ledger.Row, len(s.By))
		parts := make([]string, len(s.By))
		for k, c := range s.By {
			keys[k] = t.Value(i, c)
			parts[k] = keys[k].Key()
		}
		id := strings.Join(parts, "\x1f")

		g, ok := groups[id]
		if !ok {
			g = &group{
				keys:  keys,
				sums:  make([]decimal.Decimal, len(s.Metrics)),
				lasts: make([]ledger.Value, len(s.Metrics)),
			}
			groups[id] = g
			order = append(order, g)
		}
		g.count++
		for m, metric := range s.Metrics {
			switch metric.Op {
			case OpSum:
				g.sums[m] = g.sums[m].Add(t.Value(i, metric.Source).Decimal())
			case OpLast:
				g.lasts[m] = t.Value(i, metric.Source)
			}
		}
	}

	rows := make([]ledger.Row, 0, len(order))
	for _, g := range order {
		row := make(ledger.Row, 0, len(columns))
		row = append(row, g.keys...)
		values := make(map[string]decimal.Decimal, len(s.Metrics))
		for m, metric := range s.Metrics {
			var v ledger.Value
			switch metric.Op {
			case OpCount:
				v = ledger.Int(g.count)
			case OpLast:
				v = g.lasts[m]
			default:
				v = ledger.Number(g.sums[m])
			}
			row = append(row, v)
			values[metric.Name] = v.Decimal()
		}
		for _, d := range s.Derived {
			row = append(row, ledger.Number(d.apply(values)))
		}
		rows = append(rows, row)
	}

	return ledger.NewTable(t.Name(), columns, rows)
}

func (d DerivedMetric) apply(values map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, p := range d.Plus {
		total = total.Add(values[p])
	}
	for _, m := range d.Minus {
		total = total.Sub(values[m])
	}
	return total
}

func resultColumns(t *ledger.Table, s Spec) []ledger.Column {
	columns := make([]ledger.Column, 0, len(s.By)+len(s.Metrics)+len(s.Derived))
	for _, c := range s.By {
		columns = append(columns, ledger.Column{Name: c, Kind: kindOf(t, c)})
	}
	for _, m := range s.Metrics {
		kind := ledger.KindNumeric
		if m.Op == OpLast {
			kind = kindOf(t, m.Source)
		}
		columns = append(columns, ledger.Column{Name: m.Name, Kind: kind})
	}
	for _, d := range s.Derived {
		columns = append(columns, ledger.Column{Name: d.Name, Kind: ledger.KindNumeric})
	}
	return columns
}

func kindOf(t *ledger.Table, column string) ledger.Kind {
	if c, ok := t.Column(column); ok {
		return c.Kind
	}
	return ledger.KindText
}
