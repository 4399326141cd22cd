package report

import (
	"strings"

	"github.com/tafa/dashboard/internal/domain/ledger"
)

// Direction is a sort direction.
type Direction int

const (
	Desc Direction = iota
	Asc
)

// ParseDirection accepts "asc" and "desc"; anything else is Desc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), "asc") {
		return Asc
	}
	return Desc
}

// SortBy orders a result by one metric. Ties keep their grouping order.
func SortBy(t *ledger.Table, metric string, dir Direction) *ledger.Table {
	return t.SortBy(metric, dir == Desc)
}

// TopN returns the first n rows after SortBy.
func TopN(t *ledger.Table, metric string, n int, dir Direction) *ledger.Table {
	return SortBy(t, metric, dir).Head(n)
}
