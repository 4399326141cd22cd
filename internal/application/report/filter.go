package report

import (
	"strings"
	"time"

	"github.com/tafa/dashboard/internal/domain/ledger"
	"github.com/tafa/dashboard/internal/domain/report"
)

// Selection parameter names accepted by the report pages
const (
	ParamCategory        = "category"
	ParamGroup           = "group"
	ParamName            = "name"
	ParamSupplier        = "supplier"
	ParamProductCategory = "product_category"
	ParamStatus          = "status"
)

// SelectionParams lists every selection parameter
func SelectionParams() []string {
	return []string{ParamCategory, ParamGroup, ParamName, ParamSupplier, ParamProductCategory, ParamStatus}
}

// dimensions maps each selection parameter to the column it restricts, per table.
// A parameter with no column for a table does not apply to it.
var dimensions = map[string]map[string]string{
	ledger.TableSales: {
		ParamCategory: ledger.ColCategory,
		ParamName:     ledger.ColCustomerName,
		ParamStatus:   ledger.ColPaymentStatus,
	},
	ledger.TableCashbook: {
		ParamCategory: ledger.ColPaymentCategory,
		ParamGroup:    ledger.ColCategoryGroup,
		ParamName:     ledger.ColName,
	},
	ledger.TableBankbook: {
		ParamCategory: ledger.ColPaymentCategory,
		ParamName:     ledger.ColFundSource,
	},
	ledger.TablePurchase: {
		ParamCategory:        ledger.ColPaymentCategory,
		ParamSupplier:        ledger.ColSupplierName,
		ParamProductCategory: ledger.ColProductCategory,
		ParamStatus:          ledger.ColPaymentStatus,
	},
}

// Filter carries the request parameters shared by every page.
// Nil Start or End default to the data bounds. A key present in Selections is
// an active selection; an absent key is inactive.
type Filter struct {
	Start      *time.Time
	End        *time.Time
	Selections map[string][]string
	Dimension  string
	Axis       report.Axis
}

var (
	minDay = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	maxDay = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
)

// Window returns the effective inclusive range. Open ends fall back to bounds
// when known, otherwise to the widest representable day.
func (f Filter) Window(bounds ledger.DateRange, known bool) ledger.DateRange {
	start, end := minDay, maxDay
	if known {
		start, end = bounds.Start, bounds.End
	}
	if f.Start != nil {
		start = *f.Start
	}
	if f.End != nil {
		end = *f.End
	}
	return ledger.NewDateRange(start, end)
}

// isAll reports whether a status selection names "All", which disables it
func isAll(values []string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), "all") {
			return true
		}
	}
	return false
}

// selections builds the active selections of f that apply to table
func (f Filter) selections(table string, params ...string) []ledger.Selection {
	columns := dimensions[table]
	if len(params) == 0 {
		params = SelectionParams()
	}
	var out []ledger.Selection
	for _, p := range params {
		values, ok := f.Selections[p]
		if !ok {
			continue
		}
		column, ok := columns[p]
		if !ok {
			continue
		}
		if p == ParamStatus {
			if isAll(values) {
				continue
			}
			// purchase statuses are derived and carry canonical labels
			if table == ledger.TablePurchase {
				values = normalizeStatuses(values)
			}
		}
		out = append(out, ledger.Selection{Column: column, Values: values})
	}
	return out
}

// normalizeStatuses maps status labels to their canonical form. Labels that
// are not payment statuses are kept as given.
func normalizeStatuses(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if st, ok := ledger.ParsePaymentStatus(v); ok {
			out[i] = string(st)
		} else {
			out[i] = v
		}
	}
	return out
}

// window is the date range and the filtered rows of one table
type window struct {
	Range ledger.DateRange
	Known bool
	Rows  *ledger.Table
}

// byDate applies the date part of f to t over its date column
func (f Filter) byDate(t *ledger.Table) window {
	bounds, known := ledger.DateBounds(t, ledger.ColDate)
	r := f.Window(bounds, known)
	return window{
		Range: r,
		Known: known || (f.Start != nil && f.End != nil),
		Rows:  ledger.FilterByDate(t, ledger.ColDate, r.Start, r.End),
	}
}

// apply filters t by date and by the given selection parameters (all when none)
func (f Filter) apply(t *ledger.Table, params ...string) window {
	w := f.byDate(t)
	w.Rows = ledger.FilterBySelections(w.Rows, f.selections(t.Name(), params...)...)
	return w
}
