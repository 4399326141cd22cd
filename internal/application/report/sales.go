package report

import (
	"context"

	"github.com/tafa/dashboard/internal/domain/ledger"
	domainreport "github.com/tafa/dashboard/internal/domain/report"
)

// Sales summary column names
const (
	ColTotalSales    = "total_sales"
	ColTotalQuantity = "total_quantity"
)

// SalesReport is the sales analysis page
type SalesReport struct {
	Sections `json:"-"`

	Range      RangeResponse `json:"range"`
	TotalSales float64       `json:"total_sales"`
	Invoices   int           `json:"invoices"`
	BySeller   TableResponse `json:"by_seller"`
	ByCategory TableResponse `json:"by_category"`
	Dimension  string        `json:"dimension"`
	Drilldown  TableResponse `json:"drilldown"`
	Empty      bool          `json:"empty"`
}

func salesMetrics() []domainreport.Metric {
	return []domainreport.Metric{
		domainreport.Sum(ColTotalSales, ledger.ColTotalAmount),
		domainreport.Sum(ColTotalQuantity, ledger.ColQuantity),
	}
}

// Sales computes the sales analysis page. The drill-down dimension defaults
// to category and may name any column of the sales table.
func (s *ReportService) Sales(ctx context.Context, f Filter) (*SalesReport, error) {
	t, err := s.tables.Table(ctx, ledger.TableSales)
	if err != nil {
		return nil, err
	}
	w := f.apply(t)
	rows := w.Rows

	dimension := f.Dimension
	if dimension == "" {
		dimension = ledger.ColCategory
	}
	drill, err := drilldown(rows, dimension, salesMetrics()...)
	if err != nil {
		return nil, err
	}

	bySeller := domainreport.Aggregate(rows, domainreport.Spec{
		By:      []string{ledger.ColSoldBy},
		Metrics: []domainreport.Metric{domainreport.Sum(ColTotalSales, ledger.ColTotalAmount)},
	})
	byCategory := domainreport.Aggregate(rows, domainreport.Spec{
		By:      []string{ledger.ColCategory},
		Metrics: salesMetrics(),
	})

	r := &SalesReport{
		Range:      newRangeResponse(w),
		TotalSales: toFloat64(rows.Sum(ledger.ColTotalAmount)),
		Invoices:   rows.Len(),
		Dimension:  dimension,
		Empty:      rows.IsEmpty(),
	}
	r.BySeller = r.add("by_seller", bySeller)
	r.ByCategory = r.add("by_category", byCategory)
	r.Drilldown = r.add("drilldown", drill)
	r.add("transactions", newestFirst(rows))
	return r, nil
}
