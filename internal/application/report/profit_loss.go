package report

import (
	"context"

	"github.com/tafa/dashboard/internal/domain/ledger"
	domainreport "github.com/tafa/dashboard/internal/domain/report"
)

// ProfitLossReport is the profit and loss page
type ProfitLossReport struct {
	Sections `json:"-"`

	Range            RangeResponse `json:"range"`
	TotalIncome      float64       `json:"total_income"`
	TotalExpenses    float64       `json:"total_expenses"`
	ProfitLoss       float64       `json:"profit_loss"`
	IncomeByCategory TableResponse `json:"income_by_category"`
	Empty            bool          `json:"empty"`
}

// ProfitLoss relates sales income to cashbook expenses over one date range.
// The range defaults to the sales bounds and applies to both tables.
func (s *ReportService) ProfitLoss(ctx context.Context, f Filter) (*ProfitLossReport, error) {
	tables, err := s.tables.Tables(ctx, ledger.TableSales, ledger.TableCashbook)
	if err != nil {
		return nil, err
	}
	sales := f.byDate(tables[0])
	cash := ledger.FilterByDate(tables[1], ledger.ColDate, sales.Range.Start, sales.Range.End)
	rows := sales.Rows

	income := rows.Sum(ledger.ColTotalAmount)
	spent := expenses(cash)

	byCategory := domainreport.SortBy(domainreport.Aggregate(rows, domainreport.Spec{
		By:      []string{ledger.ColCategory},
		Metrics: []domainreport.Metric{domainreport.Sum(ledger.ColTotalAmount, ledger.ColTotalAmount)},
	}), ledger.ColTotalAmount, domainreport.Desc)

	r := &ProfitLossReport{
		Range:         newRangeResponse(sales),
		TotalIncome:   toFloat64(income),
		TotalExpenses: toFloat64(spent),
		ProfitLoss:    toFloat64(income.Sub(spent)),
		Empty:         rows.IsEmpty(),
	}
	r.IncomeByCategory = r.add("income_by_category", byCategory)
	return r, nil
}
