package report

import (
	"context"
	"fmt"

	"github.com/tafa/dashboard/internal/domain/ledger"
	domainreport "github.com/tafa/dashboard/internal/domain/report"
	"github.com/tafa/dashboard/internal/domain/shared"
)

// ColSalesIncome is the sales column of the combined view
const ColSalesIncome = "sales_income"

// ChartsReport is the cross-table charts page
type ChartsReport struct {
	Sections `json:"-"`

	Range              RangeResponse  `json:"range"`
	Bounds             RangeResponse  `json:"bounds"`
	Axis               string         `json:"axis"`
	NoData             bool           `json:"no_data"`
	SalesByCategory    TableResponse  `json:"sales_by_category"`
	CashByCategory     TableResponse  `json:"cash_by_category"`
	BankByCategory     TableResponse  `json:"bank_by_category"`
	PurchaseByCategory TableResponse  `json:"purchase_by_category"`
	BankTrend          TableResponse  `json:"bank_trend"`
	Combined           TableResponse  `json:"combined"`
	SellerSales        TableResponse  `json:"seller_sales"`
	Drilldown          *TableResponse `json:"drilldown,omitempty"`
}

func parseAxis(a domainreport.Axis) (domainreport.Axis, error) {
	switch a {
	case "", domainreport.AxisUnion:
		return domainreport.AxisUnion, nil
	case domainreport.AxisOverlap:
		return domainreport.AxisOverlap, nil
	}
	return "", shared.ErrInvalidInput.Wrap(fmt.Sprintf("Invalid axis %q, want union or overlap", a), nil)
}

// Charts computes the cross-table page. The default range spans the union of
// all four tables' date bounds. NoData is set when every filtered table is empty.
func (s *ReportService) Charts(ctx context.Context, f Filter) (*ChartsReport, error) {
	axis, err := parseAxis(f.Axis)
	if err != nil {
		return nil, err
	}
	tables, err := s.tables.Tables(ctx, ledger.TableSales, ledger.TableCashbook, ledger.TableBankbook, ledger.TablePurchase)
	if err != nil {
		return nil, err
	}

	var ranges []ledger.DateRange
	for _, t := range tables {
		if b, ok := ledger.DateBounds(t, ledger.ColDate); ok {
			ranges = append(ranges, b)
		}
	}
	bounds, known := ledger.UnionBounds(ranges...)
	r := f.Window(bounds, known)
	w := window{Range: r, Known: known || (f.Start != nil && f.End != nil)}

	filtered := make([]*ledger.Table, len(tables))
	noData := true
	for i, t := range tables {
		filtered[i] = ledger.FilterByDate(t, ledger.ColDate, r.Start, r.End)
		if !filtered[i].IsEmpty() {
			noData = false
		}
	}
	sales, cash, bank, purchase := filtered[0], filtered[1], filtered[2], filtered[3]

	var drill *ledger.Table
	if f.Dimension != "" {
		drill, err = drilldown(sales, f.Dimension, domainreport.Sum(ColTotalSales, ledger.ColTotalAmount))
		if err != nil {
			return nil, err
		}
	}

	salesByCategory := domainreport.SortBy(domainreport.Aggregate(sales, domainreport.Spec{
		By:      []string{ledger.ColCategory},
		Metrics: []domainreport.Metric{domainreport.Sum(ledger.ColTotalAmount, ledger.ColTotalAmount)},
	}), ledger.ColTotalAmount, domainreport.Desc)

	cashByCategory := domainreport.Aggregate(cash, domainreport.Spec{
		By: []string{ledger.ColPaymentCategory},
		Metrics: []domainreport.Metric{
			domainreport.Sum(ledger.ColCashIn, ledger.ColCashIn),
			domainreport.Sum(ledger.ColCashOut, ledger.ColCashOut),
		},
		Derived: []domainreport.DerivedMetric{
			domainreport.Difference(ColNetCashFlow, ledger.ColCashIn, ledger.ColCashOut),
		},
	})

	bankByCategory := domainreport.Aggregate(bank, domainreport.Spec{
		By: []string{ledger.ColPaymentCategory},
		Metrics: []domainreport.Metric{
			domainreport.Sum(ledger.ColCashIn, ledger.ColDeposit),
			domainreport.Sum(ledger.ColCashOut, ledger.ColWithdrawal),
		},
		Derived: []domainreport.DerivedMetric{
			domainreport.Difference(ColNetCashFlow, ledger.ColCashIn, ledger.ColCashOut),
		},
	})

	bankTrend := domainreport.Combine([]domainreport.Source{{
		Table:      bank,
		DateColumn: ledger.ColDate,
		Metrics: []domainreport.Metric{
			domainreport.Sum(ledger.ColDeposit, ledger.ColDeposit),
			domainreport.Sum(ledger.ColWithdrawal, ledger.ColWithdrawal),
		},
	}}, domainreport.CombineOptions{
		Derived: []domainreport.DerivedMetric{
			domainreport.Difference(ColNetCashFlow, ledger.ColDeposit, ledger.ColWithdrawal),
		},
	})

	combined := domainreport.Combine([]domainreport.Source{
		{
			Table:      sales,
			DateColumn: ledger.ColDate,
			Metrics:    []domainreport.Metric{domainreport.Sum(ColSalesIncome, ledger.ColTotalAmount)},
		},
		{
			Table:      cash,
			DateColumn: ledger.ColDate,
			Metrics: []domainreport.Metric{
				domainreport.Sum(ledger.ColCashIn, ledger.ColCashIn),
				domainreport.Sum(ledger.ColCashOut, ledger.ColCashOut),
			},
		},
	}, domainreport.CombineOptions{
		Axis: axis,
		Derived: []domainreport.DerivedMetric{{
			Name:  ColNetCashFlow,
			Plus:  []string{ColSalesIncome, ledger.ColCashIn},
			Minus: []string{ledger.ColCashOut},
		}},
	})

	sellers := domainreport.Aggregate(sales, domainreport.Spec{
		By:      []string{ledger.ColSoldBy},
		Metrics: salesMetrics(),
	})

	resp := &ChartsReport{
		Range:  newRangeResponse(w),
		Axis:   string(axis),
		NoData: noData,
	}
	if known {
		resp.Bounds = RangeResponse{
			Start: bounds.Start.Format(ledger.DateLayout),
			End:   bounds.End.Format(ledger.DateLayout),
		}
	}
	resp.SalesByCategory = resp.add("sales_by_category", salesByCategory)
	resp.CashByCategory = resp.add("cash_by_category", cashByCategory)
	resp.BankByCategory = resp.add("bank_by_category", bankByCategory)
	resp.PurchaseByCategory = resp.add("purchase_by_category", domainreport.Aggregate(purchase, purchaseByCategorySpec()))
	resp.BankTrend = resp.add("bank_trend", bankTrend)
	resp.Combined = resp.add("combined", combined)
	resp.SellerSales = resp.add("seller_sales", sellers)
	if drill != nil {
		d := resp.add("drilldown", drill)
		resp.Drilldown = &d
	}
	return resp, nil
}
