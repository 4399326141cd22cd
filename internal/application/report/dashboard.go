package report

import (
	"context"

	"github.com/tafa/dashboard/internal/domain/ledger"
	domainreport "github.com/tafa/dashboard/internal/domain/report"
)

// DashboardReport is the overview page
type DashboardReport struct {
	Sections `json:"-"`

	Range           RangeResponse   `json:"range"`
	TotalSales      float64         `json:"total_sales"`
	TotalQuantity   float64         `json:"total_quantity"`
	Invoices        int             `json:"invoices"`
	SalesByCategory TableResponse   `json:"sales_by_category"`
	CashByCategory  TableResponse   `json:"cash_by_category"`
	BankByCategory  TableResponse   `json:"bank_by_category"`
	TopCustomer     *LeaderResponse `json:"top_customer"`
	BestProduct     *LeaderResponse `json:"best_product"`
}

// Dashboard computes the overview page
func (s *ReportService) Dashboard(ctx context.Context, f Filter) (*DashboardReport, error) {
	tables, err := s.tables.Tables(ctx, ledger.TableSales, ledger.TableCashbook, ledger.TableBankbook)
	if err != nil {
		return nil, err
	}
	sales := f.byDate(tables[0])
	cash := f.byDate(tables[1]).Rows
	bank := f.byDate(tables[2]).Rows
	rows := sales.Rows

	byCategory := domainreport.SortBy(domainreport.Aggregate(rows, domainreport.Spec{
		By:      []string{ledger.ColCategory},
		Metrics: []domainreport.Metric{domainreport.Sum(ledger.ColTotalAmount, ledger.ColTotalAmount)},
	}), ledger.ColTotalAmount, domainreport.Desc)

	cashByCategory := domainreport.Aggregate(cash, domainreport.Spec{
		By: []string{ledger.ColPaymentCategory},
		Metrics: []domainreport.Metric{
			domainreport.Sum(ledger.ColCashIn, ledger.ColCashIn),
			domainreport.Sum(ledger.ColCashOut, ledger.ColCashOut),
		},
	})

	bankByCategory := domainreport.Aggregate(bank, domainreport.Spec{
		By: []string{ledger.ColPaymentCategory},
		Metrics: []domainreport.Metric{
			domainreport.Sum(ledger.ColDeposit, ledger.ColDeposit),
			domainreport.Sum(ledger.ColWithdrawal, ledger.ColWithdrawal),
		},
	})

	topCustomer := domainreport.TopN(domainreport.Aggregate(rows, domainreport.Spec{
		By:      []string{ledger.ColCustomerName},
		Metrics: []domainreport.Metric{domainreport.Sum(ledger.ColTotalAmount, ledger.ColTotalAmount)},
	}), ledger.ColTotalAmount, 1, domainreport.Desc)

	bestProduct := domainreport.TopN(domainreport.Aggregate(rows, domainreport.Spec{
		By:      []string{ledger.ColProductName},
		Metrics: []domainreport.Metric{domainreport.Sum(ledger.ColTotalAmount, ledger.ColTotalAmount)},
	}), ledger.ColTotalAmount, 1, domainreport.Desc)

	r := &DashboardReport{
		Range:         newRangeResponse(sales),
		TotalSales:    toFloat64(rows.Sum(ledger.ColTotalAmount)),
		TotalQuantity: toFloat64(rows.Sum(ledger.ColQuantity)),
		Invoices:      rows.Len(),
		TopCustomer:   leader(topCustomer, ledger.ColCustomerName, ledger.ColTotalAmount),
		BestProduct:   leader(bestProduct, ledger.ColProductName, ledger.ColTotalAmount),
	}
	r.SalesByCategory = r.add("sales_by_category", byCategory)
	r.CashByCategory = r.add("cash_by_category", cashByCategory)
	r.BankByCategory = r.add("bank_by_category", bankByCategory)
	return r, nil
}
