package report

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tafa/dashboard/internal/domain/ledger"
)

// HomeReport holds the headline KPIs
type HomeReport struct {
	Sections `json:"-"`

	Range            RangeResponse `json:"range"`
	TotalSales       float64       `json:"total_sales"`
	SalesOutstanding float64       `json:"sales_outstanding"`
	Invoices         int           `json:"invoices"`
	CashIncome       float64       `json:"cash_income"`
	CashExpenses     float64       `json:"cash_expenses"`
	BankDeposits     float64       `json:"bank_deposits"`
	BankWithdrawals  float64       `json:"bank_withdrawals"`
	MobileBanking    float64       `json:"mobile_banking"`
	Empty            bool          `json:"empty"`
}

// Home computes the KPI page. Cash expenses are the Expenses category
// group's cash out.
func (s *ReportService) Home(ctx context.Context, f Filter) (*HomeReport, error) {
	tables, err := s.tables.Tables(ctx, ledger.TableSales, ledger.TableCashbook, ledger.TableBankbook)
	if err != nil {
		return nil, err
	}
	sales := f.byDate(tables[0])
	cash := f.byDate(tables[1]).Rows
	bank := f.byDate(tables[2]).Rows

	rows := sales.Rows
	outstanding := rows.Where(func(i int) bool {
		return !strings.EqualFold(strings.TrimSpace(rows.Value(i, ledger.ColPaymentStatus).String()), "paid")
	})

	mobileSales := ledger.FilterBySelections(rows, ledger.Selection{
		Column: ledger.ColPaymentMethod,
		Values: s.opts.MobileMethods,
	})

	return &HomeReport{
		Range:            newRangeResponse(sales),
		TotalSales:       toFloat64(rows.Sum(ledger.ColTotalAmount)),
		SalesOutstanding: toFloat64(outstanding.Sum(ledger.ColTotalAmount)),
		Invoices:         rows.Len(),
		CashIncome:       toFloat64(cash.Sum(ledger.ColCashIn)),
		CashExpenses:     toFloat64(expenses(cash)),
		BankDeposits:     toFloat64(bank.Sum(ledger.ColDeposit)),
		BankWithdrawals:  toFloat64(bank.Sum(ledger.ColWithdrawal)),
		MobileBanking:    toFloat64(mobileSales.Sum(ledger.ColTotalAmount)),
		Empty:            rows.IsEmpty() && cash.IsEmpty() && bank.IsEmpty(),
	}, nil
}

// expenses is the cash out of cashbook rows in the Expenses group
func expenses(cash *ledger.Table) decimal.Decimal {
	return groupSum(cash, ledger.ColCategoryGroup, string(ledger.GroupExpenses), ledger.ColCashOut)
}
