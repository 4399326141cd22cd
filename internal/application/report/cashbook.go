package report

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tafa/dashboard/internal/domain/ledger"
	domainreport "github.com/tafa/dashboard/internal/domain/report"
)

// Cashbook summary column names
const (
	ColTransactionCount = "transaction_count"
	ColNetCashFlow      = "net_cash_flow"
)

var hundred = decimal.NewFromInt(100)

// CashbookTotals is the overall cash flow of the filtered period
type CashbookTotals struct {
	CashIn       float64 `json:"cash_in"`
	CashOut      float64 `json:"cash_out"`
	NetBalance   float64 `json:"net_balance"`
	Transactions int     `json:"transactions"`
}

// CategoryAmount is one entry of an insight ranking
type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// CashbookInsights summarizes the category performance
type CashbookInsights struct {
	TopIncome          []CategoryAmount `json:"top_income"`
	TopExpense         []CategoryAmount `json:"top_expense"`
	ExpenseRatio       *float64         `json:"expense_ratio"`
	ProfitableCount    int              `json:"profitable_categories"`
	LossMakingCount    int              `json:"loss_making_categories"`
	IncomeGroupTotal   float64          `json:"income_total"`
	ExpensesGroupTotal float64          `json:"expense_total"`
}

// CashbookReport is the cashbook page
type CashbookReport struct {
	Sections `json:"-"`

	Range            RangeResponse    `json:"range"`
	Totals           CashbookTotals   `json:"totals"`
	CategorySummary  TableResponse    `json:"category_summary"`
	GroupSummary     TableResponse    `json:"group_summary"`
	IncomeVsExpenses TableResponse    `json:"income_vs_expenses"`
	DailyTrend       TableResponse    `json:"daily_trend"`
	Transactions     TableResponse    `json:"transactions"`
	Insights         CashbookInsights `json:"insights"`
	Empty            bool             `json:"empty"`
}

func cashFlowSpec(by string) domainreport.Spec {
	return domainreport.Spec{
		By: []string{by},
		Metrics: []domainreport.Metric{
			domainreport.Sum(ledger.ColCashIn, ledger.ColCashIn),
			domainreport.Sum(ledger.ColCashOut, ledger.ColCashOut),
			domainreport.Count(ColTransactionCount),
		},
		Derived: []domainreport.DerivedMetric{
			domainreport.Difference(ColNetCashFlow, ledger.ColCashIn, ledger.ColCashOut),
		},
	}
}

// Cashbook computes the cashbook page. Summaries cover the date range; the
// category, group and name selections narrow the transaction view only.
func (s *ReportService) Cashbook(ctx context.Context, f Filter) (*CashbookReport, error) {
	t, err := s.tables.Table(ctx, ledger.TableCashbook)
	if err != nil {
		return nil, err
	}
	w := f.byDate(t)
	rows := w.Rows

	categories := domainreport.SortBy(
		domainreport.Aggregate(rows, cashFlowSpec(ledger.ColPaymentCategory)), ColNetCashFlow, domainreport.Desc)
	groups := domainreport.SortBy(
		domainreport.Aggregate(rows, cashFlowSpec(ledger.ColCategoryGroup)), ColNetCashFlow, domainreport.Desc)

	incomeVsExpenses := ledger.FilterBySelections(groups, ledger.Selection{
		Column: ledger.ColCategoryGroup,
		Values: []string{string(ledger.GroupIncome), string(ledger.GroupExpenses)},
	})

	trend := domainreport.SortBy(domainreport.Aggregate(rows, domainreport.Spec{
		By: []string{ledger.ColDate},
		Metrics: []domainreport.Metric{
			domainreport.Sum(ledger.ColCashIn, ledger.ColCashIn),
			domainreport.Sum(ledger.ColCashOut, ledger.ColCashOut),
		},
		Derived: []domainreport.DerivedMetric{
			domainreport.Difference(ColNetCashFlow, ledger.ColCashIn, ledger.ColCashOut),
		},
	}), ledger.ColDate, domainreport.Asc)

	detail := newestFirst(ledger.FilterBySelections(rows,
		f.selections(ledger.TableCashbook, ParamCategory, ParamGroup, ParamName)...)).
		Project(ledger.ColDate, ledger.ColVoucherNo, ledger.ColPaymentCategory, ledger.ColCategoryGroup,
			ledger.ColName, ledger.ColDescription, ledger.ColCashIn, ledger.ColCashOut, ledger.ColBalance)

	cashIn := rows.Sum(ledger.ColCashIn)
	cashOut := rows.Sum(ledger.ColCashOut)

	r := &CashbookReport{
		Range: newRangeResponse(w),
		Totals: CashbookTotals{
			CashIn:       toFloat64(cashIn),
			CashOut:      toFloat64(cashOut),
			NetBalance:   toFloat64(cashIn.Sub(cashOut)),
			Transactions: rows.Len(),
		},
		Insights: s.cashbookInsights(categories, groups),
		Empty:    rows.IsEmpty(),
	}
	r.CategorySummary = r.add("category_summary", categories)
	r.GroupSummary = r.add("group_summary", groups)
	r.IncomeVsExpenses = r.add("income_vs_expenses", incomeVsExpenses)
	r.DailyTrend = r.add("daily_trend", trend)
	r.Transactions = r.add("transactions", detail)
	return r, nil
}

// cashbookInsights ranks categories and relates Expenses to Income. The
// expense ratio is reported only when the Income group has positive cash in.
func (s *ReportService) cashbookInsights(categories, groups *ledger.Table) CashbookInsights {
	income := groupSum(groups, ledger.ColCategoryGroup, string(ledger.GroupIncome), ledger.ColCashIn)
	expense := groupSum(groups, ledger.ColCategoryGroup, string(ledger.GroupExpenses), ledger.ColCashOut)

	insights := CashbookInsights{
		TopIncome:          ranking(domainreport.TopN(categories, ledger.ColCashIn, s.opts.InsightN, domainreport.Desc), ledger.ColCashIn),
		TopExpense:         ranking(domainreport.TopN(categories, ledger.ColCashOut, s.opts.InsightN, domainreport.Desc), ledger.ColCashOut),
		IncomeGroupTotal:   toFloat64(income),
		ExpensesGroupTotal: toFloat64(expense),
	}
	if income.IsPositive() {
		ratio := toFloat64(expense.Div(income).Mul(hundred))
		insights.ExpenseRatio = &ratio
	}
	for i := 0; i < categories.Len(); i++ {
		switch categories.Value(i, ColNetCashFlow).Decimal().Sign() {
		case 1:
			insights.ProfitableCount++
		case -1:
			insights.LossMakingCount++
		}
	}
	return insights
}

func ranking(t *ledger.Table, amountColumn string) []CategoryAmount {
	out := make([]CategoryAmount, t.Len())
	for i := range out {
		out[i] = CategoryAmount{
			Category: t.Value(i, ledger.ColPaymentCategory).String(),
			Amount:   toFloat64(t.Value(i, amountColumn).Decimal()),
		}
	}
	return out
}
