package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tafa/dashboard/internal/domain/ledger"
	domainreport "github.com/tafa/dashboard/internal/domain/report"
	"github.com/tafa/dashboard/internal/domain/shared"
	"github.com/tafa/dashboard/internal/infrastructure/cache"
)

func newTestReportService(t *testing.T) *ReportService {
	t.Helper()
	tables := NewTableService(newFixtureLoader(), cache.NewMemoryTableStore(), nil)
	return NewReportService(tables, Options{}, nil)
}

func dayPtr(s string) *time.Time {
	d, err := time.Parse(ledger.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &d
}

func column(tbl *ledger.Table, name string) []string {
	out := make([]string, tbl.Len())
	for i := range out {
		out[i] = tbl.Value(i, name).String()
	}
	return out
}

func amount(tbl *ledger.Table, row int, name string) float64 {
	return toFloat64(tbl.Value(row, name).Decimal())
}

func section(t *testing.T, page Exportable, name string) *ledger.Table {
	t.Helper()
	tbl, ok := page.Section(name)
	require.True(t, ok, "section %s should exist", name)
	return tbl
}

func TestNewReportService_DefaultOptions(t *testing.T) {
	svc := newTestReportService(t)

	assert.Equal(t, DefaultOptions(), svc.opts)
	assert.Equal(t, []string{
		PageBankbook, PageCashbook, PageCharts, PageDashboard, PageHome,
		PageLiability, PageProfitLoss, PagePurchase, PageSales,
	}, svc.Pages())
}

func TestHome(t *testing.T) {
	ctx := context.Background()
	svc := newTestReportService(t)

	t.Run("full range", func(t *testing.T) {
		r, err := svc.Home(ctx, Filter{})
		require.NoError(t, err)

		assert.Equal(t, RangeResponse{Start: "2025-01-01", End: "2025-01-03"}, r.Range)
		assert.Equal(t, 3000.0, r.TotalSales)
		assert.Equal(t, 500.0, r.SalesOutstanding)
		assert.Equal(t, 3, r.Invoices)
		assert.Equal(t, 2500.0, r.CashIncome)
		assert.Equal(t, 1000.0, r.CashExpenses)
		assert.Equal(t, 1300.0, r.BankDeposits)
		assert.Equal(t, 400.0, r.BankWithdrawals)
		assert.Equal(t, 2500.0, r.MobileBanking)
		assert.False(t, r.Empty)
	})

	t.Run("window applies to every table", func(t *testing.T) {
		r, err := svc.Home(ctx, Filter{Start: dayPtr("2025-01-02"), End: dayPtr("2025-01-02")})
		require.NoError(t, err)

		assert.Equal(t, 500.0, r.TotalSales)
		assert.Equal(t, 500.0, r.SalesOutstanding)
		assert.Equal(t, 0.0, r.MobileBanking)
		assert.Equal(t, 0.0, r.CashIncome)
		assert.Equal(t, 700.0, r.CashExpenses)
		assert.Equal(t, 1000.0, r.BankDeposits)
	})

	t.Run("inverted range is empty", func(t *testing.T) {
		r, err := svc.Home(ctx, Filter{Start: dayPtr("2025-01-03"), End: dayPtr("2025-01-01")})
		require.NoError(t, err)

		assert.True(t, r.Empty)
		assert.Equal(t, 0.0, r.TotalSales)
	})
}

func TestDashboard(t *testing.T) {
	r, err := newTestReportService(t).Dashboard(context.Background(), Filter{})
	require.NoError(t, err)

	assert.Equal(t, 3000.0, r.TotalSales)
	assert.Equal(t, 6.0, r.TotalQuantity)
	require.NotNil(t, r.TopCustomer)
	assert.Equal(t, LeaderResponse{Name: "Karim", Amount: 2500}, *r.TopCustomer)
	require.NotNil(t, r.BestProduct)
	assert.Equal(t, LeaderResponse{Name: "Nazirshail", Amount: 1500}, *r.BestProduct)

	byCategory := section(t, r, "sales_by_category")
	assert.Equal(t, []string{"Rice", "Oil"}, column(byCategory, ledger.ColCategory))
	assert.Equal(t, 2500.0, amount(byCategory, 0, ledger.ColTotalAmount))

	bank := section(t, r, "bank_by_category")
	assert.Equal(t, []string{"Sales", "Expense"}, column(bank, ledger.ColPaymentCategory))
	assert.Equal(t, 1300.0, amount(bank, 0, ledger.ColDeposit))
}

func TestDashboard_EmptyWindowHasNoLeaders(t *testing.T) {
	r, err := newTestReportService(t).Dashboard(context.Background(), Filter{Start: dayPtr("2030-01-01")})
	require.NoError(t, err)

	assert.Nil(t, r.TopCustomer)
	assert.Nil(t, r.BestProduct)
	assert.True(t, r.SalesByCategory.Empty)
}

func TestSales(t *testing.T) {
	ctx := context.Background()
	svc := newTestReportService(t)

	t.Run("default drill-down by category", func(t *testing.T) {
		r, err := svc.Sales(ctx, Filter{})
		require.NoError(t, err)

		assert.Equal(t, ledger.ColCategory, r.Dimension)
		drill := section(t, r, "drilldown")
		assert.Equal(t, []string{"Rice", "Oil"}, column(drill, ledger.ColCategory))
		assert.Equal(t, 5.0, amount(drill, 0, ColTotalQuantity))

		sellers := section(t, r, "by_seller")
		assert.Equal(t, []string{"Rahim", "Jamal"}, column(sellers, ledger.ColSoldBy))
		assert.Equal(t, 1500.0, amount(sellers, 1, ColTotalSales))

		tx := section(t, r, "transactions")
		assert.Equal(t, "2025-01-03", tx.Value(0, ledger.ColDate).String())
	})

	t.Run("selections", func(t *testing.T) {
		r, err := svc.Sales(ctx, Filter{Selections: map[string][]string{
			ParamCategory: {"Rice"},
			ParamStatus:   {"Paid"},
		}})
		require.NoError(t, err)

		assert.Equal(t, 2500.0, r.TotalSales)
		assert.Equal(t, 2, r.Invoices)
	})

	t.Run("active empty selection matches nothing", func(t *testing.T) {
		r, err := svc.Sales(ctx, Filter{Selections: map[string][]string{ParamCategory: {}}})
		require.NoError(t, err)

		assert.True(t, r.Empty)
		assert.Equal(t, 0, r.Invoices)
	})

	t.Run("custom dimension", func(t *testing.T) {
		r, err := svc.Sales(ctx, Filter{Dimension: ledger.ColPaymentMethod})
		require.NoError(t, err)

		assert.Equal(t, []string{"bKash", "Cash", "Nagad"}, column(section(t, r, "drilldown"), ledger.ColPaymentMethod))
	})

	t.Run("unknown dimension", func(t *testing.T) {
		_, err := svc.Sales(ctx, Filter{Dimension: "warehouse"})

		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		assert.True(t, errors.Is(err, domainreport.ErrUnknownColumn))
	})
}

func TestBankbook(t *testing.T) {
	r, err := newTestReportService(t).Bankbook(context.Background(), Filter{})
	require.NoError(t, err)

	assert.Equal(t, 1300.0, r.TotalDeposits)
	assert.Equal(t, 400.0, r.TotalWithdrawals)
	assert.Equal(t, 900.0, r.NetCashflow)

	sources := section(t, r, "fund_sources")
	assert.Equal(t, []string{"DBBL", "City"}, column(sources, ledger.ColFundSource))
	assert.Equal(t, 600.0, amount(sources, 0, ColNet))
	assert.Equal(t, 300.0, amount(sources, 1, ColNet))

	daily := section(t, r, "daily")
	assert.Equal(t, []string{"2025-01-02", "2025-01-04"}, column(daily, ledger.ColDate))
	assert.Equal(t, 400.0, amount(daily, 1, ColWithdrawals))
}

func TestCashbook(t *testing.T) {
	ctx := context.Background()
	svc := newTestReportService(t)

	t.Run("summaries and insights", func(t *testing.T) {
		r, err := svc.Cashbook(ctx, Filter{})
		require.NoError(t, err)

		assert.Equal(t, CashbookTotals{CashIn: 2500, CashOut: 1000, NetBalance: 1500, Transactions: 4}, r.Totals)

		categories := section(t, r, "category_summary")
		assert.Equal(t, []string{"Sales", "Laibility", "Expense"}, column(categories, ledger.ColPaymentCategory))
		assert.Equal(t, -1000.0, amount(categories, 2, ColNetCashFlow))
		assert.Equal(t, 2.0, amount(categories, 2, ColTransactionCount))

		groups := section(t, r, "group_summary")
		assert.Equal(t, []string{"Income", "Liabilities", "Expenses"}, column(groups, ledger.ColCategoryGroup))
		assert.Equal(t, []string{"Income", "Expenses"},
			column(section(t, r, "income_vs_expenses"), ledger.ColCategoryGroup))

		trend := section(t, r, "daily_trend")
		assert.Equal(t, []string{"2025-01-01", "2025-01-02", "2025-01-03", "2025-01-05"}, column(trend, ledger.ColDate))

		in := r.Insights
		require.NotEmpty(t, in.TopIncome)
		assert.Equal(t, CategoryAmount{Category: "Sales", Amount: 2000}, in.TopIncome[0])
		require.NotEmpty(t, in.TopExpense)
		assert.Equal(t, CategoryAmount{Category: "Expense", Amount: 1000}, in.TopExpense[0])
		require.NotNil(t, in.ExpenseRatio)
		assert.InDelta(t, 50.0, *in.ExpenseRatio, 1e-9)
		assert.Equal(t, 2, in.ProfitableCount)
		assert.Equal(t, 1, in.LossMakingCount)
		assert.Equal(t, 2000.0, in.IncomeGroupTotal)
		assert.Equal(t, 1000.0, in.ExpensesGroupTotal)
	})

	t.Run("selections narrow transactions only", func(t *testing.T) {
		r, err := svc.Cashbook(ctx, Filter{Selections: map[string][]string{ParamName: {"Pump", "Landlord"}}})
		require.NoError(t, err)

		assert.Equal(t, 4, r.Totals.Transactions)
		tx := section(t, r, "transactions")
		assert.Equal(t, []string{"Pump", "Landlord"}, column(tx, ledger.ColName))
		assert.Equal(t, []string{
			ledger.ColDate, ledger.ColVoucherNo, ledger.ColPaymentCategory, ledger.ColCategoryGroup,
			ledger.ColName, ledger.ColDescription, ledger.ColCashIn, ledger.ColCashOut, ledger.ColBalance,
		}, tx.ColumnNames())
	})

	t.Run("no income means no ratio", func(t *testing.T) {
		r, err := svc.Cashbook(ctx, Filter{Start: dayPtr("2025-01-05")})
		require.NoError(t, err)

		assert.Nil(t, r.Insights.ExpenseRatio)
		assert.Equal(t, 1, r.Insights.LossMakingCount)
	})
}

func TestPurchase(t *testing.T) {
	r, err := newTestReportService(t).Purchase(context.Background(), Filter{})
	require.NoError(t, err)

	assert.Equal(t, PurchaseTotals{Purchases: 2400, Payable: 2400, Received: 2000, Outstanding: 400}, r.Totals)
	assert.Equal(t, RangeResponse{Start: "2025-01-01", End: "2025-01-03"}, r.Range)

	byCategory := section(t, r, "by_category")
	assert.Equal(t, []string{"Rice", "Oil"}, column(byCategory, ledger.ColProductCategory))
	assert.Equal(t, -100.0, amount(byCategory, 0, ledger.ColOutstanding))
	assert.Equal(t, 500.0, amount(byCategory, 1, ledger.ColOutstanding))

	bySupplier := section(t, r, "by_supplier")
	assert.Equal(t, []string{"Acme", "Bengal"}, column(bySupplier, ledger.ColSupplierName))
	assert.Equal(t, 1800.0, amount(bySupplier, 0, ColTotalPurchase))
}

func TestLiability_StatusFilter(t *testing.T) {
	ctx := context.Background()
	svc := newTestReportService(t)

	tests := []struct {
		name      string
		status    []string
		suppliers []string
		rows      int
	}{
		{name: "outstanding", status: []string{"With Outstanding"}, suppliers: []string{"Acme"}, rows: 1},
		{name: "overpaid", status: []string{"overpaid"}, suppliers: []string{"Bengal"}, rows: 1},
		{name: "fully paid", status: []string{"Fully Paid"}, suppliers: []string{"Acme"}, rows: 1},
		{name: "all", status: []string{"All"}, suppliers: []string{"Acme", "Bengal"}, rows: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := svc.Liability(ctx, Filter{Selections: map[string][]string{ParamStatus: tt.status}})
			require.NoError(t, err)

			assert.Equal(t, tt.suppliers, column(section(t, r, "supplier_summary"), ledger.ColSupplierName))
			assert.Len(t, r.Transactions.Rows, tt.rows)
		})
	}
}

func TestLiability_Summary(t *testing.T) {
	r, err := newTestReportService(t).Liability(context.Background(), Filter{})
	require.NoError(t, err)

	suppliers := section(t, r, "supplier_summary")
	assert.Equal(t, []string{"Outstanding", "Overpaid"}, column(suppliers, ledger.ColPaymentStatus))
	assert.Equal(t, 500.0, amount(suppliers, 0, ledger.ColOutstanding))
	assert.Equal(t, 1800.0, amount(suppliers, 0, ledger.ColPayable))
	assert.Equal(t, 1300.0, amount(suppliers, 0, ledger.ColReceivable))
	assert.Equal(t, 2.0, amount(suppliers, 0, ColTransactionCount))

	dist := section(t, r, "status_distribution")
	assert.Equal(t, []string{"Fully Paid", "Outstanding", "Overpaid"}, column(dist, ledger.ColPaymentStatus))
	assert.Equal(t, 1.0, amount(dist, 0, ColStatusCount))
}

func TestSupplierSummarySpec_OutstandingFromTotals(t *testing.T) {
	cols := []ledger.Column{
		{Name: ledger.ColSupplierName, Kind: ledger.KindText},
		{Name: ledger.ColPayable, Kind: ledger.KindNumeric},
		{Name: ledger.ColReceivable, Kind: ledger.KindNumeric},
		{Name: ledger.ColOutstanding, Kind: ledger.KindNumeric},
	}
	num := func(v int64) ledger.Value { return ledger.Number(decimal.NewFromInt(v)) }
	// The stored outstanding is stale and must not be summed.
	rows := ledger.NewTable(ledger.TablePurchase, cols, []ledger.Row{
		{ledger.Text("Acme"), num(1000), num(400), num(0)},
		{ledger.Text("Acme"), num(500), num(600), num(0)},
	})

	out := domainreport.Aggregate(rows, supplierSummarySpec())

	require.Equal(t, 1, out.Len())
	assert.Equal(t, 500.0, amount(out, 0, ledger.ColOutstanding))
	assert.Equal(t, []string{"Outstanding"}, column(withStatus(out), ledger.ColPaymentStatus))
}

func TestProfitLoss(t *testing.T) {
	ctx := context.Background()
	svc := newTestReportService(t)

	t.Run("sales bounds apply to expenses", func(t *testing.T) {
		r, err := svc.ProfitLoss(ctx, Filter{})
		require.NoError(t, err)

		assert.Equal(t, 3000.0, r.TotalIncome)
		assert.Equal(t, 700.0, r.TotalExpenses)
		assert.Equal(t, 2300.0, r.ProfitLoss)
		assert.Equal(t, []string{"Rice", "Oil"}, column(section(t, r, "income_by_category"), ledger.ColCategory))
	})

	t.Run("loss without sales", func(t *testing.T) {
		r, err := svc.ProfitLoss(ctx, Filter{Start: dayPtr("2025-01-05"), End: dayPtr("2025-01-05")})
		require.NoError(t, err)

		assert.True(t, r.Empty)
		assert.Equal(t, 300.0, r.TotalExpenses)
		assert.Equal(t, -300.0, r.ProfitLoss)
	})
}

func TestCharts(t *testing.T) {
	ctx := context.Background()
	svc := newTestReportService(t)

	t.Run("union axis", func(t *testing.T) {
		r, err := svc.Charts(ctx, Filter{})
		require.NoError(t, err)

		assert.False(t, r.NoData)
		assert.Equal(t, string(domainreport.AxisUnion), r.Axis)
		assert.Equal(t, RangeResponse{Start: "2025-01-01", End: "2025-01-05"}, r.Bounds)

		combined := section(t, r, "combined")
		assert.Equal(t, []string{"2025-01-01", "2025-01-02", "2025-01-03", "2025-01-05"}, column(combined, ledger.ColDate))
		assert.Equal(t, 3000.0, amount(combined, 0, ColNetCashFlow))
		assert.Equal(t, 0.0, amount(combined, 3, ColSalesIncome))
		assert.Equal(t, -300.0, amount(combined, 3, ColNetCashFlow))

		trend := section(t, r, "bank_trend")
		assert.Equal(t, []string{"2025-01-02", "2025-01-04"}, column(trend, ledger.ColDate))
		assert.Equal(t, -100.0, amount(trend, 1, ColNetCashFlow))

		bank := section(t, r, "bank_by_category")
		assert.Equal(t, 1300.0, amount(bank, 0, ledger.ColCashIn))
		assert.Equal(t, -400.0, amount(bank, 1, ColNetCashFlow))

		assert.Nil(t, r.Drilldown)
	})

	t.Run("overlap axis", func(t *testing.T) {
		r, err := svc.Charts(ctx, Filter{Axis: domainreport.AxisOverlap})
		require.NoError(t, err)

		assert.Equal(t, []string{"2025-01-01", "2025-01-02", "2025-01-03"}, column(section(t, r, "combined"), ledger.ColDate))
	})

	t.Run("drill-down", func(t *testing.T) {
		r, err := svc.Charts(ctx, Filter{Dimension: ledger.ColSoldBy})
		require.NoError(t, err)

		require.NotNil(t, r.Drilldown)
		assert.Equal(t, []string{"Rahim", "Jamal"}, column(section(t, r, "drilldown"), ledger.ColSoldBy))
	})

	t.Run("no data", func(t *testing.T) {
		r, err := svc.Charts(ctx, Filter{Start: dayPtr("2030-01-01"), End: dayPtr("2030-12-31")})
		require.NoError(t, err)

		assert.True(t, r.NoData)
		assert.True(t, r.Combined.Empty)
	})

	t.Run("invalid axis", func(t *testing.T) {
		_, err := svc.Charts(ctx, Filter{Axis: "sideways"})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestSection(t *testing.T) {
	ctx := context.Background()
	svc := newTestReportService(t)

	tbl, err := svc.Section(ctx, PageCashbook, "category_summary", Filter{})
	require.NoError(t, err)
	assert.Equal(t, "category_summary", tbl.Name())

	_, err = svc.Section(ctx, PageCashbook, "pie", Filter{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.Contains(t, err.Error(), "daily_trend")

	_, err = svc.Section(ctx, "inventory", "summary", Filter{})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestTransactions(t *testing.T) {
	ctx := context.Background()
	svc := newTestReportService(t)

	tbl, err := svc.Transactions(ctx, ledger.TablePurchase, Filter{Selections: map[string][]string{ParamSupplier: {"Acme"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-02", "2025-01-01"}, column(tbl, ledger.ColDate))

	_, err = svc.Transactions(ctx, "ledger", Filter{})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
