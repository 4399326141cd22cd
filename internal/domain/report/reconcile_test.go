package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tafa/dashboard/internal/domain/ledger"
)

func salesAndCash() (*ledger.Table, *ledger.Table) {
	sales := ledger.Normalize(raw("sales", []string{"date", "total_amount"},
		[]string{"2025-01-01", "100"},
		[]string{"2025-01-03", "50"},
		[]string{"2025-01-03", "25"},
	), ledger.SalesSchema)
	cash := ledger.Normalize(raw("cashbook", []string{"Date", "Cash_In", "Cash_Out"},
		[]string{"2025-01-02", "30", "10"},
	), ledger.CashbookSchema)
	return sales, cash
}

func combinedSources(sales, cash *ledger.Table) []Source {
	return []Source{
		{Table: sales, DateColumn: ledger.ColDate, Metrics: []Metric{Sum("sales_income", ledger.ColTotalAmount)}},
		{Table: cash, DateColumn: ledger.ColDate, Metrics: []Metric{Sum("cash_in", ledger.ColCashIn), Sum("cash_out", ledger.ColCashOut)}},
	}
}

var netCashFlow = DerivedMetric{Name: "net_cash_flow", Plus: []string{"sales_income", "cash_in"}, Minus: []string{"cash_out"}}

func TestCombine_UnionFillsAbsentSourcesWithZero(t *testing.T) {
	sales, cash := salesAndCash()

	out := Combine(combinedSources(sales, cash), CombineOptions{Axis: AxisUnion, Derived: []DerivedMetric{netCashFlow}})

	require.Equal(t, []string{DateColumn, "sales_income", "cash_in", "cash_out", "net_cash_flow"}, out.ColumnNames())
	require.Equal(t, 3, out.Len())
	assert.Equal(t, []string{"2025-01-01", "2025-01-02", "2025-01-03"}, columnValues(out, DateColumn))

	assertDecimal(t, "100", out.Value(0, "sales_income"))
	assertDecimal(t, "0", out.Value(0, "cash_in"))
	assertDecimal(t, "0", out.Value(0, "cash_out"))

	assertDecimal(t, "0", out.Value(1, "sales_income"))
	assertDecimal(t, "30", out.Value(1, "cash_in"))
	assertDecimal(t, "20", out.Value(1, "net_cash_flow"))

	assertDecimal(t, "75", out.Value(2, "sales_income"))
	assertDecimal(t, "0", out.Value(2, "cash_in"))
	assertDecimal(t, "75", out.Value(2, "net_cash_flow"))
}

func TestCombine_OverlapKeepsIntersection(t *testing.T) {
	sales := ledger.Normalize(raw("sales", []string{"date", "total_amount"},
		[]string{"2025-01-01", "1"},
		[]string{"2025-01-05", "1"},
	), ledger.SalesSchema)
	cash := ledger.Normalize(raw("cashbook", []string{"Date", "Cash_In"},
		[]string{"2025-01-03", "2"},
		[]string{"2025-01-09", "2"},
	), ledger.CashbookSchema)

	out := Combine(combinedSources(sales, cash), CombineOptions{Axis: AxisOverlap})

	assert.Equal(t, []string{"2025-01-03", "2025-01-05"}, columnValues(out, DateColumn))
}

func TestCombine_OverlapWithoutIntersectionIsEmpty(t *testing.T) {
	sales := ledger.Normalize(raw("sales", []string{"date", "total_amount"}, []string{"2025-01-01", "1"}), ledger.SalesSchema)
	cash := ledger.Normalize(raw("cashbook", []string{"Date", "Cash_In"}, []string{"2025-02-01", "2"}), ledger.CashbookSchema)

	out := Combine(combinedSources(sales, cash), CombineOptions{Axis: AxisOverlap})

	assert.True(t, out.IsEmpty())
}

func TestCombine_AllSourcesEmpty(t *testing.T) {
	out := Combine(combinedSources(ledger.Normalize(nil, ledger.SalesSchema), ledger.Normalize(nil, ledger.CashbookSchema)),
		CombineOptions{Derived: []DerivedMetric{netCashFlow}})

	assert.True(t, out.IsEmpty())
	assert.Equal(t, []string{DateColumn, "sales_income", "cash_in", "cash_out", "net_cash_flow"}, out.ColumnNames())
}

func TestCombine_IgnoresMissingDates(t *testing.T) {
	sales := ledger.Normalize(raw("sales", []string{"date", "total_amount"},
		[]string{"", "9"},
		[]string{"2025-01-01", "1"},
	), ledger.SalesSchema)

	out := Combine(combinedSources(sales, ledger.Normalize(nil, ledger.CashbookSchema)), CombineOptions{})

	require.Equal(t, 1, out.Len())
	assertDecimal(t, "1", out.Value(0, "sales_income"))
}

func TestTopNAndSortBy(t *testing.T) {
	tbl := ledger.NewTable("t", []ledger.Column{{Name: "k", Kind: ledger.KindText}, {Name: "v", Kind: ledger.KindNumeric}}, []ledger.Row{
		{ledger.Text("a"), ledger.Int(5)},
		{ledger.Text("b"), ledger.Int(9)},
		{ledger.Text("c"), ledger.Int(5)},
		{ledger.Text("d"), ledger.Int(1)},
	})

	t.Run("ties keep grouping order", func(t *testing.T) {
		assert.Equal(t, []string{"b", "a", "c"}, columnValues(TopN(tbl, "v", 3, Desc), "k"))
	})

	t.Run("ascending", func(t *testing.T) {
		assert.Equal(t, []string{"d", "a", "c", "b"}, columnValues(SortBy(tbl, "v", Asc), "k"))
	})

	t.Run("n beyond length returns all rows", func(t *testing.T) {
		assert.Equal(t, 4, TopN(tbl, "v", 10, Desc).Len())
	})

	t.Run("parse direction", func(t *testing.T) {
		assert.Equal(t, Asc, ParseDirection("ASC"))
		assert.Equal(t, Desc, ParseDirection(""))
	})
}
