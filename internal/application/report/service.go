// Package report assembles the dashboard pages from the normalized ledger
// tables: filtering, aggregation and the cross-table views.
package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tafa/dashboard/internal/domain/ledger"
	domainreport "github.com/tafa/dashboard/internal/domain/report"
	"github.com/tafa/dashboard/internal/domain/shared"
	"go.uber.org/zap"
)

// Page names
const (
	PageHome       = "home"
	PageDashboard  = "dashboard"
	PageSales      = "sales"
	PageBankbook   = "bankbook"
	PageCashbook   = "cashbook"
	PagePurchase   = "purchase"
	PageLiability  = "liability"
	PageProfitLoss = "profit-loss"
	PageCharts     = "charts"
)

// Options tunes the report pages
type Options struct {
	MobileMethods []string
	TopN          int
	InsightN      int
}

// DefaultOptions returns the stock report options
func DefaultOptions() Options {
	return Options{
		MobileMethods: []string{"bKash", "Nagad", "Rocket"},
		TopN:          10,
		InsightN:      3,
	}
}

// ReportService builds the report pages
type ReportService struct {
	tables *TableService
	opts   Options
	logger *zap.Logger
	pages  map[string]func(context.Context, Filter) (Exportable, error)
}

// NewReportService creates a new ReportService
func NewReportService(tables *TableService, opts Options, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultOptions()
	if opts.MobileMethods == nil {
		opts.MobileMethods = defaults.MobileMethods
	}
	if opts.TopN <= 0 {
		opts.TopN = defaults.TopN
	}
	if opts.InsightN <= 0 {
		opts.InsightN = defaults.InsightN
	}

	s := &ReportService{tables: tables, opts: opts, logger: logger}
	s.pages = map[string]func(context.Context, Filter) (Exportable, error){
		PageHome:       page(s.Home),
		PageDashboard:  page(s.Dashboard),
		PageSales:      page(s.Sales),
		PageBankbook:   page(s.Bankbook),
		PageCashbook:   page(s.Cashbook),
		PagePurchase:   page(s.Purchase),
		PageLiability:  page(s.Liability),
		PageProfitLoss: page(s.ProfitLoss),
		PageCharts:     page(s.Charts),
	}
	return s
}

// page adapts a typed page builder to the export registry
func page[T Exportable](build func(context.Context, Filter) (T, error)) func(context.Context, Filter) (Exportable, error) {
	return func(ctx context.Context, f Filter) (Exportable, error) {
		result, err := build(ctx, f)
		if err != nil {
			return nil, err
		}
		return result, nil
	}
}

// Pages lists the page names in sorted order
func (s *ReportService) Pages() []string {
	names := make([]string, 0, len(s.pages))
	for name := range s.pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Page builds the named page
func (s *ReportService) Page(ctx context.Context, page string, f Filter) (Exportable, error) {
	build, ok := s.pages[page]
	if !ok {
		return nil, shared.ErrNotFound.Wrap(fmt.Sprintf("Unknown report page %q", page), nil)
	}
	return build(ctx, f)
}

// Section builds the named page and returns one of its result tables
func (s *ReportService) Section(ctx context.Context, page, section string, f Filter) (*ledger.Table, error) {
	result, err := s.Page(ctx, page, f)
	if err != nil {
		return nil, err
	}
	t, ok := result.Section(section)
	if !ok {
		return nil, shared.ErrNotFound.Wrap(
			fmt.Sprintf("Page %q has no section %q (available: %v)", page, section, result.SectionNames()), nil)
	}
	return t, nil
}

// Transactions returns the filtered rows of one table, newest first
func (s *ReportService) Transactions(ctx context.Context, name string, f Filter) (*ledger.Table, error) {
	t, err := s.tables.Table(ctx, name)
	if err != nil {
		return nil, err
	}
	return newestFirst(f.apply(t).Rows), nil
}

// newestFirst orders rows by date descending. Rows of one day keep their
// source order and missing dates go last.
func newestFirst(t *ledger.Table) *ledger.Table {
	return t.SortBy(ledger.ColDate, true)
}

// drilldown validates a caller-chosen dimension before aggregating by it
func drilldown(t *ledger.Table, dimension string, metrics ...domainreport.Metric) (*ledger.Table, error) {
	spec := domainreport.Spec{By: []string{dimension}, Metrics: metrics}
	if err := spec.Validate(t); err != nil {
		return nil, shared.ErrInvalidInput.Wrap(fmt.Sprintf("Invalid drill-down dimension %q", dimension), err)
	}
	return domainreport.Aggregate(t, spec), nil
}

// groupSum reads the sum of column over the rows of t whose key column equals key
func groupSum(t *ledger.Table, keyColumn, key, column string) decimal.Decimal {
	total := decimal.Zero
	for i := 0; i < t.Len(); i++ {
		if t.Value(i, keyColumn).String() == key {
			total = total.Add(t.Value(i, column).Decimal())
		}
	}
	return total
}

// leader returns the first row of a ranking as a name and amount
func leader(t *ledger.Table, nameColumn, amountColumn string) *LeaderResponse {
	if t.IsEmpty() {
		return nil
	}
	return &LeaderResponse{
		Name:   t.Value(0, nameColumn).String(),
		Amount: toFloat64(t.Value(0, amountColumn).Decimal()),
	}
}
