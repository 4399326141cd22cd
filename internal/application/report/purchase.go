package report

import (
	"context"

	"github.com/tafa/dashboard/internal/domain/ledger"
	domainreport "github.com/tafa/dashboard/internal/domain/report"
)

// Purchase summary column names
const (
	ColTotalPurchase   = "total_purchase"
	ColTotalPayable    = "total_payable"
	ColTotalReceivable = "total_receivable"
	ColStatusCount     = "count"
)

// PurchaseTotals are the ledger totals of the filtered period
type PurchaseTotals struct {
	Purchases   float64 `json:"purchases"`
	Payable     float64 `json:"payable"`
	Received    float64 `json:"received"`
	Outstanding float64 `json:"outstanding"`
}

func purchaseTotals(rows *ledger.Table) PurchaseTotals {
	return PurchaseTotals{
		Purchases:   toFloat64(rows.Sum(ledger.ColAmount)),
		Payable:     toFloat64(rows.Sum(ledger.ColPayable)),
		Received:    toFloat64(rows.Sum(ledger.ColReceivable)),
		Outstanding: toFloat64(rows.Sum(ledger.ColOutstanding)),
	}
}

// purchaseByCategorySpec totals the ledger per product category with the
// outstanding recomputed from the aggregated payable and receivable
func purchaseByCategorySpec() domainreport.Spec {
	return domainreport.Spec{
		By: []string{ledger.ColProductCategory},
		Metrics: []domainreport.Metric{
			domainreport.Sum(ColTotalPurchase, ledger.ColAmount),
			domainreport.Sum(ColTotalPayable, ledger.ColPayable),
			domainreport.Sum(ColTotalReceivable, ledger.ColReceivable),
		},
		Derived: []domainreport.DerivedMetric{
			domainreport.Difference(ledger.ColOutstanding, ColTotalPayable, ColTotalReceivable),
		},
	}
}

// supplierSummarySpec totals payable and received per supplier. The
// outstanding is taken from those totals, the same way as per category.
func supplierSummarySpec() domainreport.Spec {
	return domainreport.Spec{
		By: []string{ledger.ColSupplierName},
		Metrics: []domainreport.Metric{
			domainreport.Sum(ledger.ColPayable, ledger.ColPayable),
			domainreport.Sum(ledger.ColReceivable, ledger.ColReceivable),
			domainreport.Count(ColTransactionCount),
		},
		Derived: []domainreport.DerivedMetric{
			domainreport.Difference(ledger.ColOutstanding, ledger.ColPayable, ledger.ColReceivable),
		},
	}
}

// PurchaseReport is the purchase page
type PurchaseReport struct {
	Sections `json:"-"`

	Range      RangeResponse  `json:"range"`
	Totals     PurchaseTotals `json:"totals"`
	ByCategory TableResponse  `json:"by_category"`
	BySupplier TableResponse  `json:"by_supplier"`
	Empty      bool           `json:"empty"`
}

// Purchase computes the purchase page
func (s *ReportService) Purchase(ctx context.Context, f Filter) (*PurchaseReport, error) {
	t, err := s.tables.Table(ctx, ledger.TablePurchase)
	if err != nil {
		return nil, err
	}
	w := f.apply(t)
	rows := w.Rows

	byCategory := domainreport.Aggregate(rows, purchaseByCategorySpec())
	bySupplier := domainreport.SortBy(domainreport.Aggregate(rows, domainreport.Spec{
		By:      []string{ledger.ColSupplierName},
		Metrics: []domainreport.Metric{domainreport.Sum(ColTotalPurchase, ledger.ColAmount)},
	}), ColTotalPurchase, domainreport.Desc)

	r := &PurchaseReport{
		Range:  newRangeResponse(w),
		Totals: purchaseTotals(rows),
		Empty:  rows.IsEmpty(),
	}
	r.ByCategory = r.add("by_category", byCategory)
	r.BySupplier = r.add("by_supplier", bySupplier)
	r.add("transactions", newestFirst(rows))
	return r, nil
}

// LiabilityReport is the liability page
type LiabilityReport struct {
	Sections `json:"-"`

	Range              RangeResponse  `json:"range"`
	Totals             PurchaseTotals `json:"totals"`
	SupplierSummary    TableResponse  `json:"supplier_summary"`
	TopSuppliers       TableResponse  `json:"top_suppliers"`
	StatusDistribution TableResponse  `json:"status_distribution"`
	Transactions       TableResponse  `json:"transactions"`
	Empty              bool           `json:"empty"`
}

// Liability computes the liability page. The status selection accepts the
// payment status labels and "All", which disables it.
func (s *ReportService) Liability(ctx context.Context, f Filter) (*LiabilityReport, error) {
	t, err := s.tables.Table(ctx, ledger.TablePurchase)
	if err != nil {
		return nil, err
	}
	w := f.apply(t, ParamSupplier, ParamProductCategory, ParamStatus)
	rows := w.Rows

	suppliers := withStatus(domainreport.SortBy(
		domainreport.Aggregate(rows, supplierSummarySpec()), ledger.ColOutstanding, domainreport.Desc))

	distribution := domainreport.Aggregate(rows, domainreport.Spec{
		By:      []string{ledger.ColPaymentStatus},
		Metrics: []domainreport.Metric{domainreport.Count(ColStatusCount)},
	})

	detail := newestFirst(rows).Project(
		ledger.ColDate, ledger.ColVoucherNo, ledger.ColSupplierName, ledger.ColProductName,
		ledger.ColProductCategory, ledger.ColPurchaseRate, ledger.ColDiscount, ledger.ColAmount,
		ledger.ColPayable, ledger.ColReceivable, ledger.ColOutstanding, ledger.ColPaymentStatus,
	)

	r := &LiabilityReport{
		Range:  newRangeResponse(w),
		Totals: purchaseTotals(rows),
		Empty:  rows.IsEmpty(),
	}
	r.SupplierSummary = r.add("supplier_summary", suppliers)
	r.TopSuppliers = r.add("top_suppliers", suppliers.Head(s.opts.TopN))
	r.StatusDistribution = r.add("status_distribution", distribution)
	r.Transactions = r.add("transactions", detail)
	return r, nil
}

// withStatus appends the payment status of each supplier's aggregated outstanding
func withStatus(t *ledger.Table) *ledger.Table {
	cols := append(t.Columns(), ledger.Column{Name: ledger.ColPaymentStatus, Kind: ledger.KindText})
	rows := make([]ledger.Row, t.Len())
	for i := range rows {
		src := t.Row(i)
		row := make(ledger.Row, 0, len(src)+1)
		row = append(row, src...)
		row = append(row, ledger.Text(string(ledger.ClassifyOutstanding(t.Value(i, ledger.ColOutstanding).Decimal()))))
		rows[i] = row
	}
	return ledger.NewTable(t.Name(), cols, rows)
}
