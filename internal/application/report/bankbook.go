package report

import (
	"context"

	"github.com/tafa/dashboard/internal/domain/ledger"
	domainreport "github.com/tafa/dashboard/internal/domain/report"
)

// Bankbook summary column names
const (
	ColDeposits    = "deposits"
	ColWithdrawals = "withdrawals"
	ColNet         = "net"
)

// BankbookReport is the bankbook page
type BankbookReport struct {
	Sections `json:"-"`

	Range            RangeResponse `json:"range"`
	TotalDeposits    float64       `json:"total_deposits"`
	TotalWithdrawals float64       `json:"total_withdrawals"`
	NetCashflow      float64       `json:"net_cashflow"`
	FundSources      TableResponse `json:"fund_sources"`
	Daily            TableResponse `json:"daily"`
	Empty            bool          `json:"empty"`
}

// Bankbook computes the bankbook page. A fund source's net is the last
// running balance recorded for it in the filtered rows.
func (s *ReportService) Bankbook(ctx context.Context, f Filter) (*BankbookReport, error) {
	t, err := s.tables.Table(ctx, ledger.TableBankbook)
	if err != nil {
		return nil, err
	}
	w := f.apply(t)
	rows := w.Rows

	fundSources := domainreport.Aggregate(rows, domainreport.Spec{
		By: []string{ledger.ColFundSource},
		Metrics: []domainreport.Metric{
			domainreport.Sum(ColDeposits, ledger.ColDeposit),
			domainreport.Sum(ColWithdrawals, ledger.ColWithdrawal),
			domainreport.Last(ColNet, ledger.ColBalance),
		},
	})

	daily := domainreport.SortBy(domainreport.Aggregate(rows, domainreport.Spec{
		By: []string{ledger.ColDate},
		Metrics: []domainreport.Metric{
			domainreport.Sum(ColDeposits, ledger.ColDeposit),
			domainreport.Sum(ColWithdrawals, ledger.ColWithdrawal),
		},
	}), ledger.ColDate, domainreport.Asc)

	deposits := rows.Sum(ledger.ColDeposit)
	withdrawals := rows.Sum(ledger.ColWithdrawal)

	r := &BankbookReport{
		Range:            newRangeResponse(w),
		TotalDeposits:    toFloat64(deposits),
		TotalWithdrawals: toFloat64(withdrawals),
		NetCashflow:      toFloat64(deposits.Sub(withdrawals)),
		Empty:            rows.IsEmpty(),
	}
	r.FundSources = r.add("fund_sources", fundSources)
	r.Daily = r.add("daily", daily)
	r.add("transactions", newestFirst(rows))
	return r, nil
}
