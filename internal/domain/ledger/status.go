package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentStatus classifies an outstanding balance.
type PaymentStatus string

const (
	StatusFullyPaid   PaymentStatus = "Fully Paid"
	StatusOverpaid    PaymentStatus = "Overpaid"
	StatusOutstanding PaymentStatus = "Outstanding"
)

// PaymentStatuses lists every status.
func PaymentStatuses() []PaymentStatus {
	return []PaymentStatus{StatusOutstanding, StatusFullyPaid, StatusOverpaid}
}

// ClassifyOutstanding returns Fully Paid for exactly zero, Overpaid below
// zero and Outstanding above it.
func ClassifyOutstanding(outstanding decimal.Decimal) PaymentStatus {
	switch outstanding.Sign() {
	case 0:
		return StatusFullyPaid
	case -1:
		return StatusOverpaid
	default:
		return StatusOutstanding
	}
}

// ParsePaymentStatus accepts a status label in any case. "With Outstanding"
// is the filter label used by the liability page.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fully paid", "fullypaid", "fully_paid", "paid":
		return StatusFullyPaid, true
	case "overpaid":
		return StatusOverpaid, true
	case "outstanding", "with outstanding":
		return StatusOutstanding, true
	}
	return "", false
}
