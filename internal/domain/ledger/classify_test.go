package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyCategory(t *testing.T) {
	tests := []struct {
		label string
		want  CategoryGroup
	}{
		{"sales", GroupIncome},
		{"Sales", GroupIncome},
		{"SALES", GroupIncome},
		{" sales ", GroupOther},
		{"expense", GroupExpenses},
		{"payable", GroupExpenses},
		{"receivedable", GroupReceivables},
		{"Receivable", GroupReceivables},
		{"laibility", GroupLiabilities},
		{"liability", GroupLiabilities},
		{"Uncategorized", GroupOther},
		{"", GroupOther},
		{"salary", GroupOther},
		{"sales tax", GroupOther},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyCategory(tt.label))
		})
	}
}

func TestClassifyCategory_AlwaysReturnsKnownGroup(t *testing.T) {
	known := map[CategoryGroup]bool{}
	for _, g := range CategoryGroups() {
		known[g] = true
	}
	for _, label := range []string{"sales", "anything", "✓", "Expense ", "LIABILITY", "12"} {
		assert.True(t, known[ClassifyCategory(label)], "label %q", label)
	}
}

func TestClassifyOutstanding(t *testing.T) {
	t.Run("zero is fully paid", func(t *testing.T) {
		assert.Equal(t, StatusFullyPaid, ClassifyOutstanding(dec("0")))
		assert.Equal(t, StatusFullyPaid, ClassifyOutstanding(dec("500").Sub(dec("500.00"))))
	})

	t.Run("negative is overpaid", func(t *testing.T) {
		assert.Equal(t, StatusOverpaid, ClassifyOutstanding(dec("500").Sub(dec("600"))))
	})

	t.Run("positive is outstanding", func(t *testing.T) {
		assert.Equal(t, StatusOutstanding, ClassifyOutstanding(dec("0.01")))
	})
}

func TestParsePaymentStatus(t *testing.T) {
	tests := []struct {
		in   string
		want PaymentStatus
		ok   bool
	}{
		{"Fully Paid", StatusFullyPaid, true},
		{"overpaid", StatusOverpaid, true},
		{"With Outstanding", StatusOutstanding, true},
		{"Outstanding", StatusOutstanding, true},
		{"All", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParsePaymentStatus(tt.in)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
