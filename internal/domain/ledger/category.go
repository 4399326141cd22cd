package ledger

import "strings"

// CategoryGroup is the broad classification of a payment category.
type CategoryGroup string

const (
	GroupIncome      CategoryGroup = "Income"
	GroupExpenses    CategoryGroup = "Expenses"
	GroupReceivables CategoryGroup = "Receivables"
	GroupLiabilities CategoryGroup = "Liabilities"
	GroupOther       CategoryGroup = "Other"
)

// CategoryGroups lists every group in display order.
func CategoryGroups() []CategoryGroup {
	return []CategoryGroup{GroupIncome, GroupExpenses, GroupReceivables, GroupLiabilities, GroupOther}
}

// legacyCategoryGroups is the vocabulary found in the cooperative's books.
// The misspelled labels are real data and must keep classifying.
// TODO: correct "receivedable" and "laibility" at data entry, then drop them here.
var legacyCategoryGroups = map[string]CategoryGroup{
	"sales":        GroupIncome,
	"expense":      GroupExpenses,
	"payable":      GroupExpenses,
	"receivedable": GroupReceivables,
	"receivable":   GroupReceivables,
	"laibility":    GroupLiabilities,
	"liability":    GroupLiabilities,
}

// ClassifyCategory maps a payment category label to its group.
// Matching is exact after lower-casing; unknown labels are Other.
// Normalized tables already carry trimmed text, so no trimming happens here.
func ClassifyCategory(label string) CategoryGroup {
	if g, ok := legacyCategoryGroups[strings.ToLower(label)]; ok {
		return g
	}
	return GroupOther
}
