// Package ledger holds the typed table model shared by every report: cells,
// columns, the four source schemas and the rules that reconcile raw
// spreadsheet rows against them.
package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical textual form of a date cell.
const DateLayout = "2006-01-02"

// Kind is the type of every cell in a column.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
	KindDate
)

// String returns the lower-case kind name used in configs and JSON.
func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	default:
		return "text"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return KindText, true
	case "numeric":
		return KindNumeric, true
	case "date":
		return KindDate, true
	}
	return KindText, false
}

// Value is a single immutable table cell.
// A date cell without a valid date is the missing-date sentinel.
type Value struct {
	kind  Kind
	text  string
	num   decimal.Decimal
	date  time.Time
	valid bool
}

// Text creates a text cell.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Number creates a numeric cell.
func Number(d decimal.Decimal) Value {
	return Value{kind: KindNumeric, num: d}
}

// Int creates a numeric cell from an integer.
func Int(n int64) Value {
	return Number(decimal.NewFromInt(n))
}

// Day creates a date cell truncated to the calendar day of t.
func Day(t time.Time) Value {
	return Value{kind: KindDate, date: truncateDay(t), valid: true}
}

// MissingDate creates the sentinel for an absent or unparsable date.
func MissingDate() Value {
	return Value{kind: KindDate}
}

// zeroValue is the default cell for a column kind.
func zeroValue(k Kind) Value {
	switch k {
	case KindNumeric:
		return Number(decimal.Zero)
	case KindDate:
		return MissingDate()
	default:
		return Text("")
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Kind returns the cell kind.
func (v Value) Kind() Kind {
	return v.kind
}

// Decimal returns the numeric content, or zero for non-numeric cells.
func (v Value) Decimal() decimal.Decimal {
	if v.kind != KindNumeric {
		return decimal.Zero
	}
	return v.num
}

// Date returns the calendar day and false for missing or non-date cells.
func (v Value) Date() (time.Time, bool) {
	if v.kind != KindDate || !v.valid {
		return time.Time{}, false
	}
	return v.date, true
}

// IsMissing reports whether v is the missing-date sentinel.
func (v Value) IsMissing() bool {
	return v.kind == KindDate && !v.valid
}

// String renders the canonical text form: decimals without trailing zeros,
// dates as yyyy-mm-dd, missing dates as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindNumeric:
		return v.num.String()
	case KindDate:
		if !v.valid {
			return ""
		}
		return v.date.Format(DateLayout)
	default:
		return v.text
	}
}

// Equal compares kind and content. Numerics compare by value, so 1.50 equals 1.5.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumeric:
		return v.num.Equal(o.num)
	case KindDate:
		if v.valid != o.valid {
			return false
		}
		return !v.valid || v.date.Equal(o.date)
	default:
		return v.text == o.text
	}
}

// Compare orders values of the same kind; missing dates sort first.
// Values of different kinds order by kind.
func (v Value) Compare(o Value) int {
	if v.kind != o.kind {
		if v.kind < o.kind {
			return -1
		}
		return 1
	}
	switch v.kind {
	case KindNumeric:
		return v.num.Cmp(o.num)
	case KindDate:
		switch {
		case !v.valid && !o.valid:
			return 0
		case !v.valid:
			return -1
		case !o.valid:
			return 1
		}
		return v.date.Compare(o.date)
	default:
		return strings.Compare(v.text, o.text)
	}
}

// Key identifies the value inside grouping maps. Values that are Equal share a key.
func (v Value) Key() string {
	return string(rune('0'+v.kind)) + v.String()
}
