package ledger

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// currencyMarkers are stripped from numeric cells before parsing.
var currencyMarkers = []string{"৳", "BDT", "bdt", "Tk.", "Tk", "tk", "TK", "$"}

// commonDateLayouts are tried after a column's own layouts.
// Ambiguous numeric dates read month first; day-first layouts only catch
// values that cannot be a month-first date, such as 13/02/2025. Tables
// written day first declare that in their schema.
var commonDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"02-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// Excel serial day numbers accepted as dates: 1900-01-01 to 9999-12-31.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// ParseNumber parses a user-formatted amount such as "12,500", "৳ 1,200.50",
// "-40" or "(40)". ok is false when nothing numeric remains.
func ParseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	s = strings.ReplaceAll(s, ",", "")
	for _, m := range currencyMarkers {
		s = strings.ReplaceAll(s, m, "")
	}
	s = strings.TrimSpace(s)

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	}
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}

// ParseDate parses a calendar day using the preferred layouts, the common
// layouts and finally an Excel serial day number.
func ParseDate(s string, preferred ...string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range preferred {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), true
		}
	}
	for _, layout := range commonDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), true
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return serialDate(f)
	}
	return time.Time{}, false
}

func serialDate(f float64) (time.Time, bool) {
	if f < minExcelSerial || f > maxExcelSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return time.Time{}, false
	}
	return truncateDay(t), true
}

// coerce converts a loaded cell to the column kind.
func coerce(v Value, spec ColumnSpec) Value {
	switch spec.Kind {
	case KindNumeric:
		switch v.kind {
		case KindNumeric:
			return v
		case KindText:
			if d, ok := ParseNumber(v.text); ok {
				return Number(d)
			}
		}
		return Number(decimal.Zero)

	case KindDate:
		switch v.kind {
		case KindDate:
			return v
		case KindNumeric:
			f, _ := v.num.Float64()
			if t, ok := serialDate(f); ok {
				return Day(t)
			}
		case KindText:
			if t, ok := ParseDate(v.text, spec.Layouts...); ok {
				return Day(t)
			}
		}
		return MissingDate()

	default:
		s := strings.TrimSpace(v.String())
		if s == "" {
			return spec.defaultValue()
		}
		return Text(s)
	}
}
