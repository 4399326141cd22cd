package ledger

import (
	"strings"
	"time"
)

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange truncates both ends to calendar days.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: truncateDay(start), End: truncateDay(end)}
}

// Inverted reports whether Start is after End.
func (r DateRange) Inverted() bool {
	return r.Start.After(r.End)
}

// Contains reports whether day d lies inside the range, both ends included.
func (r DateRange) Contains(d time.Time) bool {
	d = truncateDay(d)
	return !d.Before(r.Start) && !d.After(r.End)
}

// FilterByDate keeps the rows whose date column lies in [start, end].
// Missing dates never match, an inverted range matches nothing, and the
// result always carries the input schema.
func FilterByDate(t *Table, column string, start, end time.Time) *Table {
	r := NewDateRange(start, end)
	if t.IsEmpty() || r.Inverted() {
		return t.Empty()
	}
	return t.Where(func(i int) bool {
		d, ok := t.Value(i, column).Date()
		return ok && r.Contains(d)
	})
}

// DateBounds returns the earliest and latest non-missing date of a column.
func DateBounds(t *Table, column string) (DateRange, bool) {
	var r DateRange
	found := false
	for i := 0; i < t.Len(); i++ {
		d, ok := t.Value(i, column).Date()
		if !ok {
			continue
		}
		if !found || d.Before(r.Start) {
			r.Start = d
		}
		if !found || d.After(r.End) {
			r.End = d
		}
		found = true
	}
	return r, found
}

// UnionBounds spans every given range. ok is false when there are none.
func UnionBounds(ranges ...DateRange) (DateRange, bool) {
	if len(ranges) == 0 {
		return DateRange{}, false
	}
	out := ranges[0]
	for _, r := range ranges[1:] {
		if r.Start.Before(out.Start) {
			out.Start = r.Start
		}
		if r.End.After(out.End) {
			out.End = r.End
		}
	}
	return out, true
}

// OverlapBounds intersects the given ranges. ok is false when there are none
// or they do not overlap.
func OverlapBounds(ranges ...DateRange) (DateRange, bool) {
	if len(ranges) == 0 {
		return DateRange{}, false
	}
	out := ranges[0]
	for _, r := range ranges[1:] {
		if r.Start.After(out.Start) {
			out.Start = r.Start
		}
		if r.End.Before(out.End) {
			out.End = r.End
		}
	}
	if out.Inverted() {
		return DateRange{}, false
	}
	return out, true
}

// Selection restricts a column to a set of values. Only active selections
// are passed to FilterBySelections; an active selection with no values
// matches nothing.
type Selection struct {
	Column string
	Values []string
}

// FilterBySelections keeps rows whose value is contained in every selection.
// Values compare by their canonical text with surrounding spaces trimmed.
func FilterBySelections(t *Table, selections ...Selection) *Table {
	if len(selections) == 0 {
		return t
	}
	type active struct {
		column string
		allow  map[string]struct{}
	}
	sets := make([]active, 0, len(selections))
	for _, s := range selections {
		allow := make(map[string]struct{}, len(s.Values))
		for _, v := range s.Values {
			allow[strings.TrimSpace(v)] = struct{}{}
		}
		sets = append(sets, active{column: s.Column, allow: allow})
	}
	return t.Where(func(i int) bool {
		for _, s := range sets {
			if _, ok := s.allow[strings.TrimSpace(t.Value(i, s.column).String())]; !ok {
				return false
			}
		}
		return true
	})
}
