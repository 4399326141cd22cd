package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawTable builds a loaded table of text cells, as a loader would.
func rawTable(name string, header []string, records ...[]string) *Table {
	cols := make([]Column, len(header))
	for i, h := range header {
		cols[i] = Column{Name: h, Kind: KindText}
	}
	rows := make([]Row, len(records))
	for i, rec := range records {
		row := make(Row, len(rec))
		for j, cell := range rec {
			row[j] = Text(cell)
		}
		rows[i] = row
	}
	return NewTable(name, cols, rows)
}

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got Value) {
	t.Helper()
	assert.Equal(t, KindNumeric, got.Kind())
	assert.True(t, dec(want).Equal(got.Decimal()), "expected %s, got %s", want, got.String())
}

func assertTablesEqual(t *testing.T, want, got *Table) {
	t.Helper()
	require.Equal(t, want.Columns(), got.Columns())
	require.Equal(t, want.Len(), got.Len())
	for i := 0; i < want.Len(); i++ {
		for _, c := range want.ColumnNames() {
			assert.True(t, want.Value(i, c).Equal(got.Value(i, c)),
				"row %d column %s: %q != %q", i, c, want.Value(i, c).String(), got.Value(i, c).String())
		}
	}
}
