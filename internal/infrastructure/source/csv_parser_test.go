package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tafa/dashboard/internal/domain/ledger"
)

func TestNewCSVParser(t *testing.T) {
	t.Run("UTF-8 BOM is stripped", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader("\xEF\xBB\xBFdate,amount\n2025-01-01,10"))
		require.NoError(t, err)

		tbl, err := parser.Table("cashbook")
		require.NoError(t, err)
		assert.Equal(t, []string{"date", "amount"}, tbl.ColumnNames())
	})

	t.Run("Empty file returns error", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader(""))

		assert.Nil(t, parser)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("Invalid UTF-8 returns error", func(t *testing.T) {
		_, err := NewCSVParser(strings.NewReader("name\n\xff\xfe"))

		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("Custom delimiter", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader("a;b\n1;2"), WithDelimiter(';'))
		require.NoError(t, err)

		tbl, err := parser.Table("cashbook")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, tbl.ColumnNames())
		assert.Equal(t, "2", tbl.Value(0, "b").String())
	})
}

func TestParseCSV(t *testing.T) {
	t.Run("reads header and rows as text", func(t *testing.T) {
		doc := "Date , Category,Total Amount\n" +
			"2025-01-01,Rice, \"1,200\"\n" +
			"\n" +
			",,\n" +
			"2025-01-02,Oil\n"

		tbl, err := ParseCSV(strings.NewReader(doc), "sales")
		require.NoError(t, err)

		assert.Equal(t, "sales", tbl.Name())
		assert.Equal(t, []string{"Date", "Category", "Total Amount"}, tbl.ColumnNames())
		require.Equal(t, 2, tbl.Len())
		assert.Equal(t, "1,200", tbl.Value(0, "Total Amount").String())
		assert.Equal(t, "", tbl.Value(1, "Total Amount").String(), "short rows are padded")
		for _, c := range tbl.Columns() {
			assert.Equal(t, ledger.KindText, c.Kind)
		}
	})

	t.Run("zero-byte document gives a table without columns", func(t *testing.T) {
		tbl, err := ParseCSV(strings.NewReader(""), "sales")
		require.NoError(t, err)

		assert.Equal(t, "sales", tbl.Name())
		assert.True(t, tbl.IsEmpty())
		assert.Empty(t, tbl.ColumnNames())
	})

	t.Run("header only gives an empty table", func(t *testing.T) {
		tbl, err := ParseCSV(strings.NewReader("date,amount\n"), "cashbook")
		require.NoError(t, err)

		assert.True(t, tbl.IsEmpty())
		assert.Equal(t, []string{"date", "amount"}, tbl.ColumnNames())
	})

	t.Run("blank header is rejected", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader(" , \n1,2"), "cashbook")

		assert.ErrorIs(t, err, ErrMissingHeader)
	})

	t.Run("quoted multiline field", func(t *testing.T) {
		tbl, err := ParseCSV(strings.NewReader("description,amount\n\"line one\nline two\",5"), "cashbook")
		require.NoError(t, err)

		require.Equal(t, 1, tbl.Len())
		assert.Equal(t, "line one\nline two", tbl.Value(0, "description").String())
	})
}
