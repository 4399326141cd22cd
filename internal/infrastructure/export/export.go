// Package export writes result tables as CSV or XLSX downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/tafa/dashboard/internal/domain/ledger"
	"github.com/xuri/excelize/v2"
)

// Format is a download format
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat parses a format name. Empty means JSON.
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, true
	case FormatCSV:
		return FormatCSV, true
	case FormatXLSX:
		return FormatXLSX, true
	}
	return "", false
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json; charset=utf-8"
	}
}

// Filename returns base with the format extension
func (f Format) Filename(base string) string {
	return base + "." + string(f)
}

// Write writes t in format f. JSON is not a download format.
func Write(w io.Writer, t *ledger.Table, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	}
	return fmt.Errorf("unsupported export format %q", f)
}

// WriteCSV writes a header row of column names and one row per record
func WriteCSV(w io.Writer, t *ledger.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	record := make([]string, len(t.Columns()))
	for i := 0; i < t.Len(); i++ {
		for j, v := range t.Row(i) {
			record[j] = v.String()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// sheetName is the worksheet name used for xlsx exports
func sheetName(t *ledger.Table) string {
	name := t.Name()
	if name == "" {
		return "Sheet1"
	}
	// Excel limits sheet names to 31 characters
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

// WriteXLSX writes a single-sheet workbook. Numeric cells are written as
// numbers and dates as yyyy-mm-dd text.
func WriteXLSX(w io.Writer, t *ledger.Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := sheetName(t)
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	header := make([]interface{}, 0, len(t.Columns()))
	for _, name := range t.ColumnNames() {
		header = append(header, name)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func cellValue(v ledger.Value) interface{} {
	if v.Kind() == ledger.KindNumeric {
		f, _ := v.Decimal().Float64()
		return f
	}
	return v.String()
}
