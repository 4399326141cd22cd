package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/tafa/dashboard/internal/domain/ledger"
	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads one worksheet of an xlsx workbook into a raw table.
// An empty sheet name selects the first sheet. The first non-blank row is
// the header. Cells are read raw, so date cells arrive as Excel serial
// numbers and are resolved by the normalizer.
func ParseXLSX(r io.Reader, name, sheet string) (*ledger.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	start := 0
	for start < len(rows) && isBlank(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, ErrMissingHeader
	}

	headers := make([]string, len(rows[start]))
	for i, h := range rows[start] {
		headers[i] = strings.TrimSpace(h)
	}

	var records [][]string
	for _, row := range rows[start+1:] {
		if isBlank(row) {
			continue
		}
		rec := make([]string, len(headers))
		for i := range rec {
			if i < len(row) {
				rec[i] = strings.TrimSpace(row[i])
			}
		}
		records = append(records, rec)
	}

	return textTable(name, headers, records), nil
}
