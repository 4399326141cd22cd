package source

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/tafa/dashboard/internal/domain/ledger"
)

// CSVParser reads a CSV file with a header row into raw text cells.
// A UTF-8 BOM is stripped and the content must be valid UTF-8.
type CSVParser struct {
	delimiter  rune
	lazyQuotes bool
	trimSpace  bool
	headers    []string
	currentRow int
	reader     *csv.Reader
	bufReader  *bufio.Reader
}

// ParserOption is a functional option for CSVParser configuration
type ParserOption func(*CSVParser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// WithLazyQuotes enables lazy quote handling
func WithLazyQuotes(lazy bool) ParserOption {
	return func(p *CSVParser) {
		p.lazyQuotes = lazy
	}
}

// WithTrimSpace enables trimming of leading/trailing spaces from fields
func WithTrimSpace(trim bool) ParserOption {
	return func(p *CSVParser) {
		p.trimSpace = trim
	}
}

// NewCSVParser creates a new CSV parser from a reader
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	parser := &CSVParser{
		delimiter:  ',',
		lazyQuotes: true,
		trimSpace:  true,
	}

	for _, opt := range opts {
		opt(parser)
	}

	parser.bufReader = bufio.NewReader(r)

	content, err := parser.bufReader.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// UTF-8 BOM: 0xEF, 0xBB, 0xBF
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		_, _ = parser.bufReader.Discard(3)
	}

	if err := validateUTF8(parser.bufReader); err != nil {
		return nil, err
	}

	parser.reader = csv.NewReader(parser.bufReader)
	parser.reader.Comma = parser.delimiter
	parser.reader.LazyQuotes = parser.lazyQuotes
	parser.reader.TrimLeadingSpace = parser.trimSpace
	parser.reader.FieldsPerRecord = -1

	return parser, nil
}

// validateUTF8 checks that the buffered prefix is valid UTF-8
func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}

	if len(content) == 0 {
		return ErrEmptyFile
	}

	// A multi-byte rune may straddle the peek boundary
	if len(content) == checkSize {
		for i := 0; i < utf8.UTFMax && len(content) > 0 && !utf8.Valid(content); i++ {
			content = content[:len(content)-1]
		}
	}

	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}

	return nil
}

// ParseHeader reads and parses the header row
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, len(record))
	blank := true
	for i, h := range record {
		if p.trimSpace {
			h = strings.TrimSpace(h)
		}
		p.headers[i] = h
		if h != "" {
			blank = false
		}
	}

	if blank {
		return ErrMissingHeader
	}

	p.currentRow = 1
	return nil
}

// ReadRecord reads the next record aligned to the header width.
// It returns io.EOF when the input is exhausted.
func (p *CSVParser) ReadRecord() ([]string, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.currentRow++
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", p.currentRow, err)
	}

	out := make([]string, len(p.headers))
	for i := range out {
		if i < len(record) {
			v := record[i]
			if p.trimSpace {
				v = strings.TrimSpace(v)
			}
			out[i] = v
		}
	}
	return out, nil
}

// Table reads the header and every remaining record into a table of text
// cells named name. Completely empty records are skipped.
func (p *CSVParser) Table(name string) (*ledger.Table, error) {
	if err := p.ParseHeader(); err != nil {
		return nil, err
	}

	var records [][]string
	for {
		rec, err := p.ReadRecord()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if isBlank(rec) {
			continue
		}
		records = append(records, rec)
	}

	return textTable(name, p.headers, records), nil
}

// ParseCSV reads a whole CSV document into a raw table. A zero-byte
// document gives a table with no columns, which normalization widens to
// the table schema.
func ParseCSV(r io.Reader, name string, opts ...ParserOption) (*ledger.Table, error) {
	p, err := NewCSVParser(r, opts...)
	if errors.Is(err, ErrEmptyFile) {
		return ledger.NewTable(name, nil, nil), nil
	}
	if err != nil {
		return nil, err
	}
	return p.Table(name)
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// textTable builds a table whose cells are all raw text
func textTable(name string, headers []string, records [][]string) *ledger.Table {
	cols := make([]ledger.Column, len(headers))
	for i, h := range headers {
		cols[i] = ledger.Column{Name: h, Kind: ledger.KindText}
	}
	rows := make([]ledger.Row, len(records))
	for i, rec := range records {
		row := make(ledger.Row, len(headers))
		for j := range headers {
			if j < len(rec) {
				row[j] = ledger.Text(rec[j])
			} else {
				row[j] = ledger.Text("")
			}
		}
		rows[i] = row
	}
	return ledger.NewTable(name, cols, rows)
}
