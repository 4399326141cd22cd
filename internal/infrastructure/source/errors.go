package source

import "errors"

var (
	// ErrEmptyFile is returned when a source file has no content
	ErrEmptyFile = errors.New("source file is empty")

	// ErrInvalidEncoding is returned when a CSV file is not valid UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrMissingHeader is returned when a source file has no header row
	ErrMissingHeader = errors.New("source file missing header row")

	// ErrUnsupportedFormat is returned for file extensions other than csv and xlsx
	ErrUnsupportedFormat = errors.New("unsupported source file format")

	// ErrSheetNotFound is returned when the configured worksheet does not exist
	ErrSheetNotFound = errors.New("worksheet not found")

	// ErrUnknownTable is returned when no file is configured for a table name
	ErrUnknownTable = errors.New("no source file configured for table")

	// ErrObjectNotFound is returned when a source file does not exist
	ErrObjectNotFound = errors.New("source object not found")
)
