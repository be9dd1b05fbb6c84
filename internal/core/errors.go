package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pipeline's failure kinds. Match with errors.Is.
var (
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrParseFailure      = errors.New("error reading file")
	ErrConversionFailure = errors.New("error during file conversion")

	// Warnings: the step is skipped, the file is still processed.
	ErrNoNumericColumns = errors.New("no numeric columns found to fill missing values")
	ErrNotEnoughNumeric = errors.New("not enough numerical columns for visualization")
)

// Parse causes, wrapped by a FileError of kind ErrParseFailure.
var (
	ErrEmptyFile   = errors.New("no columns to parse from file")
	ErrRaggedRow   = errors.New("row has more fields than the header")
	ErrNoWorksheet = errors.New("workbook has no worksheets")
)

// FileError is a failure scoped to one uploaded file.
type FileError struct {
	Kind     error // one of the sentinel errors above
	FileName string
	Err      error // underlying cause, may be nil
}

func (e *FileError) Error() string {
	switch {
	case e.Kind == ErrUnsupportedFormat:
		return fmt.Sprintf("%s: %s", e.Kind, e.Err)
	case e.Err == nil:
		return fmt.Sprintf("%s %s", e.Kind, e.FileName)
	case e.Kind == ErrParseFailure:
		return fmt.Sprintf("%s %s: %s", e.Kind, e.FileName, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Err)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *FileError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func unsupportedFormat(name, ext string) error {
	if ext == "" {
		ext = "(none)"
	}
	return &FileError{Kind: ErrUnsupportedFormat, FileName: name, Err: errors.New(ext)}
}

func parseFailure(name string, err error) error {
	return &FileError{Kind: ErrParseFailure, FileName: name, Err: err}
}

func conversionFailure(name string, err error) error {
	return &FileError{Kind: ErrConversionFailure, FileName: name, Err: err}
}
