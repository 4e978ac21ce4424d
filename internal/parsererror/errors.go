// Package parsererror defines the typed errors raised while importing bank statements.
package parsererror

import (
	"errors"
	"fmt"
	"strings"
)

// Field names reported by ParseError.
const (
	FieldDate        = "date"
	FieldAmount      = "amount"
	FieldDescription = "description"
	FieldColumns     = "columns"
)

// Sentinels for errors.Is at the import boundary.
var (
	ErrUnknownFormat = errors.New("unknown format")
	ErrFileTooLarge  = errors.New("file too large")
)

// ParseError is a fatal, strict-mode failure on one row of a statement.
// Line is 1-based and counts the header row.
type ParseError struct {
	Parser string
	Field  string
	Line   int
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: line %d: failed to parse %s='%s': %v",
		e.Parser, e.Line, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RowError is a row-level failure collected by the error-tolerant parser.
type RowError struct {
	Line    int    `json:"line" yaml:"line"`
	RawLine string `json:"raw_line" yaml:"raw_line"`
	Message string `json:"message" yaml:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ValidationError is raised when a normalized transaction cannot be constructed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid transaction: %s %s", e.Field, e.Reason)
}

// UnknownFormatError is returned when no registered parser accepts the header row.
type UnknownFormatError struct {
	Source  string
	Headers []string
}

func (e *UnknownFormatError) Error() string {
	if len(e.Headers) == 0 {
		return fmt.Sprintf("unknown format for '%s': no header row", e.Source)
	}
	return fmt.Sprintf("unknown format for '%s': headers [%s]", e.Source, strings.Join(e.Headers, ", "))
}

func (e *UnknownFormatError) Is(target error) bool {
	return target == ErrUnknownFormat
}

// FileTooLargeError is returned by admission control before any parsing happens.
type FileTooLargeError struct {
	Source string
	Size   int64
	Limit  int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file '%s' is %d bytes, exceeding the %d byte limit", e.Source, e.Size, e.Limit)
}

func (e *FileTooLargeError) Is(target error) bool {
	return target == ErrFileTooLarge
}

// InvalidFormatError represents a malformed parser configuration or input that
// does not conform to the expected layout.
type InvalidFormatError struct {
	FilePath       string
	ExpectedFormat string
	Msg            string
}

func (e *InvalidFormatError) Error() string {
	if e.FilePath == "" {
		return fmt.Sprintf("invalid format: %s. Expected: %s", e.Msg, e.ExpectedFormat)
	}
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}
