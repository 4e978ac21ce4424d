// Package parser defines the bank-statement parser contract and the two
// ways of running a parser over a file: strict and error-tolerant.
package parser

import (
	"errors"
	"io"

	"fjacquet/bank-import/internal/common"
	"fjacquet/bank-import/internal/models"
)

// BankParser parses one bank's CSV dialect into normalized transactions.
type BankParser interface {
	// BankName is the display name, also used for the "csv-<bank>" source id.
	BankName() string
	// ExpectedHeaders is the header row this dialect is detected by.
	ExpectedHeaders() []string
	// CanParse reports whether a normalized header row belongs to this dialect.
	CanParse(headers []string) bool
	// Parse reads a whole file in strict mode and stops on the first bad row.
	Parse(r io.Reader) ([]models.NormalizedTransaction, error)
	// ParseRecord converts one data row. Errors are *parsererror.ParseError.
	ParseRecord(rec common.Record) (models.NormalizedTransaction, error)
}

// RecordParser is the part of BankParser the record loops need.
type RecordParser interface {
	BankName() string
	ParseRecord(rec common.Record) (models.NormalizedTransaction, error)
}

// HeaderSkipper is implemented by parsers whose files may have no header row.
type HeaderSkipper interface {
	HasHeader() bool
}

func hasHeader(p RecordParser) bool {
	if hs, ok := p.(HeaderSkipper); ok {
		return hs.HasHeader()
	}
	return true
}

// ErrSkipRow is returned by ParseRecord for rows that are valid but carry no
// money movement, such as declined card payments. Both parse loops drop
// such rows without treating them as errors.
var ErrSkipRow = errors.New("row skipped")
