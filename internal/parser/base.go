package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/bank-import/internal/common"
	"fjacquet/bank-import/internal/currencyutils"
	"fjacquet/bank-import/internal/dateutils"
	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"
	"fjacquet/bank-import/internal/parsererror"

	"github.com/shopspring/decimal"
)

// BaseParser holds what every bank parser shares: its name, its header
// row and a logger. Parsers embed it and add ParseRecord and Parse.
//
//	type Parser struct {
//		parser.BaseParser
//	}
type BaseParser struct {
	bankName string
	headers  []string
	logger   logging.Logger
}

// NewBaseParser creates a BaseParser. A nil logger selects the default logger.
func NewBaseParser(bankName string, headers []string, logger logging.Logger) BaseParser {
	return BaseParser{
		bankName: bankName,
		headers:  append([]string(nil), headers...),
		logger:   logging.OrDefault(logger).WithField(logging.FieldParser, bankName),
	}
}

func (b *BaseParser) BankName() string {
	return b.bankName
}

// ExpectedHeaders returns a copy of the dialect's header row.
func (b *BaseParser) ExpectedHeaders() []string {
	return append([]string(nil), b.headers...)
}

// CanParse matches the header row exactly, ignoring case, quotes and whitespace.
func (b *BaseParser) CanParse(headers []string) bool {
	return common.HeadersMatch(b.headers, headers, false)
}

// SetLogger replaces the parser's logger.
func (b *BaseParser) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger.WithField(logging.FieldParser, b.bankName)
	}
}

// GetLogger returns the current logger instance.
func (b *BaseParser) GetLogger() logging.Logger {
	return b.logger
}

// Fail builds a ParseError for this parser.
func (b *BaseParser) Fail(field string, rec common.Record, value string, err error) *parsererror.ParseError {
	return &parsererror.ParseError{Parser: b.bankName, Field: field, Line: rec.Line, Value: value, Err: err}
}

// RequireColumns rejects rows with fewer than n fields.
func (b *BaseParser) RequireColumns(rec common.Record, n int) error {
	if rec.Err != nil {
		return b.Fail(parsererror.FieldColumns, rec, rec.Raw, rec.Err)
	}
	if rec.Len() < n {
		return b.Fail(parsererror.FieldColumns, rec, rec.Raw,
			&columnCountError{want: n, got: rec.Len()})
	}
	return nil
}

// ParseDate parses a date column, with the UK layouts unless others are given.
func (b *BaseParser) ParseDate(rec common.Record, value string, layouts ...string) (time.Time, error) {
	if len(layouts) == 0 {
		layouts = dateutils.UKFormats
	}
	d, err := dateutils.ParseDateWith(value, layouts...)
	if err != nil {
		return time.Time{}, b.Fail(parsererror.FieldDate, rec, value, err)
	}
	return d, nil
}

// ParseSigned parses a single signed amount column.
func (b *BaseParser) ParseSigned(rec common.Record, value string) (decimal.Decimal, error) {
	amount, err := currencyutils.ParseAmount(value)
	if err != nil {
		return decimal.Zero, b.Fail(parsererror.FieldAmount, rec, value, err)
	}
	return amount, nil
}

// ParseSplit combines an out/in column pair into a signed amount.
func (b *BaseParser) ParseSplit(rec common.Record, out, in string) (decimal.Decimal, error) {
	amount, err := currencyutils.SplitColumns(out, in)
	if err != nil {
		return decimal.Zero, b.Fail(parsererror.FieldAmount, rec, out+"|"+in, err)
	}
	return amount, nil
}

// ParseBalance parses an optional balance column; blank or unparsable means absent.
func (b *BaseParser) ParseBalance(value string) *decimal.Decimal {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	bal, err := currencyutils.ParseAmount(value)
	if err != nil {
		b.logger.Debug("Ignoring unparsable balance", logging.F("value", value))
		return nil
	}
	return &bal
}

// Build validates the parsed columns into a NormalizedTransaction, mapping
// validation failures onto a ParseError for the row.
func (b *BaseParser) Build(rec common.Record, date time.Time, amount decimal.Decimal, description string, balance *decimal.Decimal, reference string) (models.NormalizedTransaction, error) {
	tx, err := models.NewNormalizedTransaction(date, &amount, description, balance, reference)
	if err != nil {
		field := parsererror.FieldDescription
		var verr *parsererror.ValidationError
		if errors.As(err, &verr) {
			field = verr.Field
		}
		return models.NormalizedTransaction{}, b.Fail(field, rec, description, err)
	}
	return tx, nil
}

type columnCountError struct {
	want, got int
}

func (e *columnCountError) Error() string {
	return fmt.Sprintf("expected at least %d columns, got %d", e.want, e.got)
}
