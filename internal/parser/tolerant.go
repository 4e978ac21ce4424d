package parser

import (
	"errors"
	"fmt"
	"io"

	"fjacquet/bank-import/internal/common"
	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"
	"fjacquet/bank-import/internal/parsererror"
)

// TolerantResult holds both outcomes of an error-tolerant parse.
type TolerantResult struct {
	Transactions []models.NormalizedTransaction
	Errors       []parsererror.RowError
	// Ignored counts rows dropped with ErrSkipRow.
	Ignored int
}

func (r TolerantResult) HasErrors() bool {
	return len(r.Errors) > 0
}

func (r TolerantResult) SuccessCount() int {
	return len(r.Transactions)
}

func (r TolerantResult) ErrorCount() int {
	return len(r.Errors)
}

// TolerantParser runs a parser row by row and collects failing rows
// instead of aborting.
type TolerantParser struct {
	inner  RecordParser
	logger logging.Logger
}

// NewTolerantParser wraps p.
func NewTolerantParser(p RecordParser, logger logging.Logger) *TolerantParser {
	return &TolerantParser{
		inner:  p,
		logger: logging.OrDefault(logger).WithField(logging.FieldParser, p.BankName()),
	}
}

// BankName returns the wrapped parser's bank name.
func (t *TolerantParser) BankName() string {
	return t.inner.BankName()
}

// Parse only returns an error when r itself cannot be read.
func (t *TolerantParser) Parse(r io.Reader) (TolerantResult, error) {
	records, err := common.ReadRecords(r)
	if err != nil {
		return TolerantResult{}, fmt.Errorf("%s: %w", t.inner.BankName(), err)
	}

	var result TolerantResult
	for _, rec := range dataRecords(t.inner, records) {
		tx, err := t.inner.ParseRecord(rec)
		if errors.Is(err, ErrSkipRow) {
			t.logger.Debug("Skipping row", logging.F(logging.FieldLine, rec.Line))
			result.Ignored++
			continue
		}
		if err != nil {
			t.logger.Warn("Skipping unparsable row",
				logging.F(logging.FieldLine, rec.Line),
				logging.F(logging.FieldError, err.Error()))
			result.Errors = append(result.Errors, parsererror.RowError{
				Line:    rec.Line,
				RawLine: rec.Raw,
				Message: err.Error(),
			})
			continue
		}
		result.Transactions = append(result.Transactions, tx)
	}

	t.logger.Info("Tolerant parse finished",
		logging.F(logging.FieldImported, result.SuccessCount()),
		logging.F(logging.FieldIgnored, result.Ignored),
		logging.F(logging.FieldErrors, result.ErrorCount()))
	return result, nil
}
