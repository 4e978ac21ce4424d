// Package revolutparser parses Revolut account statement CSV exports.
// Amounts are signed and the fee is charged on top, so the booked amount
// is Amount minus Fee. Declined, reverted and failed rows never moved
// money and are skipped.
package revolutparser

import (
	"io"
	"strings"

	"fjacquet/bank-import/internal/common"
	"fjacquet/bank-import/internal/currencyutils"
	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"
	"fjacquet/bank-import/internal/parser"
	"fjacquet/bank-import/internal/parsererror"
)

// BankName is the display name of the dialect.
const BankName = "Revolut"

var headers = []string{
	"Type", "Product", "Started Date", "Completed Date", "Description",
	"Amount", "Fee", "Currency", "State", "Balance",
}

const (
	colType = iota
	colProduct
	colStartedDate
	colCompletedDate
	colDescription
	colAmount
	colFee
	colCurrency
	colState
	colBalance
)

var skippedStates = map[string]bool{
	"DECLINED": true,
	"REVERTED": true,
	"FAILED":   true,
}

// Parser implements parser.BankParser for Revolut.
type Parser struct {
	parser.BaseParser
}

// NewParser creates a Revolut parser.
func NewParser(logger logging.Logger) *Parser {
	return &Parser{BaseParser: parser.NewBaseParser(BankName, headers, logger)}
}

func (p *Parser) Parse(r io.Reader) ([]models.NormalizedTransaction, error) {
	return parser.ParseRecords(p, r, p.GetLogger())
}

func (p *Parser) ParseRecord(rec common.Record) (models.NormalizedTransaction, error) {
	// Balance is blank on pending rows and sometimes dropped entirely.
	if err := p.RequireColumns(rec, colState+1); err != nil {
		return models.NormalizedTransaction{}, err
	}
	if skippedStates[strings.ToUpper(rec.Field(colState))] {
		return models.NormalizedTransaction{}, parser.ErrSkipRow
	}

	dateValue := rec.Field(colCompletedDate)
	if dateValue == "" {
		dateValue = rec.Field(colStartedDate)
	}
	date, err := p.ParseDate(rec, dateValue)
	if err != nil {
		return models.NormalizedTransaction{}, err
	}

	amount, err := p.ParseSigned(rec, rec.Field(colAmount))
	if err != nil {
		return models.NormalizedTransaction{}, err
	}
	fee, err := currencyutils.ParseOptionalAmount(rec.Field(colFee))
	if err != nil {
		return models.NormalizedTransaction{}, p.Fail(parsererror.FieldAmount, rec, rec.Field(colFee), err)
	}
	amount = amount.Sub(fee)

	description := rec.Field(colDescription)
	if description == "" {
		description = rec.Field(colType)
	}
	return p.Build(rec, date, amount, description, p.ParseBalance(rec.Field(colBalance)), "")
}
