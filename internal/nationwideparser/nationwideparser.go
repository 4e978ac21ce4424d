// Package nationwideparser parses Nationwide Building Society CSV exports.
// Amounts carry a pound sign and thousands separators ("£1,234.56") and
// dates are usually written "15 Jun 2025".
package nationwideparser

import (
	"io"

	"fjacquet/bank-import/internal/common"
	"fjacquet/bank-import/internal/dateutils"
	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"
	"fjacquet/bank-import/internal/parser"
	"fjacquet/bank-import/internal/textutils"
)

// BankName is the display name of the dialect.
const BankName = "Nationwide"

var headers = []string{"Date", "Transaction type", "Description", "Paid out", "Paid in", "Balance"}

var dateLayouts = []string{
	dateutils.DateLayoutDayMonth,
	dateutils.DateLayoutDayMon,
	dateutils.DateLayoutUK,
	dateutils.DateLayoutUKShort,
}

const (
	colDate = iota
	colType
	colDescription
	colPaidOut
	colPaidIn
	colBalance
)

// Parser implements parser.BankParser for Nationwide.
type Parser struct {
	parser.BaseParser
}

// NewParser creates a Nationwide parser.
func NewParser(logger logging.Logger) *Parser {
	return &Parser{BaseParser: parser.NewBaseParser(BankName, headers, logger)}
}

func (p *Parser) Parse(r io.Reader) ([]models.NormalizedTransaction, error) {
	return parser.ParseRecords(p, r, p.GetLogger())
}

func (p *Parser) ParseRecord(rec common.Record) (models.NormalizedTransaction, error) {
	if err := p.RequireColumns(rec, len(headers)); err != nil {
		return models.NormalizedTransaction{}, err
	}
	date, err := p.ParseDate(rec, rec.Field(colDate), dateLayouts...)
	if err != nil {
		return models.NormalizedTransaction{}, err
	}
	amount, err := p.ParseSplit(rec, rec.Field(colPaidOut), rec.Field(colPaidIn))
	if err != nil {
		return models.NormalizedTransaction{}, err
	}
	description := textutils.JoinNonEmpty(" - ", rec.Field(colType), rec.Field(colDescription))
	return p.Build(rec, date, amount, description, p.ParseBalance(rec.Field(colBalance)), "")
}
