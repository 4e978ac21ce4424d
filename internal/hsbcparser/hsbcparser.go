// Package hsbcparser parses HSBC UK CSV exports.
package hsbcparser

import (
	"io"

	"fjacquet/bank-import/internal/common"
	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"
	"fjacquet/bank-import/internal/parser"
	"fjacquet/bank-import/internal/textutils"
)

// BankName is the display name of the dialect.
const BankName = "HSBC"

var headers = []string{"Date", "Type", "Description", "Paid Out", "Paid In", "Balance"}

const (
	colDate = iota
	colType
	colDescription
	colPaidOut
	colPaidIn
	colBalance
)

// Parser implements parser.BankParser for HSBC.
type Parser struct {
	parser.BaseParser
}

// NewParser creates an HSBC parser.
func NewParser(logger logging.Logger) *Parser {
	return &Parser{BaseParser: parser.NewBaseParser(BankName, headers, logger)}
}

func (p *Parser) Parse(r io.Reader) ([]models.NormalizedTransaction, error) {
	return parser.ParseRecords(p, r, p.GetLogger())
}

// ParseRecord joins the transaction type onto the description ("DD - COUNCIL TAX"),
// keeping whichever of the two is present when the other is blank.
func (p *Parser) ParseRecord(rec common.Record) (models.NormalizedTransaction, error) {
	if err := p.RequireColumns(rec, len(headers)); err != nil {
		return models.NormalizedTransaction{}, err
	}
	date, err := p.ParseDate(rec, rec.Field(colDate))
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
