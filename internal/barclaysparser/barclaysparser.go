// Package barclaysparser parses Barclays current-account CSV exports, which
// report debits and credits in separate "Money Out" and "Money In" columns.
package barclaysparser

import (
	"io"

	"fjacquet/bank-import/internal/common"
	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"
	"fjacquet/bank-import/internal/parser"
)

// BankName is the display name of the dialect.
const BankName = "Barclays"

var headers = []string{"Date", "Description", "Money Out", "Money In", "Balance"}

const (
	colDate = iota
	colDescription
	colMoneyOut
	colMoneyIn
	colBalance
)

// Parser implements parser.BankParser for Barclays.
type Parser struct {
	parser.BaseParser
}

// NewParser creates a Barclays parser.
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
	date, err := p.ParseDate(rec, rec.Field(colDate))
	if err != nil {
		return models.NormalizedTransaction{}, err
	}
	amount, err := p.ParseSplit(rec, rec.Field(colMoneyOut), rec.Field(colMoneyIn))
	if err != nil {
		return models.NormalizedTransaction{}, err
	}
	return p.Build(rec, date, amount, rec.Field(colDescription), p.ParseBalance(rec.Field(colBalance)), "")
}
