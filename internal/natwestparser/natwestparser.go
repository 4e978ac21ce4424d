// Package natwestparser parses NatWest CSV exports, which carry a single
// signed Value column.
package natwestparser

import (
	"io"

	"fjacquet/bank-import/internal/common"
	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"
	"fjacquet/bank-import/internal/parser"
)

// BankName is the display name of the dialect.
const BankName = "NatWest"

var headers = []string{"Date", "Type", "Description", "Value", "Balance", "Account Name", "Account Number"}

const (
	colDate = iota
	colType
	colDescription
	colValue
	colBalance
)

// Parser implements parser.BankParser for NatWest.
type Parser struct {
	parser.BaseParser
}

// NewParser creates a NatWest parser.
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
	amount, err := p.ParseSigned(rec, rec.Field(colValue))
	if err != nil {
		return models.NormalizedTransaction{}, err
	}
	description := rec.Field(colDescription)
	if description == "" {
		description = rec.Field(colType)
	}
	return p.Build(rec, date, amount, description, p.ParseBalance(rec.Field(colBalance)), "")
}
