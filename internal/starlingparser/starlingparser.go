// Package starlingparser parses Starling Bank CSV exports.
package starlingparser

import (
	"io"

	"fjacquet/bank-import/internal/common"
	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"
	"fjacquet/bank-import/internal/parser"
	"fjacquet/bank-import/internal/textutils"
)

// BankName is the display name of the dialect.
const BankName = "Starling"

var headers = []string{
	"Date", "Counter Party", "Reference", "Type",
	"Amount (GBP)", "Balance (GBP)", "Spending Category", "Notes",
}

const (
	colDate = iota
	colCounterParty
	colReference
	colType
	colAmount
	colBalance
)

// Parser implements parser.BankParser for Starling.
type Parser struct {
	parser.BaseParser
}

// NewParser creates a Starling parser.
func NewParser(logger logging.Logger) *Parser {
	return &Parser{BaseParser: parser.NewBaseParser(BankName, headers, logger)}
}

func (p *Parser) Parse(r io.Reader) ([]models.NormalizedTransaction, error) {
	return parser.ParseRecords(p, r, p.GetLogger())
}

// ParseRecord builds the description from counter party and reference,
// dropping the reference when it only repeats the counter party.
func (p *Parser) ParseRecord(rec common.Record) (models.NormalizedTransaction, error) {
	if err := p.RequireColumns(rec, len(headers)); err != nil {
		return models.NormalizedTransaction{}, err
	}
	date, err := p.ParseDate(rec, rec.Field(colDate))
	if err != nil {
		return models.NormalizedTransaction{}, err
	}
	amount, err := p.ParseSigned(rec, rec.Field(colAmount))
	if err != nil {
		return models.NormalizedTransaction{}, err
	}

	description := textutils.JoinDistinct(" - ", rec.Field(colCounterParty), rec.Field(colReference))
	if description == "" {
		description = rec.Field(colType)
	}
	return p.Build(rec, date, amount, description, p.ParseBalance(rec.Field(colBalance)), rec.Field(colReference))
}
