// Package monzoparser parses Monzo CSV exports. Monzo has added columns
// over time, so only the first eight are required to match.
package monzoparser

import (
	"io"

	"fjacquet/bank-import/internal/common"
	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"
	"fjacquet/bank-import/internal/parser"
)

// BankName is the display name of the dialect.
const BankName = "Monzo"

var headers = []string{"Transaction ID", "Date", "Time", "Type", "Name", "Emoji", "Category", "Amount"}

const (
	colID = iota
	colDate
	colTime
	colType
	colName
	colEmoji
	colCategory
	colAmount
)

// colDescription is the free-text column in the full export.
const colDescription = 14

// Parser implements parser.BankParser for Monzo.
type Parser struct {
	parser.BaseParser
}

// NewParser creates a Monzo parser.
func NewParser(logger logging.Logger) *Parser {
	return &Parser{BaseParser: parser.NewBaseParser(BankName, headers, logger)}
}

// CanParse accepts eight or more columns as long as the first eight match.
func (p *Parser) CanParse(h []string) bool {
	return common.HeadersMatch(headers, h, true)
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
	amount, err := p.ParseSigned(rec, rec.Field(colAmount))
	if err != nil {
		return models.NormalizedTransaction{}, err
	}

	description := rec.Field(colName)
	if description == "" {
		description = rec.Field(colDescription)
	}
	if description == "" {
		description = rec.Field(colType)
	}
	return p.Build(rec, date, amount, description, nil, rec.Field(colID))
}
