// Package lloydsparser parses Lloyds Bank CSV exports. Lloyds ships two
// layouts: the full one with sort code and account number columns, and a
// simplified one without them. The layout is picked per row by column count.
package lloydsparser

import (
	"io"

	"fjacquet/bank-import/internal/common"
	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"
	"fjacquet/bank-import/internal/parser"
)

// BankName is the display name of the dialect.
const BankName = "Lloyds"

var fullHeaders = []string{
	"Transaction Date", "Transaction Type", "Sort Code", "Account Number",
	"Transaction Description", "Debit Amount", "Credit Amount", "Balance",
}

var simplifiedHeaders = []string{
	"Transaction Date", "Transaction Type",
	"Transaction Description", "Debit Amount", "Credit Amount", "Balance",
}

type layout struct {
	date, kind, description, debit, credit, balance int
}

var (
	fullLayout       = layout{date: 0, kind: 1, description: 4, debit: 5, credit: 6, balance: 7}
	simplifiedLayout = layout{date: 0, kind: 1, description: 2, debit: 3, credit: 4, balance: 5}
)

// Parser implements parser.BankParser for Lloyds.
type Parser struct {
	parser.BaseParser
}

// NewParser creates a Lloyds parser. ExpectedHeaders reports the full layout.
func NewParser(logger logging.Logger) *Parser {
	return &Parser{BaseParser: parser.NewBaseParser(BankName, fullHeaders, logger)}
}

// CanParse accepts either layout.
func (p *Parser) CanParse(headers []string) bool {
	return common.HeadersMatch(fullHeaders, headers, false) ||
		common.HeadersMatch(simplifiedHeaders, headers, false)
}

func (p *Parser) Parse(r io.Reader) ([]models.NormalizedTransaction, error) {
	return parser.ParseRecords(p, r, p.GetLogger())
}

func (p *Parser) ParseRecord(rec common.Record) (models.NormalizedTransaction, error) {
	if err := p.RequireColumns(rec, len(simplifiedHeaders)); err != nil {
		return models.NormalizedTransaction{}, err
	}
	l := simplifiedLayout
	if rec.Len() >= len(fullHeaders) {
		l = fullLayout
	}

	date, err := p.ParseDate(rec, rec.Field(l.date))
	if err != nil {
		return models.NormalizedTransaction{}, err
	}
	amount, err := p.ParseSplit(rec, rec.Field(l.debit), rec.Field(l.credit))
	if err != nil {
		return models.NormalizedTransaction{}, err
	}
	description := rec.Field(l.description)
	if description == "" {
		description = rec.Field(l.kind)
	}
	return p.Build(rec, date, amount, description, p.ParseBalance(rec.Field(l.balance)), "")
}
