// Package manualparser parses CSV files from banks without a dedicated
// parser, driven by a user-supplied ColumnMapping.
package manualparser

import (
	"io"

	"fjacquet/bank-import/internal/common"
	"fjacquet/bank-import/internal/dateutils"
	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"
	"fjacquet/bank-import/internal/parser"

	"github.com/shopspring/decimal"
)

// Parser implements parser.BankParser from a ColumnMapping.
// It is never picked by format detection.
type Parser struct {
	parser.BaseParser
	mapping ColumnMapping
	layouts []string
}

// NewParser validates mapping and builds a parser for it.
func NewParser(mapping ColumnMapping, logger logging.Logger) (*Parser, error) {
	if err := mapping.Validate(); err != nil {
		return nil, err
	}

	layouts := dateutils.UKFormats
	if mapping.DateFormat != "" {
		layouts = []string{dateutils.ConvertPattern(mapping.DateFormat)}
	}

	return &Parser{
		BaseParser: parser.NewBaseParser(mapping.Name(), nil, logger),
		mapping:    mapping,
		layouts:    layouts,
	}, nil
}

// CanParse always returns false.
func (p *Parser) CanParse([]string) bool {
	return false
}

// HasHeader reports whether the first row is a header to skip.
func (p *Parser) HasHeader() bool {
	return p.mapping.SkipHeader
}

// Mapping returns the mapping the parser was built with.
func (p *Parser) Mapping() ColumnMapping {
	return p.mapping
}

func (p *Parser) Parse(r io.Reader) ([]models.NormalizedTransaction, error) {
	return parser.ParseRecords(p, r, p.GetLogger())
}

func (p *Parser) ParseRecord(rec common.Record) (models.NormalizedTransaction, error) {
	m := p.mapping
	if err := p.RequireColumns(rec, m.RequiredColumns()); err != nil {
		return models.NormalizedTransaction{}, err
	}

	date, err := p.ParseDate(rec, rec.Field(m.DateColumn), p.layouts...)
	if err != nil {
		return models.NormalizedTransaction{}, err
	}

	amount, err := p.amount(rec)
	if err != nil {
		return models.NormalizedTransaction{}, err
	}

	var balance *decimal.Decimal
	if m.BalanceColumn != nil {
		balance = p.ParseBalance(rec.Field(*m.BalanceColumn))
	}
	reference := ""
	if m.ReferenceColumn != nil {
		reference = rec.Field(*m.ReferenceColumn)
	}
	return p.Build(rec, date, amount, rec.Field(m.DescriptionColumn), balance, reference)
}

func (p *Parser) amount(rec common.Record) (decimal.Decimal, error) {
	m := p.mapping
	var (
		amount decimal.Decimal
		err    error
	)
	if m.AmountColumn != nil {
		amount, err = p.ParseSigned(rec, rec.Field(*m.AmountColumn))
	} else {
		amount, err = p.ParseSplit(rec, rec.Field(*m.DebitColumn), rec.Field(*m.CreditColumn))
	}
	if err != nil {
		return decimal.Zero, err
	}
	if m.InvertSign {
		amount = amount.Neg()
	}
	return amount, nil
}
