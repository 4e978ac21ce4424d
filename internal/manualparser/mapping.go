package manualparser

import (
	"fmt"

	"fjacquet/bank-import/internal/parsererror"
)

// DefaultBankName is used when a mapping names no bank.
const DefaultBankName = "Manual"

// ColumnMapping describes a CSV layout by zero-based column index. Either
// AmountColumn (one signed column) or DebitColumn and CreditColumn (a split
// pair) must be set, never both.
type ColumnMapping struct {
	DateColumn        int    `yaml:"date_column" mapstructure:"date_column"`
	DateFormat        string `yaml:"date_format" mapstructure:"date_format"`
	DescriptionColumn int    `yaml:"description_column" mapstructure:"description_column"`
	AmountColumn      *int   `yaml:"amount_column,omitempty" mapstructure:"amount_column"`
	DebitColumn       *int   `yaml:"debit_column,omitempty" mapstructure:"debit_column"`
	CreditColumn      *int   `yaml:"credit_column,omitempty" mapstructure:"credit_column"`
	// InvertSign flips the resulting amount, for exports that show money
	// out as positive (credit-card statements, mostly).
	InvertSign      bool   `yaml:"invert_sign" mapstructure:"invert_sign"`
	BalanceColumn   *int   `yaml:"balance_column,omitempty" mapstructure:"balance_column"`
	ReferenceColumn *int   `yaml:"reference_column,omitempty" mapstructure:"reference_column"`
	BankName        string `yaml:"bank_name" mapstructure:"bank_name"`
	SkipHeader      bool   `yaml:"skip_header" mapstructure:"skip_header"`
}

// Column returns a pointer to i, for building mappings in code.
func Column(i int) *int {
	return &i
}

// Validate checks the amount columns and column indices.
func (m ColumnMapping) Validate() error {
	invalid := func(msg string) error {
		return &parsererror.InvalidFormatError{ExpectedFormat: "column mapping", Msg: msg}
	}

	single := m.AmountColumn != nil
	split := m.DebitColumn != nil || m.CreditColumn != nil
	switch {
	case single && split:
		return invalid("set either amount_column or debit_column/credit_column, not both")
	case !single && !split:
		return invalid("an amount_column or a debit_column/credit_column pair is required")
	case split && (m.DebitColumn == nil || m.CreditColumn == nil):
		return invalid("debit_column and credit_column must be set together")
	}

	if m.DateColumn < 0 || m.DescriptionColumn < 0 {
		return invalid("column indices must not be negative")
	}
	for name, col := range map[string]*int{
		"amount_column":    m.AmountColumn,
		"debit_column":     m.DebitColumn,
		"credit_column":    m.CreditColumn,
		"balance_column":   m.BalanceColumn,
		"reference_column": m.ReferenceColumn,
	} {
		if col != nil && *col < 0 {
			return invalid(fmt.Sprintf("%s must not be negative", name))
		}
	}
	return nil
}

// RequiredColumns is the smallest row width that holds every mandatory column.
func (m ColumnMapping) RequiredColumns() int {
	highest := max(m.DateColumn, m.DescriptionColumn)
	for _, col := range []*int{m.AmountColumn, m.DebitColumn, m.CreditColumn} {
		if col != nil {
			highest = max(highest, *col)
		}
	}
	return highest + 1
}

// Name returns the mapping's bank name or DefaultBankName.
func (m ColumnMapping) Name() string {
	if m.BankName == "" {
		return DefaultBankName
	}
	return m.BankName
}
