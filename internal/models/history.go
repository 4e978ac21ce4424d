package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordKind distinguishes income-shaped from expense-shaped history.
type RecordKind string

const (
	RecordIncome  RecordKind = "INCOME"
	RecordExpense RecordKind = "EXPENSE"
)

// HistoricalRecord is a previously booked income or expense, as returned by
// the accounting store's date-range queries. Amount is unsigned, as booked.
type HistoricalRecord struct {
	ID                string
	Kind              RecordKind
	Date              time.Time
	Amount            decimal.Decimal
	Description       string
	Category          string
	BankTransactionID string
}

// SignedAmount returns the amount with the statement sign convention:
// income positive, expense negative.
func (r HistoricalRecord) SignedAmount() decimal.Decimal {
	if r.Kind == RecordExpense {
		return r.Amount.Abs().Neg()
	}
	return r.Amount.Abs()
}

// Hash returns the transaction hash this record would have as a statement row.
func (r HistoricalRecord) Hash() string {
	return TransactionHash(r.Date, r.SignedAmount(), r.Description)
}
