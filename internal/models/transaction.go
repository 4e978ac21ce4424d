// Package models holds the canonical transaction shapes shared by the
// parsers, the classification engine, the duplicate detector and the importer.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"fjacquet/bank-import/internal/parsererror"
	"fjacquet/bank-import/internal/textutils"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical calendar-date layout used in hashes and storage.
const DateLayout = "2006-01-02"

// NormalizedTransaction is one parsed statement row. It is immutable once built.
// A positive amount is income, zero or negative is an expense.
type NormalizedTransaction struct {
	date        time.Time
	amount      decimal.Decimal
	description string
	balance     *decimal.Decimal
	reference   string
}

// NewNormalizedTransaction validates and builds a transaction. The date is
// truncated to a UTC calendar date; balance and reference are optional.
func NewNormalizedTransaction(date time.Time, amount *decimal.Decimal, description string, balance *decimal.Decimal, reference string) (NormalizedTransaction, error) {
	if date.IsZero() {
		return NormalizedTransaction{}, &parsererror.ValidationError{Field: "date", Reason: "is required"}
	}
	if amount == nil {
		return NormalizedTransaction{}, &parsererror.ValidationError{Field: "amount", Reason: "is required"}
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return NormalizedTransaction{}, &parsererror.ValidationError{Field: "description", Reason: "must not be blank"}
	}

	tx := NormalizedTransaction{
		date:        DateOnly(date),
		amount:      *amount,
		description: description,
		reference:   strings.TrimSpace(reference),
	}
	if balance != nil {
		b := *balance
		tx.balance = &b
	}
	return tx, nil
}

// MustNormalizedTransaction builds a transaction without balance or
// reference and panics on invalid input. Intended for fixtures.
func MustNormalizedTransaction(date time.Time, amount decimal.Decimal, description string) NormalizedTransaction {
	tx, err := NewNormalizedTransaction(date, &amount, description, nil, "")
	if err != nil {
		panic(err)
	}
	return tx
}

func (t NormalizedTransaction) Date() time.Time         { return t.date }
func (t NormalizedTransaction) Amount() decimal.Decimal { return t.amount }
func (t NormalizedTransaction) Description() string     { return t.description }
func (t NormalizedTransaction) Reference() string       { return t.reference }

// Balance returns the running balance and whether the bank reported one.
func (t NormalizedTransaction) Balance() (decimal.Decimal, bool) {
	if t.balance == nil {
		return decimal.Zero, false
	}
	return *t.balance, true
}

// IsIncome reports whether money came in.
func (t NormalizedTransaction) IsIncome() bool {
	return t.amount.IsPositive()
}

// IsExpense reports whether money went out. Zero amounts count as expenses.
func (t NormalizedTransaction) IsExpense() bool {
	return !t.amount.IsPositive()
}

// Hash returns the transaction hash used for duplicate detection.
// Only date, amount and the normalized description participate, so a
// re-export that only changes balance or reference hashes identically.
func (t NormalizedTransaction) Hash() string {
	return TransactionHash(t.date, t.amount, t.description)
}

func (t NormalizedTransaction) String() string {
	return fmt.Sprintf("%s %s %s", t.date.Format(DateLayout), t.amount.StringFixed(2), t.description)
}

// TransactionHash digests (date, amount, normalized description).
func TransactionHash(date time.Time, amount decimal.Decimal, description string) string {
	input := fmt.Sprintf("%s|%s|%s",
		DateOnly(date).Format(DateLayout),
		amount.StringFixed(2),
		NormalizeDescription(description))
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// NormalizeDescription trims, collapses internal whitespace and upper-cases.
func NormalizeDescription(description string) string {
	return strings.ToUpper(textutils.CollapseWhitespace(description))
}

// DateOnly drops the time of day and location, keeping the calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
