package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidTransition is returned when a review-status change is not allowed.
var ErrInvalidTransition = errors.New("invalid review status transition")

// ReviewStatus is the lifecycle state of a persisted bank transaction.
type ReviewStatus string

const (
	ReviewPending     ReviewStatus = "PENDING"
	ReviewCategorized ReviewStatus = "CATEGORIZED"
	ReviewExcluded    ReviewStatus = "EXCLUDED"
)

// CanTransitionTo reports whether next is reachable from s.
// PENDING is the only non-terminal state.
func (s ReviewStatus) CanTransitionTo(next ReviewStatus) bool {
	return s == ReviewPending && (next == ReviewCategorized || next == ReviewExcluded)
}

// BusinessFlag is a tri-state business/personal marker.
type BusinessFlag string

const (
	BusinessUnknown BusinessFlag = "UNKNOWN"
	BusinessYes     BusinessFlag = "TRUE"
	BusinessNo      BusinessFlag = "FALSE"
)

// ParseBusinessFlag accepts true/false/unknown in any case, plus yes/no.
func ParseBusinessFlag(s string) (BusinessFlag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "business":
		return BusinessYes, nil
	case "false", "no", "personal":
		return BusinessNo, nil
	case "", "unknown":
		return BusinessUnknown, nil
	default:
		return BusinessUnknown, fmt.Errorf("invalid business flag %q", s)
	}
}

// SourceFormatPrefix prefixes the lowercase bank name to build a source-format id.
const SourceFormatPrefix = "csv-"

// SourceFormatID returns "csv-" + lowercase bank name.
func SourceFormatID(bankName string) string {
	return SourceFormatPrefix + strings.ToLower(strings.TrimSpace(bankName))
}

// PersistedTransaction is the accounting-side record written by the importer.
// Updates go through the With*/Confirm* methods, which return modified copies.
type PersistedTransaction struct {
	ID                string
	OwnerID           string
	ImportAuditID     string
	SourceFormatID    string
	Date              time.Time
	Amount            decimal.Decimal
	Description       string
	BankReference     string
	SuggestedCategory *string
	ConfidenceScore   *decimal.Decimal
	ReviewStatus      ReviewStatus
	ExclusionReason   *string
	IsBusiness        BusinessFlag
	LinkedExpenseID   *string
	LinkedIncomeID    *string
	TransactionHash   string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewPendingTransaction builds the PENDING record for a freshly imported row.
func NewPendingTransaction(id, ownerID, auditID, bankName string, tx NormalizedTransaction, now time.Time) PersistedTransaction {
	return PersistedTransaction{
		ID:              id,
		OwnerID:         ownerID,
		ImportAuditID:   auditID,
		SourceFormatID:  SourceFormatID(bankName),
		Date:            tx.Date(),
		Amount:          tx.Amount(),
		Description:     tx.Description(),
		BankReference:   tx.Reference(),
		ReviewStatus:    ReviewPending,
		IsBusiness:      BusinessUnknown,
		TransactionHash: tx.Hash(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// IsIncome reports whether the record is money in.
func (t PersistedTransaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// WithCategorization sets the suggested category and confidence score.
// Review status is left untouched.
func (t PersistedTransaction) WithCategorization(category *string, score *decimal.Decimal, at time.Time) PersistedTransaction {
	t.SuggestedCategory = copyString(category)
	if score != nil {
		s := *score
		t.ConfidenceScore = &s
	} else {
		t.ConfidenceScore = nil
	}
	t.UpdatedAt = at
	return t
}

// WithExclusion marks the transaction EXCLUDED with the given reason.
func (t PersistedTransaction) WithExclusion(reason ExclusionReason, at time.Time) (PersistedTransaction, error) {
	if !t.ReviewStatus.CanTransitionTo(ReviewExcluded) {
		return t, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.ReviewStatus, ReviewExcluded)
	}
	r := string(reason)
	t.ReviewStatus = ReviewExcluded
	t.ExclusionReason = &r
	t.UpdatedAt = at
	return t, nil
}

// ConfirmAsExpense links the transaction to an expense record and marks it CATEGORIZED.
func (t PersistedTransaction) ConfirmAsExpense(expenseID string, at time.Time) (PersistedTransaction, error) {
	if !t.ReviewStatus.CanTransitionTo(ReviewCategorized) {
		return t, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.ReviewStatus, ReviewCategorized)
	}
	id := expenseID
	t.ReviewStatus = ReviewCategorized
	t.LinkedExpenseID = &id
	t.LinkedIncomeID = nil
	t.UpdatedAt = at
	return t, nil
}

// ConfirmAsIncome links the transaction to an income record and marks it CATEGORIZED.
func (t PersistedTransaction) ConfirmAsIncome(incomeID string, at time.Time) (PersistedTransaction, error) {
	if !t.ReviewStatus.CanTransitionTo(ReviewCategorized) {
		return t, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.ReviewStatus, ReviewCategorized)
	}
	id := incomeID
	t.ReviewStatus = ReviewCategorized
	t.LinkedIncomeID = &id
	t.LinkedExpenseID = nil
	t.UpdatedAt = at
	return t, nil
}

// WithBusinessFlag changes the business/personal flag and nothing else.
func (t PersistedTransaction) WithBusinessFlag(flag BusinessFlag, at time.Time) PersistedTransaction {
	t.IsBusiness = flag
	t.UpdatedAt = at
	return t
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
