package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingFixture(t *testing.T) PersistedTransaction {
	t.Helper()
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	tx, err := NewNormalizedTransaction(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), dec("-12.00"), "ADOBE", nil, "REF")
	require.NoError(t, err)
	return NewPendingTransaction("tx-1", "owner-1", "audit-1", "Barclays", tx, created)
}

func TestNewPendingTransaction(t *testing.T) {
	p := pendingFixture(t)

	assert.Equal(t, "csv-barclays", p.SourceFormatID)
	assert.Equal(t, ReviewPending, p.ReviewStatus)
	assert.Equal(t, BusinessUnknown, p.IsBusiness)
	assert.Equal(t, "REF", p.BankReference)
	assert.NotEmpty(t, p.TransactionHash)
	assert.Nil(t, p.SuggestedCategory)
}

func TestReviewStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to ReviewStatus
		want     bool
	}{
		{ReviewPending, ReviewCategorized, true},
		{ReviewPending, ReviewExcluded, true},
		{ReviewPending, ReviewPending, false},
		{ReviewCategorized, ReviewExcluded, false},
		{ReviewCategorized, ReviewPending, false},
		{ReviewExcluded, ReviewCategorized, false},
		{ReviewExcluded, ReviewPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPersistedTransaction_WithCategorization(t *testing.T) {
	p := pendingFixture(t)
	at := p.UpdatedAt.Add(time.Hour)
	cat := "OFFICE_COSTS"
	score := decimal.RequireFromString("0.95")

	updated := p.WithCategorization(&cat, &score, at)

	assert.Nil(t, p.SuggestedCategory, "original must not change")
	require.NotNil(t, updated.SuggestedCategory)
	assert.Equal(t, "OFFICE_COSTS", *updated.SuggestedCategory)
	assert.True(t, updated.ConfidenceScore.Equal(score))
	assert.Equal(t, ReviewPending, updated.ReviewStatus)
	assert.Equal(t, at, updated.UpdatedAt)
}

func TestPersistedTransaction_ConfirmAsExpense(t *testing.T) {
	p := pendingFixture(t)
	at := p.UpdatedAt.Add(time.Minute)

	confirmed, err := p.ConfirmAsExpense("exp-9", at)
	require.NoError(t, err)
	assert.Equal(t, ReviewCategorized, confirmed.ReviewStatus)
	require.NotNil(t, confirmed.LinkedExpenseID)
	assert.Equal(t, "exp-9", *confirmed.LinkedExpenseID)
	assert.Nil(t, confirmed.LinkedIncomeID)

	_, err = confirmed.ConfirmAsIncome("inc-1", at)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	_, err = confirmed.WithExclusion(ExclusionTransfer, at)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestPersistedTransaction_ConfirmAsIncome(t *testing.T) {
	p := pendingFixture(t)
	confirmed, err := p.ConfirmAsIncome("inc-1", p.UpdatedAt)
	require.NoError(t, err)
	assert.Equal(t, ReviewCategorized, confirmed.ReviewStatus)
	require.NotNil(t, confirmed.LinkedIncomeID)
	assert.Nil(t, confirmed.LinkedExpenseID)
}

func TestPersistedTransaction_WithExclusion(t *testing.T) {
	p := pendingFixture(t)
	excluded, err := p.WithExclusion(ExclusionTaxPayment, p.UpdatedAt)
	require.NoError(t, err)
	assert.Equal(t, ReviewExcluded, excluded.ReviewStatus)
	require.NotNil(t, excluded.ExclusionReason)
	assert.Equal(t, "TAX_PAYMENT", *excluded.ExclusionReason)

	_, err = excluded.ConfirmAsExpense("exp-1", p.UpdatedAt)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestPersistedTransaction_WithBusinessFlag(t *testing.T) {
	p := pendingFixture(t)
	excluded, err := p.WithExclusion(ExclusionLoan, p.UpdatedAt)
	require.NoError(t, err)

	flagged := excluded.WithBusinessFlag(BusinessYes, p.UpdatedAt.Add(time.Second))
	assert.Equal(t, BusinessYes, flagged.IsBusiness)
	assert.Equal(t, ReviewExcluded, flagged.ReviewStatus)
}

func TestParseBusinessFlag(t *testing.T) {
	for in, want := range map[string]BusinessFlag{
		"true": BusinessYes, "YES": BusinessYes, "false": BusinessNo, "no": BusinessNo, "": BusinessUnknown,
	} {
		got, err := ParseBusinessFlag(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseBusinessFlag("maybe")
	assert.Error(t, err)
}
