package models

import (
	"errors"
	"testing"
	"time"

	"fjacquet/bank-import/internal/parsererror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestNewNormalizedTransaction_Validation(t *testing.T) {
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		date        time.Time
		amount      *decimal.Decimal
		description string
		wantField   string
	}{
		{name: "zero date", amount: dec("1.00"), description: "X", wantField: "date"},
		{name: "nil amount", date: date, description: "X", wantField: "amount"},
		{name: "blank description", date: date, amount: dec("1.00"), description: "   ", wantField: "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNormalizedTransaction(tt.date, tt.amount, tt.description, nil, "")
			require.Error(t, err)
			var verr *parsererror.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestNewNormalizedTransaction_Fields(t *testing.T) {
	local := time.Date(2025, 6, 15, 23, 30, 0, 0, time.FixedZone("BST", 3600))
	tx, err := NewNormalizedTransaction(local, dec("-42.50"), "  TESCO STORES  ", dec("1200.00"), " REF1 ")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), tx.Date())
	assert.True(t, tx.Amount().Equal(decimal.RequireFromString("-42.50")))
	assert.Equal(t, "TESCO STORES", tx.Description())
	assert.Equal(t, "REF1", tx.Reference())

	bal, ok := tx.Balance()
	assert.True(t, ok)
	assert.True(t, bal.Equal(decimal.RequireFromString("1200")))

	assert.True(t, tx.IsExpense())
	assert.False(t, tx.IsIncome())
}

func TestNormalizedTransaction_Direction(t *testing.T) {
	date := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, MustNormalizedTransaction(date, decimal.RequireFromString("0.01"), "IN").IsIncome())
	assert.True(t, MustNormalizedTransaction(date, decimal.Zero, "ZERO").IsExpense())
	assert.False(t, MustNormalizedTransaction(date, decimal.Zero, "ZERO").IsIncome())
}

func TestNormalizedTransaction_Hash(t *testing.T) {
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	base, err := NewNormalizedTransaction(date, dec("-10.5"), "Tesco  Stores", nil, "")
	require.NoError(t, err)

	t.Run("ignores balance reference and whitespace", func(t *testing.T) {
		other, err := NewNormalizedTransaction(date, dec("-10.50"), " TESCO STORES ", dec("99"), "abc")
		require.NoError(t, err)
		assert.Equal(t, base.Hash(), other.Hash())
	})

	t.Run("differs on amount", func(t *testing.T) {
		other, err := NewNormalizedTransaction(date, dec("-10.51"), "Tesco Stores", nil, "")
		require.NoError(t, err)
		assert.NotEqual(t, base.Hash(), other.Hash())
	})

	t.Run("differs on date", func(t *testing.T) {
		other, err := NewNormalizedTransaction(date.AddDate(0, 0, 1), dec("-10.5"), "Tesco Stores", nil, "")
		require.NoError(t, err)
		assert.NotEqual(t, base.Hash(), other.Hash())
	})

	assert.Len(t, base.Hash(), 64)
}

func TestNormalizeDescription(t *testing.T) {
	assert.Equal(t, "CARD PAYMENT TO TESCO", NormalizeDescription("  card payment\tto   Tesco "))
	assert.Equal(t, "", NormalizeDescription("   "))
}
