package models

import (
	"testing"
	"time"

	"fjacquet/bank-import/internal/parsererror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLevelForScore(t *testing.T) {
	tests := []struct {
		score string
		want  ConfidenceLevel
	}{
		{"0.95", ConfidenceHigh},
		{"0.91", ConfidenceHigh},
		{"0.90", ConfidenceMedium},
		{"0.75", ConfidenceMedium},
		{"0.60", ConfidenceMedium},
		{"0.59", ConfidenceLow},
		{"0.30", ConfidenceLow},
	}
	for _, tt := range tests {
		t.Run(tt.score, func(t *testing.T) {
			assert.Equal(t, tt.want, LevelForScore(decimal.RequireFromString(tt.score)))
		})
	}
}

func TestHistoricalRecord_Hash(t *testing.T) {
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	expense := HistoricalRecord{Kind: RecordExpense, Date: date, Amount: decimal.RequireFromString("25.00"), Description: "adobe"}
	stmt := MustNormalizedTransaction(date, decimal.RequireFromString("-25"), "ADOBE")
	assert.Equal(t, stmt.Hash(), expense.Hash())

	income := HistoricalRecord{Kind: RecordIncome, Date: date, Amount: decimal.RequireFromString("100"), Description: "Client"}
	assert.Equal(t, MustNormalizedTransaction(date, decimal.RequireFromString("100.00"), "CLIENT").Hash(), income.Hash())
}

func TestImportAudit_Accounted(t *testing.T) {
	a := ImportAudit{TotalRecords: 3, ImportedCount: 1, SkippedCount: 1}
	assert.False(t, a.Accounted())
	a.Errors = append(a.Errors, rowErr())
	assert.True(t, a.Accounted())
	assert.Equal(t, 1, a.ErrorCount())

	a.TotalRecords = 5
	a.IgnoredCount = 2
	assert.True(t, a.Accounted())
}

func rowErr() parsererror.RowError {
	return parsererror.RowError{Line: 3, RawLine: "x", Message: "bad"}
}
