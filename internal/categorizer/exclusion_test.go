package categorizer

import (
	"testing"

	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestExclusionRules_Evaluate(t *testing.T) {
	rules := NewDefaultExclusionRules(logging.NewMockLogger())

	tests := []struct {
		description string
		want        models.ExclusionReason
	}{
		{"HMRC SELF ASSESSMENT", models.ExclusionTaxPayment},
		{"TRANSFER OFFICE ACCOUNT", models.ExclusionTransfer},
		{"TFR TO J SMITH", models.ExclusionTransfer},
		{"standing order to savings", models.ExclusionTransfer},
		{"ZOPA LOAN REPAYMENT", models.ExclusionLoan},
		{"AMEX PAYMENT", models.ExclusionCreditCard},
		{"BARCLAYCARD", models.ExclusionCreditCard},
		{"CASH WITHDRAWAL HIGH ST", models.ExclusionCashWithdrawal},
		{"LINK ATM 1234", models.ExclusionCashWithdrawal},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			got := rules.Evaluate(tt.description)
			assert.True(t, got.ShouldExclude)
			assert.Equal(t, tt.want, got.Reason)
			assert.Equal(t, models.ConfidenceHigh, got.Level)
		})
	}
}

func TestExclusionRules_NoMatch(t *testing.T) {
	got := NewDefaultExclusionRules(nil).Evaluate("ADOBE SYSTEMS")
	assert.False(t, got.ShouldExclude)
	assert.Empty(t, got.Reason)
	assert.Equal(t, models.ConfidenceLow, got.Level)
}
