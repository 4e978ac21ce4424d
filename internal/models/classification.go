package models

import "github.com/shopspring/decimal"

// ConfidenceLevel buckets a confidence score for review.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "HIGH"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceLow    ConfidenceLevel = "LOW"
)

// Fixed confidence scores.
var (
	ScoreKeywordExpense   = decimal.RequireFromString("0.95")
	ScoreUnmatchedExpense = decimal.RequireFromString("0.30")
	ScoreGenericIncome    = decimal.RequireFromString("0.75")
	ScoreKeywordIncome    = decimal.RequireFromString("0.95")
	ScoreExclusionMatch   = decimal.RequireFromString("0.95")
	ScoreNoExclusion      = decimal.RequireFromString("0.30")

	HighThreshold = decimal.RequireFromString("0.90")
	LowThreshold  = decimal.RequireFromString("0.60")
)

// LevelForScore maps a 0–1 score onto a ConfidenceLevel: above 0.90 is HIGH,
// below 0.60 is LOW and everything in between is MEDIUM.
func LevelForScore(score decimal.Decimal) ConfidenceLevel {
	switch {
	case score.GreaterThan(HighThreshold):
		return ConfidenceHigh
	case score.LessThan(LowThreshold):
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

// Direction is the income/expense split of a transaction.
type Direction string

const (
	DirectionIncome  Direction = "INCOME"
	DirectionExpense Direction = "EXPENSE"
)

// ExpenseCategory is an SA103 expense heading.
type ExpenseCategory string

const (
	ExpenseOfficeCosts      ExpenseCategory = "OFFICE_COSTS"
	ExpenseTravel           ExpenseCategory = "TRAVEL"
	ExpenseTravelMileage    ExpenseCategory = "TRAVEL_MILEAGE"
	ExpensePremises         ExpenseCategory = "PREMISES"
	ExpenseProfessionalFees ExpenseCategory = "PROFESSIONAL_FEES"
	ExpenseStaffCosts       ExpenseCategory = "STAFF_COSTS"
	ExpenseOther            ExpenseCategory = "OTHER_EXPENSES"
)

// IncomeCategory is an income heading.
type IncomeCategory string

const (
	IncomeSales IncomeCategory = "SALES"
	IncomeOther IncomeCategory = "OTHER_INCOME"
)

// ExclusionReason explains why a transaction sits outside income/expense accounting.
type ExclusionReason string

const (
	ExclusionTransfer       ExclusionReason = "TRANSFER"
	ExclusionTaxPayment     ExclusionReason = "TAX_PAYMENT"
	ExclusionLoan           ExclusionReason = "LOAN"
	ExclusionCreditCard     ExclusionReason = "CREDIT_CARD"
	ExclusionCashWithdrawal ExclusionReason = "CASH_WITHDRAWAL"
)

// ExpenseCategories lists every known expense category, in display order.
func ExpenseCategories() []ExpenseCategory {
	return []ExpenseCategory{
		ExpenseOfficeCosts, ExpenseTravel, ExpenseTravelMileage, ExpensePremises,
		ExpenseProfessionalFees, ExpenseStaffCosts, ExpenseOther,
	}
}

// ExclusionReasons lists every known exclusion reason.
func ExclusionReasons() []ExclusionReason {
	return []ExclusionReason{
		ExclusionTransfer, ExclusionTaxPayment, ExclusionLoan, ExclusionCreditCard, ExclusionCashWithdrawal,
	}
}

// ExclusionResult is the outcome of the exclusion rules.
type ExclusionResult struct {
	ShouldExclude  bool
	Reason         ExclusionReason
	Confidence     decimal.Decimal
	Level          ConfidenceLevel
	MatchedKeyword string
}

// CategoryResult is the outcome of the description categorizer.
type CategoryResult struct {
	ExpenseCategory ExpenseCategory
	IncomeCategory  IncomeCategory
	Confidence      decimal.Decimal
	Level           ConfidenceLevel
	MatchedKeyword  string
}

// ClassificationResult combines direction with the categorizer outcome.
type ClassificationResult struct {
	Direction       Direction
	ExpenseCategory ExpenseCategory
	IncomeCategory  IncomeCategory
	Confidence      decimal.Decimal
	Level           ConfidenceLevel
}

// Recommendation is what the categorization engine proposes for one transaction.
// Excluded recommendations carry no category and no box.
type Recommendation struct {
	Excluded        bool
	ExclusionReason ExclusionReason
	Direction       Direction
	ExpenseCategory ExpenseCategory
	IncomeCategory  IncomeCategory
	Confidence      decimal.Decimal
	Level           ConfidenceLevel
	SA103Box        int
	MatchedKeyword  string
}

// HasBox reports whether the recommendation maps onto an SA103 expense box.
func (r Recommendation) HasBox() bool {
	return r.SA103Box > 0
}
