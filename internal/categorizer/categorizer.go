// Package categorizer turns a transaction description into a tax
// recommendation: exclusion rules first, then keyword categorization,
// then the SA103 box for the chosen expense category.
package categorizer

import (
	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"
)

// DescriptionCategorizer suggests expense and income categories from keyword tables.
type DescriptionCategorizer struct {
	expense KeywordTable[models.ExpenseCategory]
	income  KeywordTable[models.IncomeCategory]
	logger  logging.Logger
}

// NewDescriptionCategorizer builds a categorizer over the given tables.
func NewDescriptionCategorizer(expense KeywordTable[models.ExpenseCategory], income KeywordTable[models.IncomeCategory], logger logging.Logger) *DescriptionCategorizer {
	return &DescriptionCategorizer{
		expense: expense,
		income:  income,
		logger:  logging.OrDefault(logger),
	}
}

// NewDefaultDescriptionCategorizer uses the built-in tables.
func NewDefaultDescriptionCategorizer(logger logging.Logger) *DescriptionCategorizer {
	return NewDescriptionCategorizer(
		NewKeywordTable(DefaultExpenseRules()...),
		NewKeywordTable(DefaultIncomeRules()...),
		logger,
	)
}

// Categorize suggests an expense category. Unmatched descriptions fall
// back to OTHER_EXPENSES with a low score so they get reviewed.
func (c *DescriptionCategorizer) Categorize(description string) models.CategoryResult {
	rule, ok := c.expense.Match(description)
	if !ok {
		return models.CategoryResult{
			ExpenseCategory: models.ExpenseOther,
			Confidence:      models.ScoreUnmatchedExpense,
			Level:           models.LevelForScore(models.ScoreUnmatchedExpense),
		}
	}

	c.logger.WithFields(
		logging.F(logging.FieldCategory, rule.Outcome),
		logging.F("keyword", rule.Keyword),
	).Debug("Expense categorized by keyword")

	return models.CategoryResult{
		ExpenseCategory: rule.Outcome,
		Confidence:      models.ScoreKeywordExpense,
		Level:           models.LevelForScore(models.ScoreKeywordExpense),
		MatchedKeyword:  rule.Keyword,
	}
}

// CategorizeIncome suggests an income category. Anything not matching the
// income table is treated as sales with medium confidence.
func (c *DescriptionCategorizer) CategorizeIncome(description string) models.CategoryResult {
	rule, ok := c.income.Match(description)
	if !ok {
		return models.CategoryResult{
			IncomeCategory: models.IncomeSales,
			Confidence:     models.ScoreGenericIncome,
			Level:          models.LevelForScore(models.ScoreGenericIncome),
		}
	}
	return models.CategoryResult{
		IncomeCategory: rule.Outcome,
		Confidence:     models.ScoreKeywordIncome,
		Level:          models.LevelForScore(models.ScoreKeywordIncome),
		MatchedKeyword: rule.Keyword,
	}
}
