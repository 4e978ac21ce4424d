package categorizer

import (
	"fjacquet/bank-import/internal/models"

	"github.com/shopspring/decimal"
)

// ClassificationService combines the income/expense split with the
// description categorizer.
type ClassificationService struct {
	categorizer *DescriptionCategorizer
}

// NewClassificationService wraps a categorizer.
func NewClassificationService(categorizer *DescriptionCategorizer) *ClassificationService {
	return &ClassificationService{categorizer: categorizer}
}

// Classify classifies a parsed statement row.
func (s *ClassificationService) Classify(tx models.NormalizedTransaction) models.ClassificationResult {
	return s.ClassifyParts(tx.Amount(), tx.Description())
}

// ClassifyParts classifies from a signed amount and a description.
func (s *ClassificationService) ClassifyParts(amount decimal.Decimal, description string) models.ClassificationResult {
	if amount.IsPositive() {
		r := s.categorizer.CategorizeIncome(description)
		return models.ClassificationResult{
			Direction:      models.DirectionIncome,
			IncomeCategory: r.IncomeCategory,
			Confidence:     r.Confidence,
			Level:          r.Level,
		}
	}

	r := s.categorizer.Categorize(description)
	return models.ClassificationResult{
		Direction:       models.DirectionExpense,
		ExpenseCategory: r.ExpenseCategory,
		Confidence:      r.Confidence,
		Level:           r.Level,
	}
}
