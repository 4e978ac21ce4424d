package categorizer

import (
	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"
)

// ExclusionRules decides whether a transaction sits outside income and
// expense accounting: transfers, tax payments, loans and the like.
type ExclusionRules struct {
	table  KeywordTable[models.ExclusionReason]
	logger logging.Logger
}

// NewExclusionRules builds the engine over table.
func NewExclusionRules(table KeywordTable[models.ExclusionReason], logger logging.Logger) *ExclusionRules {
	return &ExclusionRules{table: table, logger: logging.OrDefault(logger)}
}

// NewDefaultExclusionRules uses the built-in table.
func NewDefaultExclusionRules(logger logging.Logger) *ExclusionRules {
	return NewExclusionRules(NewKeywordTable(DefaultExclusionRules()...), logger)
}

func (e *ExclusionRules) Evaluate(description string) models.ExclusionResult {
	rule, ok := e.table.Match(description)
	if !ok {
		return models.ExclusionResult{
			Confidence: models.ScoreNoExclusion,
			Level:      models.LevelForScore(models.ScoreNoExclusion),
		}
	}

	e.logger.WithFields(
		logging.F(logging.FieldReason, rule.Outcome),
		logging.F("keyword", rule.Keyword),
	).Debug("Transaction matches exclusion rule")

	return models.ExclusionResult{
		ShouldExclude:  true,
		Reason:         rule.Outcome,
		Confidence:     models.ScoreExclusionMatch,
		Level:          models.LevelForScore(models.ScoreExclusionMatch),
		MatchedKeyword: rule.Keyword,
	}
}
