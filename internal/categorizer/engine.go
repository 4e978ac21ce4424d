package categorizer

import (
	"fmt"
	"time"

	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"

	"github.com/shopspring/decimal"
)

// RuleStore supplies keyword-table overrides. A nil slice from any loader
// keeps the built-in table for that concern.
type RuleStore interface {
	LoadExpenseRules() ([]KeywordRule[models.ExpenseCategory], error)
	LoadIncomeRules() ([]KeywordRule[models.IncomeCategory], error)
	LoadExclusionRules() ([]KeywordRule[models.ExclusionReason], error)
}

// Engine produces recommendations: exclusion first, then classification
// and the SA103 box.
type Engine struct {
	exclusions *ExclusionRules
	classifier *ClassificationService
	boxes      BoxMapping
	now        func() time.Time
	logger     logging.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used when applying recommendations.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithBoxMapping replaces the SA103 box mapping.
func WithBoxMapping(m BoxMapping) Option {
	return func(e *Engine) { e.boxes = m }
}

// WithExclusionRules replaces the exclusion rules.
func WithExclusionRules(rules *ExclusionRules) Option {
	return func(e *Engine) { e.exclusions = rules }
}

// WithCategorizer replaces the description categorizer.
func WithCategorizer(c *DescriptionCategorizer) Option {
	return func(e *Engine) { e.classifier = NewClassificationService(c) }
}

// NewEngine creates an engine over the built-in tables.
func NewEngine(logger logging.Logger, opts ...Option) *Engine {
	logger = logging.OrDefault(logger)
	e := &Engine{
		exclusions: NewDefaultExclusionRules(logger),
		classifier: NewClassificationService(NewDefaultDescriptionCategorizer(logger)),
		boxes:      NewBoxMapping(DefaultTravelMileageBox),
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewEngineFromStore creates an engine whose tables come from store,
// falling back to the built-in table for anything the store does not define.
func NewEngineFromStore(store RuleStore, logger logging.Logger, opts ...Option) (*Engine, error) {
	logger = logging.OrDefault(logger)

	expense, err := store.LoadExpenseRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load expense rules: %w", err)
	}
	income, err := store.LoadIncomeRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load income rules: %w", err)
	}
	exclusions, err := store.LoadExclusionRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load exclusion rules: %w", err)
	}

	if expense == nil {
		expense = DefaultExpenseRules()
	}
	if income == nil {
		income = DefaultIncomeRules()
	}
	if exclusions == nil {
		exclusions = DefaultExclusionRules()
	}

	logger.Debug("Loaded keyword tables",
		logging.F("expense_rules", len(expense)),
		logging.F("income_rules", len(income)),
		logging.F("exclusion_rules", len(exclusions)))

	base := []Option{
		WithExclusionRules(NewExclusionRules(NewKeywordTable(exclusions...), logger)),
		WithCategorizer(NewDescriptionCategorizer(NewKeywordTable(expense...), NewKeywordTable(income...), logger)),
	}
	return NewEngine(logger, append(base, opts...)...), nil
}

// Recommend evaluates a parsed statement row.
func (e *Engine) Recommend(tx models.NormalizedTransaction) models.Recommendation {
	return e.RecommendParts(tx.Amount(), tx.Description())
}

// RecommendParts evaluates a signed amount and description.
func (e *Engine) RecommendParts(amount decimal.Decimal, description string) models.Recommendation {
	direction := models.DirectionExpense
	if amount.IsPositive() {
		direction = models.DirectionIncome
	}

	if ex := e.exclusions.Evaluate(description); ex.ShouldExclude {
		return models.Recommendation{
			Excluded:        true,
			ExclusionReason: ex.Reason,
			Direction:       direction,
			Confidence:      ex.Confidence,
			Level:           ex.Level,
			MatchedKeyword:  ex.MatchedKeyword,
		}
	}

	cls := e.classifier.ClassifyParts(amount, description)
	rec := models.Recommendation{
		Direction:       cls.Direction,
		ExpenseCategory: cls.ExpenseCategory,
		IncomeCategory:  cls.IncomeCategory,
		Confidence:      cls.Confidence,
		Level:           cls.Level,
	}
	// Income only gets a box once it is confirmed and booked.
	if cls.Direction == models.DirectionExpense {
		rec.SA103Box, _ = e.boxes.ExpenseBox(cls.ExpenseCategory)
	}
	return rec
}

// Boxes returns the engine's SA103F box mapping.
func (e *Engine) Boxes() BoxMapping {
	return e.boxes
}

// Apply stores the recommendation on a PENDING transaction. Excluded
// recommendations move it to EXCLUDED and leave suggestion and score as
// they were. Others only set the suggestion and score, leaving it PENDING
// for review; income rows get a score but no suggested category.
func (e *Engine) Apply(tx models.PersistedTransaction) (models.PersistedTransaction, models.Recommendation, error) {
	if tx.ReviewStatus != models.ReviewPending {
		return tx, models.Recommendation{}, fmt.Errorf("%w: transaction %s is %s", models.ErrInvalidTransition, tx.ID, tx.ReviewStatus)
	}

	rec := e.RecommendParts(tx.Amount, tx.Description)
	at := e.now()

	if rec.Excluded {
		updated, err := tx.WithExclusion(rec.ExclusionReason, at)
		if err != nil {
			return tx, rec, err
		}
		e.logger.Debug("Excluded transaction",
			logging.F(logging.FieldTransactionID, tx.ID),
			logging.F(logging.FieldReason, rec.ExclusionReason))
		return updated, rec, nil
	}

	score := rec.Confidence
	if rec.Direction == models.DirectionIncome {
		return tx.WithCategorization(nil, &score, at), rec, nil
	}
	category := SuggestedCategory(rec)
	return tx.WithCategorization(&category, &score, at), rec, nil
}

// SuggestedCategory is the category name stored for a recommendation.
func SuggestedCategory(rec models.Recommendation) string {
	if rec.Direction == models.DirectionIncome {
		return string(rec.IncomeCategory)
	}
	return string(rec.ExpenseCategory)
}
