package importer

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"
	"fjacquet/bank-import/internal/parsererror"
	"fjacquet/bank-import/internal/store"
)

// ErrWrongDirection is returned when confirming money in as an expense or
// money out as income.
var ErrWrongDirection = errors.New("transaction direction does not match")

// Confirmation is the outcome of confirming a bank transaction.
type Confirmation struct {
	Transaction models.PersistedTransaction
	Record      models.HistoricalRecord
	// SA103Box is zero when the category has no box.
	SA103Box int
}

// Readiness summarizes how far an owner's transactions are from being
// ready for a tax return.
type Readiness struct {
	Total    int
	Unknown  int
	Business int
	Personal int
	Pending  int
	// Ready is true when nothing is pending review and every row that is
	// not excluded has a business/personal decision.
	Ready bool
}

// Preview is a dry run of an import.
type Preview struct {
	BankName   string
	Unique     []models.NormalizedTransaction
	Duplicates []models.NormalizedTransaction
	Errors     []parsererror.RowError
}

// CategorizePending applies recommendations to PENDING rows that have not
// been scored yet and returns how many rows changed.
func (s *Service) CategorizePending(ctx context.Context, ownerID string) (int, error) {
	updated := 0
	err := s.store.WithinTx(ctx, func(repo store.Repository) error {
		txs, err := repo.FindByOwnerID(ctx, ownerID)
		if err != nil {
			return err
		}
		for _, tx := range txs {
			if tx.ReviewStatus != models.ReviewPending || tx.ConfidenceScore != nil {
				continue
			}
			next, rec, err := s.engine.Apply(tx)
			if err != nil {
				return err
			}
			if err := repo.Update(ctx, next); err != nil {
				return err
			}
			s.logger.Debug("Categorized transaction",
				logging.F(logging.FieldTransactionID, tx.ID),
				logging.F(logging.FieldStatus, next.ReviewStatus),
				logging.F(logging.FieldConfidence, rec.Confidence.String()))
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("categorization failed: %w", err)
	}

	s.logger.Info("Categorized pending transactions",
		logging.F(logging.FieldOwner, ownerID), logging.F(logging.FieldCount, updated))
	return updated, nil
}

// ConfirmAsExpense books the transaction as an expense and marks it
// CATEGORIZED. An empty category falls back to the suggestion, then to
// OTHER_EXPENSES.
func (s *Service) ConfirmAsExpense(ctx context.Context, ownerID, txID string, category models.ExpenseCategory) (Confirmation, error) {
	var out Confirmation
	err := s.store.WithinTx(ctx, func(repo store.Repository) error {
		tx, err := repo.FindByID(ctx, ownerID, txID)
		if err != nil {
			return err
		}
		if tx.IsIncome() {
			return fmt.Errorf("%w: %s is money in", ErrWrongDirection, txID)
		}

		if category == "" {
			category = models.ExpenseOther
			if tx.SuggestedCategory != nil && slices.Contains(models.ExpenseCategories(), models.ExpenseCategory(*tx.SuggestedCategory)) {
				category = models.ExpenseCategory(*tx.SuggestedCategory)
			}
		}
		box, ok := s.engine.Boxes().ExpenseBox(category)
		if !ok {
			return fmt.Errorf("unknown expense category %q", category)
		}

		rec := s.bookRecord(models.RecordExpense, tx, string(category))
		confirmed, err := tx.ConfirmAsExpense(rec.ID, s.now())
		if err != nil {
			return err
		}
		if err := repo.SaveExpense(ctx, ownerID, rec); err != nil {
			return err
		}
		if err := repo.Update(ctx, confirmed); err != nil {
			return err
		}
		out = Confirmation{Transaction: confirmed, Record: rec, SA103Box: box}
		return nil
	})
	if err != nil {
		return Confirmation{}, fmt.Errorf("confirm %s as expense: %w", txID, err)
	}

	s.logger.Info("Confirmed expense",
		logging.F(logging.FieldTransactionID, txID),
		logging.F(logging.FieldCategory, out.Record.Category))
	return out, nil
}

// ConfirmAsIncome books the transaction as income and marks it
// CATEGORIZED. An empty category defaults to SALES.
func (s *Service) ConfirmAsIncome(ctx context.Context, ownerID, txID string, category models.IncomeCategory) (Confirmation, error) {
	if category == "" {
		category = models.IncomeSales
	}
	box, ok := s.engine.Boxes().IncomeBox(category)
	if !ok {
		return Confirmation{}, fmt.Errorf("unknown income category %q", category)
	}

	var out Confirmation
	err := s.store.WithinTx(ctx, func(repo store.Repository) error {
		tx, err := repo.FindByID(ctx, ownerID, txID)
		if err != nil {
			return err
		}
		if !tx.IsIncome() {
			return fmt.Errorf("%w: %s is money out", ErrWrongDirection, txID)
		}

		rec := s.bookRecord(models.RecordIncome, tx, string(category))
		confirmed, err := tx.ConfirmAsIncome(rec.ID, s.now())
		if err != nil {
			return err
		}
		if err := repo.SaveIncome(ctx, ownerID, rec); err != nil {
			return err
		}
		if err := repo.Update(ctx, confirmed); err != nil {
			return err
		}
		out = Confirmation{Transaction: confirmed, Record: rec, SA103Box: box}
		return nil
	})
	if err != nil {
		return Confirmation{}, fmt.Errorf("confirm %s as income: %w", txID, err)
	}

	s.logger.Info("Confirmed income",
		logging.F(logging.FieldTransactionID, txID),
		logging.F(logging.FieldCategory, out.Record.Category))
	return out, nil
}

func (s *Service) bookRecord(kind models.RecordKind, tx models.PersistedTransaction, category string) models.HistoricalRecord {
	return models.HistoricalRecord{
		ID:                s.newID(),
		Kind:              kind,
		Date:              tx.Date,
		Amount:            tx.Amount.Abs(),
		Description:       tx.Description,
		Category:          category,
		BankTransactionID: tx.ID,
	}
}

// SetBusinessFlag changes the business/personal flag. Review status is untouched.
func (s *Service) SetBusinessFlag(ctx context.Context, ownerID, txID string, flag models.BusinessFlag) (models.PersistedTransaction, error) {
	tx, err := s.store.FindByID(ctx, ownerID, txID)
	if err != nil {
		return models.PersistedTransaction{}, err
	}
	tx = tx.WithBusinessFlag(flag, s.now())
	if err := s.store.Update(ctx, tx); err != nil {
		return models.PersistedTransaction{}, err
	}
	return tx, nil
}

// BusinessReadiness counts flags and review states across the owner's
// transactions. Excluded rows do not need a business decision.
func (s *Service) BusinessReadiness(ctx context.Context, ownerID string) (Readiness, error) {
	txs, err := s.store.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return Readiness{}, err
	}

	var r Readiness
	for _, tx := range txs {
		r.Total++
		if tx.ReviewStatus == models.ReviewPending {
			r.Pending++
		}
		switch tx.IsBusiness {
		case models.BusinessYes:
			r.Business++
		case models.BusinessNo:
			r.Personal++
		default:
			if tx.ReviewStatus != models.ReviewExcluded {
				r.Unknown++
			}
		}
	}
	r.Ready = r.Pending == 0 && r.Unknown == 0
	return r, nil
}

// PreviewDuplicates parses a statement and reports which rows an import
// would skip. Nothing is written.
func (s *Service) PreviewDuplicates(ctx context.Context, ownerID, path, encoding string) (*Preview, error) {
	src, err := s.readSource(path, encoding)
	if err != nil {
		return nil, err
	}
	p, err := s.detect(src)
	if err != nil {
		return nil, err
	}
	parsed, err := s.parse(p, src)
	if err != nil {
		return nil, err
	}

	unique, duplicates, err := s.partition(ctx, s.store, ownerID, parsed.Transactions)
	if err != nil {
		return nil, err
	}
	return &Preview{BankName: p.BankName(), Unique: unique, Duplicates: duplicates, Errors: parsed.Errors}, nil
}
