package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"
	"fjacquet/bank-import/internal/parsererror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	created = time.Date(2025, 7, 1, 8, 30, 0, 0, time.UTC)
	errBoom = errors.New("boom")
)

func day(d int) time.Time {
	return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
}

func pending(t *testing.T, id, owner string, date time.Time, amount, desc string) models.PersistedTransaction {
	t.Helper()
	tx := models.MustNormalizedTransaction(date, decimal.RequireFromString(amount), desc)
	return models.NewPendingTransaction(id, owner, "audit-1", "Monzo", tx, created)
}

// stores returns one fresh instance of every Store implementation.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "bank.db"), logging.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStore_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			tx := pending(t, "tx-1", "owner-1", day(15), "-12.50", "TRAINLINE")
			tx.BankReference = "REF-9"
			require.NoError(t, s.Save(ctx, tx))

			got, err := s.FindByID(ctx, "owner-1", "tx-1")
			require.NoError(t, err)
			assert.Equal(t, "TRAINLINE", got.Description)
			assert.True(t, got.Amount.Equal(decimal.RequireFromString("-12.50")))
			assert.True(t, got.Date.Equal(day(15)))
			assert.Equal(t, "REF-9", got.BankReference)
			assert.Equal(t, "csv-monzo", got.SourceFormatID)
			assert.Equal(t, models.ReviewPending, got.ReviewStatus)
			assert.Equal(t, models.BusinessUnknown, got.IsBusiness)
			assert.Nil(t, got.SuggestedCategory)
			assert.Nil(t, got.ConfidenceScore)
			assert.Equal(t, tx.TransactionHash, got.TransactionHash)

			found, err := s.ExistsByHash(ctx, "owner-1", tx.TransactionHash)
			require.NoError(t, err)
			assert.True(t, found)

			found, err = s.ExistsByHash(ctx, "owner-2", tx.TransactionHash)
			require.NoError(t, err)
			assert.False(t, found, "hashes are scoped per owner")

			_, err = s.FindByID(ctx, "owner-2", "tx-1")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_SaveRejectsDuplicateHash(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Save(ctx, pending(t, "tx-1", "owner-1", day(1), "-5", "COFFEE")))
			assert.ErrorIs(t, s.Save(ctx, pending(t, "tx-2", "owner-1", day(1), "-5.00", "coffee")), ErrDuplicate)
			assert.ErrorIs(t, s.Save(ctx, pending(t, "tx-1", "owner-1", day(2), "-7", "TEA")), ErrDuplicate)
			assert.NoError(t, s.Save(ctx, pending(t, "tx-3", "owner-2", day(1), "-5", "COFFEE")))
		})
	}
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			tx := pending(t, "tx-1", "owner-1", day(3), "-40", "HMRC SELF ASSESSMENT")
			require.NoError(t, s.Save(ctx, tx))

			score := decimal.RequireFromString("0.95")
			later := created.Add(time.Hour)
			updated := tx.WithCategorization(nil, &score, later)
			updated, err := updated.WithExclusion(models.ExclusionTaxPayment, later)
			require.NoError(t, err)
			updated = updated.WithBusinessFlag(models.BusinessYes, later)
			require.NoError(t, s.Update(ctx, updated))

			got, err := s.FindByID(ctx, "owner-1", "tx-1")
			require.NoError(t, err)
			assert.Equal(t, models.ReviewExcluded, got.ReviewStatus)
			require.NotNil(t, got.ExclusionReason)
			assert.Equal(t, "TAX_PAYMENT", *got.ExclusionReason)
			require.NotNil(t, got.ConfidenceScore)
			assert.True(t, got.ConfidenceScore.Equal(score))
			assert.Equal(t, models.BusinessYes, got.IsBusiness)
			assert.True(t, got.UpdatedAt.Equal(later))

			missing := pending(t, "nope", "owner-1", day(3), "-1", "X")
			assert.ErrorIs(t, s.Update(ctx, missing), ErrNotFound)
		})
	}
}

func TestStore_FindByOwnerAndDateRange(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Save(ctx, pending(t, "b", "owner-1", day(20), "-1", "B")))
			require.NoError(t, s.Save(ctx, pending(t, "a", "owner-1", day(5), "-1", "A")))
			require.NoError(t, s.Save(ctx, pending(t, "c", "owner-1", day(25), "-1", "C")))
			require.NoError(t, s.Save(ctx, pending(t, "x", "owner-2", day(10), "-1", "X")))

			all, err := s.FindByOwnerID(ctx, "owner-1")
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})

			ranged, err := s.FindByDateRange(ctx, "owner-1", day(5), day(20))
			require.NoError(t, err)
			require.Len(t, ranged, 2, "range is inclusive")
			assert.Equal(t, "a", ranged[0].ID)
			assert.Equal(t, "b", ranged[1].ID)
		})
	}
}

func TestStore_Audits(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			audit := models.ImportAudit{
				ID:               "audit-1",
				OwnerID:          "owner-1",
				ImportedAt:       created,
				SourceIdentifier: "statement.csv",
				SourceHash:       "abc",
				ImportType:       models.ImportTypeBankCSV,
				SourceFormatID:   "csv-monzo",
				TotalRecords:     4,
				ImportedCount:    1,
				SkippedCount:     1,
				IgnoredCount:     1,
				Errors:           []parsererror.RowError{{Line: 4, RawLine: "bad,row", Message: "invalid date"}},
			}
			require.NoError(t, s.SaveAudit(ctx, audit))

			audits, err := s.FindAudits(ctx, "owner-1")
			require.NoError(t, err)
			require.Len(t, audits, 1)
			got := audits[0]
			assert.Equal(t, "statement.csv", got.SourceIdentifier)
			assert.Equal(t, models.ImportTypeBankCSV, got.ImportType)
			assert.True(t, got.ImportedAt.Equal(created))
			assert.Equal(t, audit.Errors, got.Errors)
			assert.Equal(t, 1, got.IgnoredCount)
			assert.True(t, got.Accounted())

			none, err := s.FindAudits(ctx, "owner-2")
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestStore_HistoricalRecords(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.SaveExpense(ctx, "owner-1", models.HistoricalRecord{
				ID: "e1", Date: day(2), Amount: decimal.RequireFromString("-30.00"),
				Description: "ADOBE", Category: "OFFICE_COSTS", BankTransactionID: "tx-1",
			}))
			require.NoError(t, s.SaveIncome(ctx, "owner-1", models.HistoricalRecord{
				ID: "i1", Date: day(28), Amount: decimal.RequireFromString("1000"), Description: "CLIENT LTD",
			}))

			expenses, err := s.FindExpensesByDateRange(ctx, "owner-1", day(1), day(30))
			require.NoError(t, err)
			require.Len(t, expenses, 1)
			assert.Equal(t, models.RecordExpense, expenses[0].Kind)
			assert.True(t, expenses[0].Amount.Equal(decimal.NewFromInt(30)), "stored unsigned")
			assert.Equal(t, "tx-1", expenses[0].BankTransactionID)

			incomes, err := s.FindIncomeByDateRange(ctx, "owner-1", day(1), day(27))
			require.NoError(t, err)
			assert.Empty(t, incomes)

			incomes, err = s.FindIncomeByDateRange(ctx, "owner-1", day(28), day(28))
			require.NoError(t, err)
			require.Len(t, incomes, 1)
			assert.Equal(t, models.RecordIncome, incomes[0].Kind)
		})
	}
}

func TestStore_WithinTx(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name+"/commit", func(t *testing.T) {
			err := s.WithinTx(ctx, func(r Repository) error {
				if err := r.Save(ctx, pending(t, "c1", "owner-c", day(1), "-1", "ONE")); err != nil {
					return err
				}
				return r.SaveAudit(ctx, models.ImportAudit{ID: "ac", OwnerID: "owner-c", ImportedAt: created})
			})
			require.NoError(t, err)

			txs, err := s.FindByOwnerID(ctx, "owner-c")
			require.NoError(t, err)
			assert.Len(t, txs, 1)
			audits, err := s.FindAudits(ctx, "owner-c")
			require.NoError(t, err)
			assert.Len(t, audits, 1)
		})

		t.Run(name+"/rollback", func(t *testing.T) {
			err := s.WithinTx(ctx, func(r Repository) error {
				if err := r.Save(ctx, pending(t, "r1", "owner-r", day(1), "-1", "ONE")); err != nil {
					return err
				}
				found, err := r.ExistsByHash(ctx, "owner-r", pending(t, "", "", day(1), "-1", "ONE").TransactionHash)
				require.NoError(t, err)
				assert.True(t, found, "writes are visible inside the transaction")
				return errBoom
			})
			assert.ErrorIs(t, err, errBoom)

			txs, err := s.FindByOwnerID(ctx, "owner-r")
			require.NoError(t, err)
			assert.Empty(t, txs)
		})
	}
}

func TestMemoryStore_InjectedErrors(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.SaveAuditErr = errBoom

	err := s.WithinTx(ctx, func(r Repository) error {
		if err := r.Save(ctx, pending(t, "tx-1", "owner-1", day(1), "-1", "ONE")); err != nil {
			return err
		}
		return r.SaveAudit(ctx, models.ImportAudit{ID: "a", OwnerID: "owner-1"})
	})
	assert.ErrorIs(t, err, errBoom)

	txs, err := s.FindByOwnerID(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, txs, "failed audit rolls back the saves")
}

func TestOpenSQLite_InMemory(t *testing.T) {
	s, err := OpenSQLite(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(context.Background(), pending(t, "tx-1", "o", day(1), "1", "X")))
	err = s.Save(context.Background(), pending(t, "tx-2", "o", day(1), "1", "X"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.True(t, IsConstraintViolation(err))
	assert.False(t, IsConstraintViolation(errBoom))
}

func TestOpenSQLite_AddsIgnoredCountToOldAuditTable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "old.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE import_audits (
		id TEXT PRIMARY KEY, owner_id TEXT NOT NULL, imported_at TEXT NOT NULL,
		source_identifier TEXT NOT NULL, source_hash TEXT NOT NULL, import_type TEXT NOT NULL,
		source_format_id TEXT NOT NULL, total_records INTEGER NOT NULL, imported_count INTEGER NOT NULL,
		skipped_count INTEGER NOT NULL, error_count INTEGER NOT NULL, errors TEXT NOT NULL DEFAULT '[]')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := OpenSQLite(ctx, path, nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveAudit(ctx, models.ImportAudit{
		ID: "audit-1", OwnerID: "o", ImportedAt: created, SourceIdentifier: "revolut.csv",
		ImportType: models.ImportTypeBankCSV, SourceFormatID: "csv-revolut",
		TotalRecords: 3, ImportedCount: 1, IgnoredCount: 2,
	}))
	audits, err := s.FindAudits(ctx, "o")
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, 2, audits[0].IgnoredCount)
	assert.True(t, audits[0].Accounted())

	// Reopening finds the column and leaves it alone.
	require.NoError(t, s.Close())
	again, err := OpenSQLite(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}
