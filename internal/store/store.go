// Package store persists bank transactions, import audits and booked
// income/expense records, and loads the YAML rule and mapping files.
package store

import (
	"context"
	"errors"
	"time"

	"fjacquet/bank-import/internal/models"
)

// ErrNotFound is returned when a record does not exist for the owner.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned by Save when the id, or the owner and
// transaction hash, is already stored.
var ErrDuplicate = errors.New("bank transaction already stored")

// Repository is the read/write surface available inside and outside a
// transaction.
type Repository interface {
	ExistsByHash(ctx context.Context, ownerID, hash string) (bool, error)
	Save(ctx context.Context, tx models.PersistedTransaction) error
	Update(ctx context.Context, tx models.PersistedTransaction) error
	FindByID(ctx context.Context, ownerID, id string) (models.PersistedTransaction, error)
	FindByOwnerID(ctx context.Context, ownerID string) ([]models.PersistedTransaction, error)
	FindByDateRange(ctx context.Context, ownerID string, from, to time.Time) ([]models.PersistedTransaction, error)

	SaveAudit(ctx context.Context, audit models.ImportAudit) error
	FindAudits(ctx context.Context, ownerID string) ([]models.ImportAudit, error)

	SaveIncome(ctx context.Context, ownerID string, rec models.HistoricalRecord) error
	SaveExpense(ctx context.Context, ownerID string, rec models.HistoricalRecord) error
	FindIncomeByDateRange(ctx context.Context, ownerID string, from, to time.Time) ([]models.HistoricalRecord, error)
	FindExpensesByDateRange(ctx context.Context, ownerID string, from, to time.Time) ([]models.HistoricalRecord, error)
}

// Store is a Repository that can run a unit of work atomically. Inside fn
// only the Repository passed in may be used.
type Store interface {
	Repository
	WithinTx(ctx context.Context, fn func(Repository) error) error
	Close() error
}
