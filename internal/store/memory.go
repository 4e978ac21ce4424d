package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fjacquet/bank-import/internal/models"
)

// MemoryStore is an in-process Store for tests and dry runs. Setting one of
// the *Err fields makes the matching operation fail.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState

	SaveErr      error
	SaveAuditErr error
	UpdateErr    error
}

type memoryState struct {
	transactions map[string]models.PersistedTransaction
	order        []string
	audits       []models.ImportAudit
	incomes      map[string][]models.HistoricalRecord
	expenses     map[string][]models.HistoricalRecord
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemoryState()}
}

func newMemoryState() *memoryState {
	return &memoryState{
		transactions: make(map[string]models.PersistedTransaction),
		incomes:      make(map[string][]models.HistoricalRecord),
		expenses:     make(map[string][]models.HistoricalRecord),
	}
}

func (s *memoryState) clone() *memoryState {
	c := newMemoryState()
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	c.order = append([]string(nil), s.order...)
	c.audits = append([]models.ImportAudit(nil), s.audits...)
	for k, v := range s.incomes {
		c.incomes[k] = append([]models.HistoricalRecord(nil), v...)
	}
	for k, v := range s.expenses {
		c.expenses[k] = append([]models.HistoricalRecord(nil), v...)
	}
	return c
}

// WithinTx runs fn against a copy of the current state and swaps the copy in
// only when fn succeeds.
func (m *MemoryStore) WithinTx(ctx context.Context, fn func(Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	draft := &memoryRepo{store: m, state: m.state.clone()}
	if err := fn(draft); err != nil {
		return err
	}
	m.state = draft.state
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) locked(fn func(r *memoryRepo) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memoryRepo{store: m, state: m.state})
}

func (m *MemoryStore) ExistsByHash(ctx context.Context, ownerID, hash string) (found bool, err error) {
	err = m.locked(func(r *memoryRepo) error {
		found, err = r.ExistsByHash(ctx, ownerID, hash)
		return err
	})
	return found, err
}

func (m *MemoryStore) Save(ctx context.Context, tx models.PersistedTransaction) error {
	return m.locked(func(r *memoryRepo) error { return r.Save(ctx, tx) })
}

func (m *MemoryStore) Update(ctx context.Context, tx models.PersistedTransaction) error {
	return m.locked(func(r *memoryRepo) error { return r.Update(ctx, tx) })
}

func (m *MemoryStore) FindByID(ctx context.Context, ownerID, id string) (tx models.PersistedTransaction, err error) {
	err = m.locked(func(r *memoryRepo) error {
		tx, err = r.FindByID(ctx, ownerID, id)
		return err
	})
	return tx, err
}

func (m *MemoryStore) FindByOwnerID(ctx context.Context, ownerID string) (txs []models.PersistedTransaction, err error) {
	err = m.locked(func(r *memoryRepo) error {
		txs, err = r.FindByOwnerID(ctx, ownerID)
		return err
	})
	return txs, err
}

func (m *MemoryStore) FindByDateRange(ctx context.Context, ownerID string, from, to time.Time) (txs []models.PersistedTransaction, err error) {
	err = m.locked(func(r *memoryRepo) error {
		txs, err = r.FindByDateRange(ctx, ownerID, from, to)
		return err
	})
	return txs, err
}

func (m *MemoryStore) SaveAudit(ctx context.Context, audit models.ImportAudit) error {
	return m.locked(func(r *memoryRepo) error { return r.SaveAudit(ctx, audit) })
}

func (m *MemoryStore) FindAudits(ctx context.Context, ownerID string) (audits []models.ImportAudit, err error) {
	err = m.locked(func(r *memoryRepo) error {
		audits, err = r.FindAudits(ctx, ownerID)
		return err
	})
	return audits, err
}

func (m *MemoryStore) SaveIncome(ctx context.Context, ownerID string, rec models.HistoricalRecord) error {
	return m.locked(func(r *memoryRepo) error { return r.SaveIncome(ctx, ownerID, rec) })
}

func (m *MemoryStore) SaveExpense(ctx context.Context, ownerID string, rec models.HistoricalRecord) error {
	return m.locked(func(r *memoryRepo) error { return r.SaveExpense(ctx, ownerID, rec) })
}

func (m *MemoryStore) FindIncomeByDateRange(ctx context.Context, ownerID string, from, to time.Time) (recs []models.HistoricalRecord, err error) {
	err = m.locked(func(r *memoryRepo) error {
		recs, err = r.FindIncomeByDateRange(ctx, ownerID, from, to)
		return err
	})
	return recs, err
}

func (m *MemoryStore) FindExpensesByDateRange(ctx context.Context, ownerID string, from, to time.Time) (recs []models.HistoricalRecord, err error) {
	err = m.locked(func(r *memoryRepo) error {
		recs, err = r.FindExpensesByDateRange(ctx, ownerID, from, to)
		return err
	})
	return recs, err
}

// memoryRepo operates on one state snapshot; callers hold the store lock.
type memoryRepo struct {
	store *MemoryStore
	state *memoryState
}

func (r *memoryRepo) ExistsByHash(_ context.Context, ownerID, hash string) (bool, error) {
	for _, tx := range r.state.transactions {
		if tx.OwnerID == ownerID && tx.TransactionHash == hash {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) Save(ctx context.Context, tx models.PersistedTransaction) error {
	if r.store.SaveErr != nil {
		return r.store.SaveErr
	}
	if _, ok := r.state.transactions[tx.ID]; ok {
		return fmt.Errorf("%w: id %s", ErrDuplicate, tx.ID)
	}
	if dup, _ := r.ExistsByHash(ctx, tx.OwnerID, tx.TransactionHash); dup {
		return fmt.Errorf("%w: hash %s for owner %s", ErrDuplicate, tx.TransactionHash, tx.OwnerID)
	}
	r.state.transactions[tx.ID] = tx
	r.state.order = append(r.state.order, tx.ID)
	return nil
}

func (r *memoryRepo) Update(_ context.Context, tx models.PersistedTransaction) error {
	if r.store.UpdateErr != nil {
		return r.store.UpdateErr
	}
	existing, ok := r.state.transactions[tx.ID]
	if !ok || existing.OwnerID != tx.OwnerID {
		return fmt.Errorf("bank transaction %s: %w", tx.ID, ErrNotFound)
	}
	r.state.transactions[tx.ID] = tx
	return nil
}

func (r *memoryRepo) FindByID(_ context.Context, ownerID, id string) (models.PersistedTransaction, error) {
	tx, ok := r.state.transactions[id]
	if !ok || tx.OwnerID != ownerID {
		return models.PersistedTransaction{}, fmt.Errorf("bank transaction %s: %w", id, ErrNotFound)
	}
	return tx, nil
}

func (r *memoryRepo) FindByOwnerID(_ context.Context, ownerID string) ([]models.PersistedTransaction, error) {
	return r.filter(func(tx models.PersistedTransaction) bool { return tx.OwnerID == ownerID }), nil
}

func (r *memoryRepo) FindByDateRange(_ context.Context, ownerID string, from, to time.Time) ([]models.PersistedTransaction, error) {
	return r.filter(func(tx models.PersistedTransaction) bool {
		return tx.OwnerID == ownerID && inRange(tx.Date, from, to)
	}), nil
}

func (r *memoryRepo) filter(keep func(models.PersistedTransaction) bool) []models.PersistedTransaction {
	var out []models.PersistedTransaction
	for _, id := range r.state.order {
		if tx := r.state.transactions[id]; keep(tx) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (r *memoryRepo) SaveAudit(_ context.Context, audit models.ImportAudit) error {
	if r.store.SaveAuditErr != nil {
		return r.store.SaveAuditErr
	}
	r.state.audits = append(r.state.audits, audit)
	return nil
}

func (r *memoryRepo) FindAudits(_ context.Context, ownerID string) ([]models.ImportAudit, error) {
	var out []models.ImportAudit
	for _, a := range r.state.audits {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memoryRepo) SaveIncome(_ context.Context, ownerID string, rec models.HistoricalRecord) error {
	rec.Kind = models.RecordIncome
	rec.Amount = rec.Amount.Abs()
	r.state.incomes[ownerID] = append(r.state.incomes[ownerID], rec)
	return nil
}

func (r *memoryRepo) SaveExpense(_ context.Context, ownerID string, rec models.HistoricalRecord) error {
	rec.Kind = models.RecordExpense
	rec.Amount = rec.Amount.Abs()
	r.state.expenses[ownerID] = append(r.state.expenses[ownerID], rec)
	return nil
}

func (r *memoryRepo) FindIncomeByDateRange(_ context.Context, ownerID string, from, to time.Time) ([]models.HistoricalRecord, error) {
	return recordsInRange(r.state.incomes[ownerID], from, to), nil
}

func (r *memoryRepo) FindExpensesByDateRange(_ context.Context, ownerID string, from, to time.Time) ([]models.HistoricalRecord, error) {
	return recordsInRange(r.state.expenses[ownerID], from, to), nil
}

func recordsInRange(recs []models.HistoricalRecord, from, to time.Time) []models.HistoricalRecord {
	var out []models.HistoricalRecord
	for _, rec := range recs {
		if inRange(rec.Date, from, to) {
			out = append(out, rec)
		}
	}
	return out
}

// inRange is inclusive on both ends, at day granularity.
func inRange(d, from, to time.Time) bool {
	day := models.DateOnly(d)
	return !day.Before(models.DateOnly(from)) && !day.After(models.DateOnly(to))
}
