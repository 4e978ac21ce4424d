// Package dedup partitions a parsed batch into unique and duplicate
// transactions, against booked history and within the batch itself.
package dedup

import (
	"context"
	"fmt"
	"time"

	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"
)

// HistoryStore is the query side of the accounting store.
type HistoryStore interface {
	FindIncomeByDateRange(ctx context.Context, ownerID string, from, to time.Time) ([]models.HistoricalRecord, error)
	FindExpensesByDateRange(ctx context.Context, ownerID string, from, to time.Time) ([]models.HistoricalRecord, error)
}

// Result keeps batch order in both slices.
type Result struct {
	Unique     []models.NormalizedTransaction
	Duplicates []models.NormalizedTransaction
}

// Detector finds duplicates.
type Detector struct {
	store  HistoryStore
	logger logging.Logger
}

// NewDetector creates a Detector over store.
func NewDetector(store HistoryStore, logger logging.Logger) *Detector {
	return &Detector{store: store, logger: logging.OrDefault(logger)}
}

// CheckDuplicates queries history once for the batch's date range, then
// walks the batch in order. A row is a duplicate when history holds a
// record with the same date, signed amount and normalized description, or
// when an identical row appeared earlier in the batch.
func (d *Detector) CheckDuplicates(ctx context.Context, ownerID string, batch []models.NormalizedTransaction) (Result, error) {
	if len(batch) == 0 {
		return Result{}, nil
	}

	from, to := DateRange(batch)
	history, err := d.historyHashes(ctx, ownerID, from, to)
	if err != nil {
		return Result{}, err
	}

	var result Result
	seen := make(map[string]struct{}, len(batch))
	for _, tx := range batch {
		hash := tx.Hash()
		if _, ok := history[hash]; ok {
			result.Duplicates = append(result.Duplicates, tx)
			continue
		}
		if _, ok := seen[hash]; ok {
			result.Duplicates = append(result.Duplicates, tx)
			continue
		}
		seen[hash] = struct{}{}
		result.Unique = append(result.Unique, tx)
	}

	d.logger.Info("Duplicate check complete",
		logging.F(logging.FieldOwner, ownerID),
		logging.F("unique", len(result.Unique)),
		logging.F("duplicates", len(result.Duplicates)))
	return result, nil
}

func (d *Detector) historyHashes(ctx context.Context, ownerID string, from, to time.Time) (map[string]struct{}, error) {
	incomes, err := d.store.FindIncomeByDateRange(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query income history: %w", err)
	}
	expenses, err := d.store.FindExpensesByDateRange(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense history: %w", err)
	}

	hashes := make(map[string]struct{}, len(incomes)+len(expenses))
	for _, r := range incomes {
		hashes[r.Hash()] = struct{}{}
	}
	for _, r := range expenses {
		hashes[r.Hash()] = struct{}{}
	}
	return hashes, nil
}

// DateRange returns the earliest and latest dates in a non-empty batch.
func DateRange(batch []models.NormalizedTransaction) (time.Time, time.Time) {
	from, to := batch[0].Date(), batch[0].Date()
	for _, tx := range batch[1:] {
		if tx.Date().Before(from) {
			from = tx.Date()
		}
		if tx.Date().After(to) {
			to = tx.Date()
		}
	}
	return from, to
}
