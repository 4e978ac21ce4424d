package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"
	"fjacquet/bank-import/internal/parsererror"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS bank_transactions (
	id                 TEXT PRIMARY KEY,
	owner_id           TEXT NOT NULL,
	import_audit_id    TEXT NOT NULL,
	source_format_id   TEXT NOT NULL,
	date               TEXT NOT NULL,
	amount             TEXT NOT NULL,
	description        TEXT NOT NULL,
	bank_reference     TEXT NOT NULL DEFAULT '',
	suggested_category TEXT,
	confidence_score   TEXT,
	review_status      TEXT NOT NULL,
	exclusion_reason   TEXT,
	is_business        TEXT NOT NULL,
	linked_expense_id  TEXT,
	linked_income_id   TEXT,
	transaction_hash   TEXT NOT NULL,
	created_at         TEXT NOT NULL,
	updated_at         TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_bank_transactions_owner_hash
	ON bank_transactions (owner_id, transaction_hash);
CREATE INDEX IF NOT EXISTS idx_bank_transactions_owner_date
	ON bank_transactions (owner_id, date);

CREATE TABLE IF NOT EXISTS import_audits (
	id                TEXT PRIMARY KEY,
	owner_id          TEXT NOT NULL,
	imported_at       TEXT NOT NULL,
	source_identifier TEXT NOT NULL,
	source_hash       TEXT NOT NULL,
	import_type       TEXT NOT NULL,
	source_format_id  TEXT NOT NULL,
	total_records     INTEGER NOT NULL,
	imported_count    INTEGER NOT NULL,
	skipped_count     INTEGER NOT NULL,
	ignored_count     INTEGER NOT NULL DEFAULT 0,
	error_count       INTEGER NOT NULL,
	errors            TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS incomes (
	id                  TEXT PRIMARY KEY,
	owner_id            TEXT NOT NULL,
	date                TEXT NOT NULL,
	amount              TEXT NOT NULL,
	description         TEXT NOT NULL,
	category            TEXT NOT NULL DEFAULT '',
	bank_transaction_id TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_incomes_owner_date ON incomes (owner_id, date);

CREATE TABLE IF NOT EXISTS expenses (
	id                  TEXT PRIMARY KEY,
	owner_id            TEXT NOT NULL,
	date                TEXT NOT NULL,
	amount              TEXT NOT NULL,
	description         TEXT NOT NULL,
	category            TEXT NOT NULL DEFAULT '',
	bank_transaction_id TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_expenses_owner_date ON expenses (owner_id, date);
`

const timestampLayout = time.RFC3339Nano

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore is the modernc.org/sqlite backed Store.
type SQLiteStore struct {
	*sqlRepository
	db     *sql.DB
	logger logging.Logger
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the database at path and ensures the schema exists.
// Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string, logger logging.Logger) (*SQLiteStore, error) {
	logger = logging.OrDefault(logger)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if err := addMissingColumn(ctx, db, "import_audits", "ignored_count", "INTEGER NOT NULL DEFAULT 0"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	logger.Debug("Opened SQLite store", logging.F("path", path))
	return &SQLiteStore{sqlRepository: &sqlRepository{q: db}, db: db, logger: logger}, nil
}

// addMissingColumn adds column to a table created by an older schema.
func addMissingColumn(ctx context.Context, db *sql.DB, table, column, definition string) error {
	rows, err := db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}

// WithinTx runs fn inside one database transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
func (s *SQLiteStore) WithinTx(ctx context.Context, fn func(Repository) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&sqlRepository{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.WithError(rbErr).Error("Rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type sqlRepository struct {
	q querier
}

const txColumns = `id, owner_id, import_audit_id, source_format_id, date, amount, description,
	bank_reference, suggested_category, confidence_score, review_status, exclusion_reason,
	is_business, linked_expense_id, linked_income_id, transaction_hash, created_at, updated_at`

func (r *sqlRepository) ExistsByHash(ctx context.Context, ownerID, hash string) (bool, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM bank_transactions WHERE owner_id = ? AND transaction_hash = ?`,
		ownerID, hash).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query hash: %w", err)
	}
	return n > 0, nil
}

func (r *sqlRepository) Save(ctx context.Context, tx models.PersistedTransaction) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO bank_transactions (`+txColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.OwnerID, tx.ImportAuditID, tx.SourceFormatID,
		tx.Date.Format(models.DateLayout), tx.Amount.String(), tx.Description, tx.BankReference,
		nullString(tx.SuggestedCategory), nullDecimal(tx.ConfidenceScore), string(tx.ReviewStatus),
		nullString(tx.ExclusionReason), string(tx.IsBusiness),
		nullString(tx.LinkedExpenseID), nullString(tx.LinkedIncomeID), tx.TransactionHash,
		tx.CreatedAt.UTC().Format(timestampLayout), tx.UpdatedAt.UTC().Format(timestampLayout))
	if IsConstraintViolation(err) {
		return fmt.Errorf("%w: %s: %w", ErrDuplicate, tx.ID, err)
	}
	if err != nil {
		return fmt.Errorf("insert bank transaction %s: %w", tx.ID, err)
	}
	return nil
}

func (r *sqlRepository) Update(ctx context.Context, tx models.PersistedTransaction) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE bank_transactions SET suggested_category = ?, confidence_score = ?, review_status = ?,
			exclusion_reason = ?, is_business = ?, linked_expense_id = ?, linked_income_id = ?, updated_at = ?
		WHERE owner_id = ? AND id = ?`,
		nullString(tx.SuggestedCategory), nullDecimal(tx.ConfidenceScore), string(tx.ReviewStatus),
		nullString(tx.ExclusionReason), string(tx.IsBusiness),
		nullString(tx.LinkedExpenseID), nullString(tx.LinkedIncomeID),
		tx.UpdatedAt.UTC().Format(timestampLayout), tx.OwnerID, tx.ID)
	if err != nil {
		return fmt.Errorf("update bank transaction %s: %w", tx.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bank transaction %s: %w", tx.ID, ErrNotFound)
	}
	return nil
}

func (r *sqlRepository) FindByID(ctx context.Context, ownerID, id string) (models.PersistedTransaction, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+txColumns+` FROM bank_transactions WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return models.PersistedTransaction{}, fmt.Errorf("query bank transaction: %w", err)
	}
	txs, err := scanTransactions(rows)
	if err != nil {
		return models.PersistedTransaction{}, err
	}
	if len(txs) == 0 {
		return models.PersistedTransaction{}, fmt.Errorf("bank transaction %s: %w", id, ErrNotFound)
	}
	return txs[0], nil
}

func (r *sqlRepository) FindByOwnerID(ctx context.Context, ownerID string) ([]models.PersistedTransaction, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+txColumns+` FROM bank_transactions WHERE owner_id = ? ORDER BY date, created_at, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query bank transactions: %w", err)
	}
	return scanTransactions(rows)
}

func (r *sqlRepository) FindByDateRange(ctx context.Context, ownerID string, from, to time.Time) ([]models.PersistedTransaction, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+txColumns+` FROM bank_transactions
		WHERE owner_id = ? AND date BETWEEN ? AND ? ORDER BY date, created_at, id`,
		ownerID, from.Format(models.DateLayout), to.Format(models.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("query bank transactions: %w", err)
	}
	return scanTransactions(rows)
}

func (r *sqlRepository) SaveAudit(ctx context.Context, audit models.ImportAudit) error {
	errs := audit.Errors
	if errs == nil {
		errs = []parsererror.RowError{}
	}
	encoded, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("encode audit errors: %w", err)
	}
	_, err = r.q.ExecContext(ctx,
		`INSERT INTO import_audits (id, owner_id, imported_at, source_identifier, source_hash, import_type,
			source_format_id, total_records, imported_count, skipped_count, ignored_count, error_count, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		audit.ID, audit.OwnerID, audit.ImportedAt.UTC().Format(timestampLayout), audit.SourceIdentifier,
		audit.SourceHash, audit.ImportType, audit.SourceFormatID, audit.TotalRecords,
		audit.ImportedCount, audit.SkippedCount, audit.IgnoredCount, audit.ErrorCount(), string(encoded))
	if err != nil {
		return fmt.Errorf("insert import audit %s: %w", audit.ID, err)
	}
	return nil
}

func (r *sqlRepository) FindAudits(ctx context.Context, ownerID string) ([]models.ImportAudit, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, owner_id, imported_at, source_identifier, source_hash, import_type, source_format_id,
			total_records, imported_count, skipped_count, ignored_count, errors
		FROM import_audits WHERE owner_id = ? ORDER BY imported_at, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query import audits: %w", err)
	}
	defer rows.Close()

	var audits []models.ImportAudit
	for rows.Next() {
		var (
			a                models.ImportAudit
			importedAt, errs string
		)
		if err := rows.Scan(&a.ID, &a.OwnerID, &importedAt, &a.SourceIdentifier, &a.SourceHash, &a.ImportType,
			&a.SourceFormatID, &a.TotalRecords, &a.ImportedCount, &a.SkippedCount, &a.IgnoredCount, &errs); err != nil {
			return nil, fmt.Errorf("scan import audit: %w", err)
		}
		if a.ImportedAt, err = time.Parse(timestampLayout, importedAt); err != nil {
			return nil, fmt.Errorf("import audit %s: bad timestamp: %w", a.ID, err)
		}
		if err := json.Unmarshal([]byte(errs), &a.Errors); err != nil {
			return nil, fmt.Errorf("import audit %s: bad errors column: %w", a.ID, err)
		}
		if len(a.Errors) == 0 {
			a.Errors = nil
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}

func (r *sqlRepository) SaveIncome(ctx context.Context, ownerID string, rec models.HistoricalRecord) error {
	return r.saveRecord(ctx, "incomes", ownerID, rec)
}

func (r *sqlRepository) SaveExpense(ctx context.Context, ownerID string, rec models.HistoricalRecord) error {
	return r.saveRecord(ctx, "expenses", ownerID, rec)
}

func (r *sqlRepository) FindIncomeByDateRange(ctx context.Context, ownerID string, from, to time.Time) ([]models.HistoricalRecord, error) {
	return r.findRecords(ctx, "incomes", models.RecordIncome, ownerID, from, to)
}

func (r *sqlRepository) FindExpensesByDateRange(ctx context.Context, ownerID string, from, to time.Time) ([]models.HistoricalRecord, error) {
	return r.findRecords(ctx, "expenses", models.RecordExpense, ownerID, from, to)
}

// table is always one of the two constants above, never user input.
func (r *sqlRepository) saveRecord(ctx context.Context, table, ownerID string, rec models.HistoricalRecord) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO `+table+` (id, owner_id, date, amount, description, category, bank_transaction_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, ownerID, rec.Date.Format(models.DateLayout), rec.Amount.Abs().String(),
		rec.Description, rec.Category, rec.BankTransactionID)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func (r *sqlRepository) findRecords(ctx context.Context, table string, kind models.RecordKind, ownerID string, from, to time.Time) ([]models.HistoricalRecord, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, date, amount, description, category, bank_transaction_id FROM `+table+`
		WHERE owner_id = ? AND date BETWEEN ? AND ? ORDER BY date, id`,
		ownerID, from.Format(models.DateLayout), to.Format(models.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var out []models.HistoricalRecord
	for rows.Next() {
		var (
			rec          models.HistoricalRecord
			date, amount string
		)
		if err := rows.Scan(&rec.ID, &date, &amount, &rec.Description, &rec.Category, &rec.BankTransactionID); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		rec.Kind = kind
		if rec.Date, err = time.Parse(models.DateLayout, date); err != nil {
			return nil, fmt.Errorf("%s %s: bad date: %w", table, rec.ID, err)
		}
		if rec.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("%s %s: bad amount: %w", table, rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanTransactions(rows *sql.Rows) ([]models.PersistedTransaction, error) {
	defer rows.Close()

	var out []models.PersistedTransaction
	for rows.Next() {
		var (
			tx                                       models.PersistedTransaction
			date, amount, status, business           string
			createdAt, updatedAt                     string
			category, score, reason, expense, income sql.NullString
		)
		if err := rows.Scan(&tx.ID, &tx.OwnerID, &tx.ImportAuditID, &tx.SourceFormatID, &date, &amount,
			&tx.Description, &tx.BankReference, &category, &score, &status, &reason, &business,
			&expense, &income, &tx.TransactionHash, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan bank transaction: %w", err)
		}

		var err error
		if tx.Date, err = time.Parse(models.DateLayout, date); err != nil {
			return nil, fmt.Errorf("bank transaction %s: bad date: %w", tx.ID, err)
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("bank transaction %s: bad amount: %w", tx.ID, err)
		}
		if score.Valid {
			s, err := decimal.NewFromString(score.String)
			if err != nil {
				return nil, fmt.Errorf("bank transaction %s: bad confidence: %w", tx.ID, err)
			}
			tx.ConfidenceScore = &s
		}
		if tx.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
			return nil, fmt.Errorf("bank transaction %s: bad created_at: %w", tx.ID, err)
		}
		if tx.UpdatedAt, err = time.Parse(timestampLayout, updatedAt); err != nil {
			return nil, fmt.Errorf("bank transaction %s: bad updated_at: %w", tx.ID, err)
		}
		tx.ReviewStatus = models.ReviewStatus(status)
		tx.IsBusiness = models.BusinessFlag(business)
		tx.SuggestedCategory = fromNull(category)
		tx.ExclusionReason = fromNull(reason)
		tx.LinkedExpenseID = fromNull(expense)
		tx.LinkedIncomeID = fromNull(income)
		out = append(out, tx)
	}
	return out, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// IsConstraintViolation reports whether err is an SQLite constraint failure,
// such as a second row for the same owner and transaction hash.
func IsConstraintViolation(err error) bool {
	var target interface{ Code() int }
	if errors.As(err, &target) {
		// SQLITE_CONSTRAINT, with or without the extended code.
		return target.Code()&0xff == 19
	}
	return false
}
