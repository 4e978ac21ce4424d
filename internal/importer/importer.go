// Package importer orchestrates a bank statement import: admission control,
// format detection, parsing, duplicate detection and the atomic write of
// new transactions together with their import audit.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fjacquet/bank-import/internal/categorizer"
	"fjacquet/bank-import/internal/dedup"
	"fjacquet/bank-import/internal/factory"
	"fjacquet/bank-import/internal/fileutils"
	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/manualparser"
	"fjacquet/bank-import/internal/models"
	"fjacquet/bank-import/internal/parser"
	"fjacquet/bank-import/internal/parsererror"
	"fjacquet/bank-import/internal/store"

	"github.com/google/uuid"
)

// Options tune an import.
type Options struct {
	// Tolerant collects failing rows in the audit instead of aborting.
	Tolerant bool
	// AutoCategorize applies the engine's recommendation to every new row.
	AutoCategorize bool
	// MaxFileSize can lower the admission ceiling, never raise it.
	MaxFileSize int64
}

// Result is the outcome of one import.
type Result struct {
	Audit      models.ImportAudit
	Imported   []models.PersistedTransaction
	Duplicates []models.NormalizedTransaction
	Errors     []parsererror.RowError
}

// Service imports statements for an owner.
type Service struct {
	store    store.Store
	detector *factory.Detector
	engine   *categorizer.Engine
	opts     Options
	now      func() time.Time
	newID    func() string
	logger   logging.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithOptions replaces the import options.
func WithOptions(opts Options) Option {
	return func(s *Service) { s.opts = opts }
}

// WithClock sets the time source for audit and transaction timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the generator for transaction, audit and record IDs.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService creates an import service.
func NewService(st store.Store, detector *factory.Detector, engine *categorizer.Engine, logger logging.Logger, opts ...Option) *Service {
	logger = logging.OrDefault(logger)
	s := &Service{
		store:    st,
		detector: detector,
		engine:   engine,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.detector == nil {
		s.detector = factory.NewDetector(logger)
	}
	if s.engine == nil {
		s.engine = categorizer.NewEngine(logger, categorizer.WithClock(s.now))
	}
	return s
}

// maxFileSize is the configured ceiling, capped at models.MaxImportFileSize.
func (s *Service) maxFileSize() int64 {
	if s.opts.MaxFileSize <= 0 || s.opts.MaxFileSize > models.MaxImportFileSize {
		return models.MaxImportFileSize
	}
	return s.opts.MaxFileSize
}

// source is an admitted, decoded statement file.
type source struct {
	name string
	hash string
	data []byte
}

// readSource enforces the size ceiling before reading anything, then hashes
// the raw bytes and decodes them to UTF-8.
func (s *Service) readSource(path, encoding string) (source, error) {
	size, err := fileutils.CheckSize(path, s.maxFileSize())
	if err != nil {
		s.logger.WithError(err).Warn("Rejected statement file",
			logging.F(logging.FieldFile, path), logging.F(logging.FieldSize, size))
		return source{}, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return source{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	data, err := fileutils.DecodeBytes(raw, encoding)
	if err != nil {
		return source{}, err
	}
	return source{name: filepath.Base(path), hash: fileutils.HashBytes(raw), data: data}, nil
}

// detect picks the parser for src or reports an unknown format.
func (s *Service) detect(src source) (parser.BankParser, error) {
	p, ok, err := s.detector.DetectFormat(bytes.NewReader(src.data))
	if err != nil {
		return nil, fmt.Errorf("failed to detect format of %s: %w", src.name, err)
	}
	if !ok {
		headers, _ := factory.ExtractHeaders(bytes.NewReader(src.data))
		return nil, &parsererror.UnknownFormatError{Source: src.name, Headers: headers}
	}
	return p, nil
}

// ImportBankStatement detects the bank from the header row and imports the file.
func (s *Service) ImportBankStatement(ctx context.Context, ownerID, path, encoding string) (*Result, error) {
	src, err := s.readSource(path, encoding)
	if err != nil {
		return nil, err
	}
	p, err := s.detect(src)
	if err != nil {
		return nil, err
	}
	return s.importSource(ctx, ownerID, src, p, models.ImportTypeBankCSV)
}

// ImportWithParser imports the file with the named bank's parser, skipping detection.
func (s *Service) ImportWithParser(ctx context.Context, ownerID, path, encoding, bankName string) (*Result, error) {
	p, err := s.detector.ParserFor(bankName)
	if err != nil {
		return nil, err
	}
	src, err := s.readSource(path, encoding)
	if err != nil {
		return nil, err
	}
	return s.importSource(ctx, ownerID, src, p, models.ImportTypeBankCSV)
}

// ImportWithMapping imports a file from a bank without a dedicated parser.
func (s *Service) ImportWithMapping(ctx context.Context, ownerID, path, encoding string, mapping manualparser.ColumnMapping) (*Result, error) {
	p, err := manualparser.NewParser(mapping, s.logger)
	if err != nil {
		return nil, err
	}
	src, err := s.readSource(path, encoding)
	if err != nil {
		return nil, err
	}
	return s.importSource(ctx, ownerID, src, p, models.ImportTypeBankCSVManual)
}

// parse runs p strictly or through the tolerant wrapper. A strict parse
// never reports row errors.
func (s *Service) parse(p parser.BankParser, src source) (parser.TolerantResult, error) {
	if !s.opts.Tolerant {
		txs, ignored, err := parser.ParseRecordsCounted(p, bytes.NewReader(src.data), s.logger)
		if err != nil {
			return parser.TolerantResult{}, err
		}
		return parser.TolerantResult{Transactions: txs, Ignored: ignored}, nil
	}
	return parser.NewTolerantParser(p, s.logger).Parse(bytes.NewReader(src.data))
}

func (s *Service) importSource(ctx context.Context, ownerID string, src source, p parser.BankParser, importType string) (*Result, error) {
	log := s.logger.WithFields(
		logging.F(logging.FieldOwner, ownerID),
		logging.F(logging.FieldFile, src.name),
		logging.F(logging.FieldBank, p.BankName()))
	log.Info("Starting import")

	parsed, err := s.parse(p, src)
	if err != nil {
		log.WithError(err).Error("Import aborted by parse error")
		return nil, err
	}
	txs, rowErrors := parsed.Transactions, parsed.Errors

	now := s.now()
	result := &Result{
		Audit: models.ImportAudit{
			ID:               s.newID(),
			OwnerID:          ownerID,
			ImportedAt:       now,
			SourceIdentifier: src.name,
			SourceHash:       src.hash,
			ImportType:       importType,
			SourceFormatID:   models.SourceFormatID(p.BankName()),
			TotalRecords:     len(txs) + parsed.Ignored + len(rowErrors),
			IgnoredCount:     parsed.Ignored,
			Errors:           rowErrors,
		},
		Errors: rowErrors,
	}

	err = s.store.WithinTx(ctx, func(repo store.Repository) error {
		unique, duplicates, err := s.partition(ctx, repo, ownerID, txs)
		if err != nil {
			return err
		}

		imported := make([]models.PersistedTransaction, 0, len(unique))
		for _, tx := range unique {
			ptx := models.NewPendingTransaction(s.newID(), ownerID, result.Audit.ID, p.BankName(), tx, now)
			if s.opts.AutoCategorize {
				if ptx, _, err = s.engine.Apply(ptx); err != nil {
					return err
				}
			}
			if err := repo.Save(ctx, ptx); err != nil {
				return err
			}
			imported = append(imported, ptx)
		}

		audit := result.Audit
		audit.ImportedCount = len(imported)
		audit.SkippedCount = len(duplicates)
		if err := repo.SaveAudit(ctx, audit); err != nil {
			return err
		}

		result.Audit = audit
		result.Imported = imported
		result.Duplicates = duplicates
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Import rolled back")
		return nil, fmt.Errorf("import of %s failed: %w", src.name, err)
	}

	log.Info("Import complete",
		logging.F(logging.FieldAuditID, result.Audit.ID),
		logging.F(logging.FieldCount, result.Audit.TotalRecords),
		logging.F(logging.FieldImported, result.Audit.ImportedCount),
		logging.F(logging.FieldSkipped, result.Audit.SkippedCount),
		logging.F(logging.FieldIgnored, result.Audit.IgnoredCount),
		logging.F(logging.FieldErrors, result.Audit.ErrorCount()))
	return result, nil
}

// partition splits txs into rows to import and duplicates, keeping batch
// order in both. A row is a duplicate when booked history holds it, when a
// bank transaction with the same hash is already stored, or when it
// appeared earlier in the batch.
func (s *Service) partition(ctx context.Context, repo store.Repository, ownerID string, txs []models.NormalizedTransaction) ([]models.NormalizedTransaction, []models.NormalizedTransaction, error) {
	checked, err := dedup.NewDetector(repo, s.logger).CheckDuplicates(ctx, ownerID, txs)
	if err != nil {
		return nil, nil, err
	}

	// checked.Unique holds the first occurrence of every hash not in history.
	fresh := make(map[string]bool, len(checked.Unique))
	for _, tx := range checked.Unique {
		hash := tx.Hash()
		exists, err := repo.ExistsByHash(ctx, ownerID, hash)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check transaction hash: %w", err)
		}
		if exists {
			s.logger.Debug("Transaction already imported", logging.F(logging.FieldHash, hash))
			continue
		}
		fresh[hash] = true
	}

	var unique, duplicates []models.NormalizedTransaction
	for _, tx := range txs {
		hash := tx.Hash()
		if fresh[hash] {
			unique = append(unique, tx)
			delete(fresh, hash)
			continue
		}
		duplicates = append(duplicates, tx)
	}
	return unique, duplicates, nil
}
