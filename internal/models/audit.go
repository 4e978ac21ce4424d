package models

import (
	"time"

	"fjacquet/bank-import/internal/parsererror"
)

// Import types recorded on an ImportAudit.
const (
	ImportTypeBankCSV       = "BANK_CSV"
	ImportTypeBankCSVManual = "BANK_CSV_MANUAL"
)

// MaxImportFileSize is the admission-control ceiling for a statement file.
const MaxImportFileSize int64 = 10 * 1024 * 1024

// ImportAudit summarizes one import attempt.
type ImportAudit struct {
	ID               string
	OwnerID          string
	ImportedAt       time.Time
	SourceIdentifier string
	SourceHash       string
	ImportType       string
	SourceFormatID   string
	TotalRecords     int
	ImportedCount    int
	SkippedCount     int
	// IgnoredCount is rows the bank parser dropped as carrying no money
	// movement, such as declined card payments.
	IgnoredCount     int
	Errors           []parsererror.RowError
}

// ErrorCount is the number of rows recorded as errors.
func (a ImportAudit) ErrorCount() int {
	return len(a.Errors)
}

// Accounted reports whether every data row is imported, skipped as a
// duplicate, ignored or an error.
func (a ImportAudit) Accounted() bool {
	return a.ImportedCount+a.SkippedCount+a.IgnoredCount+len(a.Errors) == a.TotalRecords
}
