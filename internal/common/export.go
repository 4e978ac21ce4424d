package common

import (
	"encoding/csv"
	"fmt"
	"io"

	"fjacquet/bank-import/internal/dateutils"
	"fjacquet/bank-import/internal/fileutils"
	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"

	"github.com/gocarina/gocsv"
)

var log = logging.OrDefault(nil)

// Delimiter is the field separator used when exporting.
var Delimiter rune = ','

// SetLogger allows setting a configured logger
func SetLogger(logger logging.Logger) {
	if logger == nil {
		return
	}
	log = logger
}

// SetDelimiter changes the export delimiter.
func SetDelimiter(delim rune) {
	Delimiter = delim
}

// ExportRow is the flat CSV shape of a persisted bank transaction.
type ExportRow struct {
	ID                string `csv:"ID"`
	Date              string `csv:"Date"`
	Amount            string `csv:"Amount"`
	Description       string `csv:"Description"`
	BankReference     string `csv:"BankReference"`
	SourceFormat      string `csv:"SourceFormat"`
	ReviewStatus      string `csv:"ReviewStatus"`
	SuggestedCategory string `csv:"SuggestedCategory"`
	Confidence        string `csv:"Confidence"`
	ExclusionReason   string `csv:"ExclusionReason"`
	IsBusiness        string `csv:"IsBusiness"`
	LinkedExpenseID   string `csv:"LinkedExpenseID"`
	LinkedIncomeID    string `csv:"LinkedIncomeID"`
	TransactionHash   string `csv:"TransactionHash"`
	ImportAuditID     string `csv:"ImportAuditID"`
}

// ToExportRow flattens a persisted transaction.
func ToExportRow(tx models.PersistedTransaction) ExportRow {
	row := ExportRow{
		ID:              tx.ID,
		Date:            dateutils.ToISODate(tx.Date),
		Amount:          tx.Amount.StringFixed(2),
		Description:     tx.Description,
		BankReference:   tx.BankReference,
		SourceFormat:    tx.SourceFormatID,
		ReviewStatus:    string(tx.ReviewStatus),
		IsBusiness:      string(tx.IsBusiness),
		TransactionHash: tx.TransactionHash,
		ImportAuditID:   tx.ImportAuditID,
	}
	row.SuggestedCategory = deref(tx.SuggestedCategory)
	row.ExclusionReason = deref(tx.ExclusionReason)
	row.LinkedExpenseID = deref(tx.LinkedExpenseID)
	row.LinkedIncomeID = deref(tx.LinkedIncomeID)
	if tx.ConfidenceScore != nil {
		row.Confidence = tx.ConfidenceScore.StringFixed(2)
	}
	return row
}

// WriteTransactions marshals transactions as CSV to w. An empty or nil
// slice writes the header row only.
func WriteTransactions(transactions []models.PersistedTransaction, w io.Writer) error {
	rows := make([]ExportRow, 0, len(transactions))
	for _, tx := range transactions {
		rows = append(rows, ToExportRow(tx))
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = Delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// WriteTransactionsToCSV writes transactions to a CSV file, creating the
// parent directory when needed.
func WriteTransactionsToCSV(transactions []models.PersistedTransaction, csvFile string) error {
	log.WithFields(
		logging.F(logging.FieldFile, csvFile),
		logging.F(logging.FieldCount, len(transactions)),
	).Info("Writing transactions to CSV file")

	file, err := fileutils.CreateFile(csvFile)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := WriteTransactions(transactions, file); err != nil {
		log.WithError(err).Error("Failed to marshal transactions to CSV")
		return err
	}

	log.WithFields(logging.F(logging.FieldFile, csvFile)).Info("Successfully wrote transactions to CSV file")
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
