package parser

import (
	"errors"
	"fmt"
	"io"

	"fjacquet/bank-import/internal/common"
	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"
)

// ParseRecords is the strict parse loop shared by every bank parser: the
// header row is skipped, blank lines are ignored and the first failing
// row aborts the whole file.
func ParseRecords(p RecordParser, r io.Reader, logger logging.Logger) ([]models.NormalizedTransaction, error) {
	transactions, _, err := ParseRecordsCounted(p, r, logger)
	return transactions, err
}

// ParseRecordsCounted is ParseRecords that also returns the number of data
// rows p dropped with ErrSkipRow.
func ParseRecordsCounted(p RecordParser, r io.Reader, logger logging.Logger) ([]models.NormalizedTransaction, int, error) {
	logger = logging.OrDefault(logger)

	records, err := common.ReadRecords(r)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", p.BankName(), err)
	}

	rows := dataRecords(p, records)
	transactions := make([]models.NormalizedTransaction, 0, len(rows))
	ignored := 0
	for _, rec := range rows {
		tx, err := p.ParseRecord(rec)
		if errors.Is(err, ErrSkipRow) {
			logger.Debug("Skipping row", logging.F(logging.FieldLine, rec.Line))
			ignored++
			continue
		}
		if err != nil {
			logger.WithError(err).Debug("Aborting strict parse", logging.F(logging.FieldLine, rec.Line))
			return nil, 0, err
		}
		transactions = append(transactions, tx)
	}

	logger.Debug("Parsed statement",
		logging.F(logging.FieldCount, len(transactions)),
		logging.F(logging.FieldIgnored, ignored))
	return transactions, ignored, nil
}

// dataRecords drops the header row when the parser expects one.
func dataRecords(p RecordParser, records []common.Record) []common.Record {
	if len(records) == 0 || !hasHeader(p) {
		return records
	}
	return records[1:]
}
