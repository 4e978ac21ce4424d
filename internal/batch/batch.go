// Package batch imports every statement in a directory.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fjacquet/bank-import/internal/dateutils"
	"fjacquet/bank-import/internal/importer"
	"fjacquet/bank-import/internal/logging"
)

// DateRange represents a date range with start and end dates
type DateRange struct {
	Start time.Time
	End   time.Time
}

// String returns the date range in the format "YYYY-MM-DD_YYYY-MM-DD"
func (dr DateRange) String() string {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ""
	}
	return dateutils.ToISODate(dr.Start) + "_" + dateutils.ToISODate(dr.End)
}

// Merge combines this date range with another, returning the overall range
func (dr DateRange) Merge(other DateRange) DateRange {
	start, end := dr.Start, dr.End
	if start.IsZero() || (!other.Start.IsZero() && other.Start.Before(start)) {
		start = other.Start
	}
	if end.IsZero() || (!other.End.IsZero() && other.End.After(end)) {
		end = other.End
	}
	return DateRange{Start: start, End: end}
}

// FileImporter imports a single statement file.
type FileImporter interface {
	ImportBankStatement(ctx context.Context, ownerID, path, encoding string) (*importer.Result, error)
}

// FileResult is the outcome for one file. Exactly one of Result and Err is set.
type FileResult struct {
	Path   string
	Result *importer.Result
	Err    error
}

// Summary aggregates a directory import.
type Summary struct {
	Files     []FileResult
	Imported  int
	Skipped   int
	RowErrors int
	Failed    int
	// DateRange spans the imported transactions.
	DateRange DateRange
}

// Importer runs a FileImporter over a directory.
type Importer struct {
	files  FileImporter
	logger logging.Logger
}

// NewImporter creates a directory importer.
func NewImporter(files FileImporter, logger logging.Logger) *Importer {
	return &Importer{files: files, logger: logging.OrDefault(logger)}
}

// ListStatements returns the .csv files directly inside dir, sorted by name
// so date-stamped exports import oldest first.
func ListStatements(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// ImportDirectory imports each statement in dir. A file that fails is
// recorded and the rest are still imported; only a context cancellation or
// an unreadable directory stops the run.
func (b *Importer) ImportDirectory(ctx context.Context, ownerID, dir, encoding string) (*Summary, error) {
	files, err := ListStatements(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		b.logger.Warn("No statements found in input directory", logging.F(logging.FieldFile, dir))
		return &Summary{}, nil
	}
	b.logger.Info("Found statements for import", logging.F(logging.FieldCount, len(files)))

	summary := &Summary{}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result, err := b.files.ImportBankStatement(ctx, ownerID, path, encoding)
		if err != nil {
			b.logger.WithError(err).Warn("Statement import failed", logging.F(logging.FieldFile, filepath.Base(path)))
			summary.Files = append(summary.Files, FileResult{Path: path, Err: err})
			summary.Failed++
			continue
		}

		summary.Files = append(summary.Files, FileResult{Path: path, Result: result})
		summary.Imported += result.Audit.ImportedCount
		summary.Skipped += result.Audit.SkippedCount
		summary.RowErrors += result.Audit.ErrorCount()
		for _, tx := range result.Imported {
			summary.DateRange = summary.DateRange.Merge(DateRange{Start: tx.Date, End: tx.Date})
		}
	}

	b.logger.Info("Directory import complete",
		logging.F(logging.FieldImported, summary.Imported),
		logging.F(logging.FieldSkipped, summary.Skipped),
		logging.F("failed", summary.Failed))
	return summary, nil
}
