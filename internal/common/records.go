// Package common provides the CSV plumbing shared by every bank parser and the exporter.
package common

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Record is one non-blank CSV record of a statement file. A quoted field
// may span several physical lines; Line is the 1-based line the record
// starts on, counting the header, and Raw is its full text. Err is set
// when the record is not valid CSV; Fields is then nil.
type Record struct {
	Line   int
	Raw    string
	Fields []string
	Err    error
}

// Field returns the trimmed value at index i, or "" when the row is short.
func (r Record) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return strings.TrimSpace(r.Fields[i])
}

// Len is the number of fields on the row.
func (r Record) Len() int {
	return len(r.Fields)
}

// ReadRecords parses r as CSV. Blank lines and separator-only rows are
// dropped. Malformed records are kept with Err set so that callers can
// decide between failing fast and collecting errors.
func ReadRecords(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading CSV data: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\uFEFF"))

	reader := newReader(bytes.NewReader(data))
	var records []Record
	for {
		start := reader.InputOffset()
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		raw := rawText(data, start, reader.InputOffset())

		var parseErr *csv.ParseError
		switch {
		case errors.As(err, &parseErr):
			records = append(records, Record{
				Line: parseErr.StartLine,
				Raw:  raw,
				Err:  fmt.Errorf("malformed CSV line: %w", err),
			})
			continue
		case err != nil:
			return nil, fmt.Errorf("error reading CSV data: %w", err)
		}

		if strings.TrimSpace(raw) == "" || isEmptyRow(raw) {
			continue
		}
		line, _ := reader.FieldPos(0)
		records = append(records, Record{Line: line, Raw: raw, Fields: fields})
	}
	return records, nil
}

// rawText is the record text between two reader offsets, without the
// blank lines the reader skipped before it or its line terminator.
func rawText(data []byte, start, end int64) string {
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	if start > end {
		return ""
	}
	return strings.TrimRight(strings.TrimLeft(string(data[start:end]), "\r\n"), "\r\n")
}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	return reader
}

// ParseLine parses a single CSV line.
func ParseLine(line string) ([]string, error) {
	fields, err := newReader(strings.NewReader(line)).Read()
	if err != nil {
		return nil, fmt.Errorf("malformed CSV line: %w", err)
	}
	return fields, nil
}

// isEmptyRow reports rows made only of separators, like ",,,,".
func isEmptyRow(raw string) bool {
	return strings.Trim(raw, ", \t\"") == ""
}

// NormalizeHeader trims whitespace, surrounding quotes and a BOM from a header cell.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\uFEFF")
	h = strings.TrimSpace(h)
	h = strings.Trim(h, `"'`)
	return strings.TrimSpace(h)
}

// NormalizeHeaders applies NormalizeHeader to every cell.
func NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = NormalizeHeader(h)
	}
	return out
}

// HeadersMatch compares headers case-insensitively after normalization.
// When prefixOnly is set, actual may carry extra trailing columns.
func HeadersMatch(expected, actual []string, prefixOnly bool) bool {
	if len(actual) < len(expected) {
		return false
	}
	if !prefixOnly && len(actual) != len(expected) {
		return false
	}
	for i, want := range expected {
		if !strings.EqualFold(NormalizeHeader(want), NormalizeHeader(actual[i])) {
			return false
		}
	}
	return true
}
