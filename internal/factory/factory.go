// Package factory builds the registered bank parsers and detects which one
// understands a given statement file.
package factory

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"fjacquet/bank-import/internal/barclaysparser"
	"fjacquet/bank-import/internal/common"
	"fjacquet/bank-import/internal/hsbcparser"
	"fjacquet/bank-import/internal/lloydsparser"
	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/monzoparser"
	"fjacquet/bank-import/internal/nationwideparser"
	"fjacquet/bank-import/internal/natwestparser"
	"fjacquet/bank-import/internal/parser"
	"fjacquet/bank-import/internal/revolutparser"
	"fjacquet/bank-import/internal/starlingparser"
)

// GetParsers returns every registered parser in detection order.
func GetParsers(logger logging.Logger) []parser.BankParser {
	return []parser.BankParser{
		barclaysparser.NewParser(logger),
		hsbcparser.NewParser(logger),
		lloydsparser.NewParser(logger),
		nationwideparser.NewParser(logger),
		natwestparser.NewParser(logger),
		starlingparser.NewParser(logger),
		monzoparser.NewParser(logger),
		revolutparser.NewParser(logger),
	}
}

// Detector picks the parser whose dialect matches a file's header row.
type Detector struct {
	parsers []parser.BankParser
	logger  logging.Logger
}

// NewDetector creates a detector over the registered parsers.
func NewDetector(logger logging.Logger) *Detector {
	logger = logging.OrDefault(logger)
	return NewDetectorWith(logger, GetParsers(logger)...)
}

// NewDetectorWith creates a detector over an explicit parser list.
func NewDetectorWith(logger logging.Logger, parsers ...parser.BankParser) *Detector {
	return &Detector{
		parsers: parsers,
		logger:  logging.OrDefault(logger),
	}
}

// DetectFormat returns the first parser accepting the header row. The
// boolean is false when the file is empty or no parser matches.
func (d *Detector) DetectFormat(r io.Reader) (parser.BankParser, bool, error) {
	headers, err := ExtractHeaders(r)
	if err != nil {
		return nil, false, err
	}
	if len(headers) == 0 {
		d.logger.Debug("No header row to detect")
		return nil, false, nil
	}
	return d.DetectHeaders(headers)
}

// DetectHeaders is DetectFormat for an already extracted header row.
func (d *Detector) DetectHeaders(headers []string) (parser.BankParser, bool, error) {
	for _, p := range d.parsers {
		if p.CanParse(headers) {
			d.logger.Debug("Detected bank format", logging.F(logging.FieldBank, p.BankName()))
			return p, true, nil
		}
	}
	d.logger.Info("No parser matched header row", logging.F("headers", strings.Join(headers, ",")))
	return nil, false, nil
}

// AvailableBankNames lists the bank names in detection order.
func (d *Detector) AvailableBankNames() []string {
	names := make([]string, 0, len(d.parsers))
	for _, p := range d.parsers {
		names = append(names, p.BankName())
	}
	return names
}

// ParserFor looks a parser up by bank name, ignoring case.
func (d *Detector) ParserFor(bankName string) (parser.BankParser, error) {
	for _, p := range d.parsers {
		if strings.EqualFold(p.BankName(), strings.TrimSpace(bankName)) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unknown bank %q, expected one of %s", bankName, strings.Join(d.AvailableBankNames(), ", "))
}

// ExtractHeaders reads the first non-blank line and returns its cells with
// quotes, whitespace and any BOM removed. An empty input yields no headers.
func ExtractHeaders(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimPrefix(strings.TrimRight(scanner.Text(), "\r"), "\uFEFF")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields, err := common.ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("failed to read header row: %w", err)
		}
		return common.NormalizeHeaders(fields), nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	return []string{}, nil
}
