package parser

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"fjacquet/bank-import/internal/common"
	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"
	"fjacquet/bank-import/internal/parsererror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubParser is a minimal Date,Description,Amount dialect. Rows described
// "Declined" are skipped.
type stubParser struct {
	BaseParser
}

func newStubParser(logger logging.Logger) *stubParser {
	return &stubParser{BaseParser: NewBaseParser("Stub", []string{"Date", "Description", "Amount"}, logger)}
}

func (p *stubParser) Parse(r io.Reader) ([]models.NormalizedTransaction, error) {
	return ParseRecords(p, r, p.GetLogger())
}

func (p *stubParser) ParseRecord(rec common.Record) (models.NormalizedTransaction, error) {
	if err := p.RequireColumns(rec, 3); err != nil {
		return models.NormalizedTransaction{}, err
	}
	if rec.Field(1) == "Declined" {
		return models.NormalizedTransaction{}, ErrSkipRow
	}
	date, err := p.ParseDate(rec, rec.Field(0))
	if err != nil {
		return models.NormalizedTransaction{}, err
	}
	amount, err := p.ParseSigned(rec, rec.Field(2))
	if err != nil {
		return models.NormalizedTransaction{}, err
	}
	return p.Build(rec, date, amount, rec.Field(1), nil, "")
}

var _ BankParser = (*stubParser)(nil)

func TestBaseParser_CanParse(t *testing.T) {
	p := newStubParser(logging.NewMockLogger())

	assert.True(t, p.CanParse([]string{"date", `"Description"`, " AMOUNT "}))
	assert.False(t, p.CanParse([]string{"Date", "Description"}))
	assert.False(t, p.CanParse(nil))
	assert.Equal(t, "Stub", p.BankName())

	headers := p.ExpectedHeaders()
	headers[0] = "changed"
	assert.Equal(t, "Date", p.ExpectedHeaders()[0])
}

func TestParseRecords_Strict(t *testing.T) {
	p := newStubParser(logging.NewMockLogger())

	txs, err := p.Parse(strings.NewReader("Date,Description,Amount\n01/06/2025,Coffee,-2.50\n\n02/06/2025,Client,100\n"))
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), txs[0].Date())
	assert.True(t, txs[1].Amount().Equal(decimal.NewFromInt(100)))
}

func TestParseRecordsCounted_SkippedRows(t *testing.T) {
	input := "Date,Description,Amount\n" +
		"01/06/2025,Coffee,-2.50\n" +
		"01/06/2025,Declined,-9.99\n" +
		"02/06/2025,Declined,-1.00\n" +
		"03/06/2025,Client,100\n"

	txs, ignored, err := ParseRecordsCounted(newStubParser(nil), strings.NewReader(input), logging.NewMockLogger())
	require.NoError(t, err)
	assert.Len(t, txs, 2)
	assert.Equal(t, 2, ignored)

	_, ignored, err = ParseRecordsCounted(newStubParser(nil), strings.NewReader(input+"bad,X,1\n"), nil)
	require.Error(t, err)
	assert.Zero(t, ignored)
}

func TestParseRecords_StrictErrors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantField string
		wantLine  int
	}{
		{name: "bad date", input: "Date,Description,Amount\n31/31/2025,X,1\n", wantField: "date", wantLine: 2},
		{name: "bad amount", input: "Date,Description,Amount\n01/01/2025,X,abc\n", wantField: "amount", wantLine: 2},
		{name: "blank description", input: "Date,Description,Amount\n01/01/2025,,1\n01/01/2025, ,1\n", wantField: "description", wantLine: 2},
		{name: "short row after blank", input: "Date,Description,Amount\n\n01/01/2025,X\n", wantField: "columns", wantLine: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newStubParser(logging.NewMockLogger()).Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			var perr *parsererror.ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.wantField, perr.Field)
			assert.Equal(t, tt.wantLine, perr.Line)
			assert.Contains(t, err.Error(), "line")
		})
	}
}

func TestParseRecords_Empty(t *testing.T) {
	for _, input := range []string{"", "Date,Description,Amount\n", "Date,Description,Amount\n\n\n"} {
		txs, err := newStubParser(nil).Parse(strings.NewReader(input))
		require.NoError(t, err)
		assert.Empty(t, txs)
	}
}

func TestTolerantParser(t *testing.T) {
	logger := logging.NewMockLogger()
	tp := NewTolerantParser(newStubParser(logger), logger)

	input := "Date,Description,Amount\n" +
		"01/06/2025,Coffee,-2.50\n" +
		"bad-date,Broken,1\n" +
		"\n" +
		"02/06/2025,Client,100\n" +
		"03/06/2025,Short\n" +
		"04/06/2025,Declined,-5\n"

	result, err := tp.Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.True(t, result.HasErrors())
	assert.Equal(t, 2, result.SuccessCount())
	assert.Equal(t, 2, result.ErrorCount())
	assert.Equal(t, 1, result.Ignored)

	assert.Equal(t, 3, result.Errors[0].Line)
	assert.Equal(t, "bad-date,Broken,1", result.Errors[0].RawLine)
	assert.Contains(t, result.Errors[0].Message, "date")
	assert.Equal(t, 6, result.Errors[1].Line)

	assert.True(t, logger.HasEntry("WARN", "Skipping unparsable row"))
}

func TestTolerantParser_Empty(t *testing.T) {
	tp := NewTolerantParser(newStubParser(nil), nil)

	for _, input := range []string{"", "Date,Description,Amount\n"} {
		result, err := tp.Parse(strings.NewReader(input))
		require.NoError(t, err)
		assert.False(t, result.HasErrors())
		assert.Zero(t, result.SuccessCount())
		assert.Zero(t, result.ErrorCount())
	}
}
