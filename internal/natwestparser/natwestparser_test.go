package natwestparser

import (
	"errors"
	"strings"
	"testing"
	"time"

	"fjacquet/bank-import/internal/parsererror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Date,Type,Description,Value,Balance,Account Name,Account Number\n"

func TestParse(t *testing.T) {
	txs, err := NewParser(nil).Parse(strings.NewReader(header +
		"05 Jun 2025,D/D,BRITISH GAS,-64.00,936.00,MR J SMITH,123456-12345678\n" +
		"06/06/2025,BAC,ACME LTD,2500.00,3436.00,MR J SMITH,123456-12345678\n" +
		"07/06/2025,POS,,-3.10,3432.90,MR J SMITH,123456-12345678\n"))
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), txs[0].Date())
	assert.True(t, txs[0].Amount().Equal(decimal.RequireFromString("-64")))
	assert.Equal(t, "BRITISH GAS", txs[0].Description())
	assert.True(t, txs[1].IsIncome())
	assert.Equal(t, "POS", txs[2].Description())
}

func TestParse_MissingValue(t *testing.T) {
	_, err := NewParser(nil).Parse(strings.NewReader(header + "05/06/2025,D/D,BRITISH GAS,,936.00,MR J SMITH,1\n"))
	var perr *parsererror.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, parsererror.FieldAmount, perr.Field)
	assert.Equal(t, 2, perr.Line)
}
