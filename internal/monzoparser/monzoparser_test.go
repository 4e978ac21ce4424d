package monzoparser

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanParse(t *testing.T) {
	core := []string{"Transaction ID", "Date", "Time", "Type", "Name", "Emoji", "Category", "Amount"}
	p := NewParser(nil)

	assert.True(t, p.CanParse(core), "exactly the eight core columns")
	assert.True(t, p.CanParse(append(append([]string{}, core...), "Currency", "Local amount")))
	assert.False(t, p.CanParse(core[:7]), "seven columns")
	assert.False(t, p.CanParse(nil))

	swapped := append([]string{}, core...)
	swapped[4], swapped[5] = swapped[5], swapped[4]
	assert.False(t, p.CanParse(swapped))
}

func TestParse(t *testing.T) {
	input := "Transaction ID,Date,Time,Type,Name,Emoji,Category,Amount,Currency,Local amount,Local currency,Notes and #tags,Address,Receipt,Description,Category split,Money Out,Money In\n" +
		"tx_0001,10/06/2025,08:15:00,Card payment,Pret A Manger,🥪,Eating out,-4.75,GBP,-4.75,GBP,,,,PRET A MANGER LONDON,,-4.75,\n" +
		"tx_0002,11/06/2025,09:00:00,Faster payment,,,Income,250.00,GBP,250.00,GBP,,,,ACME INVOICE 7,,,250.00\n" +
		"tx_0003,12/06/2025,10:00:00,Pot transfer,,,Savings,-10.00\n"

	txs, err := NewParser(nil).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), txs[0].Date())
	assert.Equal(t, "Pret A Manger", txs[0].Description())
	assert.Equal(t, "tx_0001", txs[0].Reference())
	assert.True(t, txs[0].Amount().Equal(decimal.RequireFromString("-4.75")))

	assert.Equal(t, "ACME INVOICE 7", txs[1].Description())
	assert.Equal(t, "Pot transfer", txs[2].Description())
}

func TestParse_MultiLineNotes(t *testing.T) {
	input := "Transaction ID,Date,Time,Type,Name,Emoji,Category,Amount,Currency,Local amount,Local currency,Notes and #tags\n" +
		"tx_0001,10/06/2025,12:30:00,Card payment,Dishoom,,Eating out,-38.20,GBP,-38.20,GBP,\"lunch\nwith client\"\n" +
		"tx_0002,11/06/2025,09:00:00,Card payment,Trainline,,Transport,-42.50,GBP,-42.50,GBP,\n"

	txs, err := NewParser(nil).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "Dishoom", txs[0].Description())
	assert.True(t, txs[0].Amount().Equal(decimal.RequireFromString("-38.20")))
	assert.Equal(t, "Trainline", txs[1].Description())
}
