package parsererror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ParseError
		expected string
	}{
		{
			name: "amount",
			err: &ParseError{
				Parser: "Barclays",
				Field:  FieldAmount,
				Line:   3,
				Value:  "abc",
				Err:    errors.New("invalid decimal"),
			},
			expected: "Barclays: line 3: failed to parse amount='abc': invalid decimal",
		},
		{
			name: "columns",
			err: &ParseError{
				Parser: "Monzo",
				Field:  FieldColumns,
				Line:   2,
				Value:  "a,b",
				Err:    errors.New("expected at least 8 columns, got 2"),
			},
			expected: "Monzo: line 2: failed to parse columns='a,b': expected at least 8 columns, got 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestParseError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := fmt.Errorf("import failed: %w", &ParseError{Parser: "HSBC", Field: FieldDate, Line: 4, Err: inner})

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 4, pe.Line)
	assert.Equal(t, FieldDate, pe.Field)
	assert.True(t, errors.Is(err, inner))
}

func TestRowError(t *testing.T) {
	re := RowError{Line: 5, RawLine: "x,y", Message: "bad date"}
	assert.Equal(t, "line 5: bad date", re.Error())
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "description", Reason: "must not be blank"}
	assert.Equal(t, "invalid transaction: description must not be blank", err.Error())
}

func TestUnknownFormatError(t *testing.T) {
	err := fmt.Errorf("detect: %w", &UnknownFormatError{Source: "s.csv", Headers: []string{"A", "B"}})
	assert.True(t, errors.Is(err, ErrUnknownFormat))
	assert.False(t, errors.Is(err, ErrFileTooLarge))
	assert.Contains(t, err.Error(), "headers [A, B]")

	empty := &UnknownFormatError{Source: "empty.csv"}
	assert.Contains(t, empty.Error(), "no header row")
}

func TestFileTooLargeError(t *testing.T) {
	err := &FileTooLargeError{Source: "big.csv", Size: 11, Limit: 10}
	assert.True(t, errors.Is(err, ErrFileTooLarge))
	assert.Equal(t, "file 'big.csv' is 11 bytes, exceeding the 10 byte limit", err.Error())
}

func TestInvalidFormatError(t *testing.T) {
	withFile := &InvalidFormatError{FilePath: "m.yaml", ExpectedFormat: "amount column", Msg: "no amount"}
	assert.Equal(t, "invalid format in file 'm.yaml': no amount. Expected: amount column", withFile.Error())

	noFile := &InvalidFormatError{ExpectedFormat: "amount column", Msg: "no amount"}
	assert.Equal(t, "invalid format: no amount. Expected: amount column", noFile.Error())
}
