package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)

	for _, input := range []string{
		"05/06/2025",
		"5/6/2025",
		"05-06-2025",
		"05 Jun 2025",
		"5 Jun 2025",
		"05-Jun-2025",
		"2025-06-05",
		"2025-06-05 14:32:10",
		"  05/06/2025 ",
	} {
		t.Run(input, func(t *testing.T) {
			got, err := ParseDate(input)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, input := range []string{"", "31/02/2025", "tomorrow", "13/13/2025"} {
		_, err := ParseDate(input)
		assert.Error(t, err, input)
	}
}

func TestConvertPattern(t *testing.T) {
	tests := map[string]string{
		"dd/MM/yyyy":  "02/01/2006",
		"yyyy-MM-dd":  "2006-01-02",
		"d/M/yyyy":    "2/1/2006",
		"dd MMM yyyy": "02 Jan 2006",
		"02/01/2006":  "02/01/2006",
	}
	for in, want := range tests {
		assert.Equal(t, want, ConvertPattern(in), in)
	}
}
