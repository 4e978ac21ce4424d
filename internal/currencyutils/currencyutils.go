// Package currencyutils parses and formats the money columns found in UK bank exports.
package currencyutils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrEmptyAmount is returned by ParseAmount for a blank column.
var ErrEmptyAmount = errors.New("empty amount")

var symbolPattern = regexp.MustCompile(`[£$€\s\x{00A0}]|GBP`)

// ParseAmount parses a money column such as "1,234.56", "£12.00", "-3.5" or
// "(12.00)". Commas are treated as thousands separators. A blank value
// returns ErrEmptyAmount so callers can decide whether the column is optional.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	standardized := StandardizeAmount(amountStr)
	if standardized == "" {
		return decimal.Zero, ErrEmptyAmount
	}

	negative := false
	if strings.HasPrefix(standardized, "(") && strings.HasSuffix(standardized, ")") {
		negative = true
		standardized = strings.TrimSuffix(strings.TrimPrefix(standardized, "("), ")")
	}

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	if negative {
		amount = amount.Abs().Neg()
	}
	return amount, nil
}

// ParseOptionalAmount is ParseAmount where a blank column means zero.
func ParseOptionalAmount(amountStr string) (decimal.Decimal, error) {
	amount, err := ParseAmount(amountStr)
	if errors.Is(err, ErrEmptyAmount) {
		return decimal.Zero, nil
	}
	return amount, err
}

// StandardizeAmount strips currency symbols, whitespace and thousands commas.
func StandardizeAmount(amountStr string) string {
	amountStr = symbolPattern.ReplaceAllString(amountStr, "")
	amountStr = strings.ReplaceAll(amountStr, ",", "")
	return strings.Trim(amountStr, `"'`)
}

// SplitColumns combines a money-out/money-in pair into one signed amount:
// income positive, expense negative. Either side may be blank, not both.
func SplitColumns(moneyOut, moneyIn string) (decimal.Decimal, error) {
	out, err := ParseOptionalAmount(moneyOut)
	if err != nil {
		return decimal.Zero, err
	}
	in, err := ParseOptionalAmount(moneyIn)
	if err != nil {
		return decimal.Zero, err
	}
	if StandardizeAmount(moneyOut) == "" && StandardizeAmount(moneyIn) == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	return in.Abs().Sub(out.Abs()), nil
}

// FormatAmount formats an amount with two decimals and an optional currency symbol.
func FormatAmount(amount decimal.Decimal, currency string) string {
	formatted := amount.StringFixed(2)
	switch strings.ToUpper(currency) {
	case "":
		return formatted
	case "GBP":
		if amount.IsNegative() {
			return "-£" + amount.Abs().StringFixed(2)
		}
		return "£" + formatted
	case "EUR":
		return "€" + formatted
	case "USD":
		return "$" + formatted
	default:
		return currency + " " + formatted
	}
}
