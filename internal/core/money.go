// Package core provides money parsing and handling utilities.
//
// Rents are recorded as free text. They are parsed into decimals only when a
// report needs them, so a half-typed entry never blocks saving a ledger.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseRent converts recorded rent text into an amount.
//
// Thousands separators are stripped before parsing. Empty, non-numeric and
// negative values return ErrInvalidAmount.
//
// Examples:
//
//	ParseRent("3000")    -> 3000, nil
//	ParseRent("1,500")   -> 1500, nil
//	ParseRent(" 12.5 ")  -> 12.5, nil
//	ParseRent("-1")      -> 0, ErrInvalidAmount
func ParseRent(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if clean == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	return d, nil
}

// ParseFee parses a service fee. A blank fee means no fee.
func ParseFee(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return ParseRent(s)
}

// FormatAmount renders an amount without trailing zeros ("3000", "12.5").
func FormatAmount(d decimal.Decimal) string {
	return d.String()
}
