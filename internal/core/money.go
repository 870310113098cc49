// Package core provides the finance domain model and money helpers.
//
// This file contains functions for parsing monetary amounts typed by users
// and formatting them back for exports.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SameAmountTolerance is the largest difference at which two amounts are
// still considered equal.
var SameAmountTolerance = decimal.RequireFromString("0.01")

// ParseDecimal converts a user typed number to a decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign. Thousands separators are not supported.
//
// Examples:
//
//	ParseDecimal("12.34") -> 12.34, nil
//	ParseDecimal("12,34") -> 12.34, nil
//	ParseDecimal("-5")    -> -5, nil
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseAmount parses a movement amount. Only strictly positive values are
// accepted.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with two decimals and a dot separator.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// SumAmounts adds up the amounts of the given movements.
func SumAmounts(movements []Movement) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		total = total.Add(m.Amount)
	}
	return total
}
