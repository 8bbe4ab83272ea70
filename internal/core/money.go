// Package core provides money parsing and rounding utilities.
//
// Amounts travel as plain float64 values end to end. Rounding for output goes
// through shopspring/decimal so that values such as 0.125 round the way a
// reader expects instead of the way their binary representation would.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds v to two decimal places, half away from zero.
//
// Examples:
//
//	Round2(66.666) -> 66.67
//	Round2(0.125)  -> 0.13
//	Round2(-0.001) -> 0
func Round2(v float64) float64 {
	return RoundTo(v, 2)
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int32) float64 {
	if !isFinite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// FormatAmount renders v with a currency symbol and a fixed number of places.
func FormatAmount(symbol string, v float64, places int32) string {
	return symbol + decimal.NewFromFloat(v).StringFixed(places)
}

// ParseDecimal parses a decimal string such as "20000" or "1234,50".
// Both dot and comma separators are accepted. Sign is preserved.
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return d.InexactFloat64(), nil
}

// ParseAmount parses a strictly positive amount.
func ParseAmount(s string) (float64, error) {
	v, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}
