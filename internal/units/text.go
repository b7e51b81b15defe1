package units

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Sheet cells hold numbers as text. The helpers below take and return cell
// text so that rounding happens exactly once, in decimal, and the stored text
// is what the next step of a cascade parses.

// Bounds on a parsed cell value. Exponent notation outside them would expand
// into arbitrarily long cell text downstream.
const (
	maxIntegerDigits  = 15
	maxFractionDigits = 20
)

// ParseNumber parses a cell value. Blank or non-numeric text is no value, as
// is a number with more than maxIntegerDigits integer digits or more than
// maxFractionDigits decimals ("1e400", "1e-30").
func ParseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	exp := int64(d.Exponent())
	if exp < -maxFractionDigits || int64(d.NumDigits())+exp > maxIntegerDigits {
		return decimal.Zero, false
	}
	return d, true
}

func parsePositive(s string) (decimal.Decimal, bool) {
	d, ok := ParseNumber(s)
	if !ok || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// SubtractText returns value - minus as cell text ("950", "950.5").
func SubtractText(value, minus string) (string, bool) {
	v, ok := ParseNumber(value)
	if !ok {
		return "", false
	}
	m, ok := ParseNumber(minus)
	if !ok {
		return "", false
	}
	return v.Sub(m).String(), true
}

// InchesText converts a millimetre cell to inches with 2 fixed decimals.
func InchesText(mm string) (string, bool) {
	d, ok := parsePositive(mm)
	if !ok {
		return "", false
	}
	return d.Div(decMMPerInch).Round(2).StringFixed(2), true
}

// ROText applies RoundUpForRO to an inch cell ("31.5", "32").
func ROText(inches string) (string, bool) {
	d, ok := parsePositive(inches)
	if !ok {
		return "", false
	}
	return roundUpForRO(d).String(), true
}

// SquareFeetText computes the square-foot area of two millimetre cells with 4
// fixed decimals.
func SquareFeetText(widthMM, heightMM string) (string, bool) {
	w, ok := parsePositive(widthMM)
	if !ok {
		return "", false
	}
	h, ok := parsePositive(heightMM)
	if !ok {
		return "", false
	}
	return squareFeet(w, h).StringFixed(4), true
}
