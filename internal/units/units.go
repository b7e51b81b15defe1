// Package units holds the numeric rules used on site measurement sheets:
// millimetre/inch conversion, the rough-opening round-up rule and square-foot
// area. Every function is total: invalid input yields ok == false instead of
// an error or a zero value.
package units

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// mmPerInch is the exact millimetre length of one inch.
const mmPerInch = 25.4

// sqmmPerSquareFoot is the number of square millimetres in one square foot.
// 1 sq ft = 144 sq in = 144 * 25.4 * 25.4 sq mm = 92903.04 sq mm.
const sqmmPerSquareFoot = 92903.04

var (
	decMMPerInch   = decimal.NewFromFloat(mmPerInch)
	decSqmmPerSqFt = decimal.NewFromFloat(sqmmPerSquareFoot)
	decLowerBand   = decimal.RequireFromString("0.10")
	decUpperBand   = decimal.RequireFromString("0.60")
	decHalf        = decimal.RequireFromString("0.5")
)

func finitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// MMToInches converts millimetres to inches rounded to 2 decimals.
func MMToInches(mm float64) (float64, bool) {
	if !finitePositive(mm) {
		return 0, false
	}
	d := decimal.NewFromFloat(mm).Div(decMMPerInch).Round(2)
	return d.InexactFloat64(), true
}

// RoundUpForRO rounds an actual size (inches) up to its rough opening.
//
// With n the integer part and f the fractional part rounded to 2 decimals:
// f in [0.00, 0.10] gives n, f in (0.10, 0.60] gives n+0.5, anything above
// gives n+1. So 31.10 -> 31, 31.11 -> 31.5, 31.60 -> 31.5, 31.61 -> 32.
func RoundUpForRO(value float64) (float64, bool) {
	if !finitePositive(value) {
		return 0, false
	}
	return roundUpForRO(decimal.NewFromFloat(value)).InexactFloat64(), true
}

func roundUpForRO(v decimal.Decimal) decimal.Decimal {
	n := v.Floor()
	f := v.Sub(n).Round(2)
	switch {
	case f.LessThanOrEqual(decLowerBand):
		return n
	case f.LessThanOrEqual(decUpperBand):
		return n.Add(decHalf)
	default:
		return n.Add(decimal.NewFromInt(1))
	}
}

// SquareFeet returns the area of a widthMM x heightMM opening in square feet,
// rounded to 4 decimals.
func SquareFeet(widthMM, heightMM float64) (float64, bool) {
	if !finitePositive(widthMM) || !finitePositive(heightMM) {
		return 0, false
	}
	d := squareFeet(decimal.NewFromFloat(widthMM), decimal.NewFromFloat(heightMM))
	return d.InexactFloat64(), true
}

func squareFeet(w, h decimal.Decimal) decimal.Decimal {
	return w.Mul(h).Div(decSqmmPerSqFt).Round(4)
}

// ComposeKey joins parts with "_". Any empty part means there is no key yet.
func ComposeKey(parts ...string) (string, bool) {
	if len(parts) == 0 {
		return "", false
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return "", false
		}
	}
	return strings.Join(parts, "_"), true
}
