package generic

import (
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// QUANTITY NORMALIZER
// =============================================================================

var (
	hundredth = decimal.New(1, -2)
	one       = decimal.NewFromInt(1)
)

// Normalize rounds d to two decimal places and snaps it to the nearest
// integer when the rounded value lies within 0.01 of it.
//
//	Normalize(4.999) == 5
//	Normalize(5.001) == 5
//	Normalize(4.97)  == 4.97
func Normalize(d decimal.Decimal) decimal.Decimal {
	rounded := d.Round(2)
	nearest := rounded.Round(0)
	if rounded.Sub(nearest).Abs().LessThanOrEqual(hundredth) {
		return nearest
	}
	return rounded
}

// NormalizeFloat normalizes a raw float quantity. Non-finite input yields zero;
// callers that need a different fallback must check IsFinite first.
func NormalizeFloat(f float64) decimal.Decimal {
	if !IsFinite(f) {
		return decimal.Zero
	}
	return Normalize(decimal.NewFromFloat(f))
}

// IsFinite reports whether f is neither NaN nor ±Inf.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// FormatQuantity renders a normalized quantity: integers without a decimal
// point, everything else with exactly two decimals.
func FormatQuantity(d decimal.Decimal) string {
	n := Normalize(d)
	if n.IsInteger() {
		return n.StringFixed(0)
	}
	return n.StringFixed(2)
}

// One is the unit quantity used as the data-quality fallback.
func One() decimal.Decimal { return one }
