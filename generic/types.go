/*
Package generic provides the domain-agnostic building blocks of the leave engine.

PURPOSE:
  This package contains the primitives every leave computation is made of:
  quantities with a unit, calendar days, date windows, and the loose
  multi-key matching used to join records that carry inconsistent identifiers.
  Nothing here knows about employees or leave types.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (e.g., 3 Day, 4.5 Hour)
  - Unit: The granularity of accounting (Day or Hour)

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point drift in sums
  2. Totality: Constructors never fail; invalid input degrades to documented defaults
  3. Immutability: Every operation returns a new value

USAGE:
  used := generic.NewAmount(2.5, generic.UnitDay)
  used = used.Add(generic.NewAmountFromInt(1, generic.UnitDay))
  fmt.Println(used.Display()) // "3.50 Day"

SEE ALSO:
  - quantity.go: Normalization and formatting of quantities
  - time.go: Calendar-day time points and date windows
  - keys.go: Normalized multi-key matching
*/
package generic

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitDay  Unit = "Day"
	UnitHour Unit = "Hour"
)

// ParseUnit accepts the canonical names plus common lowercase/plural spellings.
// Returns false for anything else.
func ParseUnit(s string) (Unit, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "days":
		return UnitDay, true
	case "hour", "hours":
		return UnitHour, true
	}
	return "", false
}

func (u Unit) Valid() bool { return u == UnitDay || u == UnitHour }

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromInt(value int, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

func ZeroAmount(unit Unit) Amount { return Amount{Value: decimal.Zero, Unit: unit} }

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }
func (a Amount) Normalize() Amount            { return Amount{Value: Normalize(a.Value), Unit: a.Unit} }
func (a Amount) Float64() float64             { return a.Value.InexactFloat64() }
func (a Amount) Equal(b Amount) bool          { return a.Unit == b.Unit && a.Value.Equal(b.Value) }

// Max returns the larger of a and b.
func (a Amount) Max(b Amount) Amount {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// ClampZero returns a, or zero when a is negative.
func (a Amount) ClampZero() Amount { return a.Max(a.Zero()) }

// String renders the normalized quantity without its unit.
func (a Amount) String() string { return FormatQuantity(a.Value) }

// Display renders the normalized quantity followed by its unit, e.g. "4.50 Hour".
func (a Amount) Display() string {
	if a.Unit == "" {
		return a.String()
	}
	return a.String() + " " + string(a.Unit)
}
