/*
Package generic provides the domain-agnostic primitives of the attendance engine.

PURPOSE:
  This package contains the small building blocks every payroll rule needs
  but none of them owns: exact quantities, clock and duration parsing,
  the difference categorizer, and the centralized error taxonomy.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (e.g., 1.5 days, 90 minutes, 2.25 hours)
  - Unit: days, hours, minutes

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so half-days and haircuts never drift
  2. Clamping: Final quantities are clamped at zero, never negative
  3. Purity: Nothing here does I/O or holds state

USAGE:
  paa := generic.NewAmount(21.5, generic.UnitDays)
  total := paa.Add(generic.NewAmountFromInt(2, generic.UnitDays)).ClampZero()

SEE ALSO:
  - time.go: Clock and duration parsing
  - categorize.go: Software-vs-reference difference categories
  - errors.go: Validation errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal `json:"value"`
	Unit  Unit            `json:"unit"`
}

type Unit string

const (
	UnitDays    Unit = "days"
	UnitHours   Unit = "hours"
	UnitMinutes Unit = "minutes"
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromDecimal(value decimal.Decimal, unit Unit) Amount {
	return Amount{Value: value, Unit: unit}
}

func NewAmountFromInt(value int, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

// MustParseDecimal parses s, degrading to zero on malformed input.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (a Amount) Zero() Amount        { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) IsNegative() bool    { return a.Value.IsNegative() }
func (a Amount) IsZero() bool        { return a.Value.IsZero() }
func (a Amount) Equal(b Amount) bool { return a.Value.Equal(b.Value) && a.Unit == b.Unit }

// ClampZero returns a, or zero when a is negative.
func (a Amount) ClampZero() Amount {
	if a.IsNegative() {
		return a.Zero()
	}
	return a
}

func (a Amount) String() string {
	return a.Value.String() + " " + string(a.Unit)
}

// =============================================================================
// CONVERSIONS
// =============================================================================

var sixty = decimal.NewFromInt(60)

// MinutesToHours converts whole minutes to hours rounded to two places.
func MinutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(sixty).Round(2)
}

// HoursToMinutes converts (possibly fractional) hours to whole minutes,
// rounding half away from zero.
func HoursToMinutes(hours decimal.Decimal) int {
	return int(hours.Mul(sixty).Round(0).IntPart())
}
