/*
categorize.go - Software-vs-reference difference categories

PURPOSE:
  Payroll figures computed here are checked against the numbers HR worked
  out by hand. Every metric (present days, late hours, overtime hours) is
  bucketed with the same rule, differing only in its thresholds.

CATEGORIES:
  N/A     reference value missing
  Match   zero difference
  Minor   |diff| <= Minor threshold
  Medium  |diff| <= Medium threshold
  Major   anything larger

EXAMPLE:
  diff := generic.Difference(decimal.NewFromFloat(22), &hr)
  cat := generic.Categorize(diff, generic.PresentDayThresholds)
*/
package generic

import "github.com/shopspring/decimal"

type Category string

const (
	CategoryNA     Category = "N/A"
	CategoryMatch  Category = "Match"
	CategoryMinor  Category = "Minor"
	CategoryMedium Category = "Medium"
	CategoryMajor  Category = "Major"
)

// Categories lists every category in report order.
var Categories = []Category{CategoryMatch, CategoryMinor, CategoryMedium, CategoryMajor, CategoryNA}

// Thresholds are the upper bounds (inclusive) of the Minor and Medium buckets.
type Thresholds struct {
	Minor  decimal.Decimal
	Medium decimal.Decimal
}

var (
	// PresentDayThresholds buckets present-day gaps: half a day is Minor,
	// a full day Medium, anything beyond Major.
	PresentDayThresholds = Thresholds{Minor: decimal.NewFromFloat(0.5), Medium: decimal.NewFromInt(1)}

	// HourThresholds buckets late-hour and overtime-hour gaps.
	HourThresholds = Thresholds{Minor: decimal.NewFromInt(1), Medium: decimal.NewFromInt(2)}
)

// Difference returns software minus reference, or an invalid value when the
// reference is missing.
func Difference(software decimal.Decimal, reference *decimal.Decimal) decimal.NullDecimal {
	if reference == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(software.Sub(*reference))
}

// Categorize buckets a difference. An invalid diff is N/A.
func Categorize(diff decimal.NullDecimal, th Thresholds) Category {
	if !diff.Valid {
		return CategoryNA
	}
	abs := diff.Decimal.Abs()
	switch {
	case abs.IsZero():
		return CategoryMatch
	case abs.LessThanOrEqual(th.Minor):
		return CategoryMinor
	case abs.LessThanOrEqual(th.Medium):
		return CategoryMedium
	default:
		return CategoryMajor
	}
}
