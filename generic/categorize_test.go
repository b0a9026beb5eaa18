package generic_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/warp/attendance-engine/generic"
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func TestCategorize_ZeroIsMatch(t *testing.T) {
	for _, th := range []generic.Thresholds{generic.PresentDayThresholds, generic.HourThresholds} {
		assert.Equal(t, generic.CategoryMatch, generic.Categorize(decimal.NewNullDecimal(decimal.Zero), th))
	}
}

func TestCategorize_MissingReferenceIsNA(t *testing.T) {
	diff := generic.Difference(dec(22), nil)
	assert.False(t, diff.Valid)
	assert.Equal(t, generic.CategoryNA, generic.Categorize(diff, generic.PresentDayThresholds))
}

func TestCategorize_PresentDayBuckets(t *testing.T) {
	cases := []struct {
		diff float64
		want generic.Category
	}{
		{0.5, generic.CategoryMinor},
		{-0.5, generic.CategoryMinor},
		{1, generic.CategoryMedium},
		{-1, generic.CategoryMedium},
		{1.5, generic.CategoryMajor},
		{-3, generic.CategoryMajor},
	}
	for _, tc := range cases {
		got := generic.Categorize(decimal.NewNullDecimal(dec(tc.diff)), generic.PresentDayThresholds)
		assert.Equal(t, tc.want, got, "diff %v", tc.diff)
	}
}

func TestCategorize_HourBuckets(t *testing.T) {
	assert.Equal(t, generic.CategoryMinor, generic.Categorize(decimal.NewNullDecimal(dec(0.25)), generic.HourThresholds))
	assert.Equal(t, generic.CategoryMinor, generic.Categorize(decimal.NewNullDecimal(dec(1)), generic.HourThresholds))
	assert.Equal(t, generic.CategoryMedium, generic.Categorize(decimal.NewNullDecimal(dec(1.75)), generic.HourThresholds))
	assert.Equal(t, generic.CategoryMajor, generic.Categorize(decimal.NewNullDecimal(dec(2.01)), generic.HourThresholds))
}

func TestDifference_SoftwareMinusReference(t *testing.T) {
	hr := dec(20)
	diff := generic.Difference(dec(21.5), &hr)
	assert.True(t, diff.Valid)
	assert.True(t, dec(1.5).Equal(diff.Decimal))
}
