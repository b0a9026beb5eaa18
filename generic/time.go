package generic

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CLOCK - Minutes since midnight
// =============================================================================

// MinutesPerDay is the length of a calendar day in minutes.
const MinutesPerDay = 24 * 60

// NoPunch is the sentinel time-clock exports use for a missing punch.
const NoPunch = "-"

var minutesPerDay = decimal.NewFromInt(MinutesPerDay)

// ParseClock converts a time-of-day to minutes since midnight.
//
// Accepted forms:
//   - "HH:MM" and "HH:MM:SS" (seconds are dropped)
//   - a spreadsheet serial such as "0.3541666" (the fractional part is the
//     time of day; any whole-day part is ignored)
//
// Anything else, including NoPunch and the empty string, is 0. Payroll
// totals depend on malformed cells degrading silently, so this never errors.
func ParseClock(s string) int {
	s = strings.TrimSpace(s)
	if s == "" || s == NoPunch {
		return 0
	}
	if strings.Contains(s, ":") {
		h, m, ok := splitHourMinute(s)
		if !ok {
			return 0
		}
		return h*60 + m
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return 0
	}
	frac := d.Sub(d.Floor())
	return int(frac.Mul(minutesPerDay).Round(0).IntPart()) % MinutesPerDay
}

// IsPunch reports whether s holds a real time-clock punch.
func IsPunch(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || s == NoPunch {
		return false
	}
	if strings.Contains(s, ":") {
		_, _, ok := splitHourMinute(s)
		return ok
	}
	d, err := decimal.NewFromString(s)
	return err == nil && !d.IsNegative()
}

// =============================================================================
// DURATIONS - Worked time, overtime
// =============================================================================

// ParseHours converts a duration to minutes.
//
// "HH:MM" is hours and minutes (hours may exceed 23); a bare number is
// decimal hours ("2.5" is 150). Malformed input is 0.
func ParseHours(s string) int {
	s = strings.TrimSpace(s)
	if s == "" || s == NoPunch {
		return 0
	}
	if strings.Contains(s, ":") {
		neg := strings.HasPrefix(s, "-")
		h, m, ok := splitHourMinute(strings.TrimPrefix(s, "-"))
		if !ok {
			return 0
		}
		if neg {
			return -(h*60 + m)
		}
		return h*60 + m
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return HoursToMinutes(d)
}

// ParseMinutes reads a pre-computed minute count. Sheets carry these either
// as plain integers or as "H:MM".
func ParseMinutes(s string) int {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ":") {
		return ParseHours(s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return int(d.Round(0).IntPart())
}

// FormatClock renders minutes since midnight as "HH:MM", wrapping at 24h.
func FormatClock(minutes int) string {
	minutes %= MinutesPerDay
	if minutes < 0 {
		minutes += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatDuration renders a minute count as "H:MM" ("-1:05" when negative).
func FormatDuration(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%d:%02d", sign, minutes/60, minutes%60)
}

// ElapsedMinutes is end minus start, wrapping past midnight for overnight spans.
func ElapsedMinutes(start, end int) int {
	d := end - start
	if d < 0 {
		d += MinutesPerDay
	}
	return d
}

// ClockAfter places clock on the timeline that starts at anchor: a clock
// earlier than the anchor belongs to the next day. The result may exceed
// MinutesPerDay.
func ClockAfter(anchor, clock int) int {
	d := (clock - anchor) % MinutesPerDay
	if d < 0 {
		d += MinutesPerDay
	}
	return anchor + d
}

// ClockDelta is the signed shortest distance from ref to clock, within half
// a day either way. 00:10 is 130 minutes after 22:00, and 23:50 is 40 minutes
// before 00:30.
func ClockDelta(ref, clock int) int {
	d := clock - ref
	switch {
	case d > MinutesPerDay/2:
		d -= MinutesPerDay
	case d <= -MinutesPerDay/2:
		d += MinutesPerDay
	}
	return d
}

func splitHourMinute(s string) (int, int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || h < 0 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
