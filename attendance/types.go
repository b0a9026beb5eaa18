// Package attendance holds the normalized attendance data model: status codes,
// per-day records, employee records, and the user-applied mutations
// (day-swap adjustments and holiday selections) layered over a parsed baseline.
package attendance

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// STATUS CODES
// =============================================================================

// Status is a canonical day status code from the time-clock export.
// Unknown codes are kept as-is and contribute nothing to any total.
type Status string

const (
	StatusPresent        Status = "P"
	StatusAbsent         Status = "A"
	StatusHalfPresent    Status = "P/A"
	StatusHalfPresentAlt Status = "PA"
	StatusHoliday        Status = "H"
	StatusWeekOff        Status = "WO"
	StatusAdjPresent     Status = "ADJ-P"
	StatusAdjHalfPresent Status = "ADJ-P/A"
	StatusAdjHoliday     Status = "ADJ-M"
	StatusWeekOffWorked  Status = "WO-I"
	StatusAdjHolidayWO   Status = "ADJ-M/WO-I"
	StatusMaintenanceWO  Status = "M/WO-I"
	StatusOnDuty         Status = "OD"
	StatusLeave          Status = "LEAVE"
	StatusNotAvailable   Status = "NA"
)

// CanonicalStatus upper-cases a raw code and strips all whitespace,
// so " adj - p " and "ADJ-P" compare equal.
func CanonicalStatus(raw string) Status {
	return Status(strings.ToUpper(strings.Join(strings.Fields(raw), "")))
}

// IsHalfPresent reports the half-day family: P/A, PA, ADJ-P/A.
func (s Status) IsHalfPresent() bool {
	return s == StatusHalfPresent || s == StatusHalfPresentAlt || s == StatusAdjHalfPresent
}

// IsPlainHalfPresent is P/A or PA, without the adjusted variant.
func (s Status) IsPlainHalfPresent() bool {
	return s == StatusHalfPresent || s == StatusHalfPresentAlt
}

// IsSpecialHoliday reports the statuses that form a holiday run for the
// sandwich rule.
func (s Status) IsSpecialHoliday() bool {
	switch s {
	case StatusHoliday, StatusAdjHoliday, StatusWeekOffWorked, StatusAdjHolidayWO:
		return true
	}
	return false
}

// IsAbsentLike is A or NA.
func (s Status) IsAbsentLike() bool {
	return s == StatusAbsent || s == StatusNotAvailable
}

// RequiresPunches reports statuses that only count when the day carries a
// real in and out punch.
func (s Status) RequiresPunches() bool {
	switch s {
	case StatusAdjPresent, StatusAdjHalfPresent, StatusMaintenanceWO, StatusWeekOffWorked, StatusAdjHolidayWO:
		return true
	}
	return false
}

// =============================================================================
// DAY
// =============================================================================

// Day is one calendar day for one employee. Date is the day of month only;
// month and year are disambiguated by the caller.
type Day struct {
	Date      int    `json:"date"`
	DayOfWeek string `json:"day_of_week"` // "Mo".."Su"
	Status    Status `json:"status"`
	InTime    string `json:"in_time"`  // "HH:MM" or "-"
	OutTime   string `json:"out_time"` // "HH:MM" or "-"
	LateMins  int    `json:"late_mins,omitempty"`
	EarlyDep  int    `json:"early_dep,omitempty"`
	OTHrs     string `json:"ot_hrs,omitempty"`
	WorkHrs   string `json:"work_hrs,omitempty"`
}

// HasPunches reports whether both in and out are real punches.
func (d Day) HasPunches() bool {
	return generic.IsPunch(d.InTime) && generic.IsPunch(d.OutTime)
}

func (d Day) InMinutes() int  { return generic.ParseClock(d.InTime) }
func (d Day) OutMinutes() int { return generic.ParseClock(d.OutTime) }

// WorkedMinutes is out minus in when both punches exist (wrapping overnight),
// otherwise the sheet's work-hours cell.
func (d Day) WorkedMinutes() int {
	if d.HasPunches() {
		return generic.ElapsedMinutes(d.InMinutes(), d.OutMinutes())
	}
	return generic.ParseHours(d.WorkHrs)
}

// IsSaturday matches the two-letter weekday code case-insensitively.
func (d Day) IsSaturday() bool {
	return strings.EqualFold(strings.TrimSpace(d.DayOfWeek), "Sa")
}

// =============================================================================
// EMPLOYEE RECORD
// =============================================================================

// EmployeeRecord aggregates one employee's month.
//
// INVARIANT: Days are sorted ascending by Date with no duplicates. Build
// records with NewEmployeeRecord (or call Normalized) so the sandwich-rule
// scan can rely on calendar order.
type EmployeeRecord struct {
	EmpCode     string          `json:"emp_code"`
	EmpName     string          `json:"emp_name"`
	CompanyName string          `json:"company_name"`
	Department  string          `json:"department"`
	Present     decimal.Decimal `json:"present"`
	Absent      decimal.Decimal `json:"absent"`
	Holiday     decimal.Decimal `json:"holiday"`
	WeekOff     decimal.Decimal `json:"week_off"`
	Days        []Day           `json:"days"`
}

// NewEmployeeRecord builds a normalized record.
func NewEmployeeRecord(code, name, company, department string, days []Day) (EmployeeRecord, error) {
	return EmployeeRecord{
		EmpCode:     code,
		EmpName:     name,
		CompanyName: company,
		Department:  department,
		Days:        days,
	}.Normalized()
}

// Normalized returns a copy with canonical statuses and days sorted by date.
// Dates outside 1..31 and duplicate dates are rejected.
func (r EmployeeRecord) Normalized() (EmployeeRecord, error) {
	out := r
	out.EmpCode = strings.TrimSpace(r.EmpCode)
	out.Days = make([]Day, len(r.Days))
	copy(out.Days, r.Days)

	seen := make(map[int]bool, len(out.Days))
	for i := range out.Days {
		d := &out.Days[i]
		if d.Date < 1 || d.Date > 31 {
			return EmployeeRecord{}, &generic.RecordError{EmpCode: out.EmpCode, Date: d.Date, Err: generic.ErrInvalidDate}
		}
		if seen[d.Date] {
			return EmployeeRecord{}, &generic.RecordError{EmpCode: out.EmpCode, Date: d.Date, Err: generic.ErrDuplicateDate}
		}
		seen[d.Date] = true
		d.Status = CanonicalStatus(string(d.Status))
		if strings.TrimSpace(d.InTime) == "" {
			d.InTime = generic.NoPunch
		}
		if strings.TrimSpace(d.OutTime) == "" {
			d.OutTime = generic.NoPunch
		}
	}
	sort.SliceStable(out.Days, func(i, j int) bool { return out.Days[i].Date < out.Days[j].Date })
	return out, nil
}

// Day returns the day with the given date.
func (r EmployeeRecord) Day(date int) (Day, bool) {
	if i := r.dayIndex(date); i >= 0 {
		return r.Days[i], true
	}
	return Day{}, false
}

func (r EmployeeRecord) dayIndex(date int) int {
	i := sort.Search(len(r.Days), func(i int) bool { return r.Days[i].Date >= date })
	if i < len(r.Days) && r.Days[i].Date == date {
		return i
	}
	return -1
}

// Clone deep-copies the record so mutations never touch the original.
func (r EmployeeRecord) Clone() EmployeeRecord {
	out := r
	out.Days = make([]Day, len(r.Days))
	copy(out.Days, r.Days)
	return out
}

// =============================================================================
// OVERRIDE VALUE TYPES
// =============================================================================

// ShiftWindow is a custom shift in minutes since midnight.
type ShiftWindow struct {
	StartMinutes int `json:"start_minutes"`
	EndMinutes   int `json:"end_minutes"`
}

// GrantWindow is an inclusive day-of-month range during which overtime is paid.
type GrantWindow struct {
	FromDay int `json:"from_day"`
	ToDay   int `json:"to_day"`
}

// Contains reports whether date falls inside the window.
func (g GrantWindow) Contains(date int) bool {
	return date >= g.FromDay && date <= g.ToDay
}

type PunchType string

const (
	PunchIn  PunchType = "in"
	PunchOut PunchType = "out"
)

// Punch is one lunch/break punch.
type Punch struct {
	Type    PunchType `json:"type"`
	Minutes int       `json:"minutes"`
}
