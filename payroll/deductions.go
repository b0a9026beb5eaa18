/*
deductions.go - Late arrival, early departure and break overstay

PURPOSE:
  Totals the minutes an employee owes for one month. The total feeds the
  present-day cross-deduction through the net overtime figure.

PER DAY:
  1. Late: in-punch past the reference start. Half-days punching in after
     the cutoff are measured against the evening start. Lateness within the
     grace period is dropped entirely; beyond it the whole lateness counts.
  2. Early departure: the sheet's early-departure minutes, or the gap to the
     custom shift end when one is set. Half-days and maintenance week-off
     days never count; neither do short ADJ-P days.
  3. Break excess: (Out, In) punch pairs measured against the break windows.
  4. Short day: half-days worked under the half-day floor, kept in their own
     bucket and only added when the policy says so.

AGGREGATION:
  gross = late + early + break (+ short day)
  Staff: total = max(0, gross - relaxation)
  Worker: total = gross
*/
package payroll

import (
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/generic"
)

// DayDeduction is one day's share of the deduction.
type DayDeduction struct {
	Date                  int               `json:"date"`
	Status                attendance.Status `json:"status"`
	LateMinutes           int               `json:"late_minutes,omitempty"`
	EarlyDepartureMinutes int               `json:"early_departure_minutes,omitempty"`
	BreakExcessMinutes    int               `json:"break_excess_minutes,omitempty"`
	ShortDayMinutes       int               `json:"short_day_minutes,omitempty"`
	UnauthorizedBreaks    int               `json:"unauthorized_breaks,omitempty"`
}

func (d DayDeduction) isZero() bool {
	return d.LateMinutes == 0 && d.EarlyDepartureMinutes == 0 &&
		d.BreakExcessMinutes == 0 && d.ShortDayMinutes == 0 && d.UnauthorizedBreaks == 0
}

type DeductionResult struct {
	LateMinutes           int  `json:"late_minutes"`
	EarlyDepartureMinutes int  `json:"early_departure_minutes"`
	BreakExcessMinutes    int  `json:"break_excess_minutes"`
	LessThan4HoursMinutes int  `json:"less_than_4_hours_minutes"`
	GrossMinutes          int  `json:"gross_minutes"`
	RelaxationMinutes     int  `json:"relaxation_minutes"`
	Total                 int  `json:"total"`
	Staff                 bool `json:"staff"`

	// Days lists only days that contributed something.
	Days []DayDeduction `json:"days,omitempty"`
}

// Deductions computes one employee's late, early and break deduction.
func (e *Engine) Deductions(emp attendance.EmployeeRecord, ov Overrides) DeductionResult {
	p := e.policy
	staff := IsStaff(emp, p)
	shift, hasShift := ov.CustomShift(emp.EmpCode, emp.EmpName)

	res := DeductionResult{Staff: staff}
	for _, d := range emp.Days {
		dd := DayDeduction{Date: d.Date, Status: d.Status}
		dd.LateMinutes = e.lateMinutes(d, staff, shift, hasShift)
		dd.EarlyDepartureMinutes = e.earlyMinutes(d, shift, hasShift)
		dd.BreakExcessMinutes, dd.UnauthorizedBreaks = BreakExcess(ov.BreakPunches(emp.EmpCode, emp.EmpName, d.Date), p.BreakWindows)
		dd.ShortDayMinutes = e.shortDayMinutes(d)

		res.LateMinutes += dd.LateMinutes
		res.EarlyDepartureMinutes += dd.EarlyDepartureMinutes
		res.BreakExcessMinutes += dd.BreakExcessMinutes
		res.LessThan4HoursMinutes += dd.ShortDayMinutes
		if !dd.isZero() {
			res.Days = append(res.Days, dd)
		}
	}

	res.GrossMinutes = res.LateMinutes + res.EarlyDepartureMinutes + res.BreakExcessMinutes
	if p.IncludeShortDayDeduction {
		res.GrossMinutes += res.LessThan4HoursMinutes
	}
	res.Total = res.GrossMinutes
	if staff {
		res.RelaxationMinutes = min(res.GrossMinutes, p.StaffRelaxationMinutes)
		res.Total = max(0, res.GrossMinutes-p.StaffRelaxationMinutes)
	}
	return res
}

func (e *Engine) lateMinutes(d attendance.Day, staff bool, shift attendance.ShiftWindow, hasShift bool) int {
	if !generic.IsPunch(d.InTime) {
		return 0
	}
	p := e.policy
	start := p.StandardStartMinutes
	if hasShift {
		start = shift.StartMinutes
	}
	in := d.InMinutes()

	var ref int
	switch {
	case d.Status.IsPlainHalfPresent():
		ref = start
		if in >= p.ShiftCutoffMinutes {
			ref = p.EveningStartMinutes
		}
	case d.Status == attendance.StatusPresent:
		ref = start
	case d.Status == attendance.StatusAdjPresent:
		if !staff && !hasShift {
			return 0
		}
		ref = start
	default:
		return 0
	}

	if late := generic.ClockDelta(ref, in); late > p.GraceMinutes {
		return late
	}
	return 0
}

func (e *Engine) earlyMinutes(d attendance.Day, shift attendance.ShiftWindow, hasShift bool) int {
	switch {
	case d.Status == attendance.StatusMaintenanceWO:
		return 0
	case d.Status.IsHalfPresent():
		return 0
	case d.Status == attendance.StatusAdjPresent && d.WorkedMinutes() <= e.policy.HalfDayMinutes:
		return 0
	}

	recompute := hasShift && generic.IsPunch(d.OutTime) &&
		(d.Status == attendance.StatusPresent || d.Status == attendance.StatusAdjPresent)
	if recompute {
		end := generic.ClockAfter(shift.StartMinutes, shift.EndMinutes)
		return max(0, end-outOnShift(d, shift.StartMinutes))
	}
	return max(0, d.EarlyDep)
}

// outOnShift places the out punch on the timeline of a shift starting at
// start, so an out punch past midnight lands on the next day. The timeline is
// anchored at the in punch when there is one.
func outOnShift(d attendance.Day, start int) int {
	anchor := start
	if generic.IsPunch(d.InTime) {
		anchor = start + generic.ClockDelta(start, d.InMinutes())
	}
	return generic.ClockAfter(anchor, d.OutMinutes())
}

// shortDayMinutes applies to plain half-days. A half-day with no recorded
// work is short by the whole half-day.
func (e *Engine) shortDayMinutes(d attendance.Day) int {
	if !d.Status.IsPlainHalfPresent() {
		return 0
	}
	if worked := max(0, d.WorkedMinutes()); worked < e.policy.HalfDayMinutes {
		return e.policy.HalfDayMinutes - worked
	}
	return 0
}

// BreakExcess pairs each Out punch with the In punch that follows it and
// measures the break against the windows. Each window authorizes up to its
// allowance of overlap; the rest of the break is excess. A break touching no
// window at all is unauthorized and counted in full.
func BreakExcess(punches []attendance.Punch, windows []BreakWindow) (excess, unauthorized int) {
	for i := 0; i+1 < len(punches); i++ {
		if punches[i].Type != attendance.PunchOut || punches[i+1].Type != attendance.PunchIn {
			continue
		}
		from := punches[i].Minutes
		to := from + generic.ElapsedMinutes(from, punches[i+1].Minutes)
		i++

		duration := to - from
		if duration <= 0 {
			continue
		}
		allowed, touched := 0, false
		for _, w := range windows {
			if ov := w.Overlap(from, to); ov > 0 {
				touched = true
				allowed += min(ov, w.AllowanceMinutes)
			}
		}
		if !touched {
			unauthorized++
			excess += duration
			continue
		}
		excess += max(0, duration-allowed)
	}
	return excess, unauthorized
}
