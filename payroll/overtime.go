/*
overtime.go - Overtime minutes for one month

ELIGIBILITY:
  Grant window set      -> only days inside the window, for anyone
  No grant, Staff       -> Saturdays and ADJ-P / WO-I / ADJ-M days
  No grant, Worker      -> every day

PER DAY:
  Custom shift  -> out punch minus shift end, dropped under the minimum
  ADJ-P         -> out punch minus shift end, only past the buffer
  otherwise     -> the sheet's OT cell

TOTAL:
  raw x maintenance factor (maintenance riders only), then + full-night
  bonus, rounded half away from zero, never negative.
*/
package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/generic"
)

type OvertimeSource string

const (
	SourceCustomShift OvertimeSource = "custom_shift"
	SourceAdjusted    OvertimeSource = "adjusted"
	SourceSheet       OvertimeSource = "sheet"
)

// DayOvertime is one eligible day's contribution.
type DayOvertime struct {
	Date    int               `json:"date"`
	Status  attendance.Status `json:"status"`
	Minutes int               `json:"minutes"`
	Source  OvertimeSource    `json:"source"`
}

type OvertimeResult struct {
	RawMinutes   int                     `json:"raw_minutes"`
	AfterHaircut decimal.Decimal         `json:"after_haircut"`
	BonusMinutes decimal.Decimal         `json:"bonus_minutes"`
	Minutes      int                     `json:"minutes"`
	Maintenance  bool                    `json:"maintenance"`
	Grant        *attendance.GrantWindow `json:"grant,omitempty"`

	// Days lists eligible days with a non-zero contribution.
	Days []DayOvertime `json:"days,omitempty"`
}

// Overtime computes one employee's overtime minutes. The result is never
// negative.
func (e *Engine) Overtime(emp attendance.EmployeeRecord, ov Overrides) OvertimeResult {
	p := e.policy
	staff := IsStaff(emp, p)
	shift, hasShift := ov.CustomShift(emp.EmpCode, emp.EmpName)
	grant, hasGrant := ov.OvertimeGrant(emp.EmpCode, emp.EmpName)

	res := OvertimeResult{Maintenance: ov.IsMaintenance(emp.EmpCode, emp.EmpName)}
	if hasGrant {
		g := grant
		res.Grant = &g
	}

	for _, d := range emp.Days {
		switch {
		case hasGrant:
			if !grant.Contains(d.Date) {
				continue
			}
		case staff:
			if !d.IsSaturday() && !p.isStaffOvertimeStatus(d.Status) {
				continue
			}
		}
		minutes, source := e.dayOvertime(d, shift, hasShift)
		if minutes <= 0 {
			continue
		}
		res.RawMinutes += minutes
		res.Days = append(res.Days, DayOvertime{Date: d.Date, Status: d.Status, Minutes: minutes, Source: source})
	}

	total := decimal.NewFromInt(int64(res.RawMinutes))
	if res.Maintenance {
		total = total.Mul(p.MaintenanceFactor)
	}
	res.AfterHaircut = total
	res.BonusMinutes = ov.FullNightBonusHours(emp.EmpCode, emp.EmpName).Mul(decimal.NewFromInt(60))
	total = total.Add(res.BonusMinutes)

	rounded := total.Round(0)
	if rounded.IsNegative() {
		rounded = decimal.Zero
	}
	res.Minutes = int(rounded.IntPart())
	return res
}

func (e *Engine) dayOvertime(d attendance.Day, shift attendance.ShiftWindow, hasShift bool) (int, OvertimeSource) {
	p := e.policy
	if hasShift {
		if !generic.IsPunch(d.OutTime) {
			return 0, SourceCustomShift
		}
		ot := outOnShift(d, shift.StartMinutes) - generic.ClockAfter(shift.StartMinutes, shift.EndMinutes)
		if ot < p.CustomShiftMinOvertime {
			return 0, SourceCustomShift
		}
		return ot, SourceCustomShift
	}
	if d.Status == attendance.StatusAdjPresent {
		if !generic.IsPunch(d.OutTime) {
			return 0, SourceAdjusted
		}
		out := outOnShift(d, p.StandardStartMinutes)
		end := generic.ClockAfter(p.StandardStartMinutes, p.ShiftEndMinutes)
		if out > end+p.AdjOvertimeBufferMinutes {
			return out - end, SourceAdjusted
		}
		return 0, SourceAdjusted
	}
	return max(0, generic.ParseHours(d.OTHrs)), SourceSheet
}
