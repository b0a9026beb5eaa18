/*
presence.go - Present-day reconciliation

PURPOSE:
  Turns a month of statuses into the Grand Total of payable days.

STEPS:
  1. PAA: P is a full day; P/A, PA and ADJ-P/A are half days; ADJ-P is a
     half day at or under the half-day threshold and a full day above it.
     Adjusted statuses only count with both punches.
  2. Holidays: the selected count when the user picked holidays, else the
     base count. Cash employees get none.
  3. Sandwich rule: a run of holiday-like days with an absence on both sides
     loses its H days.
  4. Total = PAA + valid holidays.
  5. Cross-deduction: a negative net (overtime minus deductions) costs half
     a day per started block of four hours.
  6. ATotal = max(0, Total - deduction); GrandTotal = max(0, ATotal + paid leave).

EXAMPLE:
  [A, H, H, A]  both H excluded
  [P, H, H, A]  both H count
  [H, H, A]     run starts the month; the missing neighbor counts as NA
*/
package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/generic"
)

var half = decimal.NewFromFloat(0.5)

// StatsInput carries what reconciliation needs besides the record.
type StatsInput struct {
	BaseHolidays           int             `json:"base_holidays"`
	SelectedHolidays       *int            `json:"selected_holidays,omitempty"`
	PaidLeaveDays          decimal.Decimal `json:"paid_leave_days"`
	FinalDifferenceMinutes int             `json:"final_difference_minutes"`
}

// HolidayRun is a maximal stretch of holiday-like days.
type HolidayRun struct {
	FromDate int               `json:"from_date"`
	ToDate   int               `json:"to_date"`
	Before   attendance.Status `json:"before"`
	After    attendance.Status `json:"after"`
	HDays    int               `json:"h_days"`
	Excluded bool              `json:"excluded"`
}

type EmployeeStats struct {
	FullPresentDays  int            `json:"full_present_days"`
	HalfPresentDays  int            `json:"half_present_days"`
	PAA              generic.Amount `json:"paa"`
	Holidays         int            `json:"holidays"`
	ExcludedHolidays int            `json:"excluded_holidays"`
	ValidHolidays    int            `json:"valid_holidays"`
	CashEmployee     bool           `json:"cash_employee"`
	Total            generic.Amount `json:"total"`
	DeductionDays    generic.Amount `json:"deduction_days"`
	ATotal           generic.Amount `json:"a_total"`
	PaidLeaveDays    generic.Amount `json:"paid_leave_days"`
	GrandTotal       generic.Amount `json:"grand_total"`
	HolidayRuns      []HolidayRun   `json:"holiday_runs,omitempty"`
}

// EmployeeStats reconciles present days. It is a pure function of its inputs.
func (e *Engine) EmployeeStats(emp attendance.EmployeeRecord, in StatsInput) EmployeeStats {
	p := e.policy
	var st EmployeeStats

	for _, d := range emp.Days {
		switch units := e.presentHalves(d); units {
		case 2:
			st.FullPresentDays++
		case 1:
			st.HalfPresentDays++
		}
	}
	st.PAA = generic.NewAmountFromInt(st.FullPresentDays, generic.UnitDays).
		Add(generic.NewAmountFromDecimal(half.Mul(decimal.NewFromInt(int64(st.HalfPresentDays))), generic.UnitDays))

	st.CashEmployee = IsCashEmployee(emp)
	st.Holidays = in.BaseHolidays
	if in.SelectedHolidays != nil {
		st.Holidays = *in.SelectedHolidays
	}
	st.Holidays = max(0, st.Holidays)
	if st.CashEmployee {
		st.Holidays = 0
	}

	st.HolidayRuns = SandwichRuns(emp.Days)
	for _, run := range st.HolidayRuns {
		if run.Excluded {
			st.ExcludedHolidays += run.HDays
		}
	}
	st.ValidHolidays = max(0, st.Holidays-st.ExcludedHolidays)

	st.Total = st.PAA.Add(generic.NewAmountFromInt(st.ValidHolidays, generic.UnitDays))
	st.DeductionDays = generic.NewAmountFromDecimal(CrossDeduction(in.FinalDifferenceMinutes, p), generic.UnitDays)
	st.ATotal = st.Total.Sub(st.DeductionDays).ClampZero()
	st.PaidLeaveDays = generic.NewAmountFromDecimal(in.PaidLeaveDays, generic.UnitDays)
	st.GrandTotal = st.ATotal.Add(st.PaidLeaveDays).ClampZero()
	return st
}

// presentHalves is a day's present credit in half-day units.
func (e *Engine) presentHalves(d attendance.Day) int {
	if d.Status.RequiresPunches() && !d.HasPunches() {
		return 0
	}
	switch {
	case d.Status == attendance.StatusPresent:
		return 2
	case d.Status.IsHalfPresent():
		return 1
	case d.Status == attendance.StatusAdjPresent:
		if d.WorkedMinutes() <= e.policy.HalfDayThresholdMinutes {
			return 1
		}
		return 2
	}
	return 0
}

// SandwichRuns finds every maximal run of holiday-like days and decides
// whether its H days are excluded. The neighbors are the statuses right
// before and after the run; a run touching either end of the month has NA
// on that side.
func SandwichRuns(days []attendance.Day) []HolidayRun {
	var runs []HolidayRun
	for i := 0; i < len(days); {
		if !days[i].Status.IsSpecialHoliday() {
			i++
			continue
		}
		j := i
		run := HolidayRun{FromDate: days[i].Date, Before: attendance.StatusNotAvailable, After: attendance.StatusNotAvailable}
		for j < len(days) && days[j].Status.IsSpecialHoliday() {
			if days[j].Status == attendance.StatusHoliday {
				run.HDays++
			}
			j++
		}
		run.ToDate = days[j-1].Date
		if i > 0 {
			run.Before = days[i-1].Status
		}
		if j < len(days) {
			run.After = days[j].Status
		}
		run.Excluded = run.Before.IsAbsentLike() && run.After.IsAbsentLike()
		runs = append(runs, run)
		i = j
	}
	return runs
}

// CrossDeduction converts a negative net of overtime minus deductions into
// days: half a day per started block.
func CrossDeduction(finalDifferenceMinutes int, p Policy) decimal.Decimal {
	if finalDifferenceMinutes >= 0 {
		return decimal.Zero
	}
	short := -finalDifferenceMinutes
	blocks := (short + p.CrossDeductionBlockMinutes - 1) / p.CrossDeductionBlockMinutes
	return p.CrossDeductionBlockDays.Mul(decimal.NewFromInt(int64(blocks)))
}

