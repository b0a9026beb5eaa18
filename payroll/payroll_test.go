package payroll_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/overrides"
	"github.com/warp/attendance-engine/payroll"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newEngine(t *testing.T, mutate ...func(*payroll.Policy)) *payroll.Engine {
	t.Helper()
	p := payroll.DefaultPolicy()
	for _, m := range mutate {
		m(&p)
	}
	e, err := payroll.NewEngine(p)
	require.NoError(t, err)
	return e
}

func punched(date int, status, in, out string) attendance.Day {
	return attendance.Day{Date: date, DayOfWeek: "Mo", Status: attendance.Status(status), InTime: in, OutTime: out}
}

func bare(date int, status string) attendance.Day {
	return punched(date, status, "-", "-")
}

func staffRecord(t *testing.T, days ...attendance.Day) attendance.EmployeeRecord {
	t.Helper()
	rec, err := attendance.NewEmployeeRecord("S1", "Staff One", "ACME", "Office Staff", days)
	require.NoError(t, err)
	return rec
}

func workerRecord(t *testing.T, days ...attendance.Day) attendance.EmployeeRecord {
	t.Helper()
	rec, err := attendance.NewEmployeeRecord("W1", "Worker One", "ACME", "Plant Worker", days)
	require.NoError(t, err)
	return rec
}

func none() *overrides.Set { return overrides.Empty() }

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// =============================================================================
// CLASSIFICATION
// =============================================================================

func TestClassify_PriorityOrder(t *testing.T) {
	p := payroll.DefaultPolicy()
	cases := []struct {
		company, dept string
		want          payroll.Classification
	}{
		{"ACME", "Staff C Cash", payroll.Worker},
		{"ACME Workers", "Staff", payroll.Worker},
		{"ACME", "Office STAFF", payroll.Staff},
		{"ACME", "Accounts", payroll.Staff},
	}
	for _, tc := range cases {
		emp := attendance.EmployeeRecord{CompanyName: tc.company, Department: tc.dept}
		assert.Equal(t, tc.want, payroll.Classify(emp, p), "%s / %s", tc.company, tc.dept)
	}

	p.DefaultClassification = payroll.Worker
	assert.False(t, payroll.IsStaff(attendance.EmployeeRecord{Department: "Accounts"}, p))
}

func TestIsCashEmployee(t *testing.T) {
	assert.True(t, payroll.IsCashEmployee(attendance.EmployeeRecord{Department: "c cash employee"}))
	assert.False(t, payroll.IsCashEmployee(attendance.EmployeeRecord{Department: "C CASH"}))
}

func TestPolicy_Validate(t *testing.T) {
	require.NoError(t, payroll.DefaultPolicy().Validate())

	p := payroll.DefaultPolicy()
	p.DefaultClassification = "manager"
	assert.ErrorIs(t, p.Validate(), generic.ErrInvalidPolicy)

	p = payroll.DefaultPolicy()
	p.EveningStartMinutes = 1500
	assert.ErrorIs(t, p.Validate(), generic.ErrInvalidPolicy)

	p = payroll.DefaultPolicy()
	p.BreakWindows = []payroll.BreakWindow{{Name: "bad", StartMinutes: 600, EndMinutes: 500}}
	_, err := payroll.NewEngine(p)
	assert.ErrorIs(t, err, generic.ErrInvalidPolicy)

	c, err := payroll.ParseClassification(" Worker ")
	require.NoError(t, err)
	assert.Equal(t, payroll.Worker, c)
	_, err = payroll.ParseClassification("boss")
	assert.Error(t, err)
}

// =============================================================================
// LATE / EARLY / BREAK
// =============================================================================

func TestLate_GraceBoundary(t *testing.T) {
	// GIVEN: a worker (no relaxation) with single P days
	// WHEN: punching in at, within, and past the grace period
	// THEN: only lateness beyond 5 minutes counts, and it counts whole
	e := newEngine(t)
	cases := map[string]int{"08:30": 0, "08:35": 0, "08:36": 6, "08:20": 0}
	for in, want := range cases {
		res := e.Deductions(workerRecord(t, punched(1, "P", in, "17:30")), none())
		assert.Equal(t, want, res.LateMinutes, "in %s", in)
	}
}

func TestStaffRelaxation(t *testing.T) {
	// GIVEN: 300 late minutes (in at 13:30 against 08:30)
	// WHEN: the employee is staff vs worker
	// THEN: staff owe 300-240, workers owe all 300
	e := newEngine(t)

	staff := e.Deductions(staffRecord(t, punched(1, "P", "13:30", "17:30")), none())
	assert.Equal(t, 300, staff.LateMinutes)
	assert.Equal(t, 60, staff.Total)
	assert.Equal(t, 240, staff.RelaxationMinutes)
	assert.True(t, staff.Staff)

	worker := e.Deductions(workerRecord(t, punched(1, "P", "13:30", "17:30")), none())
	assert.Equal(t, 300, worker.Total)

	light := e.Deductions(staffRecord(t, punched(1, "P", "09:00", "17:30")), none())
	assert.Equal(t, 0, light.Total, "relaxation floors at zero")
}

func TestLate_HalfDayUsesEveningStart(t *testing.T) {
	e := newEngine(t)
	res := e.Deductions(workerRecord(t,
		punched(1, "P/A", "09:00", "13:00"), // morning half: vs 08:30
		punched(2, "PA", "13:30", "17:30"),  // evening half: vs 13:15
		punched(3, "P/A", "13:18", "17:30"), // within grace of 13:15
	), none())
	assert.Equal(t, 30+15, res.LateMinutes)

	alt := newEngine(t, func(p *payroll.Policy) { p.EveningStartMinutes = 12*60 + 45 })
	res = alt.Deductions(workerRecord(t, punched(2, "PA", "13:30", "17:30")), none())
	assert.Equal(t, 45, res.LateMinutes)
}

func TestLate_AdjPresentOnlyForStaffOrCustomShift(t *testing.T) {
	e := newEngine(t)
	day := punched(1, "ADJ-P", "09:00", "17:30")

	assert.Equal(t, 30, e.Deductions(staffRecord(t, day), none()).LateMinutes)
	assert.Equal(t, 0, e.Deductions(workerRecord(t, day), none()).LateMinutes)

	shift := overrides.Build(overrides.Data{CustomShifts: []overrides.CustomShift{
		{Employee: overrides.Employee{EmpCode: "W1"}, Start: "08:00", End: "17:00"},
	}})
	assert.Equal(t, 60, e.Deductions(workerRecord(t, day), shift).LateMinutes)
}

func TestLate_IgnoresOtherStatusesAndMissingPunch(t *testing.T) {
	e := newEngine(t)
	res := e.Deductions(workerRecord(t,
		punched(1, "WO-I", "11:00", "17:30"),
		punched(2, "P", "-", "17:30"),
		punched(3, "odd", "12:00", "17:30"),
	), none())
	assert.Equal(t, 0, res.LateMinutes)
}

func TestEarlyDeparture_Exclusions(t *testing.T) {
	e := newEngine(t)
	withEarly := func(d attendance.Day, early int) attendance.Day { d.EarlyDep = early; return d }

	res := e.Deductions(workerRecord(t,
		withEarly(punched(1, "P", "08:30", "17:00"), 30),
		withEarly(punched(2, "P/A", "08:30", "12:30"), 20),
		withEarly(punched(3, "M/WO-I", "08:30", "16:00"), 90),
		withEarly(punched(4, "ADJ-P", "08:30", "12:00"), 330), // 210 worked: half-day
		withEarly(punched(5, "ADJ-P", "08:30", "16:30"), 60),
		withEarly(punched(6, "ADJ-P/A", "08:30", "12:00"), 15),
	), none())
	assert.Equal(t, 30+60, res.EarlyDepartureMinutes)
	require.Len(t, res.Days, 2)
	assert.Equal(t, 1, res.Days[0].Date)
}

func TestEarlyDeparture_CustomShiftRecomputes(t *testing.T) {
	e := newEngine(t)
	shift := overrides.Build(overrides.Data{CustomShifts: []overrides.CustomShift{
		{Employee: overrides.Employee{EmpCode: "W1"}, Start: "09:00", End: "18:00"},
	}})
	d := punched(1, "P", "09:00", "17:15")
	d.EarlyDep = 15 // sheet assumed a 17:30 end
	res := e.Deductions(workerRecord(t, d, punched(2, "P", "09:00", "18:30")), shift)
	assert.Equal(t, 45, res.EarlyDepartureMinutes)
}

func TestBreakExcess(t *testing.T) {
	windows := payroll.DefaultBreakWindows()
	out := func(m int) attendance.Punch { return attendance.Punch{Type: attendance.PunchOut, Minutes: m} }
	in := func(m int) attendance.Punch { return attendance.Punch{Type: attendance.PunchIn, Minutes: m} }

	// 50-minute lunch against a 30-minute allowance
	excess, unauth := payroll.BreakExcess([]attendance.Punch{out(12*60 + 30), in(13*60 + 20)}, windows)
	assert.Equal(t, 20, excess)
	assert.Equal(t, 0, unauth)

	// Break outside every window counts in full
	excess, unauth = payroll.BreakExcess([]attendance.Punch{out(16*60 + 45), in(17 * 60)}, windows)
	assert.Equal(t, 15, excess)
	assert.Equal(t, 1, unauth)

	// Straddling a window: only the overlap is authorized
	excess, _ = payroll.BreakExcess([]attendance.Punch{out(9*60 + 50), in(10*60 + 10)}, windows)
	assert.Equal(t, 10, excess)

	// Unpaired punches are ignored
	excess, _ = payroll.BreakExcess([]attendance.Punch{in(600), out(700)}, windows)
	assert.Equal(t, 0, excess)
}

func TestDeductions_BreakPunchesFromOverrides(t *testing.T) {
	e := newEngine(t)
	set := overrides.Build(overrides.Data{Punches: []overrides.BreakPunch{
		{Employee: overrides.Employee{EmpCode: "W1"}, Date: 2, Type: attendance.PunchOut, Time: "12:30"},
		{Employee: overrides.Employee{EmpCode: "W1"}, Date: 2, Type: attendance.PunchIn, Time: "13:30"},
	}})
	res := e.Deductions(workerRecord(t, punched(1, "P", "08:30", "17:30"), punched(2, "P", "08:30", "17:30")), set)
	assert.Equal(t, 30, res.BreakExcessMinutes)
	assert.Equal(t, 30, res.Total)
}

func TestDeductions_BreakAcrossMidnight(t *testing.T) {
	// GIVEN: a night worker out at 23:50 and back at 00:20
	// THEN: the 30 minute break touches no window and counts in full
	e := newEngine(t)
	set := overrides.Build(overrides.Data{Punches: []overrides.BreakPunch{
		{Employee: overrides.Employee{EmpCode: "W1"}, Date: 1, Type: attendance.PunchOut, Time: "23:50"},
		{Employee: overrides.Employee{EmpCode: "W1"}, Date: 1, Type: attendance.PunchIn, Time: "00:20"},
	}})
	res := e.Deductions(workerRecord(t, punched(1, "P", "08:30", "17:30")), set)
	assert.Equal(t, 30, res.BreakExcessMinutes)
	require.Len(t, res.Days, 1)
	assert.Equal(t, 1, res.Days[0].UnauthorizedBreaks)
}

func TestShortDay_SeparateBucket(t *testing.T) {
	day := punched(1, "P/A", "08:30", "11:30") // 180 worked

	e := newEngine(t)
	res := e.Deductions(workerRecord(t, day), none())
	assert.Equal(t, 60, res.LessThan4HoursMinutes)
	assert.Equal(t, 0, res.Total)

	withShort := newEngine(t, func(p *payroll.Policy) { p.IncludeShortDayDeduction = true })
	res = withShort.Deductions(workerRecord(t, day), none())
	assert.Equal(t, 60, res.Total)
}

func TestShortDay_NoRecordedWork(t *testing.T) {
	// GIVEN: a half-day with an in punch only and no work-hours cell
	// THEN: the whole half-day is short
	e := newEngine(t)
	res := e.Deductions(workerRecord(t, punched(1, "P/A", "08:30", "-")), none())
	assert.Equal(t, 240, res.LessThan4HoursMinutes)
	require.Len(t, res.Days, 1)
	assert.Equal(t, 240, res.Days[0].ShortDayMinutes)
}

func TestOvernightShift_OutPastMidnight(t *testing.T) {
	// GIVEN: a 14:00-23:00 custom shift
	// WHEN: the worker leaves at 00:30 the next morning
	// THEN: no early departure, 90 minutes of overtime, nothing lost in days
	e := newEngine(t)
	shift := overrides.Build(overrides.Data{CustomShifts: []overrides.CustomShift{
		{Employee: overrides.Employee{EmpCode: "W1"}, Start: "14:00", End: "23:00"},
	}})
	rec := workerRecord(t, punched(1, "P", "14:00", "00:30"))

	ded := e.Deductions(rec, shift)
	assert.Equal(t, 0, ded.EarlyDepartureMinutes)
	assert.Equal(t, 0, ded.Total)

	ot := e.Overtime(rec, shift)
	assert.Equal(t, 90, ot.Minutes)

	res := e.Reconcile(rec, shift, payroll.HolidayCounts{})
	assert.Equal(t, 90, res.FinalDifferenceMinutes)
	assert.True(t, dec(1).Equal(res.Stats.GrandTotal.Value))

	// AND: leaving at 22:30 is still half an hour early
	early := e.Deductions(workerRecord(t, punched(1, "P", "14:00", "22:30")), shift)
	assert.Equal(t, 30, early.EarlyDepartureMinutes)
}

func TestOvernightShift_WindowCrossingMidnight(t *testing.T) {
	// GIVEN: a 22:00-06:00 night shift
	e := newEngine(t)
	shift := overrides.Build(overrides.Data{CustomShifts: []overrides.CustomShift{
		{Employee: overrides.Employee{EmpCode: "W1"}, Start: "22:00", End: "06:00"},
	}})

	// WHEN: punching in at 00:10 and out at 07:00
	rec := workerRecord(t, punched(1, "P", "00:10", "07:00"))

	// THEN: 130 minutes late, not early, an hour of overtime
	ded := e.Deductions(rec, shift)
	assert.Equal(t, 130, ded.LateMinutes)
	assert.Equal(t, 0, ded.EarlyDepartureMinutes)
	assert.Equal(t, 60, e.Overtime(rec, shift).Minutes)

	// AND: arriving at 21:55 is on time and leaving at 05:00 is an hour early
	onTime := e.Deductions(workerRecord(t, punched(1, "P", "21:55", "05:00")), shift)
	assert.Equal(t, 0, onTime.LateMinutes)
	assert.Equal(t, 60, onTime.EarlyDepartureMinutes)
}

// =============================================================================
// OVERTIME
// =============================================================================

func withOT(d attendance.Day, ot string) attendance.Day { d.OTHrs = ot; return d }

func TestOvertime_GrantWindow(t *testing.T) {
	// GIVEN: a grant for days 10..20
	// WHEN: days 15 and 25 each carry 2h of sheet overtime
	// THEN: only day 15 counts
	e := newEngine(t)
	grant := overrides.Build(overrides.Data{OvertimeGrants: []overrides.OvertimeGrant{
		{Employee: overrides.Employee{EmpCode: "S1"}, FromDay: 10, ToDay: 20},
	}})
	rec := staffRecord(t, withOT(bare(15, "P"), "02:00"), withOT(bare(25, "P"), "02:00"))

	res := e.Overtime(rec, grant)
	assert.Equal(t, 120, res.Minutes)
	require.Len(t, res.Days, 1)
	assert.Equal(t, 15, res.Days[0].Date)
	require.NotNil(t, res.Grant)
}

func TestOvertime_StaffEligibility(t *testing.T) {
	e := newEngine(t)
	sat := withOT(bare(6, "P"), "01:00")
	sat.DayOfWeek = "Sa"
	days := []attendance.Day{
		withOT(bare(2, "P"), "01:00"),     // weekday: staff not eligible
		sat,                               // Saturday
		withOT(bare(7, "WO-I"), "02:00"),  // worked week-off
		withOT(bare(8, "ADJ-M"), "0.5"),   // adjusted holiday, decimal hours
		withOT(bare(9, "H"), "03:00"),     // plain holiday is not listed
	}

	staff := e.Overtime(staffRecord(t, days...), none())
	assert.Equal(t, 60+120+30, staff.Minutes)

	worker := e.Overtime(workerRecord(t, days...), none())
	assert.Equal(t, 60+60+120+30+180, worker.Minutes)
}

func TestOvertime_AdjPresentBuffer(t *testing.T) {
	e := newEngine(t)
	atBuffer := e.Overtime(workerRecord(t, punched(1, "ADJ-P", "08:30", "18:00")), none())
	assert.Equal(t, 0, atBuffer.Minutes)

	past := e.Overtime(workerRecord(t, withOT(punched(1, "ADJ-P", "08:30", "18:01"), "09:00")), none())
	assert.Equal(t, 31, past.Minutes, "sheet OT is ignored for ADJ-P")

	overnight := e.Overtime(workerRecord(t, punched(1, "ADJ-P", "08:30", "00:30")), none())
	assert.Equal(t, 7*60, overnight.Minutes, "out after midnight counts from 17:30")
}

func TestOvertime_CustomShiftMinimum(t *testing.T) {
	e := newEngine(t)
	shift := overrides.Build(overrides.Data{CustomShifts: []overrides.CustomShift{
		{Employee: overrides.Employee{EmpCode: "W1"}, Start: "09:00", End: "18:00"},
	}})
	res := e.Overtime(workerRecord(t,
		withOT(punched(1, "P", "09:00", "18:04"), "01:00"),
		punched(2, "P", "09:00", "18:05"),
		punched(3, "P", "09:00", "17:00"),
	), shift)
	assert.Equal(t, 5, res.Minutes)
}

func TestOvertime_MaintenanceHaircutBeforeBonus(t *testing.T) {
	// GIVEN: 100 raw minutes, a maintenance rider and a 1h full-night bonus
	// THEN: 100 x 0.95 + 60 = 155 (not (100 + 60) x 0.95 = 152)
	e := newEngine(t)
	set := overrides.Build(overrides.Data{
		Maintenance: []overrides.Employee{{EmpCode: "W1"}},
		FullNight:   []overrides.FullNight{{Employee: overrides.Employee{EmpCode: "W1"}, Hours: dec(1)}},
	})
	res := e.Overtime(workerRecord(t, withOT(bare(1, "P"), "1:40")), set)
	assert.Equal(t, 100, res.RawMinutes)
	assert.True(t, dec(95).Equal(res.AfterHaircut))
	assert.True(t, dec(60).Equal(res.BonusMinutes))
	assert.Equal(t, 155, res.Minutes)
	assert.True(t, res.Maintenance)
}

func TestOvertime_RoundsHalfAwayFromZero(t *testing.T) {
	e := newEngine(t)
	set := overrides.Build(overrides.Data{Maintenance: []overrides.Employee{{EmpCode: "W1"}}})
	res := e.Overtime(workerRecord(t, withOT(bare(1, "P"), "0:10")), set)
	assert.Equal(t, 10, res.Minutes, "9.5 rounds up")
}

func TestOvertime_NeverNegative(t *testing.T) {
	e := newEngine(t)
	res := e.Overtime(workerRecord(t, withOT(bare(1, "P"), "-2:00"), withOT(bare(2, "P"), "junk")), none())
	assert.Equal(t, 0, res.Minutes)
}

// =============================================================================
// PRESENT DAYS
// =============================================================================

func TestPAA_StatusContributions(t *testing.T) {
	e := newEngine(t)
	rec := workerRecord(t,
		bare(1, "P"),
		bare(2, "P/A"),
		bare(3, "PA"),
		punched(4, "ADJ-P", "08:30", "12:00"), // 210 <= 240: half
		punched(5, "ADJ-P", "08:30", "17:30"), // full
		bare(6, "ADJ-P"),                      // no punches: nothing
		punched(7, "ADJ-P/A", "08:30", "12:30"),
		bare(8, "ADJ-P/A"),
		punched(9, "WO-I", "08:30", "17:30"),
		bare(10, "ZZ"),
		bare(11, "A"),
	)
	st := e.EmployeeStats(rec, payroll.StatsInput{})
	assert.Equal(t, 2, st.FullPresentDays)
	assert.Equal(t, 4, st.HalfPresentDays)
	assert.True(t, dec(4).Equal(st.PAA.Value), st.PAA.String())
}

func TestPAA_HalfDayThresholdVariant(t *testing.T) {
	rec := workerRecord(t, punched(1, "ADJ-P", "08:30", "13:30")) // 300 worked

	assert.True(t, dec(1).Equal(newEngine(t).EmployeeStats(rec, payroll.StatsInput{}).PAA.Value))

	e := newEngine(t, func(p *payroll.Policy) { p.HalfDayThresholdMinutes = 320 })
	assert.True(t, dec(0.5).Equal(e.EmployeeStats(rec, payroll.StatsInput{}).PAA.Value))
}

func TestSandwichRule(t *testing.T) {
	e := newEngine(t)
	in := payroll.StatsInput{BaseHolidays: 2}

	// [A, H, H, A]: both H excluded
	sandwiched := e.EmployeeStats(workerRecord(t, bare(1, "A"), bare(2, "H"), bare(3, "H"), bare(4, "A")), in)
	assert.Equal(t, 2, sandwiched.ExcludedHolidays)
	assert.Equal(t, 0, sandwiched.ValidHolidays)

	// [P, H, H, A]: only one side absent, both count
	open := e.EmployeeStats(workerRecord(t, bare(1, "P"), bare(2, "H"), bare(3, "H"), bare(4, "A")), in)
	assert.Equal(t, 0, open.ExcludedHolidays)
	assert.Equal(t, 2, open.ValidHolidays)
	assert.True(t, dec(3).Equal(open.Total.Value))
}

func TestSandwichRuns_MixedRunAndMonthEdges(t *testing.T) {
	runs := payroll.SandwichRuns([]attendance.Day{
		bare(1, "H"), bare(2, "A"),
		bare(3, "P"),
		bare(4, "NA"), bare(5, "H"), bare(6, "WO-I"), bare(7, "ADJ-M"), bare(8, "A"),
		bare(9, "P"), bare(10, "H"),
	})
	require.Len(t, runs, 3)

	assert.True(t, runs[0].Excluded, "month start counts as NA")
	assert.Equal(t, attendance.StatusNotAvailable, runs[0].Before)

	assert.Equal(t, 5, runs[1].FromDate)
	assert.Equal(t, 7, runs[1].ToDate)
	assert.Equal(t, 1, runs[1].HDays, "only H days are excluded")
	assert.True(t, runs[1].Excluded)

	assert.False(t, runs[2].Excluded)
}

func TestHolidays_SelectedOverridesBaseAndCashGetsNone(t *testing.T) {
	e := newEngine(t)
	three := 3
	st := e.EmployeeStats(workerRecord(t, bare(1, "P")), payroll.StatsInput{BaseHolidays: 5, SelectedHolidays: &three})
	assert.Equal(t, 3, st.ValidHolidays)

	cash, err := attendance.NewEmployeeRecord("C1", "Cash", "ACME", "C CASH EMPLOYEE", []attendance.Day{bare(1, "P")})
	require.NoError(t, err)
	st = e.EmployeeStats(cash, payroll.StatsInput{BaseHolidays: 5})
	assert.True(t, st.CashEmployee)
	assert.Equal(t, 0, st.ValidHolidays)
	assert.True(t, dec(1).Equal(st.Total.Value))
}

func TestCrossDeduction(t *testing.T) {
	p := payroll.DefaultPolicy()
	cases := map[int]float64{
		30:   0,
		0:    0,
		-1:   0.5,
		-239: 0.5,
		-240: 0.5,
		-241: 1,
		-600: 1.5,
	}
	for diff, want := range cases {
		got := payroll.CrossDeduction(diff, p)
		assert.True(t, dec(want).Equal(got), "diff %d: got %s", diff, got)
	}
}

func TestGrandTotal_NeverNegative(t *testing.T) {
	e := newEngine(t)
	rec := workerRecord(t, bare(1, "A"), bare(2, "P/A"))
	for _, diff := range []int{0, -1, -5000, -100000} {
		for _, leave := range []float64{0, 1, -3} {
			st := e.EmployeeStats(rec, payroll.StatsInput{FinalDifferenceMinutes: diff, PaidLeaveDays: dec(leave)})
			assert.False(t, st.GrandTotal.IsNegative(), "diff %d leave %v", diff, leave)
			assert.False(t, st.ATotal.IsNegative())
		}
	}
}

func TestEmployeeStats_Idempotent(t *testing.T) {
	e := newEngine(t)
	rec := staffRecord(t, bare(1, "A"), bare(2, "H"), bare(3, "P"), punched(4, "ADJ-P", "08:30", "12:00"))
	sel := 2
	in := payroll.StatsInput{BaseHolidays: 1, SelectedHolidays: &sel, PaidLeaveDays: dec(1.5), FinalDifferenceMinutes: -300}

	first := e.EmployeeStats(rec, in)
	second := e.EmployeeStats(rec, in)
	assert.Equal(t, first, second)
}

// =============================================================================
// ORCHESTRATION
// =============================================================================

func TestReconcile_ComposesCalculators(t *testing.T) {
	// GIVEN: a worker 60 minutes late on one day with 30 minutes of overtime
	// WHEN: reconciling
	// THEN: the net -30 costs half a day
	e := newEngine(t)
	set := overrides.Build(overrides.Data{PaidLeave: []overrides.PaidLeave{
		{Employee: overrides.Employee{EmpCode: "W1"}, Days: dec(1)},
	}})
	rec := workerRecord(t, punched(1, "P", "09:30", "17:30"), withOT(bare(2, "P"), "0:30"), bare(3, "A"))

	res := e.Reconcile(rec, set, payroll.HolidayCounts{Base: 0})
	assert.Equal(t, 60, res.Deductions.Total)
	assert.Equal(t, 30, res.Overtime.Minutes)
	assert.Equal(t, -30, res.FinalDifferenceMinutes)
	assert.True(t, dec(0.5).Equal(res.Stats.DeductionDays.Value))
	assert.True(t, dec(1.5).Equal(res.Stats.ATotal.Value))
	assert.True(t, dec(2.5).Equal(res.Stats.GrandTotal.Value))
	assert.Equal(t, "2.5 days", res.Stats.GrandTotal.String())
	assert.Equal(t, payroll.Worker, res.Classification)
	assert.True(t, dec(1).Equal(res.LateHours()))
	assert.True(t, dec(0.5).Equal(res.OvertimeHours()))
}

func TestReconcileAll_PreservesOrder(t *testing.T) {
	e := newEngine(t, func(p *payroll.Policy) { p.Parallelism = 2 })
	var roster []attendance.EmployeeRecord
	for i, code := range []string{"A", "B", "C", "D", "E"} {
		days := make([]attendance.Day, 0, i+1)
		for d := 1; d <= i+1; d++ {
			days = append(days, bare(d, "P"))
		}
		rec, err := attendance.NewEmployeeRecord(code, code, "ACME", "Worker", days)
		require.NoError(t, err)
		roster = append(roster, rec)
	}

	results, err := e.ReconcileAll(context.Background(), roster, none(), payroll.HolidayCounts{})
	require.NoError(t, err)
	require.Len(t, results, 5)
	for i, res := range results {
		assert.Equal(t, roster[i].EmpCode, res.EmpCode)
		assert.True(t, decimal.NewFromInt(int64(i+1)).Equal(res.Stats.GrandTotal.Value))
	}
}

func TestReconcileAll_CancelledContext(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.ReconcileAll(ctx, []attendance.EmployeeRecord{workerRecord(t, bare(1, "P"))}, none(), payroll.HolidayCounts{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_PolicyIsACopy(t *testing.T) {
	e := newEngine(t)
	p := e.Policy()
	p.BreakWindows[0].AllowanceMinutes = 999
	assert.Equal(t, 15, e.Policy().BreakWindows[0].AllowanceMinutes)
}
