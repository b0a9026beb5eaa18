package overrides

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// SHEET ROWS
// =============================================================================

// Employee identifies the employee an override row belongs to.
type Employee struct {
	EmpCode string `json:"emp_code"`
	EmpName string `json:"emp_name,omitempty"`
}

type PaidLeave struct {
	Employee
	Days decimal.Decimal `json:"days"`
}

// CustomShift times are "HH:MM".
type CustomShift struct {
	Employee
	Start string `json:"start"`
	End   string `json:"end"`
}

type OvertimeGrant struct {
	Employee
	FromDay int `json:"from_day"`
	ToDay   int `json:"to_day"`
}

type FullNight struct {
	Employee
	Hours decimal.Decimal `json:"hours"`
}

// BreakPunch is one punch of a lunch/break sequence; Time is "HH:MM".
type BreakPunch struct {
	Employee
	Date int                  `json:"date"`
	Type attendance.PunchType `json:"type"`
	Time string               `json:"time"`
}

// Data is the raw content of every override sheet, as imported or posted.
type Data struct {
	PaidLeave      []PaidLeave     `json:"paid_leave,omitempty"`
	CustomShifts   []CustomShift   `json:"custom_shifts,omitempty"`
	OvertimeGrants []OvertimeGrant `json:"overtime_grants,omitempty"`
	FullNight      []FullNight     `json:"full_night,omitempty"`
	Maintenance    []Employee      `json:"maintenance,omitempty"`
	Punches        []BreakPunch    `json:"punches,omitempty"`
	Holidays       []int           `json:"holidays,omitempty"`
}

// =============================================================================
// SET
// =============================================================================

// Set is the immutable snapshot of every override lookup for one
// computation pass. Rebuild it whenever the sheets change.
type Set struct {
	paidLeave   *Index[decimal.Decimal]
	shifts      *Index[attendance.ShiftWindow]
	grants      *Index[attendance.GrantWindow]
	fullNight   *Index[decimal.Decimal]
	maintenance *Index[bool]
	punches     *Index[map[int][]attendance.Punch]
	holidays    []int
}

// Stats counts the rows behind each lookup.
type Stats struct {
	PaidLeave      int `json:"paid_leave"`
	CustomShifts   int `json:"custom_shifts"`
	OvertimeGrants int `json:"overtime_grants"`
	FullNight      int `json:"full_night"`
	Maintenance    int `json:"maintenance"`
	PunchEmployees int `json:"punch_employees"`
	Holidays       int `json:"holidays"`
}

// Empty returns a set where every lookup misses.
func Empty() *Set {
	return Build(Data{})
}

// Build turns sheet rows into lookups. Paid-leave days and full-night hours
// listed more than once for the same employee are summed. Shifts without a
// valid end time are ignored; grant windows given backwards are flipped.
// Break punches keep their sheet order within a day.
func Build(d Data) *Set {
	s := &Set{
		paidLeave: NewIndex(sumRows(d.PaidLeave, func(r PaidLeave) (Employee, decimal.Decimal) { return r.Employee, r.Days })),
		fullNight: NewIndex(sumRows(d.FullNight, func(r FullNight) (Employee, decimal.Decimal) { return r.Employee, r.Hours })),
	}

	shifts := make([]Entry[attendance.ShiftWindow], 0, len(d.CustomShifts))
	for _, r := range d.CustomShifts {
		if !generic.IsPunch(r.End) {
			continue
		}
		shifts = append(shifts, Entry[attendance.ShiftWindow]{
			EmpCode: r.EmpCode,
			EmpName: r.EmpName,
			Value: attendance.ShiftWindow{
				StartMinutes: generic.ParseClock(r.Start),
				EndMinutes:   generic.ParseClock(r.End),
			},
		})
	}
	s.shifts = NewIndex(shifts)

	grants := make([]Entry[attendance.GrantWindow], 0, len(d.OvertimeGrants))
	for _, r := range d.OvertimeGrants {
		w := attendance.GrantWindow{FromDay: r.FromDay, ToDay: r.ToDay}
		if w.FromDay > w.ToDay {
			w.FromDay, w.ToDay = w.ToDay, w.FromDay
		}
		grants = append(grants, Entry[attendance.GrantWindow]{EmpCode: r.EmpCode, EmpName: r.EmpName, Value: w})
	}
	s.grants = NewIndex(grants)

	maint := make([]Entry[bool], 0, len(d.Maintenance))
	for _, e := range d.Maintenance {
		maint = append(maint, Entry[bool]{EmpCode: e.EmpCode, EmpName: e.EmpName, Value: true})
	}
	s.maintenance = NewIndex(maint)

	s.punches = NewIndex(groupPunches(d.Punches))

	seen := make(map[int]bool, len(d.Holidays))
	for _, date := range d.Holidays {
		if date >= 1 && date <= 31 && !seen[date] {
			seen[date] = true
			s.holidays = append(s.holidays, date)
		}
	}
	sort.Ints(s.holidays)
	return s
}

// employeeKey groups rows that name the same employee.
func employeeKey(e Employee) string {
	if v := CodeVariants(e.EmpCode); len(v) > 0 {
		return "c:" + v[len(v)-1]
	}
	return "n:" + NormalizeName(e.EmpName)
}

func sumRows[R any](rows []R, split func(R) (Employee, decimal.Decimal)) []Entry[decimal.Decimal] {
	pos := make(map[string]int, len(rows))
	out := make([]Entry[decimal.Decimal], 0, len(rows))
	for _, r := range rows {
		emp, v := split(r)
		key := employeeKey(emp)
		if i, ok := pos[key]; ok {
			out[i].Value = out[i].Value.Add(v)
			continue
		}
		pos[key] = len(out)
		out = append(out, Entry[decimal.Decimal]{EmpCode: emp.EmpCode, EmpName: emp.EmpName, Value: v})
	}
	return out
}

func groupPunches(rows []BreakPunch) []Entry[map[int][]attendance.Punch] {
	pos := make(map[string]int, len(rows))
	out := make([]Entry[map[int][]attendance.Punch], 0)
	for _, r := range rows {
		if !generic.IsPunch(r.Time) {
			continue
		}
		key := employeeKey(r.Employee)
		i, ok := pos[key]
		if !ok {
			i = len(out)
			pos[key] = i
			out = append(out, Entry[map[int][]attendance.Punch]{
				EmpCode: r.EmpCode,
				EmpName: r.EmpName,
				Value:   make(map[int][]attendance.Punch),
			})
		}
		out[i].Value[r.Date] = append(out[i].Value[r.Date], attendance.Punch{
			Type:    r.Type,
			Minutes: generic.ParseClock(r.Time),
		})
	}
	return out
}

// =============================================================================
// LOOKUPS
// =============================================================================

func (s *Set) PaidLeaveDays(code, name string) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	v, _ := s.paidLeave.Lookup(code, name)
	return v
}

func (s *Set) CustomShift(code, name string) (attendance.ShiftWindow, bool) {
	if s == nil {
		return attendance.ShiftWindow{}, false
	}
	return s.shifts.Lookup(code, name)
}

func (s *Set) OvertimeGrant(code, name string) (attendance.GrantWindow, bool) {
	if s == nil {
		return attendance.GrantWindow{}, false
	}
	return s.grants.Lookup(code, name)
}

func (s *Set) FullNightBonusHours(code, name string) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	v, _ := s.fullNight.Lookup(code, name)
	return v
}

func (s *Set) IsMaintenance(code, name string) bool {
	if s == nil {
		return false
	}
	v, _ := s.maintenance.Lookup(code, name)
	return v
}

// BreakPunches returns a copy of the punch sequence for one day.
func (s *Set) BreakPunches(code, name string, date int) []attendance.Punch {
	if s == nil {
		return nil
	}
	byDate, ok := s.punches.Lookup(code, name)
	if !ok {
		return nil
	}
	seq := byDate[date]
	if len(seq) == 0 {
		return nil
	}
	return append([]attendance.Punch(nil), seq...)
}

// HolidayDates are the distinct holiday dates from the holiday sheet.
func (s *Set) HolidayDates() []int {
	if s == nil {
		return nil
	}
	return append([]int(nil), s.holidays...)
}

func (s *Set) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		PaidLeave:      s.paidLeave.Len(),
		CustomShifts:   s.shifts.Len(),
		OvertimeGrants: s.grants.Len(),
		FullNight:      s.fullNight.Len(),
		Maintenance:    s.maintenance.Len(),
		PunchEmployees: s.punches.Len(),
		Holidays:       len(s.holidays),
	}
}
