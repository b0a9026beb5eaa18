/*
scenarios.go - Demo rosters for testing and demonstrations

PURPOSE:

	Provides pre-built inputs that exercise specific payroll rules. Running a
	scenario computes and stores a normal run, so every report endpoint works
	on it.

AVAILABLE SCENARIOS:

	late-arrivals:     The same late days for a staff member and a worker
	sandwich-holidays: Holidays between absences lose their credit
	overtime-grant:    Grant windows, maintenance haircut, full-night bonus
	adjusted-days:     Day swaps and an office-wide holiday selection
	hr-comparison:     HR reference figures with every category

USAGE VIA API:

	GET  /api/scenarios
	POST /api/scenarios/overtime-grant/run

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' with ID, name, description
 2. Write a builder returning a ComputeInput
*/
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/overrides"
	"github.com/warp/attendance-engine/payroll"
)

var errScenarioNotFound = errors.New("scenario not found")

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	build func() ComputeInput
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "late-arrivals",
			Name:        "Late Arrivals",
			Description: "Identical late days for a staff member and a worker; staff get the monthly relaxation",
		},
		build: lateArrivalsScenario,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "sandwich-holidays",
			Name:        "Sandwich Holidays",
			Description: "A holiday run between two absences is excluded; one next to a present day is kept",
		},
		build: sandwichScenario,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "overtime-grant",
			Name:        "Overtime Grant",
			Description: "Overtime only inside the grant window, maintenance haircut and full-night bonus",
		},
		build: overtimeGrantScenario,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "adjusted-days",
			Name:        "Adjusted Days",
			Description: "A worked week-off swapped for a weekday, plus a selected office holiday",
		},
		build: adjustedDaysScenario,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "hr-comparison",
			Name:        "HR Comparison",
			Description: "Software figures checked against HR's own numbers",
		},
		build: hrComparisonScenario,
	},
}

func findScenario(id string) (scenario, error) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, nil
		}
	}
	return scenario{}, fmt.Errorf("%w: %s", errScenarioNotFound, id)
}

// ListScenarios returns all available demo scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	out := make([]ScenarioDTO, 0, len(scenarios))
	for _, s := range scenarios {
		out = append(out, s.ScenarioDTO)
	}
	writeJSON(w, http.StatusOK, out)
}

// RunScenario computes and stores a scenario's run.
// POST /api/scenarios/{name}/run
func (h *Handler) RunScenario(w http.ResponseWriter, r *http.Request) {
	s, err := findScenario(chi.URLParam(r, "name"))
	if err != nil {
		writeDomainError(w, "Unknown scenario", err)
		return
	}
	in := s.build()
	in.Label = s.Name
	resp, err := h.computeAndStore(r, in)
	if err != nil {
		writeDomainError(w, "Failed to run scenario", err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// =============================================================================
// BUILDERS
// =============================================================================

var weekdays = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// day builds a day in a month starting on a Monday.
func day(date int, status attendance.Status, in, out string) attendance.Day {
	return attendance.Day{
		Date:      date,
		DayOfWeek: weekdays[(date-1)%7],
		Status:    status,
		InTime:    in,
		OutTime:   out,
	}
}

// presentWeek is Monday..Saturday present on time, Sunday off, starting at
// the given Monday.
func presentWeek(monday int) []attendance.Day {
	days := make([]attendance.Day, 0, 7)
	for d := monday; d < monday+6; d++ {
		days = append(days, day(d, attendance.StatusPresent, "08:30", "17:30"))
	}
	return append(days, day(monday+6, attendance.StatusWeekOff, "", ""))
}

func employee(code, name, department string, days []attendance.Day) attendance.EmployeeRecord {
	return attendance.EmployeeRecord{
		EmpCode:     code,
		EmpName:     name,
		CompanyName: "Acme Textiles",
		Department:  department,
		Days:        days,
	}
}

func lateArrivalsScenario() ComputeInput {
	lateDays := func() []attendance.Day {
		days := presentWeek(1)
		days[0].InTime = "10:00" // 90 late
		days[1].InTime = "09:30" // 60 late
		days[2].InTime = "08:34" // inside grace
		days[3].InTime = "11:10" // 160 late
		return days
	}
	return ComputeInput{
		Roster: []attendance.EmployeeRecord{
			employee("1001", "Asha Rao", "Accounts Staff", lateDays()),
			employee("2001", "Ravi Kumar", "Loom Worker", lateDays()),
		},
		BaseHolidays: 0,
	}
}

func sandwichScenario() ComputeInput {
	sandwiched := []attendance.Day{
		day(1, attendance.StatusPresent, "08:30", "17:30"),
		day(2, attendance.StatusAbsent, "", ""),
		day(3, attendance.StatusHoliday, "", ""),
		day(4, attendance.StatusHoliday, "", ""),
		day(5, attendance.StatusAbsent, "", ""),
		day(6, attendance.StatusPresent, "08:30", "17:30"),
	}
	kept := []attendance.Day{
		day(1, attendance.StatusPresent, "08:30", "17:30"),
		day(2, attendance.StatusPresent, "08:30", "17:30"),
		day(3, attendance.StatusHoliday, "", ""),
		day(4, attendance.StatusHoliday, "", ""),
		day(5, attendance.StatusAbsent, "", ""),
		day(6, attendance.StatusPresent, "08:30", "17:30"),
	}
	return ComputeInput{
		Roster: []attendance.EmployeeRecord{
			employee("3001", "Meera Iyer", "Dyeing Worker", sandwiched),
			employee("3002", "Sunil Das", "Dyeing Worker", kept),
		},
		BaseHolidays: 2,
	}
}

func overtimeGrantScenario() ComputeInput {
	withOT := func(days []attendance.Day, hours string) []attendance.Day {
		for i := range days {
			if days[i].Status == attendance.StatusPresent {
				days[i].OTHrs = hours
			}
		}
		return days
	}
	granted := withOT(append(presentWeek(8), presentWeek(15)...), "01:00")
	maintenance := withOT(presentWeek(1), "02:00")

	return ComputeInput{
		Roster: []attendance.EmployeeRecord{
			employee("4001", "Karan Shah", "Spinning Worker", granted),
			employee("4002", "Leela Nair", "Maintenance Worker", maintenance),
		},
		Overrides: overrides.Data{
			OvertimeGrants: []overrides.OvertimeGrant{{Employee: overrides.Employee{EmpCode: "4001"}, FromDay: 15, ToDay: 20}},
			Maintenance:    []overrides.Employee{{EmpCode: "4002"}},
			FullNight:      []overrides.FullNight{{Employee: overrides.Employee{EmpName: "Leela Nair"}, Hours: decimal.NewFromInt(2)}},
		},
	}
}

func adjustedDaysScenario() ComputeInput {
	days := presentWeek(1)
	days[6] = day(7, attendance.StatusWeekOff, "08:30", "19:00")
	days = append(days, day(8, attendance.StatusAbsent, "", ""), day(9, attendance.StatusPresent, "08:30", "17:30"))

	return ComputeInput{
		Roster: []attendance.EmployeeRecord{
			employee("5001", "Nisha Patel", "Office Staff", days),
		},
		Adjustments: []attendance.Adjustment{{EmpCode: "5001", OriginalDate: 7, AdjustedDate: 8}},
		Holidays:    &attendance.HolidaySelection{Dates: []int{9}, Count: 1},
	}
}

func hrComparisonScenario() ComputeInput {
	in := lateArrivalsScenario()
	in.Roster = append(in.Roster, employee("0042", "Farah Khan", "Stores Worker", presentWeek(1)))

	d := func(s string) *decimal.Decimal {
		v := decimal.RequireFromString(s)
		return &v
	}
	in.References = []payroll.Reference{
		{EmpCode: "1001", PresentDays: d("6"), LateHours: d("0"), OTHours: d("0")},
		{EmpCode: "2001", PresentDays: d("5"), LateHours: d("5.17")},
		{EmpCode: "42", EmpName: "Farah Khan", PresentDays: d("7.5"), LateHours: d("0"), OTHours: d("3")},
	}
	return in
}
