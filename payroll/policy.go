/*
policy.go - Payroll rule configuration

PURPOSE:
  Every constant the rule engine depends on lives in one Policy value that
  is injected into the Engine. Nothing in the calculators is hard-coded, so
  the variants found across payroll offices (evening start 12:45 vs 13:15,
  half-day threshold 240 vs 320, dinner allowance 15 vs 30, default
  classification) are configuration, not forks of the code.

KEY CONCEPTS:
  - Classification: Staff or Worker. Staff get a flat relaxation on
    deductions and overtime only on Saturdays and holiday-like days.
  - Clock values are minutes since midnight; durations are minutes.
  - BreakWindow: a time-of-day window during which a break is authorized,
    up to its allowance.

EXAMPLE:
  p := payroll.DefaultPolicy()
  p.EveningStartMinutes = 12*60 + 45
  p.DefaultClassification = payroll.Worker
  engine, err := payroll.NewEngine(p)

SEE ALSO:
  - factory/policy.go: JSON policy documents with "HH:MM" clock values
  - config/config.go: environment overrides for the common variants
*/
package payroll

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/generic"
)

type Classification string

const (
	Staff  Classification = "staff"
	Worker Classification = "worker"
)

// ParseClassification accepts "staff" or "worker" in any case.
func ParseClassification(s string) (Classification, error) {
	switch Classification(strings.ToLower(strings.TrimSpace(s))) {
	case Staff:
		return Staff, nil
	case Worker:
		return Worker, nil
	}
	return "", fmt.Errorf("%w: unknown classification %q", generic.ErrInvalidPolicy, s)
}

// BreakWindow is an authorized break period.
type BreakWindow struct {
	Name             string `json:"name"`
	StartMinutes     int    `json:"start_minutes"`
	EndMinutes       int    `json:"end_minutes"`
	AllowanceMinutes int    `json:"allowance_minutes"`
}

// Overlap returns how many minutes of [from, to) fall inside the window.
func (w BreakWindow) Overlap(from, to int) int {
	lo := max(from, w.StartMinutes)
	hi := min(to, w.EndMinutes)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// =============================================================================
// POLICY
// =============================================================================

type Policy struct {
	// Employees whose company/department text names neither staff nor worker.
	DefaultClassification Classification `json:"default_classification"`

	// Late arrival
	StandardStartMinutes int `json:"standard_start_minutes"`
	EveningStartMinutes  int `json:"evening_start_minutes"`
	ShiftCutoffMinutes   int `json:"shift_cutoff_minutes"` // half-days punching in after this are evening shifts
	GraceMinutes         int `json:"grace_minutes"`

	// Deduction aggregation
	StaffRelaxationMinutes   int           `json:"staff_relaxation_minutes"`
	HalfDayMinutes           int           `json:"half_day_minutes"` // worked-time floor for half-days and short ADJ-P days
	IncludeShortDayDeduction bool          `json:"include_short_day_deduction"`
	BreakWindows             []BreakWindow `json:"break_windows"`

	// Overtime
	ShiftEndMinutes          int                 `json:"shift_end_minutes"`
	AdjOvertimeBufferMinutes int                 `json:"adj_overtime_buffer_minutes"`
	CustomShiftMinOvertime   int                 `json:"custom_shift_min_overtime"`
	MaintenanceFactor        decimal.Decimal     `json:"maintenance_factor"`
	StaffOvertimeStatuses    []attendance.Status `json:"staff_overtime_statuses"`

	// Present days
	HalfDayThresholdMinutes    int             `json:"half_day_threshold_minutes"` // ADJ-P at or under this is half a day
	CrossDeductionBlockMinutes int             `json:"cross_deduction_block_minutes"`
	CrossDeductionBlockDays    decimal.Decimal `json:"cross_deduction_block_days"`

	// ReconcileAll fan-out; 0 or less means one goroutine per CPU.
	Parallelism int `json:"parallelism"`
}

// DefaultBreakWindows are morning tea, lunch, evening tea and dinner.
func DefaultBreakWindows() []BreakWindow {
	return []BreakWindow{
		{Name: "Morning Tea", StartMinutes: 10 * 60, EndMinutes: 11 * 60, AllowanceMinutes: 15},
		{Name: "Lunch", StartMinutes: 12*60 + 30, EndMinutes: 14*60 + 30, AllowanceMinutes: 30},
		{Name: "Evening Tea", StartMinutes: 15*60 + 30, EndMinutes: 16*60 + 30, AllowanceMinutes: 15},
		{Name: "Dinner", StartMinutes: 19 * 60, EndMinutes: 21 * 60, AllowanceMinutes: 30},
	}
}

// DefaultPolicy returns the canonical rule set.
func DefaultPolicy() Policy {
	return Policy{
		DefaultClassification: Staff,

		StandardStartMinutes: 8*60 + 30,
		EveningStartMinutes:  13*60 + 15,
		ShiftCutoffMinutes:   10 * 60,
		GraceMinutes:         5,

		StaffRelaxationMinutes:   240,
		HalfDayMinutes:           240,
		IncludeShortDayDeduction: false,
		BreakWindows:             DefaultBreakWindows(),

		ShiftEndMinutes:          17*60 + 30,
		AdjOvertimeBufferMinutes: 30,
		CustomShiftMinOvertime:   5,
		MaintenanceFactor:        decimal.NewFromFloat(0.95),
		StaffOvertimeStatuses: []attendance.Status{
			attendance.StatusAdjPresent,
			attendance.StatusWeekOffWorked,
			attendance.StatusAdjHoliday,
		},

		HalfDayThresholdMinutes:    240,
		CrossDeductionBlockMinutes: 240,
		CrossDeductionBlockDays:    decimal.NewFromFloat(0.5),

		Parallelism: 0,
	}
}

// Validate rejects policies the calculators can't run with.
func (p Policy) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", generic.ErrInvalidPolicy, fmt.Sprintf(format, args...))
	}
	if p.DefaultClassification != Staff && p.DefaultClassification != Worker {
		return bad("default classification %q", p.DefaultClassification)
	}
	clocks := []struct {
		name string
		v    int
	}{
		{"standard start", p.StandardStartMinutes},
		{"evening start", p.EveningStartMinutes},
		{"shift cutoff", p.ShiftCutoffMinutes},
		{"shift end", p.ShiftEndMinutes},
	}
	for _, c := range clocks {
		if c.v < 0 || c.v >= generic.MinutesPerDay {
			return bad("%s %d is not a time of day", c.name, c.v)
		}
	}
	if p.GraceMinutes < 0 || p.StaffRelaxationMinutes < 0 || p.HalfDayMinutes < 0 ||
		p.AdjOvertimeBufferMinutes < 0 || p.CustomShiftMinOvertime < 0 || p.HalfDayThresholdMinutes < 0 {
		return bad("durations must not be negative")
	}
	if p.CrossDeductionBlockMinutes <= 0 {
		return bad("cross deduction block must be positive")
	}
	if p.CrossDeductionBlockDays.IsNegative() {
		return bad("cross deduction days must not be negative")
	}
	if p.MaintenanceFactor.IsNegative() || p.MaintenanceFactor.GreaterThan(decimal.NewFromInt(1)) {
		return bad("maintenance factor %s outside 0..1", p.MaintenanceFactor)
	}
	for _, w := range p.BreakWindows {
		if w.EndMinutes <= w.StartMinutes {
			return bad("break window %q ends before it starts", w.Name)
		}
		if w.AllowanceMinutes < 0 {
			return bad("break window %q has a negative allowance", w.Name)
		}
	}
	return nil
}

func (p Policy) isStaffOvertimeStatus(s attendance.Status) bool {
	for _, want := range p.StaffOvertimeStatuses {
		if s == want {
			return true
		}
	}
	return false
}
