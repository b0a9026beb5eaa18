/*
Package factory provides JSON to Go policy conversion.

PURPOSE:
  Converts JSON policy documents into payroll.Policy values. Payroll offices
  disagree on a handful of constants (evening start, half-day threshold,
  dinner allowance, default classification); a document lets each office
  pin its own values without code changes.

JSON SCHEMA:
  Every field is optional. Missing fields keep the canonical default.
  Clock values are "HH:MM".
  {
    "name": "Plant B",
    "default_classification": "worker",
    "standard_start": "08:30",
    "evening_start": "12:45",
    "shift_cutoff": "10:00",
    "grace_minutes": 5,
    "staff_relaxation_minutes": 240,
    "half_day_minutes": 240,
    "include_short_day_deduction": false,
    "break_windows": [
      {"name": "Lunch", "start": "12:30", "end": "14:30", "allowance_minutes": 30}
    ],
    "shift_end": "17:30",
    "adj_overtime_buffer_minutes": 30,
    "custom_shift_min_overtime": 5,
    "maintenance_factor": 0.95,
    "staff_overtime_statuses": ["ADJ-P", "WO-I", "ADJ-M"],
    "half_day_threshold_minutes": 320,
    "cross_deduction_block_minutes": 240,
    "cross_deduction_block_days": 0.5,
    "parallelism": 4
  }

USAGE:
  factory := NewPolicyFactory()
  policy, err := factory.ParsePolicy(jsonString)
  policy, err := factory.LoadFile("./policy.json")

  // Named presets
  policy, err := factory.ParsePolicy(factory.Preset("evening-1245"))

SEE ALSO:
  - payroll/policy.go: Policy type definition and defaults
  - config/config.go: POLICY_FILE
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/payroll"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PolicyJSON is the JSON representation of a policy.
type PolicyJSON struct {
	Name                       string             `json:"name,omitempty"`
	DefaultClassification      string             `json:"default_classification,omitempty"`
	StandardStart              string             `json:"standard_start,omitempty"`
	EveningStart               string             `json:"evening_start,omitempty"`
	ShiftCutoff                string             `json:"shift_cutoff,omitempty"`
	GraceMinutes               *int               `json:"grace_minutes,omitempty"`
	StaffRelaxationMinutes     *int               `json:"staff_relaxation_minutes,omitempty"`
	HalfDayMinutes             *int               `json:"half_day_minutes,omitempty"`
	IncludeShortDayDeduction   *bool              `json:"include_short_day_deduction,omitempty"`
	BreakWindows               []BreakWindowJSON  `json:"break_windows,omitempty"`
	ShiftEnd                   string             `json:"shift_end,omitempty"`
	AdjOvertimeBufferMinutes   *int               `json:"adj_overtime_buffer_minutes,omitempty"`
	CustomShiftMinOvertime     *int               `json:"custom_shift_min_overtime,omitempty"`
	MaintenanceFactor          *decimal.Decimal   `json:"maintenance_factor,omitempty"`
	StaffOvertimeStatuses      []string           `json:"staff_overtime_statuses,omitempty"`
	HalfDayThresholdMinutes    *int               `json:"half_day_threshold_minutes,omitempty"`
	CrossDeductionBlockMinutes *int               `json:"cross_deduction_block_minutes,omitempty"`
	CrossDeductionBlockDays    *decimal.Decimal   `json:"cross_deduction_block_days,omitempty"`
	Parallelism                *int               `json:"parallelism,omitempty"`
}

// BreakWindowJSON represents one authorized break window.
type BreakWindowJSON struct {
	Name             string `json:"name"`
	Start            string `json:"start"`
	End              string `json:"end"`
	AllowanceMinutes int    `json:"allowance_minutes"`
}

// =============================================================================
// POLICY FACTORY
// =============================================================================

// PolicyFactory converts JSON policies to Go structs.
type PolicyFactory struct{}

// NewPolicyFactory creates a new policy factory.
func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{}
}

// ParsePolicy parses a JSON string into a validated Policy.
func (f *PolicyFactory) ParsePolicy(jsonStr string) (*payroll.Policy, error) {
	var pj PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("%w: failed to parse policy JSON: %v", generic.ErrInvalidPolicy, err)
	}
	return f.FromJSON(pj)
}

// LoadFile reads a policy document from disk.
func (f *PolicyFactory) LoadFile(path string) (*payroll.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return f.ParsePolicy(string(data))
}

// FromJSON layers a document over DefaultPolicy and validates the result.
func (f *PolicyFactory) FromJSON(pj PolicyJSON) (*payroll.Policy, error) {
	p := payroll.DefaultPolicy()

	if pj.DefaultClassification != "" {
		c, err := payroll.ParseClassification(pj.DefaultClassification)
		if err != nil {
			return nil, err
		}
		p.DefaultClassification = c
	}

	clocks := []struct {
		name string
		raw  string
		dst  *int
	}{
		{"standard_start", pj.StandardStart, &p.StandardStartMinutes},
		{"evening_start", pj.EveningStart, &p.EveningStartMinutes},
		{"shift_cutoff", pj.ShiftCutoff, &p.ShiftCutoffMinutes},
		{"shift_end", pj.ShiftEnd, &p.ShiftEndMinutes},
	}
	for _, c := range clocks {
		if c.raw == "" {
			continue
		}
		m, err := parseClock(c.name, c.raw)
		if err != nil {
			return nil, err
		}
		*c.dst = m
	}

	setInt(&p.GraceMinutes, pj.GraceMinutes)
	setInt(&p.StaffRelaxationMinutes, pj.StaffRelaxationMinutes)
	setInt(&p.HalfDayMinutes, pj.HalfDayMinutes)
	setInt(&p.AdjOvertimeBufferMinutes, pj.AdjOvertimeBufferMinutes)
	setInt(&p.CustomShiftMinOvertime, pj.CustomShiftMinOvertime)
	setInt(&p.HalfDayThresholdMinutes, pj.HalfDayThresholdMinutes)
	setInt(&p.CrossDeductionBlockMinutes, pj.CrossDeductionBlockMinutes)
	setInt(&p.Parallelism, pj.Parallelism)
	if pj.IncludeShortDayDeduction != nil {
		p.IncludeShortDayDeduction = *pj.IncludeShortDayDeduction
	}
	if pj.MaintenanceFactor != nil {
		p.MaintenanceFactor = *pj.MaintenanceFactor
	}
	if pj.CrossDeductionBlockDays != nil {
		p.CrossDeductionBlockDays = *pj.CrossDeductionBlockDays
	}

	if len(pj.BreakWindows) > 0 {
		p.BreakWindows = make([]payroll.BreakWindow, 0, len(pj.BreakWindows))
		for _, bw := range pj.BreakWindows {
			start, err := parseClock("break_windows.start", bw.Start)
			if err != nil {
				return nil, err
			}
			end, err := parseClock("break_windows.end", bw.End)
			if err != nil {
				return nil, err
			}
			p.BreakWindows = append(p.BreakWindows, payroll.BreakWindow{
				Name:             bw.Name,
				StartMinutes:     start,
				EndMinutes:       end,
				AllowanceMinutes: bw.AllowanceMinutes,
			})
		}
	}

	if len(pj.StaffOvertimeStatuses) > 0 {
		p.StaffOvertimeStatuses = make([]attendance.Status, 0, len(pj.StaffOvertimeStatuses))
		for _, s := range pj.StaffOvertimeStatuses {
			p.StaffOvertimeStatuses = append(p.StaffOvertimeStatuses, attendance.CanonicalStatus(s))
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// ToJSON converts a Policy to a complete PolicyJSON document.
func (f *PolicyFactory) ToJSON(p payroll.Policy) PolicyJSON {
	intPtr := func(v int) *int { return &v }
	boolPtr := func(v bool) *bool { return &v }
	decPtr := func(v decimal.Decimal) *decimal.Decimal { return &v }

	pj := PolicyJSON{
		DefaultClassification:      string(p.DefaultClassification),
		StandardStart:              generic.FormatClock(p.StandardStartMinutes),
		EveningStart:               generic.FormatClock(p.EveningStartMinutes),
		ShiftCutoff:                generic.FormatClock(p.ShiftCutoffMinutes),
		GraceMinutes:               intPtr(p.GraceMinutes),
		StaffRelaxationMinutes:     intPtr(p.StaffRelaxationMinutes),
		HalfDayMinutes:             intPtr(p.HalfDayMinutes),
		IncludeShortDayDeduction:   boolPtr(p.IncludeShortDayDeduction),
		ShiftEnd:                   generic.FormatClock(p.ShiftEndMinutes),
		AdjOvertimeBufferMinutes:   intPtr(p.AdjOvertimeBufferMinutes),
		CustomShiftMinOvertime:     intPtr(p.CustomShiftMinOvertime),
		MaintenanceFactor:          decPtr(p.MaintenanceFactor),
		HalfDayThresholdMinutes:    intPtr(p.HalfDayThresholdMinutes),
		CrossDeductionBlockMinutes: intPtr(p.CrossDeductionBlockMinutes),
		CrossDeductionBlockDays:    decPtr(p.CrossDeductionBlockDays),
		Parallelism:                intPtr(p.Parallelism),
	}
	for _, w := range p.BreakWindows {
		pj.BreakWindows = append(pj.BreakWindows, BreakWindowJSON{
			Name:             w.Name,
			Start:            generic.FormatClock(w.StartMinutes),
			End:              generic.FormatClock(w.EndMinutes),
			AllowanceMinutes: w.AllowanceMinutes,
		})
	}
	for _, s := range p.StaffOvertimeStatuses {
		pj.StaffOvertimeStatuses = append(pj.StaffOvertimeStatuses, string(s))
	}
	return pj
}

// =============================================================================
// PRESETS
// =============================================================================

var presets = map[string]string{
	"canonical": `{"name": "Canonical"}`,
	"evening-1245": `{
		"name": "Early evening shift",
		"evening_start": "12:45",
		"half_day_threshold_minutes": 320,
		"break_windows": [
			{"name": "Morning Tea", "start": "10:00", "end": "11:00", "allowance_minutes": 15},
			{"name": "Lunch", "start": "12:30", "end": "14:30", "allowance_minutes": 30},
			{"name": "Evening Tea", "start": "15:30", "end": "16:30", "allowance_minutes": 15},
			{"name": "Dinner", "start": "19:00", "end": "21:00", "allowance_minutes": 15}
		]
	}`,
	"worker-default": `{"name": "Worker by default", "default_classification": "worker"}`,
	"short-day": `{"name": "Short days deducted", "include_short_day_deduction": true}`,
}

// Preset returns the JSON of a named preset, or "" when unknown.
func (f *PolicyFactory) Preset(name string) string {
	return presets[name]
}

// PresetNames lists the presets, sorted.
func (f *PolicyFactory) PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseClock(field, raw string) (int, error) {
	if !generic.IsPunch(raw) {
		return 0, fmt.Errorf("%w: %s %q is not a clock time", generic.ErrInvalidPolicy, field, raw)
	}
	return generic.ParseClock(raw), nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
