/*
engine.go - Reconciliation orchestrator

PURPOSE:
  Composes the calculators with explicit data flow. Deductions and overtime
  are computed independently; their net feeds present-day reconciliation.
  No calculator sees another's state.

FLOW:
  Deductions(emp) ─┐
                   ├─> FinalDifference = overtime - deductions ─> EmployeeStats
  Overtime(emp)  ──┘

CONCURRENCY:
  Engine is immutable after NewEngine. ReconcileAll fans out across
  employees; results come back in roster order.

SEE ALSO:
  - attendance/session.go: builds the roster the engine consumes
  - report/compare.go: checks results against HR figures
*/
package payroll

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/generic"
)

type Engine struct {
	policy Policy
}

// NewEngine validates the policy and returns an engine bound to it.
func NewEngine(p Policy) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.BreakWindows = append([]BreakWindow(nil), p.BreakWindows...)
	p.StaffOvertimeStatuses = append([]attendance.Status(nil), p.StaffOvertimeStatuses...)
	return &Engine{policy: p}, nil
}

// Policy returns a copy of the engine's policy.
func (e *Engine) Policy() Policy {
	p := e.policy
	p.BreakWindows = append([]BreakWindow(nil), p.BreakWindows...)
	p.StaffOvertimeStatuses = append([]attendance.Status(nil), p.StaffOvertimeStatuses...)
	return p
}

// HolidayCounts are the roster-wide holiday figures.
type HolidayCounts struct {
	Base     int  `json:"base"`
	Selected *int `json:"selected,omitempty"`
}

// Result is everything computed for one employee.
type Result struct {
	EmpCode                string          `json:"emp_code"`
	EmpName                string          `json:"emp_name"`
	CompanyName            string          `json:"company_name"`
	Department             string          `json:"department"`
	Classification         Classification  `json:"classification"`
	Deductions             DeductionResult `json:"deductions"`
	Overtime               OvertimeResult  `json:"overtime"`
	FinalDifferenceMinutes int             `json:"final_difference_minutes"`
	Stats                  EmployeeStats   `json:"stats"`
}

// LateHours is the deduction total in hours.
func (r Result) LateHours() decimal.Decimal {
	return generic.MinutesToHours(r.Deductions.Total)
}

// OvertimeHours is the overtime total in hours.
func (r Result) OvertimeHours() decimal.Decimal {
	return generic.MinutesToHours(r.Overtime.Minutes)
}

// Reconcile runs every calculator for one employee.
func (e *Engine) Reconcile(emp attendance.EmployeeRecord, ov Overrides, holidays HolidayCounts) Result {
	ded := e.Deductions(emp, ov)
	ot := e.Overtime(emp, ov)
	diff := ot.Minutes - ded.Total

	stats := e.EmployeeStats(emp, StatsInput{
		BaseHolidays:           holidays.Base,
		SelectedHolidays:       holidays.Selected,
		PaidLeaveDays:          ov.PaidLeaveDays(emp.EmpCode, emp.EmpName),
		FinalDifferenceMinutes: diff,
	})

	return Result{
		EmpCode:                emp.EmpCode,
		EmpName:                emp.EmpName,
		CompanyName:            emp.CompanyName,
		Department:             emp.Department,
		Classification:         Classify(emp, e.policy),
		Deductions:             ded,
		Overtime:               ot,
		FinalDifferenceMinutes: diff,
		Stats:                  stats,
	}
}

// ReconcileAll reconciles a roster in parallel, preserving order. It stops
// early when ctx is cancelled.
func (e *Engine) ReconcileAll(ctx context.Context, roster []attendance.EmployeeRecord, ov Overrides, holidays HolidayCounts) ([]Result, error) {
	results := make([]Result, len(roster))

	limit := e.policy.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range roster {
		i := i
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = e.Reconcile(roster[i], ov, holidays)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reconcile roster: %w", err)
	}
	return results, nil
}
