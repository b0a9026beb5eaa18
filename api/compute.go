package api

import (
	"context"
	"fmt"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/overrides"
	"github.com/warp/attendance-engine/payroll"
)

// ComputeInput is everything one reconciliation needs. It is the body of
// POST /api/runs and what the CLI assembles from files.
type ComputeInput struct {
	Label        string                       `json:"label"`
	Roster       []attendance.EmployeeRecord  `json:"roster"`
	Overrides    overrides.Data               `json:"overrides"`
	Adjustments  []attendance.Adjustment      `json:"adjustments,omitempty"`
	Holidays     *attendance.HolidaySelection `json:"holidays,omitempty"`
	BaseHolidays int                          `json:"base_holidays"`
	References   []payroll.Reference          `json:"references,omitempty"`
}

// Compute replays the session and reconciles every employee. The returned
// run has no ID or timestamp yet.
//
// Holiday dates come from the explicit selection, or else from the
// Holidays override sheet. Adjustments are applied in order and the first
// rejected one aborts the computation.
func Compute(ctx context.Context, engine *payroll.Engine, in ComputeInput) (payroll.Run, error) {
	roster := make([]attendance.EmployeeRecord, 0, len(in.Roster))
	for _, rec := range in.Roster {
		n, err := rec.Normalized()
		if err != nil {
			return payroll.Run{}, err
		}
		roster = append(roster, n)
	}

	session, err := attendance.NewSession(roster)
	if err != nil {
		return payroll.Run{}, err
	}
	for _, adj := range in.Adjustments {
		if err := session.ApplyAdjustment(adj); err != nil {
			return payroll.Run{}, err
		}
	}

	set := overrides.Build(in.Overrides)
	switch {
	case in.Holidays != nil:
		if err := session.SelectHolidays(*in.Holidays); err != nil {
			return payroll.Run{}, err
		}
	case len(set.HolidayDates()) > 0:
		dates := set.HolidayDates()
		if err := session.SelectHolidays(attendance.HolidaySelection{Dates: dates, Count: len(dates)}); err != nil {
			return payroll.Run{}, err
		}
	}

	holidays := payroll.HolidayCounts{Base: in.BaseHolidays, Selected: session.SelectedHolidayCount()}
	results, err := engine.ReconcileAll(ctx, session.Roster(), set, holidays)
	if err != nil {
		return payroll.Run{}, fmt.Errorf("failed to reconcile: %w", err)
	}

	return payroll.Run{
		Label:      in.Label,
		Policy:     engine.Policy(),
		Holidays:   holidays,
		Results:    results,
		References: in.References,
	}, nil
}
