/*
store.go - Run history contract

PURPOSE:
  A Run is the audit record of one reconciliation: the policy it ran with,
  the holiday figures, the per-employee results and the HR reference
  figures it was checked against. Runs are written once and read back for
  reports; the retention sweeper deletes old ones.

  Attendance data itself is never persisted here. Every session starts
  again from the uploaded sheets.

IMPLEMENTATIONS:
  - payroll/store/memory.go: In-memory for tests and dev
  - store/sqlite/sqlite.go: SQLite, results stored as JSON
*/
package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Reference holds the HR-computed figures for one employee. A nil field
// means HR left it blank.
type Reference struct {
	EmpCode     string           `json:"emp_code"`
	EmpName     string           `json:"emp_name,omitempty"`
	PresentDays *decimal.Decimal `json:"present_days,omitempty"`
	LateHours   *decimal.Decimal `json:"late_hours,omitempty"`
	OTHours     *decimal.Decimal `json:"ot_hours,omitempty"`
}

type Run struct {
	ID         string        `json:"id"`
	Label      string        `json:"label"`
	CreatedAt  time.Time     `json:"created_at"`
	Policy     Policy        `json:"policy"`
	Holidays   HolidayCounts `json:"holidays"`
	Results    []Result      `json:"results"`
	References []Reference   `json:"references,omitempty"`
}

// RunSummary is the list view of a run.
type RunSummary struct {
	ID              string          `json:"id"`
	Label           string          `json:"label"`
	CreatedAt       time.Time       `json:"created_at"`
	Employees       int             `json:"employees"`
	GrandTotalDays  decimal.Decimal `json:"grand_total_days"`
	OvertimeMinutes int             `json:"overtime_minutes"`
}

// Summary totals a run's results.
func (r Run) Summary() RunSummary {
	s := RunSummary{ID: r.ID, Label: r.Label, CreatedAt: r.CreatedAt, Employees: len(r.Results)}
	for _, res := range r.Results {
		s.GrandTotalDays = s.GrandTotalDays.Add(res.Stats.GrandTotal.Value)
		s.OvertimeMinutes += res.Overtime.Minutes
	}
	return s
}

// RunStore persists runs.
type RunStore interface {
	// SaveRun stores a new run. IDs are unique.
	SaveRun(ctx context.Context, run Run) error

	// GetRun returns generic.ErrRunNotFound for an unknown ID.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns summaries, newest first.
	ListRuns(ctx context.Context) ([]RunSummary, error)

	// DeleteRunsBefore removes runs created before cutoff and reports how many.
	DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int, error)
}
