/*
Package report checks computed payroll figures against HR's own numbers.

PURPOSE:
  HR works out present days, late hours and overtime hours by hand. Every
  employee's three figures are compared with the engine's, and each gap is
  bucketed with the same categorizer:

    present days  Grand Total            thresholds {0.5, 1}
    late hours    deduction total / 60   thresholds {1, 2}
    OT hours      overtime minutes / 60  thresholds {1, 2}

  HR rows are matched to employees through the same code/name index the
  override sheets use. An employee HR didn't list is N/A on every metric.

OUTPUT:
  - Compare: one Row per employee, in result order
  - Summarize: category counts per metric
  - WriteCSV / WriteXLSX: exports

SEE ALSO:
  - generic/categorize.go: the categorizer
  - report/reference.go: reading HR figures from CSV
*/
package report

import (
	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/overrides"
	"github.com/warp/attendance-engine/payroll"
)

type Metric string

const (
	MetricPresentDays Metric = "present_days"
	MetricLateHours   Metric = "late_hours"
	MetricOTHours     Metric = "ot_hours"
)

// Metrics lists the metrics in report order.
var Metrics = []Metric{MetricPresentDays, MetricLateHours, MetricOTHours}

// Thresholds returns the categorizer thresholds for a metric.
func (m Metric) Thresholds() generic.Thresholds {
	if m == MetricPresentDays {
		return generic.PresentDayThresholds
	}
	return generic.HourThresholds
}

// Comparison is one metric for one employee.
type Comparison struct {
	Software decimal.Decimal     `json:"software"`
	HR       decimal.NullDecimal `json:"hr"`
	Diff     decimal.NullDecimal `json:"diff"`
	Category generic.Category    `json:"category"`
}

func compare(m Metric, software decimal.Decimal, hr *decimal.Decimal) Comparison {
	c := Comparison{Software: software, Diff: generic.Difference(software, hr)}
	if hr != nil {
		c.HR = decimal.NewNullDecimal(*hr)
	}
	c.Category = generic.Categorize(c.Diff, m.Thresholds())
	return c
}

type Row struct {
	EmpCode        string                 `json:"emp_code"`
	EmpName        string                 `json:"emp_name"`
	Department     string                 `json:"department"`
	Classification payroll.Classification `json:"classification"`
	PresentDays    Comparison             `json:"present_days"`
	LateHours      Comparison             `json:"late_hours"`
	OTHours        Comparison             `json:"ot_hours"`
}

// Metric returns the comparison for m.
func (r Row) Metric(m Metric) Comparison {
	switch m {
	case MetricLateHours:
		return r.LateHours
	case MetricOTHours:
		return r.OTHours
	default:
		return r.PresentDays
	}
}

// Compare builds one row per result. References may be empty.
func Compare(results []payroll.Result, refs []payroll.Reference) []Row {
	entries := make([]overrides.Entry[payroll.Reference], 0, len(refs))
	for _, ref := range refs {
		entries = append(entries, overrides.Entry[payroll.Reference]{EmpCode: ref.EmpCode, EmpName: ref.EmpName, Value: ref})
	}
	index := overrides.NewIndex(entries)

	rows := make([]Row, 0, len(results))
	for _, res := range results {
		ref, _ := index.Lookup(res.EmpCode, res.EmpName)
		rows = append(rows, Row{
			EmpCode:        res.EmpCode,
			EmpName:        res.EmpName,
			Department:     res.Department,
			Classification: res.Classification,
			PresentDays:    compare(MetricPresentDays, res.Stats.GrandTotal.Value, ref.PresentDays),
			LateHours:      compare(MetricLateHours, res.LateHours(), ref.LateHours),
			OTHours:        compare(MetricOTHours, res.OvertimeHours(), ref.OTHours),
		})
	}
	return rows
}

// =============================================================================
// SUMMARY
// =============================================================================

// MetricSummary counts rows per category for one metric.
type MetricSummary struct {
	Metric Metric                   `json:"metric"`
	Counts map[generic.Category]int `json:"counts"`
}

type Summary struct {
	Employees int             `json:"employees"`
	Metrics   []MetricSummary `json:"metrics"`
}

// Count returns the number of rows in category c for metric m.
func (s Summary) Count(m Metric, c generic.Category) int {
	for _, ms := range s.Metrics {
		if ms.Metric == m {
			return ms.Counts[c]
		}
	}
	return 0
}

// Summarize counts categories. Every category appears, zero or not.
func Summarize(rows []Row) Summary {
	s := Summary{Employees: len(rows)}
	for _, m := range Metrics {
		ms := MetricSummary{Metric: m, Counts: make(map[generic.Category]int, len(generic.Categories))}
		for _, c := range generic.Categories {
			ms.Counts[c] = 0
		}
		for _, r := range rows {
			ms.Counts[r.Metric(m).Category]++
		}
		s.Metrics = append(s.Metrics, ms)
	}
	return s
}
