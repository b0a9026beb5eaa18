package report

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// CSV
// =============================================================================

type csvRow struct {
	EmpCode         string `csv:"emp_code"`
	EmpName         string `csv:"emp_name"`
	Department      string `csv:"department"`
	Classification  string `csv:"classification"`
	PresentSoftware string `csv:"present_days_software"`
	PresentHR       string `csv:"present_days_hr"`
	PresentDiff     string `csv:"present_days_diff"`
	PresentCategory string `csv:"present_days_category"`
	LateSoftware    string `csv:"late_hours_software"`
	LateHR          string `csv:"late_hours_hr"`
	LateDiff        string `csv:"late_hours_diff"`
	LateCategory    string `csv:"late_hours_category"`
	OTSoftware      string `csv:"ot_hours_software"`
	OTHR            string `csv:"ot_hours_hr"`
	OTDiff          string `csv:"ot_hours_diff"`
	OTCategory      string `csv:"ot_hours_category"`
}

// WriteCSV writes one line per employee.
func WriteCSV(w io.Writer, rows []Row) error {
	out := make([]*csvRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, &csvRow{
			EmpCode:         r.EmpCode,
			EmpName:         r.EmpName,
			Department:      r.Department,
			Classification:  string(r.Classification),
			PresentSoftware: r.PresentDays.Software.String(),
			PresentHR:       nullString(r.PresentDays.HR),
			PresentDiff:     nullString(r.PresentDays.Diff),
			PresentCategory: string(r.PresentDays.Category),
			LateSoftware:    r.LateHours.Software.String(),
			LateHR:          nullString(r.LateHours.HR),
			LateDiff:        nullString(r.LateHours.Diff),
			LateCategory:    string(r.LateHours.Category),
			OTSoftware:      r.OTHours.Software.String(),
			OTHR:            nullString(r.OTHours.HR),
			OTDiff:          nullString(r.OTHours.Diff),
			OTCategory:      string(r.OTHours.Category),
		})
	}
	if err := gocsv.Marshal(out, w); err != nil {
		return fmt.Errorf("failed to write report CSV: %w", err)
	}
	return nil
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return "N/A"
	}
	return d.Decimal.String()
}

// =============================================================================
// XLSX
// =============================================================================

const (
	SheetComparison = "Comparison"
	SheetSummary    = "Summary"
)

var comparisonHeader = []interface{}{
	"Emp Code", "Emp Name", "Department", "Classification",
	"Present Days", "HR Present Days", "Diff", "Category",
	"Late Hours", "HR Late Hours", "Diff", "Category",
	"OT Hours", "HR OT Hours", "Diff", "Category",
}

// WriteXLSX writes a workbook with a Comparison sheet (one row per employee)
// and a Summary sheet (category counts per metric). Numbers are written as
// numbers; missing HR figures are blank.
func WriteXLSX(w io.Writer, rows []Row) error {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", SheetComparison); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := setRow(wb, SheetComparison, 1, comparisonHeader); err != nil {
		return err
	}
	for i, r := range rows {
		values := []interface{}{r.EmpCode, r.EmpName, r.Department, string(r.Classification)}
		for _, m := range Metrics {
			c := r.Metric(m)
			values = append(values, c.Software.InexactFloat64(), cellValue(c.HR), cellValue(c.Diff), string(c.Category))
		}
		if err := setRow(wb, SheetComparison, i+2, values); err != nil {
			return err
		}
	}

	if _, err := wb.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}
	summary := Summarize(rows)
	header := []interface{}{"Metric"}
	for _, c := range generic.Categories {
		header = append(header, string(c))
	}
	if err := setRow(wb, SheetSummary, 1, header); err != nil {
		return err
	}
	for i, ms := range summary.Metrics {
		values := []interface{}{string(ms.Metric)}
		for _, c := range generic.Categories {
			values = append(values, ms.Counts[c])
		}
		if err := setRow(wb, SheetSummary, i+2, values); err != nil {
			return err
		}
	}

	if err := wb.Write(w); err != nil {
		return fmt.Errorf("failed to write report workbook: %w", err)
	}
	return nil
}

func setRow(wb *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := wb.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func cellValue(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return nil
	}
	return d.Decimal.InexactFloat64()
}
