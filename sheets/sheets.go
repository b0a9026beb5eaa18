/*
Package sheets imports a month of attendance from a long-format workbook.

LAYOUT:
  Every sheet has a header row; headers and sheet names are matched
  case-insensitively with spaces and punctuation ignored ("Emp Code" and
  "empcode" are the same column). Columns may appear in any order and
  unknown columns are ignored.

  Attendance (required)  EmpCode, EmpName, Company, Department, Date, Day,
                         Status, InTime, OutTime, LateMins, EarlyDep,
                         OTHrs, WorkHrs
  PaidLeave              EmpCode, EmpName, Days
  CustomShift            EmpCode, EmpName, Start, End
  OvertimeGrant          EmpCode, EmpName, FromDay, ToDay
  FullNight              EmpCode, EmpName, Hours
  Maintenance            EmpCode, EmpName
  Holidays               Date
  Punches                EmpCode, EmpName, Date, Type, Time

  One Attendance row is one employee-day. Rows are grouped per EmpCode in
  first-seen order.

ERRORS:
  A missing Attendance sheet, or one without EmpCode and Date headers, is
  an error. So is a record the attendance package rejects (date outside
  1..31, the same date twice). Any other malformed cell reads as zero.
*/
package sheets

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/overrides"
)

const (
	SheetAttendance    = "Attendance"
	SheetPaidLeave     = "PaidLeave"
	SheetCustomShift   = "CustomShift"
	SheetOvertimeGrant = "OvertimeGrant"
	SheetFullNight     = "FullNight"
	SheetMaintenance   = "Maintenance"
	SheetHolidays      = "Holidays"
	SheetPunches       = "Punches"
)

// Workbook is the parsed content of one import.
type Workbook struct {
	Roster    []attendance.EmployeeRecord `json:"roster"`
	Overrides overrides.Data              `json:"overrides"`
	// Sheets lists the recognized sheet names found in the file.
	Sheets []string `json:"sheets"`
}

// Read parses a workbook from r.
func Read(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// ReadFile parses the workbook at path.
func ReadFile(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads every recognized sheet of an open workbook.
func Parse(f *excelize.File) (*Workbook, error) {
	names := make(map[string]string)
	for _, name := range f.GetSheetList() {
		names[normalizeHeader(name)] = name
	}

	wb := &Workbook{}
	att, ok := names[normalizeHeader(SheetAttendance)]
	if !ok {
		return nil, fmt.Errorf("workbook has no %s sheet", SheetAttendance)
	}
	t, err := readTable(f, att)
	if err != nil {
		return nil, err
	}
	if wb.Roster, err = parseAttendance(t); err != nil {
		return nil, err
	}
	wb.Sheets = append(wb.Sheets, SheetAttendance)

	optional := []struct {
		sheet string
		parse func(*table, *overrides.Data)
	}{
		{SheetPaidLeave, parsePaidLeave},
		{SheetCustomShift, parseCustomShift},
		{SheetOvertimeGrant, parseOvertimeGrant},
		{SheetFullNight, parseFullNight},
		{SheetMaintenance, parseMaintenance},
		{SheetHolidays, parseHolidays},
		{SheetPunches, parsePunches},
	}
	for _, o := range optional {
		name, ok := names[normalizeHeader(o.sheet)]
		if !ok {
			continue
		}
		t, err := readTable(f, name)
		if err != nil {
			return nil, err
		}
		o.parse(t, &wb.Overrides)
		wb.Sheets = append(wb.Sheets, o.sheet)
	}
	return wb, nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

type employeeRows struct {
	code, name, company, department string
	days                            []attendance.Day
}

func parseAttendance(t *table) ([]attendance.EmployeeRecord, error) {
	for _, col := range []string{"EmpCode", "Date"} {
		if !t.has(col) {
			return nil, fmt.Errorf("%s sheet has no %s column", SheetAttendance, col)
		}
	}

	var order []string
	byCode := make(map[string]*employeeRows)
	for _, row := range t.rows {
		code := t.get(row, "EmpCode")
		if code == "" {
			continue
		}
		e, ok := byCode[code]
		if !ok {
			e = &employeeRows{code: code}
			byCode[code] = e
			order = append(order, code)
		}
		fillBlank(&e.name, t.get(row, "EmpName"))
		fillBlank(&e.company, t.get(row, "Company"))
		fillBlank(&e.department, t.get(row, "Department"))

		e.days = append(e.days, attendance.Day{
			Date:      cellInt(t.get(row, "Date")),
			DayOfWeek: t.get(row, "Day"),
			Status:    attendance.Status(t.get(row, "Status")),
			InTime:    t.get(row, "InTime"),
			OutTime:   t.get(row, "OutTime"),
			LateMins:  generic.ParseMinutes(t.get(row, "LateMins")),
			EarlyDep:  generic.ParseMinutes(t.get(row, "EarlyDep")),
			OTHrs:     t.get(row, "OTHrs"),
			WorkHrs:   t.get(row, "WorkHrs"),
		})
	}

	roster := make([]attendance.EmployeeRecord, 0, len(order))
	for _, code := range order {
		e := byCode[code]
		rec, err := attendance.NewEmployeeRecord(e.code, e.name, e.company, e.department, e.days)
		if err != nil {
			return nil, fmt.Errorf("%s sheet: %w", SheetAttendance, err)
		}
		roster = append(roster, rec)
	}
	return roster, nil
}

func fillBlank(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

// =============================================================================
// OVERRIDE SHEETS
// =============================================================================

func employee(t *table, row []string) (overrides.Employee, bool) {
	e := overrides.Employee{EmpCode: t.get(row, "EmpCode"), EmpName: t.get(row, "EmpName")}
	return e, e.EmpCode != "" || e.EmpName != ""
}

func parsePaidLeave(t *table, d *overrides.Data) {
	for _, row := range t.rows {
		if e, ok := employee(t, row); ok {
			d.PaidLeave = append(d.PaidLeave, overrides.PaidLeave{Employee: e, Days: cellDecimal(t.get(row, "Days"))})
		}
	}
}

func parseCustomShift(t *table, d *overrides.Data) {
	for _, row := range t.rows {
		if e, ok := employee(t, row); ok {
			d.CustomShifts = append(d.CustomShifts, overrides.CustomShift{
				Employee: e,
				Start:    t.get(row, "Start"),
				End:      t.get(row, "End"),
			})
		}
	}
}

func parseOvertimeGrant(t *table, d *overrides.Data) {
	for _, row := range t.rows {
		if e, ok := employee(t, row); ok {
			d.OvertimeGrants = append(d.OvertimeGrants, overrides.OvertimeGrant{
				Employee: e,
				FromDay:  cellInt(t.get(row, "FromDay")),
				ToDay:    cellInt(t.get(row, "ToDay")),
			})
		}
	}
}

func parseFullNight(t *table, d *overrides.Data) {
	for _, row := range t.rows {
		if e, ok := employee(t, row); ok {
			d.FullNight = append(d.FullNight, overrides.FullNight{Employee: e, Hours: cellDecimal(t.get(row, "Hours"))})
		}
	}
}

func parseMaintenance(t *table, d *overrides.Data) {
	for _, row := range t.rows {
		if e, ok := employee(t, row); ok {
			d.Maintenance = append(d.Maintenance, e)
		}
	}
}

func parseHolidays(t *table, d *overrides.Data) {
	for _, row := range t.rows {
		if date := cellInt(t.get(row, "Date")); date != 0 {
			d.Holidays = append(d.Holidays, date)
		}
	}
}

func parsePunches(t *table, d *overrides.Data) {
	for _, row := range t.rows {
		e, ok := employee(t, row)
		if !ok {
			continue
		}
		typ := attendance.PunchType(strings.ToLower(t.get(row, "Type")))
		if typ != attendance.PunchIn && typ != attendance.PunchOut {
			continue
		}
		d.Punches = append(d.Punches, overrides.BreakPunch{
			Employee: e,
			Date:     cellInt(t.get(row, "Date")),
			Type:     typ,
			Time:     t.get(row, "Time"),
		})
	}
}

// =============================================================================
// TABLE
// =============================================================================

// table is a sheet's data rows with its header row resolved to column indexes.
type table struct {
	cols map[string]int
	rows [][]string
}

func readTable(f *excelize.File, sheet string) (*table, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	t := &table{cols: make(map[string]int)}
	if len(rows) == 0 {
		return t, nil
	}
	for i, h := range rows[0] {
		key := normalizeHeader(h)
		if _, dup := t.cols[key]; key != "" && !dup {
			t.cols[key] = i
		}
	}
	t.rows = rows[1:]
	return t, nil
}

func (t *table) has(col string) bool {
	_, ok := t.cols[normalizeHeader(col)]
	return ok
}

// get returns the trimmed cell, or "" when the column or cell is absent.
func (t *table) get(row []string, col string) string {
	i, ok := t.cols[normalizeHeader(col)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func normalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// cellInt reads whole numbers, including the "12.0" spreadsheets produce.
func cellInt(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return int(d.IntPart())
}

func cellDecimal(s string) decimal.Decimal {
	return generic.MustParseDecimal(strings.TrimSpace(s))
}
