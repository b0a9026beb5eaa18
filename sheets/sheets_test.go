package sheets_test

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/sheets"
)

// workbook builds an in-memory file; the first sheet replaces Sheet1.
func workbook(t *testing.T, sheetsByName map[string][][]interface{}, order ...string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheetsByName[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(name, cell, &values))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestRead_AttendanceAndOverrides(t *testing.T) {
	// GIVEN: lower-case sheet names, spaced headers in a shuffled order
	buf := workbook(t, map[string][][]interface{}{
		"attendance": {
			{"Status", "Emp Code", "Emp Name", "Department", "Date", "Day", "In Time", "Out Time", "Late Mins", "Notes"},
			{"p", "E1", "Asha", "Ops", 2, "Tu", "08:40", "17:30", 10, "x"},
			{"A", "E1", "", "", 1, "Mo", "", "", "", ""},
			{"P", "E2", "Ben", "Stores", "3.0", "We", "08:30", "17:30", "oops", ""},
			{"", "", "", "", "", "", "", "", "", ""},
		},
		"Paid Leave":    {{"EmpCode", "Days"}, {"E1", 1.5}, {"E1", "bad"}},
		"CustomShift":   {{"EmpCode", "EmpName", "Start", "End"}, {"", "Ben", "09:00", "18:00"}},
		"OvertimeGrant": {{"EmpCode", "FromDay", "ToDay"}, {"E1", 10, 20}},
		"FullNight":     {{"EmpCode", "Hours"}, {"E2", 4}},
		"Maintenance":   {{"EmpCode"}, {"E2"}},
		"Holidays":      {{"Date"}, {15}, {"junk"}},
		"Punches": {
			{"EmpCode", "Date", "Type", "Time"},
			{"E1", 2, "In", "12:40"},
			{"E1", 2, "break", "12:50"},
		},
	}, "attendance", "Paid Leave", "CustomShift", "OvertimeGrant", "FullNight", "Maintenance", "Holidays", "Punches")

	// WHEN: importing
	wb, err := sheets.Read(buf)
	require.NoError(t, err)

	// THEN: rows are grouped per employee in first-seen order, days sorted
	require.Len(t, wb.Roster, 2)
	e1 := wb.Roster[0]
	assert.Equal(t, "E1", e1.EmpCode)
	assert.Equal(t, "Asha", e1.EmpName)
	assert.Equal(t, "Ops", e1.Department)
	require.Len(t, e1.Days, 2)
	assert.Equal(t, 1, e1.Days[0].Date)
	assert.Equal(t, generic.NoPunch, e1.Days[0].InTime)
	assert.Equal(t, attendance.StatusPresent, e1.Days[1].Status)
	assert.Equal(t, 10, e1.Days[1].LateMins)

	e2 := wb.Roster[1]
	assert.Equal(t, 3, e2.Days[0].Date, "decimal-looking date")
	assert.Equal(t, 0, e2.Days[0].LateMins, "malformed cell reads as zero")

	// AND: override sheets
	ov := wb.Overrides
	require.Len(t, ov.PaidLeave, 2)
	assert.True(t, ov.PaidLeave[0].Days.Equal(decimal.NewFromFloat(1.5)))
	assert.True(t, ov.PaidLeave[1].Days.IsZero())
	assert.Equal(t, "Ben", ov.CustomShifts[0].EmpName)
	assert.Equal(t, 10, ov.OvertimeGrants[0].FromDay)
	assert.True(t, ov.FullNight[0].Hours.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, "E2", ov.Maintenance[0].EmpCode)
	assert.Equal(t, []int{15}, ov.Holidays)
	require.Len(t, ov.Punches, 1, "unknown punch type dropped")
	assert.Equal(t, attendance.PunchIn, ov.Punches[0].Type)

	assert.Equal(t, []string{
		sheets.SheetAttendance, sheets.SheetPaidLeave, sheets.SheetCustomShift, sheets.SheetOvertimeGrant,
		sheets.SheetFullNight, sheets.SheetMaintenance, sheets.SheetHolidays, sheets.SheetPunches,
	}, wb.Sheets)
}

func TestRead_StructuralErrors(t *testing.T) {
	t.Run("no attendance sheet", func(t *testing.T) {
		buf := workbook(t, map[string][][]interface{}{"Holidays": {{"Date"}, {1}}}, "Holidays")
		_, err := sheets.Read(buf)
		assert.ErrorContains(t, err, "no Attendance sheet")
	})

	t.Run("missing date column", func(t *testing.T) {
		buf := workbook(t, map[string][][]interface{}{"Attendance": {{"EmpCode", "Status"}, {"E1", "P"}}}, "Attendance")
		_, err := sheets.Read(buf)
		assert.ErrorContains(t, err, "no Date column")
	})

	t.Run("duplicate date", func(t *testing.T) {
		buf := workbook(t, map[string][][]interface{}{"Attendance": {
			{"EmpCode", "Date", "Status"},
			{"E1", 4, "P"},
			{"E1", 4, "A"},
		}}, "Attendance")
		_, err := sheets.Read(buf)
		assert.ErrorIs(t, err, generic.ErrDuplicateDate)
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := sheets.Read(bytes.NewBufferString("emp_code,date\n"))
		assert.Error(t, err)
	})
}

func TestRead_OnlyAttendance(t *testing.T) {
	buf := workbook(t, map[string][][]interface{}{"ATTENDANCE": {{"EMPCODE", "DATE", "STATUS"}, {"7", 1, "WO"}}}, "ATTENDANCE")

	wb, err := sheets.Read(buf)
	require.NoError(t, err)
	require.Len(t, wb.Roster, 1)
	assert.Equal(t, attendance.StatusWeekOff, wb.Roster[0].Days[0].Status)
	assert.Empty(t, wb.Overrides.Punches)
	assert.Equal(t, []string{sheets.SheetAttendance}, wb.Sheets)
}
