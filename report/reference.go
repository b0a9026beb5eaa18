package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/payroll"
)

// referenceRow is one line of the HR reference CSV:
//
//	emp_code,emp_name,present_days,late_hours,ot_hours
//
// Blank or unreadable figures mean HR left them out.
type referenceRow struct {
	EmpCode     string `csv:"emp_code"`
	EmpName     string `csv:"emp_name"`
	PresentDays string `csv:"present_days"`
	LateHours   string `csv:"late_hours"`
	OTHours     string `csv:"ot_hours"`
}

// ReadReferences parses the HR reference CSV. Rows with neither code nor
// name are skipped.
func ReadReferences(r io.Reader) ([]payroll.Reference, error) {
	var rows []*referenceRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to read reference CSV: %w", err)
	}

	refs := make([]payroll.Reference, 0, len(rows))
	for _, row := range rows {
		code := strings.TrimSpace(row.EmpCode)
		name := strings.TrimSpace(row.EmpName)
		if code == "" && name == "" {
			continue
		}
		refs = append(refs, payroll.Reference{
			EmpCode:     code,
			EmpName:     name,
			PresentDays: optionalDecimal(row.PresentDays),
			LateHours:   optionalDecimal(row.LateHours),
			OTHours:     optionalDecimal(row.OTHours),
		})
	}
	return refs, nil
}

// WriteReferences writes references in the format ReadReferences reads.
func WriteReferences(w io.Writer, refs []payroll.Reference) error {
	rows := make([]*referenceRow, 0, len(refs))
	for _, ref := range refs {
		rows = append(rows, &referenceRow{
			EmpCode:     ref.EmpCode,
			EmpName:     ref.EmpName,
			PresentDays: formatOptional(ref.PresentDays),
			LateHours:   formatOptional(ref.LateHours),
			OTHours:     formatOptional(ref.OTHours),
		})
	}
	return gocsv.Marshal(rows, w)
}

func optionalDecimal(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

func formatOptional(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
