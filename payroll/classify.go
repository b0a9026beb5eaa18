package payroll

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/attendance"
)

// Overrides is the read-only lookup contract the engine consumes. Every
// method resolves by employee code first, then name, and returns a zero
// value on a miss.
type Overrides interface {
	PaidLeaveDays(code, name string) decimal.Decimal
	CustomShift(code, name string) (attendance.ShiftWindow, bool)
	OvertimeGrant(code, name string) (attendance.GrantWindow, bool)
	FullNightBonusHours(code, name string) decimal.Decimal
	IsMaintenance(code, name string) bool
	BreakPunches(code, name string, date int) []attendance.Punch
}

// Classify decides the payroll policy from free text. Cash employees and
// anything mentioning "worker" are Workers, "staff" is Staff, the rest get
// the policy default. The order matters: "Staff (C Cash)" is a Worker.
func Classify(emp attendance.EmployeeRecord, p Policy) Classification {
	text := strings.ToLower(emp.CompanyName + " " + emp.Department)
	switch {
	case strings.Contains(text, "c cash"):
		return Worker
	case strings.Contains(text, "worker"):
		return Worker
	case strings.Contains(text, "staff"):
		return Staff
	}
	return p.DefaultClassification
}

func IsStaff(emp attendance.EmployeeRecord, p Policy) bool {
	return Classify(emp, p) == Staff
}

// IsCashEmployee reports departments paid in cash; they get no holiday credit.
func IsCashEmployee(emp attendance.EmployeeRecord) bool {
	return strings.Contains(strings.ToUpper(emp.Department), "C CASH EMPLOYEE")
}
