/*
errors.go - Centralized error types for the attendance engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Parse errors - never surface; malformed cells degrade to zero
  2. Validation errors - user-initiated adjustments and holiday selections
  3. Lookup misses - not errors; adapters return zero values
  4. Store errors - run history failures

USAGE:
  if errors.Is(err, generic.ErrDateAlreadyAdjusted) {
      // show the message to the user, nothing was changed
  }

SEE ALSO:
  - attendance/session.go: Raises adjustment and holiday validation errors
  - api/handlers.go: Maps client errors to 400
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrSameDate is returned when an adjustment swaps a date with itself.
	ErrSameDate = errors.New("original and adjusted dates must differ")

	// ErrDateNotFound is returned when a date is missing from an employee's days.
	ErrDateNotFound = errors.New("date not found in attendance")

	// ErrDateAlreadyAdjusted is returned when a date already belongs to an
	// adjustment of the same employee. Re-applying an adjustment hits this.
	ErrDateAlreadyAdjusted = errors.New("date already part of an adjustment")

	// ErrHolidayCountMismatch is returned when the requested holiday count
	// differs from the number of selected dates.
	ErrHolidayCountMismatch = errors.New("holiday count does not match selected dates")

	// ErrInvalidDate is returned for a day-of-month outside 1..31.
	ErrInvalidDate = errors.New("invalid day of month")

	// ErrDuplicateDate is returned when a record lists the same date twice.
	ErrDuplicateDate = errors.New("duplicate date in attendance")

	// ErrEmployeeNotFound is returned when a mutation names an unknown employee.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrDuplicateEmployee is returned when a roster lists the same code twice.
	ErrDuplicateEmployee = errors.New("duplicate employee code")

	// ErrRunNotFound is returned when a stored run doesn't exist.
	ErrRunNotFound = errors.New("run not found")

	// ErrInvalidPolicy is returned when a policy document fails validation.
	ErrInvalidPolicy = errors.New("invalid policy")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// AdjustmentError describes a rejected day swap.
type AdjustmentError struct {
	EmpCode      string
	OriginalDate int
	AdjustedDate int
	Date         int // the offending date, when one is to blame
	Err          error
}

func (e *AdjustmentError) Error() string {
	if e.Date != 0 {
		return fmt.Sprintf("adjustment %d->%d for %s: %v (date %d)",
			e.OriginalDate, e.AdjustedDate, e.EmpCode, e.Err, e.Date)
	}
	return fmt.Sprintf("adjustment %d->%d for %s: %v",
		e.OriginalDate, e.AdjustedDate, e.EmpCode, e.Err)
}

func (e *AdjustmentError) Unwrap() error {
	return e.Err
}

// HolidaySelectionError describes a rejected holiday selection.
type HolidaySelectionError struct {
	Requested int
	Selected  int
	Date      int
	Err       error
}

func (e *HolidaySelectionError) Error() string {
	if errors.Is(e.Err, ErrHolidayCountMismatch) {
		return fmt.Sprintf("%v: requested %d, selected %d", e.Err, e.Requested, e.Selected)
	}
	return fmt.Sprintf("holiday selection: %v (date %d)", e.Err, e.Date)
}

func (e *HolidaySelectionError) Unwrap() error {
	return e.Err
}

// RecordError describes a malformed employee record.
type RecordError struct {
	EmpCode string
	Date    int
	Err     error
}

func (e *RecordError) Error() string {
	if e.Date == 0 {
		return fmt.Sprintf("employee %s: %v", e.EmpCode, e.Err)
	}
	return fmt.Sprintf("employee %s: %v (date %d)", e.EmpCode, e.Err, e.Date)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrSameDate) ||
		errors.Is(err, ErrDateNotFound) ||
		errors.Is(err, ErrDateAlreadyAdjusted) ||
		errors.Is(err, ErrHolidayCountMismatch) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrDuplicateDate) ||
		errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrDuplicateEmployee) ||
		errors.Is(err, ErrInvalidPolicy)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound)
}
