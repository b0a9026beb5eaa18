package attendance

import (
	"sort"
	"strings"
	"sync"

	"github.com/warp/attendance-engine/generic"
)

// Adjustment swaps a working day with a day off for one employee.
// OriginalDate becomes ADJ-P and AdjustedDate becomes ADJ-M.
type Adjustment struct {
	EmpCode      string `json:"emp_code"`
	OriginalDate int    `json:"original_date"`
	AdjustedDate int    `json:"adjusted_date"`
}

// HolidaySelection marks the same dates as holidays for every employee.
// Count is what the user asked for; it must equal the number of distinct dates.
type HolidaySelection struct {
	Dates []int `json:"dates"`
	Count int   `json:"count"`
}

// Validate checks the selection and returns its distinct dates, sorted.
func (h HolidaySelection) Validate() ([]int, error) {
	seen := make(map[int]bool, len(h.Dates))
	unique := make([]int, 0, len(h.Dates))
	for _, d := range h.Dates {
		if d < 1 || d > 31 {
			return nil, &generic.HolidaySelectionError{Requested: h.Count, Selected: len(h.Dates), Date: d, Err: generic.ErrInvalidDate}
		}
		if !seen[d] {
			seen[d] = true
			unique = append(unique, d)
		}
	}
	if len(unique) != h.Count {
		return nil, &generic.HolidaySelectionError{Requested: h.Count, Selected: len(unique), Err: generic.ErrHolidayCountMismatch}
	}
	sort.Ints(unique)
	return unique, nil
}

// =============================================================================
// SESSION
// =============================================================================

// Session is one reconciliation session: the parsed baseline roster plus the
// mutations a user applied on top of it. The baseline is never modified;
// Roster replays the mutations over a fresh copy every time, so a rejected
// mutation leaves the session exactly as it was.
//
// Replay order: the holiday selection first, then adjustments in the order
// they were applied. An adjustment therefore wins over a selected holiday on
// the same date.
//
// Session is safe for concurrent use.
type Session struct {
	mu          sync.RWMutex
	baseline    []EmployeeRecord
	index       map[string]int
	adjustments []Adjustment
	holidays    *HolidaySelection
}

// NewSession normalizes and snapshots the roster.
func NewSession(roster []EmployeeRecord) (*Session, error) {
	s := &Session{
		baseline: make([]EmployeeRecord, 0, len(roster)),
		index:    make(map[string]int, len(roster)),
	}
	for _, rec := range roster {
		norm, err := rec.Normalized()
		if err != nil {
			return nil, err
		}
		if _, dup := s.index[norm.EmpCode]; dup {
			return nil, &generic.RecordError{EmpCode: norm.EmpCode, Err: generic.ErrDuplicateEmployee}
		}
		s.index[norm.EmpCode] = len(s.baseline)
		s.baseline = append(s.baseline, norm)
	}
	return s, nil
}

// ApplyAdjustment validates and records a day swap.
func (s *Session) ApplyAdjustment(adj Adjustment) error {
	adj.EmpCode = strings.TrimSpace(adj.EmpCode)

	s.mu.Lock()
	defer s.mu.Unlock()

	fail := func(date int, err error) error {
		return &generic.AdjustmentError{
			EmpCode:      adj.EmpCode,
			OriginalDate: adj.OriginalDate,
			AdjustedDate: adj.AdjustedDate,
			Date:         date,
			Err:          err,
		}
	}

	if adj.OriginalDate == adj.AdjustedDate {
		return fail(0, generic.ErrSameDate)
	}
	i, ok := s.index[adj.EmpCode]
	if !ok {
		return fail(0, generic.ErrEmployeeNotFound)
	}
	emp := s.baseline[i]
	for _, date := range []int{adj.OriginalDate, adj.AdjustedDate} {
		if _, ok := emp.Day(date); !ok {
			return fail(date, generic.ErrDateNotFound)
		}
	}
	for _, prev := range s.adjustments {
		if prev.EmpCode != adj.EmpCode {
			continue
		}
		for _, date := range []int{adj.OriginalDate, adj.AdjustedDate} {
			if date == prev.OriginalDate || date == prev.AdjustedDate {
				return fail(date, generic.ErrDateAlreadyAdjusted)
			}
		}
	}

	s.adjustments = append(s.adjustments, adj)
	return nil
}

// SelectHolidays validates and records a holiday selection, replacing any
// previous one.
func (s *Session) SelectHolidays(sel HolidaySelection) error {
	dates, err := sel.Validate()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.holidays = &HolidaySelection{Dates: dates, Count: len(dates)}
	return nil
}

// Adjustments returns the applied adjustments in order.
func (s *Session) Adjustments() []Adjustment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Adjustment, len(s.adjustments))
	copy(out, s.adjustments)
	return out
}

// Holidays returns the current selection, if any.
func (s *Session) Holidays() (HolidaySelection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.holidays == nil {
		return HolidaySelection{}, false
	}
	return HolidaySelection{Dates: append([]int(nil), s.holidays.Dates...), Count: s.holidays.Count}, true
}

// SelectedHolidayCount is the holiday count to feed into reconciliation,
// or nil when nothing was selected.
func (s *Session) SelectedHolidayCount() *int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.holidays == nil {
		return nil
	}
	n := s.holidays.Count
	return &n
}

// Roster replays every mutation over a deep copy of the baseline.
func (s *Session) Roster() []EmployeeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]EmployeeRecord, len(s.baseline))
	for i, rec := range s.baseline {
		out[i] = rec.Clone()
	}

	if s.holidays != nil {
		for i := range out {
			for _, date := range s.holidays.Dates {
				out[i].setStatus(date, StatusHoliday)
			}
		}
	}
	for _, adj := range s.adjustments {
		i := s.index[adj.EmpCode]
		out[i].setStatus(adj.OriginalDate, StatusAdjPresent)
		out[i].setStatus(adj.AdjustedDate, StatusAdjHoliday)
	}
	return out
}

// Employee returns one employee's replayed record.
func (s *Session) Employee(code string) (EmployeeRecord, bool) {
	code = strings.TrimSpace(code)
	s.mu.RLock()
	i, ok := s.index[code]
	s.mu.RUnlock()
	if !ok {
		return EmployeeRecord{}, false
	}
	return s.Roster()[i], true
}

func (r *EmployeeRecord) setStatus(date int, status Status) {
	if i := r.dayIndex(date); i >= 0 {
		r.Days[i].Status = status
	}
}
