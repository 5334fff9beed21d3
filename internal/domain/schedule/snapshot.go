package schedule

import (
	"fmt"
	"time"
)

// Snapshot is the immutable organization context the resolver reads from.
// Build it with NewSnapshot; it is safe for concurrent reads.
type Snapshot struct {
	Location *time.Location

	shifts          map[string]ShiftDefinition
	employeeShift   map[string]string
	holidays        map[string]Holiday
	customShifts    map[string]CustomShiftAssignment
	employeeOverlay map[string]EmployeeDateOverride
}

// SnapshotInput carries the raw lists fetched from storage.
type SnapshotInput struct {
	Location          *time.Location
	Shifts            []ShiftDefinition
	EmployeeShifts    map[string]string // employeeID -> shiftID
	Holidays          []Holiday
	CustomShifts      []CustomShiftAssignment
	EmployeeOverrides []EmployeeDateOverride
}

func employeeDateKey(employeeID, date string) string {
	return employeeID + "|" + date
}

// NewSnapshot indexes the input. Duplicate custom assignments or employee
// overrides for the same employee and date are rejected.
func NewSnapshot(in SnapshotInput) (*Snapshot, error) {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	s := &Snapshot{
		Location:        loc,
		shifts:          make(map[string]ShiftDefinition, len(in.Shifts)),
		employeeShift:   make(map[string]string, len(in.EmployeeShifts)),
		holidays:        make(map[string]Holiday, len(in.Holidays)),
		customShifts:    make(map[string]CustomShiftAssignment, len(in.CustomShifts)),
		employeeOverlay: make(map[string]EmployeeDateOverride, len(in.EmployeeOverrides)),
	}

	for _, sh := range in.Shifts {
		s.shifts[sh.ID] = sh
	}
	for empID, shiftID := range in.EmployeeShifts {
		s.employeeShift[empID] = shiftID
	}
	for _, h := range in.Holidays {
		s.holidays[h.Date] = h
	}
	for _, c := range in.CustomShifts {
		key := employeeDateKey(c.EmployeeID, c.Date)
		if _, exists := s.customShifts[key]; exists {
			return nil, fmt.Errorf("%w: custom shift for employee %s on %s", ErrDuplicateAssignment, c.EmployeeID, c.Date)
		}
		s.customShifts[key] = c
	}
	for _, o := range in.EmployeeOverrides {
		key := employeeDateKey(o.EmployeeID, o.Date)
		if _, exists := s.employeeOverlay[key]; exists {
			return nil, fmt.Errorf("%w: employee override for %s on %s", ErrDuplicateAssignment, o.EmployeeID, o.Date)
		}
		s.employeeOverlay[key] = o
	}

	return s, nil
}

func (s *Snapshot) HasShifts() bool {
	return s != nil && len(s.shifts) > 0
}

func (s *Snapshot) Shift(id string) (ShiftDefinition, bool) {
	sh, ok := s.shifts[id]
	return sh, ok
}

// EmployeeShift returns the recurring shift ID assigned to the employee.
func (s *Snapshot) EmployeeShift(employeeID string) (string, bool) {
	id, ok := s.employeeShift[employeeID]
	return id, ok && id != ""
}

func (s *Snapshot) Holiday(date string) (Holiday, bool) {
	h, ok := s.holidays[date]
	return h, ok
}

func (s *Snapshot) CustomShift(employeeID, date string) (CustomShiftAssignment, bool) {
	c, ok := s.customShifts[employeeDateKey(employeeID, date)]
	return c, ok
}

func (s *Snapshot) EmployeeOverride(employeeID, date string) (EmployeeDateOverride, bool) {
	o, ok := s.employeeOverlay[employeeDateKey(employeeID, date)]
	return o, ok
}
