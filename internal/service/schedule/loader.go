package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
)

// SnapshotLoader fetches everything the resolver needs for a set of
// employees and a date range, and freezes it into a schedule.Snapshot.
type SnapshotLoader struct {
	shiftRepo            schedule.ShiftRepository
	holidayRepo          schedule.HolidayRepository
	customShiftRepo      schedule.CustomShiftRepository
	employeeOverrideRepo schedule.EmployeeOverrideRepository
}

func NewSnapshotLoader(
	shiftRepo schedule.ShiftRepository,
	holidayRepo schedule.HolidayRepository,
	customShiftRepo schedule.CustomShiftRepository,
	employeeOverrideRepo schedule.EmployeeOverrideRepository,
) *SnapshotLoader {
	return &SnapshotLoader{
		shiftRepo:            shiftRepo,
		holidayRepo:          holidayRepo,
		customShiftRepo:      customShiftRepo,
		employeeOverrideRepo: employeeOverrideRepo,
	}
}

func (l *SnapshotLoader) Load(ctx context.Context, companyID string, loc *time.Location, employees []employee.Employee, start, end time.Time) (*schedule.Snapshot, error) {
	shifts, err := l.shiftRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shift definitions: %w", err)
	}

	holidays, err := l.holidayRepo.ListBetween(ctx, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}

	employeeIDs := make([]string, 0, len(employees))
	employeeShifts := make(map[string]string, len(employees))
	for _, e := range employees {
		employeeIDs = append(employeeIDs, e.ID)
		if e.ShiftID != nil {
			employeeShifts[e.ID] = *e.ShiftID
		}
	}

	customShifts, err := l.customShiftRepo.ListBetween(ctx, companyID, employeeIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load custom shift assignments: %w", err)
	}

	overrides, err := l.employeeOverrideRepo.ListBetween(ctx, companyID, employeeIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee date overrides: %w", err)
	}

	return schedule.NewSnapshot(schedule.SnapshotInput{
		Location:          loc,
		Shifts:            shifts,
		EmployeeShifts:    employeeShifts,
		Holidays:          holidays,
		CustomShifts:      customShifts,
		EmployeeOverrides: overrides,
	})
}
