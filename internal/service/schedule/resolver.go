package schedule

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
)

// Resolve returns the effective shift for an employee on an ISO date. The
// first matching layer wins:
//
//	employee date override
//	custom shift assignment
//	holiday
//	no recurring shift (unscheduled)
//	recurring shift date override
//	recurring shift working day
//	recurring shift rest day
//
// A snapshot without shift definitions, or a reference to a shift that was
// not loaded, fails with schedule.ErrConfigurationMissing.
func Resolve(employeeID, date string, snap *schedule.Snapshot) (schedule.EffectiveShift, error) {
	if !snap.HasShifts() {
		return schedule.EffectiveShift{}, schedule.ErrConfigurationMissing
	}

	loc := snap.Location
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return schedule.EffectiveShift{}, fmt.Errorf("%w: %q", schedule.ErrInvalidDateFormat, date)
	}

	recurring, hasRecurring, err := recurringShift(employeeID, snap)
	if err != nil {
		return schedule.EffectiveShift{}, err
	}

	if o, ok := snap.EmployeeOverride(employeeID, date); ok {
		eff := build(day, loc, o.Start, o.End, o.IsWorkDay, schedule.SourceEmployeeDateOverride)
		eff.Description = o.Description
		if hasRecurring {
			eff.GraceMinutes = graceOf(recurring.FlexibleGraceMinutes)
		}
		return eff, nil
	}

	if c, ok := snap.CustomShift(employeeID, date); ok {
		return fromCustomShift(day, loc, c, recurring, hasRecurring, snap)
	}

	if h, ok := snap.Holiday(date); ok {
		eff := build(day, loc, 0, 0, false, schedule.SourceHoliday)
		eff.Description = h.Description
		return eff, nil
	}

	if !hasRecurring {
		return build(day, loc, 0, 0, false, schedule.SourceUnscheduled), nil
	}

	if o, ok := recurring.DateOverrides[date]; ok {
		eff := build(day, loc, o.Start, o.End, o.IsWorkDay, schedule.SourceScheduleDateOverride)
		withShift(&eff, recurring)
		eff.Description = o.Description
		return eff, nil
	}

	works := recurring.WorksOn(day.Weekday())
	eff := build(day, loc, recurring.StartTime, recurring.EndTime, works, schedule.SourceRecurringSchedule)
	withShift(&eff, recurring)
	return eff, nil
}

func recurringShift(employeeID string, snap *schedule.Snapshot) (schedule.ShiftDefinition, bool, error) {
	shiftID, ok := snap.EmployeeShift(employeeID)
	if !ok {
		return schedule.ShiftDefinition{}, false, nil
	}
	sh, ok := snap.Shift(shiftID)
	if !ok {
		return schedule.ShiftDefinition{}, false, fmt.Errorf("%w: shift %s assigned to employee %s is not loaded",
			schedule.ErrConfigurationMissing, shiftID, employeeID)
	}
	return sh, true, nil
}

// fromCustomShift applies a one-off assignment. When it references a shift
// definition, that shift's hours apply; otherwise the inline hours do.
func fromCustomShift(day time.Time, loc *time.Location, c schedule.CustomShiftAssignment, recurring schedule.ShiftDefinition, hasRecurring bool, snap *schedule.Snapshot) (schedule.EffectiveShift, error) {
	o := c.ShiftOverride

	if o.ShiftID != nil && *o.ShiftID != "" {
		sh, ok := snap.Shift(*o.ShiftID)
		if !ok {
			return schedule.EffectiveShift{}, fmt.Errorf("%w: custom shift %s for employee %s is not loaded",
				schedule.ErrConfigurationMissing, *o.ShiftID, c.EmployeeID)
		}
		eff := build(day, loc, sh.StartTime, sh.EndTime, true, schedule.SourceCustomShiftAssignment)
		withShift(&eff, sh)
		if o.FlexibleGraceMinutes != nil {
			eff.GraceMinutes = graceOf(o.FlexibleGraceMinutes)
		}
		return eff, nil
	}

	eff := build(day, loc, o.Start, o.End, o.IsWorkDay, schedule.SourceCustomShiftAssignment)
	switch {
	case o.FlexibleGraceMinutes != nil:
		eff.GraceMinutes = graceOf(o.FlexibleGraceMinutes)
	case hasRecurring:
		eff.GraceMinutes = graceOf(recurring.FlexibleGraceMinutes)
	}
	return eff, nil
}

// build places start and end on the calendar day. An end at or before the
// start belongs to the next day (night shift), unless both are zero.
func build(day time.Time, loc *time.Location, start, end schedule.TimeOfDay, isWorkDay bool, source schedule.Source) schedule.EffectiveShift {
	startAt := start.On(day, loc)
	endAt := end.On(day, loc)
	if end <= start && !(start == 0 && end == 0) {
		endAt = end.On(day.AddDate(0, 0, 1), loc)
	}
	return schedule.EffectiveShift{
		Date:      day.Format("2006-01-02"),
		StartTime: start,
		EndTime:   end,
		Start:     startAt,
		End:       endAt,
		IsWorkDay: isWorkDay,
		Source:    source,
	}
}

func withShift(eff *schedule.EffectiveShift, sh schedule.ShiftDefinition) {
	id := sh.ID
	eff.ShiftID = &id
	eff.ShiftName = sh.Name
	eff.GraceMinutes = graceOf(sh.FlexibleGraceMinutes)
}

func graceOf(minutes *int) int {
	if minutes == nil || *minutes < 0 {
		return 0
	}
	return *minutes
}
