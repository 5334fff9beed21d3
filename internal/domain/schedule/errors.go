package schedule

import "errors"

var (
	// ErrConfigurationMissing means the snapshot has no shift definitions, or an
	// employee references a shift that is not loaded.
	ErrConfigurationMissing = errors.New("schedule configuration missing")

	ErrShiftNotFound       = errors.New("shift definition not found")
	ErrInvalidTimeOfDay    = errors.New("invalid time of day, use HH:MM")
	ErrDuplicateOverride   = errors.New("duplicate date override for shift")
	ErrDuplicateAssignment = errors.New("duplicate assignment for employee and date")

	// Validation Errors
	ErrEmployeeIDRequired = errors.New("employee ID is required")
	ErrInvalidDateFormat  = errors.New("invalid date format, use YYYY-MM-DD")
)
