package schedule

import (
	"context"
	"time"
)

type ShiftRepository interface {
	// ListByCompany returns every shift definition with its date overrides
	ListByCompany(ctx context.Context, companyID string) ([]ShiftDefinition, error)
	GetByID(ctx context.Context, id string, companyID string) (ShiftDefinition, error)
}

type HolidayRepository interface {
	ListBetween(ctx context.Context, companyID string, start, end time.Time) ([]Holiday, error)
}

type CustomShiftRepository interface {
	ListBetween(ctx context.Context, companyID string, employeeIDs []string, start, end time.Time) ([]CustomShiftAssignment, error)
}

type EmployeeOverrideRepository interface {
	ListBetween(ctx context.Context, companyID string, employeeIDs []string, start, end time.Time) ([]EmployeeDateOverride, error)
}
