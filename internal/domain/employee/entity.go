package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID           string
	CompanyID    string
	BranchID     string
	EmployeeCode string
	FullName     string
	BiometricID  *string
	CardID       *string
	ShiftID      *string
	// HourlyWage scales pay and percentage deductions; nil means 1 unit per hour.
	HourlyWage       *decimal.Decimal
	EmploymentStatus EmploymentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// Wage returns the hourly wage, defaulting to one unit when not configured.
func (e Employee) Wage() decimal.Decimal {
	if e.HourlyWage == nil || e.HourlyWage.IsNegative() {
		return decimal.NewFromInt(1)
	}
	return *e.HourlyWage
}
