package payroll

import "errors"

var (
	ErrRuleConfigMissing  = errors.New("attendance rule configuration missing")
	ErrInvalidPeriod      = errors.New("invalid payroll period")
	ErrBranchRequired     = errors.New("branch is required for a batch")
	ErrPayrollRunNotFound = errors.New("payroll run not found")
)
