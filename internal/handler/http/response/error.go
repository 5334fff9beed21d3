package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/device"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/master/branch"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Batch structure errors
	case errors.Is(err, attendance.ErrEmptyBatch),
		errors.Is(err, attendance.ErrUnparseableBatch),
		errors.Is(err, attendance.ErrUnsupportedFormat),
		errors.Is(err, attendance.ErrMissingColumn),
		errors.Is(err, payroll.ErrBranchRequired),
		errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrUploadNotFound):
		NotFound(w, "Attendance upload not found")

	// Configuration errors
	case errors.Is(err, payroll.ErrRuleConfigMissing):
		Conflict(w, "Attendance rules are not configured for this company")
	case errors.Is(err, schedule.ErrConfigurationMissing):
		Conflict(w, "Work schedules are not configured for this company")

	// Lookup errors
	case errors.Is(err, branch.ErrBranchNotFound):
		NotFound(w, "Branch not found")
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, schedule.ErrShiftNotFound):
		NotFound(w, "Work schedule not found")
	case errors.Is(err, payroll.ErrPayrollRunNotFound):
		NotFound(w, "Payroll run not found")

	// Device errors
	case errors.Is(err, device.ErrInvalidCredentials):
		Unauthorized(w, "Invalid device credentials")
	case errors.Is(err, device.ErrDeviceInactive):
		Forbidden(w, "Device is inactive")

	case errors.Is(err, context.DeadlineExceeded):
		Timeout(w, "Processing took too long")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
