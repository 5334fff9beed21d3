package schedule

import (
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
)

type EffectiveShiftRequest struct {
	CompanyID  string
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
}

func (r *EffectiveShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: ErrEmployeeIDRequired.Error()})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: ErrInvalidDateFormat.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
