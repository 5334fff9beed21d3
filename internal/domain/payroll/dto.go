package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
)

// ========== BATCH DTOs ==========

type ProcessBatchRequest struct {
	CompanyID   string                       `json:"-"`
	BranchID    string                       `json:"branch_id"`
	PeriodStart string                       `json:"period_start"`
	PeriodEnd   string                       `json:"period_end"`
	Format      string                       `json:"format,omitempty"`
	Events      []attendance.StructuredEvent `json:"events,omitempty"`
	Payload     []byte                       `json:"-"`
	Source      RunSource                    `json:"-"`
}

func (r *ProcessBatchRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.BranchID) {
		errs = append(errs, validator.ValidationError{Field: "branch_id", Message: "is required"})
	}

	start, startOK := validator.IsValidDate(r.PeriodStart)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be a date in YYYY-MM-DD format"})
	}
	end, endOK := validator.IsValidDate(r.PeriodEnd)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be a date in YYYY-MM-DD format"})
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must not be before period_start"})
	}

	if r.Format == "" {
		r.Format = string(attendance.BatchFormatEvents)
		if len(r.Payload) > 0 {
			r.Format = string(attendance.BatchFormatDelimited)
		}
	}
	if !validator.IsInSlice(r.Format, attendance.BatchFormatValues) {
		errs = append(errs, validator.ValidationError{Field: "format", Message: "must be one of delimited, xlsx, events"})
	}

	if len(r.Events) == 0 && len(r.Payload) == 0 {
		errs = append(errs, validator.ValidationError{Field: "events", Message: "batch must contain events or a file"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RunFilter struct {
	BranchID *string
	Page     int
	Limit    int
}

func (f *RunFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

// ========== RUN DTOs ==========

type PayrollRunResponse struct {
	ID          string      `json:"id"`
	BranchID    string      `json:"branch_id"`
	PeriodStart string      `json:"period_start"`
	PeriodEnd   string      `json:"period_end"`
	Source      string      `json:"source"`
	RecordCount int         `json:"record_count"`
	CreatedAt   string      `json:"created_at"`
	Result      BatchResult `json:"result"`
}

type PayrollRunListItem struct {
	ID                 string `json:"id"`
	BranchID           string `json:"branch_id"`
	PeriodStart        string `json:"period_start"`
	PeriodEnd          string `json:"period_end"`
	Source             string `json:"source"`
	RecordCount        int    `json:"record_count"`
	EmployeeCount      int    `json:"employee_count"`
	WarningCount       int    `json:"warning_count"`
	EmployeeErrorCount int    `json:"employee_error_count"`
	CreatedAt          string `json:"created_at"`
}

type ListPayrollRunResponse struct {
	TotalCount int64                `json:"total_count"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
	Runs       []PayrollRunListItem `json:"runs"`
}

func NewPayrollRunResponse(run PayrollRun) PayrollRunResponse {
	return PayrollRunResponse{
		ID:          run.ID,
		BranchID:    run.BranchID,
		PeriodStart: run.PeriodStart.Format(attendance.DateLayout),
		PeriodEnd:   run.PeriodEnd.Format(attendance.DateLayout),
		Source:      string(run.Source),
		RecordCount: run.RecordCount,
		CreatedAt:   run.CreatedAt.Format(time.RFC3339),
		Result:      run.Result,
	}
}

func NewPayrollRunListItem(run PayrollRun) PayrollRunListItem {
	return PayrollRunListItem{
		ID:                 run.ID,
		BranchID:           run.BranchID,
		PeriodStart:        run.PeriodStart.Format(attendance.DateLayout),
		PeriodEnd:          run.PeriodEnd.Format(attendance.DateLayout),
		Source:             string(run.Source),
		RecordCount:        run.RecordCount,
		EmployeeCount:      len(run.Result.Summaries),
		WarningCount:       len(run.Result.NormalizationErrors) + len(run.Result.PairingWarnings),
		EmployeeErrorCount: len(run.Result.EmployeeErrors),
		CreatedAt:          run.CreatedAt.Format(time.RFC3339),
	}
}
