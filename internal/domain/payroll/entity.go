package payroll

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	"github.com/shopspring/decimal"
)

// DeductionMode enum
type DeductionMode string

const (
	DeductionModeFixed      DeductionMode = "fixed"
	DeductionModePercentage DeductionMode = "percentage"
)

// LateDeductionRule - lateness penalty configuration.
// Zero thresholds and a zero cap mean "not configured".
type LateDeductionRule struct {
	Enabled                 bool            `json:"enabled"`
	Mode                    DeductionMode   `json:"mode"`
	RatePerMinute           decimal.Decimal `json:"rate_per_minute"`
	MaxDeductionMinutes     int             `json:"max_deduction_minutes"`
	HalfDayThresholdMinutes int             `json:"half_day_threshold_minutes"`
	AbsentThresholdMinutes  int             `json:"absent_threshold_minutes"`
}

// AttendanceRuleConfig - company attendance rules, read-only to the engine
type AttendanceRuleConfig struct {
	ID                string            `json:"id,omitempty"`
	CompanyID         string            `json:"company_id,omitempty"`
	LateDeduction     LateDeductionRule `json:"late_deduction"`
	OvertimeRate      decimal.Decimal   `json:"overtime_rate"`
	PayRoundingPlaces int32             `json:"pay_rounding_places"`
	UpdatedAt         time.Time         `json:"-"`
}

// DefaultRuleConfig is used when a company has never saved its rules.
func DefaultRuleConfig(companyID string) AttendanceRuleConfig {
	return AttendanceRuleConfig{
		CompanyID: companyID,
		LateDeduction: LateDeductionRule{
			Enabled:       false,
			Mode:          DeductionModeFixed,
			RatePerMinute: decimal.Zero,
		},
		OvertimeRate:      decimal.NewFromInt(1),
		PayRoundingPlaces: 2,
	}
}

// DayStatus enum
type DayStatus string

const (
	DayStatusPresent      DayStatus = "Present"
	DayStatusAbsent       DayStatus = "Absent"
	DayStatusHalfDay      DayStatus = "HalfDay"
	DayStatusLeave        DayStatus = "Leave"
	DayStatusHoliday      DayStatus = "Holiday"
	DayStatusMissingPunch DayStatus = "MissingPunch"
)

// DailyAttendanceMetric - derived per employee per day, never persisted by the engine
type DailyAttendanceMetric struct {
	EmployeeID      string                   `json:"employee_id"`
	Date            string                   `json:"date"`
	EffectiveShift  schedule.EffectiveShift  `json:"effective_shift"`
	Sessions        []attendance.WorkSession `json:"sessions"`
	WorkedMinutes   int                      `json:"worked_minutes"`
	LateMinutes     int                      `json:"late_minutes"`
	OvertimeMinutes int                      `json:"overtime_minutes"`
	Status          DayStatus                `json:"status"`
	LeaveType       string                   `json:"leave_type,omitempty"`
	DeductionAmount decimal.Decimal          `json:"deduction_amount"`
	FinalPay        decimal.Decimal          `json:"final_pay"`
}

// StatusCounts - occurrences of each day status in a period
type StatusCounts struct {
	Present      int `json:"present"`
	Absent       int `json:"absent"`
	HalfDay      int `json:"half_day"`
	Leave        int `json:"leave"`
	Holiday      int `json:"holiday"`
	MissingPunch int `json:"missing_punch"`
}

// PayrollSummary - per employee totals for a period
type PayrollSummary struct {
	EmployeeID          string                  `json:"employee_id"`
	PeriodStart         string                  `json:"period_start"`
	PeriodEnd           string                  `json:"period_end"`
	TotalWorkedMinutes  int                     `json:"total_worked_minutes"`
	TotalWorkedHours    decimal.Decimal         `json:"total_worked_hours"`
	TotalOvertimeHours  decimal.Decimal         `json:"total_overtime_hours"`
	TotalLateMinutes    int                     `json:"total_late_minutes"`
	LateDays            int                     `json:"late_days"`
	TotalLateDeductions decimal.Decimal         `json:"total_late_deductions"`
	TotalPay            decimal.Decimal         `json:"total_pay"`
	StatusCounts        StatusCounts            `json:"status_counts"`
	DailyMetrics        []DailyAttendanceMetric `json:"daily_metrics"`
}

// Batch - one uploaded file or API payload to reconcile
type Batch struct {
	CompanyID   string
	BranchID    string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Records     []attendance.RawRecord
}

// EmployeeError - a failure confined to one employee's computation
type EmployeeError struct {
	EmployeeID string
	Err        error
}

func (e EmployeeError) Error() string {
	return e.EmployeeID + ": " + e.Err.Error()
}

func (e EmployeeError) Unwrap() error {
	return e.Err
}

type employeeErrorJSON struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

func (e EmployeeError) MarshalJSON() ([]byte, error) {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(employeeErrorJSON{EmployeeID: e.EmployeeID, Error: msg})
}

func (e *EmployeeError) UnmarshalJSON(b []byte) error {
	var raw employeeErrorJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	e.EmployeeID = raw.EmployeeID
	e.Err = errors.New(raw.Error)
	return nil
}

// BatchResult - everything a batch produced, including collected anomalies
type BatchResult struct {
	BranchID            string                          `json:"branch_id"`
	PeriodStart         string                          `json:"period_start"`
	PeriodEnd           string                          `json:"period_end"`
	Summaries           []PayrollSummary                `json:"summaries"`
	NormalizationErrors []attendance.NormalizationError `json:"normalization_errors"`
	PairingWarnings     []attendance.PairingWarning     `json:"pairing_warnings"`
	EmployeeErrors      []EmployeeError                 `json:"employee_errors"`
}

// RunSource enum
type RunSource string

const (
	RunSourceAPI    RunSource = "api"
	RunSourceUpload RunSource = "upload"
	RunSourceQueue  RunSource = "queue"
	RunSourceCLI    RunSource = "cli"
)

// PayrollRun - a stored batch result
type PayrollRun struct {
	ID          string
	CompanyID   string
	BranchID    string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Source      RunSource
	RecordCount int
	Result      BatchResult
	CreatedAt   time.Time
}
