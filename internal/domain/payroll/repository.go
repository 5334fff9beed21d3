package payroll

import (
	"context"
)

// RuleConfigRepository reads the company attendance rules.
type RuleConfigRepository interface {
	GetByCompanyID(ctx context.Context, companyID string) (AttendanceRuleConfig, error)
}

// RunRepository stores batch results.
// All methods include companyID parameter to prevent cross-company data access.
type RunRepository interface {
	Create(ctx context.Context, run PayrollRun) (PayrollRun, error)
	GetByID(ctx context.Context, id string, companyID string) (PayrollRun, error)
	List(ctx context.Context, companyID string, filter RunFilter) ([]PayrollRun, int64, error)
}
