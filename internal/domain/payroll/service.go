package payroll

import (
	"context"
)

type PayrollService interface {
	// ProcessBatch reconciles a raw batch and stores the run
	ProcessBatch(ctx context.Context, req ProcessBatchRequest) (PayrollRunResponse, error)

	GetRun(ctx context.Context, id string) (PayrollRunResponse, error)
	ListRuns(ctx context.Context, filter RunFilter) (ListPayrollRunResponse, error)
}
