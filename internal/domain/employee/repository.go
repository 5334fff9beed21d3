package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	// ListActiveByBranch returns active employees of a branch ordered by ID
	ListActiveByBranch(ctx context.Context, branchID string, companyID string) ([]Employee, error)
}
