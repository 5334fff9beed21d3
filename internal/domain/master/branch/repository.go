package branch

import "context"

type BranchRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Branch, error)
}
