package leave

import (
	"context"
	"time"
)

// Repository reads leave days expanded from approved, pending and rejected requests.
type Repository interface {
	ListBetween(ctx context.Context, companyID string, employeeIDs []string, start, end time.Time) ([]Record, error)
}
