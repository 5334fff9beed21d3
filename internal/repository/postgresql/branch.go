package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/master/branch"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type branchRepositoryImpl struct {
	db *database.DB
}

func NewBranchRepository(db *database.DB) branch.BranchRepository {
	return &branchRepositoryImpl{db: db}
}

// GetByID implements branch.BranchRepository.
func (r *branchRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, COALESCE(timezone, ''), created_at, updated_at
		FROM branches
		WHERE id = $1 AND company_id = $2
	`

	var result branch.Branch
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&result.ID,
		&result.CompanyID,
		&result.Name,
		&result.Timezone,
		&result.CreatedAt,
		&result.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return branch.Branch{}, branch.ErrBranchNotFound
		}
		return branch.Branch{}, fmt.Errorf("failed to get branch: %w", err)
	}

	return result, nil
}
