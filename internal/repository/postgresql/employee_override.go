package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
)

type employeeOverrideRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeOverrideRepository(db *database.DB) schedule.EmployeeOverrideRepository {
	return &employeeOverrideRepositoryImpl{db: db}
}

// ListBetween implements schedule.EmployeeOverrideRepository.
func (r *employeeOverrideRepositoryImpl) ListBetween(ctx context.Context, companyID string, employeeIDs []string, start, end time.Time) ([]schedule.EmployeeDateOverride, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT o.id, o.employee_id, to_char(o.date, 'YYYY-MM-DD'),
			(EXTRACT(EPOCH FROM o.start_time) / 60)::int,
			(EXTRACT(EPOCH FROM o.end_time) / 60)::int,
			o.is_work_day, COALESCE(o.description, '')
		FROM employee_date_overrides o
		JOIN employees e ON e.id = o.employee_id
		WHERE e.company_id = $1
		  AND o.employee_id = ANY($2)
		  AND o.date BETWEEN $3::date AND $4::date
		ORDER BY o.employee_id, o.date
	`

	rows, err := q.Query(ctx, query, companyID, employeeIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee date overrides: %w", err)
	}
	defer rows.Close()

	var overrides []schedule.EmployeeDateOverride
	for rows.Next() {
		var (
			o                schedule.EmployeeDateOverride
			startMin, endMin int
		)
		if err := rows.Scan(&o.ID, &o.EmployeeID, &o.Date, &startMin, &endMin, &o.IsWorkDay, &o.Description); err != nil {
			return nil, fmt.Errorf("failed to scan employee date override: %w", err)
		}
		o.Start = schedule.TimeOfDay(startMin)
		o.End = schedule.TimeOfDay(endMin)
		overrides = append(overrides, o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return overrides, nil
}
