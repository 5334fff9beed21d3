package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.Repository {
	return &leaveRequestRepositoryImpl{db: db}
}

// ListBetween implements leave.Repository. Each request is expanded into one
// record per calendar day that falls inside [start, end].
func (r *leaveRequestRepositoryImpl) ListBetween(ctx context.Context, companyID string, employeeIDs []string, start, end time.Time) ([]leave.Record, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lr.id, lr.employee_id, to_char(d.day, 'YYYY-MM-DD'),
			CASE lr.status
				WHEN 'approved' THEN 'sanctioned'
				WHEN 'waiting_approval' THEN 'pending'
				ELSE 'rejected'
			END,
			COALESCE(lt.name, ''), lr.created_at
		FROM leave_requests lr
		JOIN employees e ON e.id = lr.employee_id
		LEFT JOIN leave_types lt ON lt.id = lr.leave_type_id
		CROSS JOIN LATERAL generate_series(
			GREATEST(lr.start_date, $3::date),
			LEAST(lr.end_date, $4::date),
			interval '1 day'
		) AS d(day)
		WHERE e.company_id = $1
		  AND lr.employee_id = ANY($2)
		  AND lr.start_date <= $4::date
		  AND lr.end_date >= $3::date
		ORDER BY lr.employee_id, d.day, lr.id
	`

	rows, err := q.Query(ctx, query, companyID, employeeIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave days: %w", err)
	}
	defer rows.Close()

	var records []leave.Record
	for rows.Next() {
		var rec leave.Record
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.Date, &rec.Status, &rec.LeaveType, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan leave day: %w", err)
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}
