package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
)

type employeeScheduleAssignmentRepositoryImpl struct {
	db *database.DB
}

// NewEmployeeScheduleAssignmentRepository reads one-day custom shift
// assignments.
func NewEmployeeScheduleAssignmentRepository(db *database.DB) schedule.CustomShiftRepository {
	return &employeeScheduleAssignmentRepositoryImpl{db: db}
}

// ListBetween implements schedule.CustomShiftRepository.
func (r *employeeScheduleAssignmentRepositoryImpl) ListBetween(ctx context.Context, companyID string, employeeIDs []string, start, end time.Time) ([]schedule.CustomShiftAssignment, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.id, a.employee_id, to_char(a.date, 'YYYY-MM-DD'), a.work_schedule_id,
			COALESCE((EXTRACT(EPOCH FROM a.start_time) / 60)::int, 0),
			COALESCE((EXTRACT(EPOCH FROM a.end_time) / 60)::int, 0),
			a.is_work_day, a.grace_period_minutes, a.created_at
		FROM employee_schedule_assignments a
		JOIN employees e ON e.id = a.employee_id
		WHERE e.company_id = $1
		  AND a.employee_id = ANY($2)
		  AND a.date BETWEEN $3::date AND $4::date
		ORDER BY a.employee_id, a.date
	`

	rows, err := q.Query(ctx, query, companyID, employeeIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom shift assignments: %w", err)
	}
	defer rows.Close()

	var assignments []schedule.CustomShiftAssignment
	for rows.Next() {
		var (
			a                schedule.CustomShiftAssignment
			startMin, endMin int
		)
		override := &a.ShiftOverride
		err := rows.Scan(&a.ID, &a.EmployeeID, &a.Date, &override.ShiftID,
			&startMin, &endMin, &override.IsWorkDay, &override.FlexibleGraceMinutes, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan custom shift assignment: %w", err)
		}
		override.Start = schedule.TimeOfDay(startMin)
		override.End = schedule.TimeOfDay(endMin)
		assignments = append(assignments, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return assignments, nil
}
