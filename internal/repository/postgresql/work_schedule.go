package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type workScheduleRepositoryImpl struct {
	db *database.DB
}

func NewWorkScheduleRepository(db *database.DB) schedule.ShiftRepository {
	return &workScheduleRepositoryImpl{db: db}
}

// Times are read as minutes after midnight; working_days holds ISO weekdays
// (1 = Monday .. 7 = Sunday).
const workScheduleColumns = `ws.id, ws.company_id, ws.name,
	(EXTRACT(EPOCH FROM ws.start_time) / 60)::int,
	(EXTRACT(EPOCH FROM ws.end_time) / 60)::int,
	ws.working_days, ws.grace_period_minutes, ws.created_at, ws.updated_at`

func scanWorkSchedule(row pgx.Row) (schedule.ShiftDefinition, error) {
	var (
		s           schedule.ShiftDefinition
		start, end  int
		workingDays []int32
	)
	err := row.Scan(&s.ID, &s.CompanyID, &s.Name, &start, &end, &workingDays,
		&s.FlexibleGraceMinutes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return schedule.ShiftDefinition{}, err
	}

	s.StartTime = schedule.TimeOfDay(start)
	s.EndTime = schedule.TimeOfDay(end)
	for _, d := range workingDays {
		s.WorkingDays = append(s.WorkingDays, time.Weekday(d%7))
	}
	return s, nil
}

// ListByCompany implements schedule.ShiftRepository.
func (r *workScheduleRepositoryImpl) ListByCompany(ctx context.Context, companyID string) ([]schedule.ShiftDefinition, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + workScheduleColumns + `
		FROM work_schedules ws
		WHERE ws.company_id = $1 AND ws.deleted_at IS NULL
		ORDER BY ws.id
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work schedules: %w", err)
	}
	defer rows.Close()

	var shifts []schedule.ShiftDefinition
	index := make(map[string]int)
	for rows.Next() {
		s, err := scanWorkSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work schedule: %w", err)
		}
		index[s.ID] = len(shifts)
		shifts = append(shifts, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	overrides, err := r.listDateOverrides(ctx, companyID)
	if err != nil {
		return nil, err
	}
	for shiftID, byDate := range overrides {
		if i, ok := index[shiftID]; ok {
			shifts[i].DateOverrides = byDate
		}
	}

	return shifts, nil
}

// GetByID implements schedule.ShiftRepository.
func (r *workScheduleRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (schedule.ShiftDefinition, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + workScheduleColumns + `
		FROM work_schedules ws
		WHERE ws.id = $1 AND ws.company_id = $2 AND ws.deleted_at IS NULL
	`

	s, err := scanWorkSchedule(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.ShiftDefinition{}, schedule.ErrShiftNotFound
		}
		return schedule.ShiftDefinition{}, fmt.Errorf("failed to get work schedule: %w", err)
	}

	overrides, err := r.listDateOverrides(ctx, companyID)
	if err != nil {
		return schedule.ShiftDefinition{}, err
	}
	s.DateOverrides = overrides[s.ID]

	return s, nil
}

func (r *workScheduleRepositoryImpl) listDateOverrides(ctx context.Context, companyID string) (map[string]map[string]schedule.DateOverride, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT o.work_schedule_id, to_char(o.date, 'YYYY-MM-DD'),
			(EXTRACT(EPOCH FROM o.start_time) / 60)::int,
			(EXTRACT(EPOCH FROM o.end_time) / 60)::int,
			o.is_work_day, COALESCE(o.description, '')
		FROM work_schedule_date_overrides o
		JOIN work_schedules ws ON ws.id = o.work_schedule_id
		WHERE ws.company_id = $1 AND ws.deleted_at IS NULL
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule date overrides: %w", err)
	}
	defer rows.Close()

	result := make(map[string]map[string]schedule.DateOverride)
	for rows.Next() {
		var (
			shiftID, date string
			start, end    int
			o             schedule.DateOverride
		)
		if err := rows.Scan(&shiftID, &date, &start, &end, &o.IsWorkDay, &o.Description); err != nil {
			return nil, fmt.Errorf("failed to scan schedule date override: %w", err)
		}
		o.Start = schedule.TimeOfDay(start)
		o.End = schedule.TimeOfDay(end)

		if result[shiftID] == nil {
			result[shiftID] = make(map[string]schedule.DateOverride)
		}
		if _, exists := result[shiftID][date]; exists {
			return nil, fmt.Errorf("%w: schedule %s on %s", schedule.ErrDuplicateOverride, shiftID, date)
		}
		result[shiftID][date] = o
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
