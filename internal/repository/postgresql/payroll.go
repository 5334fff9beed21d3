package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// ========== RULE CONFIG ==========

type payrollSettingsRepository struct {
	db *database.DB
}

func NewPayrollSettingsRepository(db *database.DB) payroll.RuleConfigRepository {
	return &payrollSettingsRepository{db: db}
}

func (r *payrollSettingsRepository) GetByCompanyID(ctx context.Context, companyID string) (payroll.AttendanceRuleConfig, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, late_deduction_enabled, late_deduction_mode, late_deduction_per_minute,
			   late_deduction_max_minutes, half_day_threshold_minutes, absent_threshold_minutes,
			   overtime_rate, pay_rounding_places, updated_at
		FROM payroll_settings
		WHERE company_id = $1
	`

	var s payroll.AttendanceRuleConfig
	err := q.QueryRow(ctx, query, companyID).Scan(
		&s.ID, &s.CompanyID, &s.LateDeduction.Enabled, &s.LateDeduction.Mode, &s.LateDeduction.RatePerMinute,
		&s.LateDeduction.MaxDeductionMinutes, &s.LateDeduction.HalfDayThresholdMinutes, &s.LateDeduction.AbsentThresholdMinutes,
		&s.OvertimeRate, &s.PayRoundingPlaces, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.AttendanceRuleConfig{}, payroll.ErrRuleConfigMissing
		}
		return payroll.AttendanceRuleConfig{}, fmt.Errorf("failed to get payroll settings: %w", err)
	}

	return s, nil
}

// ========== RUNS ==========

type payrollRunRepository struct {
	db *database.DB
}

func NewPayrollRunRepository(db *database.DB) payroll.RunRepository {
	return &payrollRunRepository{db: db}
}

// Create stores the run and one totals row per summarised employee in a
// single transaction.
func (r *payrollRunRepository) Create(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	resultJSON, err := json.Marshal(run.Result)
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to encode payroll result: %w", err)
	}

	err = WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO payroll_runs (
				id, company_id, branch_id, period_start, period_end, source, record_count, result, created_at
			) VALUES ($1, $2, $3, $4::date, $5::date, $6, $7, $8, $9)
		`, run.ID, run.CompanyID, run.BranchID, run.PeriodStart, run.PeriodEnd,
			run.Source, run.RecordCount, resultJSON, run.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert payroll run: %w", err)
		}

		batch := &pgx.Batch{}
		for _, s := range run.Result.Summaries {
			batch.Queue(`
				INSERT INTO payroll_run_employees (
					run_id, employee_id, total_worked_minutes, total_overtime_hours, total_late_minutes,
					late_days, total_late_deductions, total_pay, present_days, absent_days,
					half_days, leave_days, holiday_days, missing_punch_days
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			`, run.ID, s.EmployeeID, s.TotalWorkedMinutes, s.TotalOvertimeHours, s.TotalLateMinutes,
				s.LateDays, s.TotalLateDeductions, s.TotalPay, s.StatusCounts.Present, s.StatusCounts.Absent,
				s.StatusCounts.HalfDay, s.StatusCounts.Leave, s.StatusCounts.Holiday, s.StatusCounts.MissingPunch)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert payroll run employees: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.PayrollRun{}, err
	}

	return run, nil
}

const payrollRunColumns = `id, company_id, branch_id, period_start, period_end, source, record_count, result, created_at`

func scanPayrollRun(row pgx.Row) (payroll.PayrollRun, error) {
	var (
		run        payroll.PayrollRun
		resultJSON []byte
	)
	err := row.Scan(&run.ID, &run.CompanyID, &run.BranchID, &run.PeriodStart, &run.PeriodEnd,
		&run.Source, &run.RecordCount, &resultJSON, &run.CreatedAt)
	if err != nil {
		return payroll.PayrollRun{}, err
	}
	if err := json.Unmarshal(resultJSON, &run.Result); err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to decode payroll result %s: %w", run.ID, err)
	}
	return run, nil
}

func (r *payrollRunRepository) GetByID(ctx context.Context, id string, companyID string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollRunColumns + ` FROM payroll_runs WHERE id = $1 AND company_id = $2`

	run, err := scanPayrollRun(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}
	return run, nil
}

func (r *payrollRunRepository) List(ctx context.Context, companyID string, filter payroll.RunFilter) ([]payroll.PayrollRun, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"company_id = $1"}
	args := []interface{}{companyID}
	argIdx := 2

	if filter.BranchID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("branch_id = $%d", argIdx))
		args = append(args, *filter.BranchID)
		argIdx++
	}
	where := " WHERE " + strings.Join(whereClauses, " AND ")

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM payroll_runs`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll runs: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM payroll_runs%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		payrollRunColumns, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	runs := []payroll.PayrollRun{}
	for rows.Next() {
		run, err := scanPayrollRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return runs, total, nil
}
