package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

// NewIdentifierDirectoryRepository resolves device identifiers from the employees table.
func NewIdentifierDirectoryRepository(db *database.DB) attendance.IdentifierDirectoryRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `id, company_id, branch_id, employee_code, full_name, biometric_id, card_id,
	work_schedule_id, hourly_wage, employment_status, created_at, updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.BranchID, &e.EmployeeCode, &e.FullName, &e.BiometricID, &e.CardID,
		&e.ShiftID, &e.HourlyWage, &e.EmploymentStatus, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL
	`

	found, err := scanEmployee(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return found, nil
}

// ListActiveByBranch implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListActiveByBranch(ctx context.Context, branchID string, companyID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE branch_id = $1 AND company_id = $2 AND employment_status = $3 AND deleted_at IS NULL
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, branchID, companyID, employee.EmploymentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return employees, nil
}

// GetDirectory implements attendance.IdentifierDirectoryRepository. Employee
// codes, card IDs and biometric IDs all resolve to the employee. When two
// employees share a value the biometric ID wins over the card ID, and the card
// ID over the employee code.
func (r *employeeRepositoryImpl) GetDirectory(ctx context.Context, branchID string, companyID string) (attendance.IdentifierDirectory, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_code, COALESCE(card_id, ''), COALESCE(biometric_id, '')
		FROM employees
		WHERE branch_id = $1 AND company_id = $2 AND deleted_at IS NULL
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, branchID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load identifier directory: %w", err)
	}
	defer rows.Close()

	// identifiers[0] codes, [1] cards, [2] biometric
	var identifiers [3][][2]string
	for rows.Next() {
		var id, code, card, biometric string
		if err := rows.Scan(&id, &code, &card, &biometric); err != nil {
			return nil, fmt.Errorf("failed to scan identifier: %w", err)
		}
		for i, value := range []string{code, card, biometric} {
			if value = strings.TrimSpace(value); value != "" {
				identifiers[i] = append(identifiers[i], [2]string{value, id})
			}
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	directory := make(attendance.IdentifierDirectory)
	for _, pass := range identifiers {
		for _, pair := range pass {
			directory[pair[0]] = pair[1]
		}
	}
	return directory, nil
}
