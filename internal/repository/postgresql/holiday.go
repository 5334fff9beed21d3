package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) schedule.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

// ListBetween implements schedule.HolidayRepository.
func (r *holidayRepositoryImpl) ListBetween(ctx context.Context, companyID string, start, end time.Time) ([]schedule.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, to_char(date, 'YYYY-MM-DD'), description
		FROM holidays
		WHERE company_id = $1 AND date BETWEEN $2::date AND $3::date
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []schedule.Holiday
	for rows.Next() {
		var h schedule.Holiday
		if err := rows.Scan(&h.ID, &h.CompanyID, &h.Date, &h.Description); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return holidays, nil
}
