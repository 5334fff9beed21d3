package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceUploadRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceUploadRepository(db *database.DB) attendance.UploadRepository {
	return &attendanceUploadRepositoryImpl{db: db}
}

const uploadColumns = `id, company_id, branch_id, device_id, format, payload, status, run_id,
	error_message, created_at, processed_at`

func scanUpload(row pgx.Row) (attendance.Upload, error) {
	var u attendance.Upload
	err := row.Scan(&u.ID, &u.CompanyID, &u.BranchID, &u.DeviceID, &u.Format, &u.Payload, &u.Status,
		&u.RunID, &u.ErrorMessage, &u.CreatedAt, &u.ProcessedAt)
	return u, err
}

// Create implements attendance.UploadRepository.
func (r *attendanceUploadRepositoryImpl) Create(ctx context.Context, upload attendance.Upload) (attendance.Upload, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_uploads (id, company_id, branch_id, device_id, format, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + uploadColumns

	created, err := scanUpload(q.QueryRow(ctx, query,
		upload.ID, upload.CompanyID, upload.BranchID, upload.DeviceID,
		upload.Format, upload.Payload, upload.Status, upload.CreatedAt,
	))
	if err != nil {
		return attendance.Upload{}, fmt.Errorf("failed to create attendance upload: %w", err)
	}
	return created, nil
}

// GetByID implements attendance.UploadRepository.
func (r *attendanceUploadRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (attendance.Upload, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + uploadColumns + ` FROM attendance_uploads WHERE id = $1 AND company_id = $2`

	u, err := scanUpload(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Upload{}, attendance.ErrUploadNotFound
		}
		return attendance.Upload{}, fmt.Errorf("failed to get attendance upload: %w", err)
	}
	return u, nil
}

// ListPending implements attendance.UploadRepository. Oldest uploads first.
func (r *attendanceUploadRepositoryImpl) ListPending(ctx context.Context, limit int) ([]attendance.Upload, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + uploadColumns + `
		FROM attendance_uploads
		WHERE status = $1
		ORDER BY created_at, id
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, attendance.UploadStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending uploads: %w", err)
	}
	defer rows.Close()

	var uploads []attendance.Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance upload: %w", err)
		}
		uploads = append(uploads, u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return uploads, nil
}

// MarkProcessed implements attendance.UploadRepository.
func (r *attendanceUploadRepositoryImpl) MarkProcessed(ctx context.Context, id string, runID string) error {
	return r.finish(ctx, id, attendance.UploadStatusProcessed, &runID, nil)
}

// MarkFailed implements attendance.UploadRepository.
func (r *attendanceUploadRepositoryImpl) MarkFailed(ctx context.Context, id string, reason string) error {
	return r.finish(ctx, id, attendance.UploadStatusFailed, nil, &reason)
}

func (r *attendanceUploadRepositoryImpl) finish(ctx context.Context, id string, status attendance.UploadStatus, runID, reason *string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_uploads
		SET status = $2, run_id = $3, error_message = $4, processed_at = NOW()
		WHERE id = $1 AND status = $5
	`

	commandTag, err := q.Exec(ctx, query, id, status, runID, reason, attendance.UploadStatusPending)
	if err != nil {
		return fmt.Errorf("failed to update attendance upload: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return attendance.ErrUploadAlreadyFinal
	}

	return nil
}
