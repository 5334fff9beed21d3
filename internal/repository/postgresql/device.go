package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/device"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type deviceRepositoryImpl struct {
	db *database.DB
}

func NewDeviceRepository(db *database.DB) device.DeviceRepository {
	return &deviceRepositoryImpl{db: db}
}

// GetByID implements device.DeviceRepository.
func (r *deviceRepositoryImpl) GetByID(ctx context.Context, id string) (device.Device, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, branch_id, name, key_hash, is_active, last_seen_at, created_at
		FROM devices
		WHERE id = $1
	`

	var d device.Device
	err := q.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.CompanyID, &d.BranchID, &d.Name, &d.KeyHash, &d.IsActive, &d.LastSeenAt, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return device.Device{}, device.ErrDeviceNotFound
		}
		return device.Device{}, fmt.Errorf("failed to get device: %w", err)
	}

	return d, nil
}

// TouchLastSeen implements device.DeviceRepository.
func (r *deviceRepositoryImpl) TouchLastSeen(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `UPDATE devices SET last_seen_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return device.ErrDeviceNotFound
	}

	return nil
}
