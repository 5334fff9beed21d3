package device

import "context"

type DeviceRepository interface {
	GetByID(ctx context.Context, id string) (Device, error)
	TouchLastSeen(ctx context.Context, id string) error
}
