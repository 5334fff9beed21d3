package device

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/device"
	"golang.org/x/crypto/bcrypt"
)

type DeviceServiceImpl struct {
	deviceRepo device.DeviceRepository
}

func NewDeviceService(deviceRepo device.DeviceRepository) device.DeviceService {
	return &DeviceServiceImpl{deviceRepo: deviceRepo}
}

// HashKey hashes a terminal key for storage.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Authenticate implements device.DeviceService.
func (s *DeviceServiceImpl) Authenticate(ctx context.Context, deviceID, key string) (device.Device, error) {
	if deviceID == "" || key == "" {
		return device.Device{}, device.ErrInvalidCredentials
	}

	d, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			return device.Device{}, device.ErrInvalidCredentials
		}
		return device.Device{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(d.KeyHash), []byte(key)); err != nil {
		return device.Device{}, device.ErrInvalidCredentials
	}
	if !d.IsActive {
		return device.Device{}, device.ErrDeviceInactive
	}

	if err := s.deviceRepo.TouchLastSeen(ctx, d.ID); err != nil {
		slog.Warn("Failed to record device activity", "device_id", d.ID, "error", err)
	}

	return d, nil
}
