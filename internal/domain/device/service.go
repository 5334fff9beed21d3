package device

import "context"

type DeviceService interface {
	// Authenticate verifies the device key and returns the registered terminal
	Authenticate(ctx context.Context, deviceID, key string) (Device, error)
}
