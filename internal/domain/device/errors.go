package device

import "errors"

var (
	ErrDeviceNotFound     = errors.New("device not found")
	ErrDeviceInactive     = errors.New("device is inactive")
	ErrInvalidCredentials = errors.New("invalid device credentials")
)
