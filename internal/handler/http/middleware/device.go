package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/device"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/response"
)

const (
	DeviceIDHeader  = "X-Device-ID"
	DeviceKeyHeader = "X-Device-Key"
)

type deviceKey struct{}

// DeviceAuth authenticates time-clock terminals by their ID and key headers.
func DeviceAuth(deviceService device.DeviceService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, err := deviceService.Authenticate(r.Context(), r.Header.Get(DeviceIDHeader), r.Header.Get(DeviceKeyHeader))
			if err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), deviceKey{}, d)))
		})
	}
}

// DeviceFromContext returns the terminal authenticated by DeviceAuth.
func DeviceFromContext(ctx context.Context) (device.Device, bool) {
	d, ok := ctx.Value(deviceKey{}).(device.Device)
	return d, ok
}
