package attendance

import (
	"context"
)

// UploadService accepts raw files pushed by time-clock terminals.
type UploadService interface {
	// Submit stores the payload as a pending upload for the device's branch
	Submit(ctx context.Context, req SubmitUploadRequest) (UploadResponse, error)
}
