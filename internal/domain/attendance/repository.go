package attendance

import (
	"context"
)

// IdentifierDirectoryRepository loads the biometric/card directory of a branch.
type IdentifierDirectoryRepository interface {
	GetDirectory(ctx context.Context, branchID string, companyID string) (IdentifierDirectory, error)
}

// UploadRepository stores raw terminal uploads until they are processed.
type UploadRepository interface {
	Create(ctx context.Context, upload Upload) (Upload, error)
	GetByID(ctx context.Context, id string, companyID string) (Upload, error)
	ListPending(ctx context.Context, limit int) ([]Upload, error)
	MarkProcessed(ctx context.Context, id string, runID string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}
