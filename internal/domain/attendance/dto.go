package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
)

type SubmitUploadRequest struct {
	CompanyID string
	BranchID  string
	DeviceID  string
	Format    string
	Payload   []byte
}

func (r *SubmitUploadRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.BranchID) {
		errs = append(errs, validator.ValidationError{Field: "branch_id", Message: "is required"})
	}
	if !validator.IsInSlice(r.Format, BatchFormatValues) {
		errs = append(errs, validator.ValidationError{Field: "format", Message: "must be one of delimited, xlsx, events"})
	}
	if len(r.Payload) == 0 {
		errs = append(errs, validator.ValidationError{Field: "file", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UploadResponse struct {
	ID        string `json:"id"`
	BranchID  string `json:"branch_id"`
	DeviceID  string `json:"device_id"`
	Format    string `json:"format"`
	Status    string `json:"status"`
	SizeBytes int    `json:"size_bytes"`
	CreatedAt string `json:"created_at"`
}

func NewUploadResponse(u Upload) UploadResponse {
	return UploadResponse{
		ID:        u.ID,
		BranchID:  u.BranchID,
		DeviceID:  u.DeviceID,
		Format:    string(u.Format),
		Status:    string(u.Status),
		SizeBytes: len(u.Payload),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}
