package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/google/uuid"
)

type UploadServiceImpl struct {
	uploadRepo attendance.UploadRepository
}

func NewUploadService(uploadRepo attendance.UploadRepository) attendance.UploadService {
	return &UploadServiceImpl{uploadRepo: uploadRepo}
}

// Submit implements attendance.UploadService.
func (s *UploadServiceImpl) Submit(ctx context.Context, req attendance.SubmitUploadRequest) (attendance.UploadResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.UploadResponse{}, err
	}

	// Unparseable files are rejected before they are queued.
	if _, err := ParseBatch(attendance.BatchFormat(req.Format), req.Payload); err != nil {
		return attendance.UploadResponse{}, err
	}

	upload, err := s.uploadRepo.Create(ctx, attendance.Upload{
		ID:        uuid.New().String(),
		CompanyID: req.CompanyID,
		BranchID:  req.BranchID,
		DeviceID:  req.DeviceID,
		Format:    attendance.BatchFormat(req.Format),
		Payload:   req.Payload,
		Status:    attendance.UploadStatusPending,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return attendance.UploadResponse{}, fmt.Errorf("failed to store upload: %w", err)
	}

	slog.Info("Attendance upload stored",
		"upload_id", upload.ID,
		"device_id", upload.DeviceID,
		"branch_id", upload.BranchID,
		"format", upload.Format,
		"size", len(upload.Payload),
	)

	return attendance.NewUploadResponse(upload), nil
}
