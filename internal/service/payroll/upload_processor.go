package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/master/branch"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	attendancesvc "github.com/cmlabs-hris/hris-payroll-engine/internal/service/attendance"
)

// BatchRunner executes and stores one batch.
type BatchRunner interface {
	Run(ctx context.Context, batch payroll.Batch, source payroll.RunSource) (payroll.PayrollRun, error)
}

// UploadProcessor turns pending terminal uploads into payroll runs.
type UploadProcessor struct {
	uploadRepo attendance.UploadRepository
	runner     BatchRunner
	batchSize  int
}

func NewUploadProcessor(uploadRepo attendance.UploadRepository, runner BatchRunner, batchSize int) *UploadProcessor {
	if batchSize < 1 {
		batchSize = 20
	}
	return &UploadProcessor{
		uploadRepo: uploadRepo,
		runner:     runner,
		batchSize:  batchSize,
	}
}

// ProcessPending handles up to one page of pending uploads. Uploads that can
// never succeed are marked failed; transient failures stay pending for the
// next tick.
func (p *UploadProcessor) ProcessPending(ctx context.Context) error {
	uploads, err := p.uploadRepo.ListPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to list pending uploads: %w", err)
	}
	if len(uploads) == 0 {
		return nil
	}

	processed, failed := 0, 0
	for _, u := range uploads {
		if err := ctx.Err(); err != nil {
			return err
		}

		run, err := p.processOne(ctx, u)
		switch {
		case err == nil:
			if markErr := p.uploadRepo.MarkProcessed(ctx, u.ID, run.ID); markErr != nil {
				return fmt.Errorf("failed to mark upload %s processed: %w", u.ID, markErr)
			}
			processed++
		case IsPermanent(err):
			slog.Warn("Attendance upload rejected", "upload_id", u.ID, "error", err)
			if markErr := p.uploadRepo.MarkFailed(ctx, u.ID, err.Error()); markErr != nil {
				return fmt.Errorf("failed to mark upload %s failed: %w", u.ID, markErr)
			}
			failed++
		default:
			slog.Error("Attendance upload processing error, will retry", "upload_id", u.ID, "error", err)
		}
	}

	slog.Info("Pending uploads processed", "total", len(uploads), "processed", processed, "failed", failed)
	return nil
}

func (p *UploadProcessor) processOne(ctx context.Context, u attendance.Upload) (payroll.PayrollRun, error) {
	records, err := attendancesvc.ParseBatch(u.Format, u.Payload)
	if err != nil {
		return payroll.PayrollRun{}, err
	}
	return p.runner.Run(ctx, payroll.Batch{
		CompanyID: u.CompanyID,
		BranchID:  u.BranchID,
		Records:   records,
	}, payroll.RunSourceUpload)
}

// permanentErrors are batch failures that retrying cannot fix.
var permanentErrors = []error{
	attendance.ErrEmptyBatch,
	attendance.ErrUnparseableBatch,
	attendance.ErrUnsupportedFormat,
	attendance.ErrMissingColumn,
	payroll.ErrBranchRequired,
	payroll.ErrInvalidPeriod,
	branch.ErrBranchNotFound,
	schedule.ErrConfigurationMissing,
	schedule.ErrDuplicateAssignment,
}

// IsPermanent reports whether err is a structural batch error.
func IsPermanent(err error) bool {
	for _, target := range permanentErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
