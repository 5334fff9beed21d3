package payroll

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runnerFunc func(ctx context.Context, batch payroll.Batch, source payroll.RunSource) (payroll.PayrollRun, error)

func (f runnerFunc) Run(ctx context.Context, batch payroll.Batch, source payroll.RunSource) (payroll.PayrollRun, error) {
	return f(ctx, batch, source)
}

func pendingUpload(id, payload string) attendance.Upload {
	return attendance.Upload{
		ID:        id,
		CompanyID: "company-1",
		BranchID:  "branch-1",
		DeviceID:  "device-1",
		Format:    attendance.BatchFormatDelimited,
		Payload:   []byte(payload),
		Status:    attendance.UploadStatusPending,
	}
}

func TestUploadProcessor_ProcessPending(t *testing.T) {
	store := newFakeUploadStore(
		pendingUpload("up-ok", "1001,Budi,FP,in,2025-03-03 09:00:00\n"),
		pendingUpload("up-config", "1002,Sari,FP,in,2025-03-03 09:00:00\n"),
		pendingUpload("up-db", "1003,Adi,FP,in,2025-03-03 09:00:00\n"),
		pendingUpload("up-empty", ""),
	)

	var sources []payroll.RunSource
	runner := runnerFunc(func(ctx context.Context, batch payroll.Batch, source payroll.RunSource) (payroll.PayrollRun, error) {
		sources = append(sources, source)
		assert.True(t, batch.PeriodStart.IsZero(), "upload periods are derived from punches")
		switch batch.Records[0].Identifier {
		case "1002":
			return payroll.PayrollRun{}, fmt.Errorf("load snapshot: %w", schedule.ErrConfigurationMissing)
		case "1003":
			return payroll.PayrollRun{}, errors.New("connection reset")
		}
		return payroll.PayrollRun{ID: "run-1"}, nil
	})

	processor := NewUploadProcessor(store, runner, 10)
	require.NoError(t, processor.ProcessPending(context.Background()))

	assert.Equal(t, map[string]string{"up-ok": "run-1"}, store.processed)
	assert.Contains(t, store.failed, "up-config")
	assert.Contains(t, store.failed, "up-empty")
	assert.NotContains(t, store.failed, "up-db")
	assert.Equal(t, []payroll.RunSource{payroll.RunSourceUpload, payroll.RunSourceUpload, payroll.RunSourceUpload}, sources)

	remaining, err := store.ListPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "up-db", remaining[0].ID)
}

func TestUploadProcessor_Nothing(t *testing.T) {
	called := false
	runner := runnerFunc(func(ctx context.Context, batch payroll.Batch, source payroll.RunSource) (payroll.PayrollRun, error) {
		called = true
		return payroll.PayrollRun{}, nil
	})

	processor := NewUploadProcessor(newFakeUploadStore(), runner, 0)
	require.NoError(t, processor.ProcessPending(context.Background()))
	assert.False(t, called)
	assert.Equal(t, 20, processor.batchSize)
}

func TestIsPermanent(t *testing.T) {
	assert.True(t, IsPermanent(attendance.ErrEmptyBatch))
	assert.True(t, IsPermanent(fmt.Errorf("wrapped: %w", attendance.ErrMissingColumn)))
	assert.True(t, IsPermanent(payroll.ErrInvalidPeriod))
	assert.False(t, IsPermanent(errors.New("timeout")))
	assert.False(t, IsPermanent(context.Canceled))
}
