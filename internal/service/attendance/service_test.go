package attendance

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploadRepo struct {
	created []attendance.Upload
	err     error
}

func (f *fakeUploadRepo) Create(ctx context.Context, upload attendance.Upload) (attendance.Upload, error) {
	if f.err != nil {
		return attendance.Upload{}, f.err
	}
	f.created = append(f.created, upload)
	return upload, nil
}

func (f *fakeUploadRepo) GetByID(ctx context.Context, id string, companyID string) (attendance.Upload, error) {
	return attendance.Upload{}, attendance.ErrUploadNotFound
}

func (f *fakeUploadRepo) ListPending(ctx context.Context, limit int) ([]attendance.Upload, error) {
	return nil, nil
}

func (f *fakeUploadRepo) MarkProcessed(ctx context.Context, id string, runID string) error {
	return nil
}

func (f *fakeUploadRepo) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

func TestUploadService_Submit(t *testing.T) {
	repo := &fakeUploadRepo{}
	svc := NewUploadService(repo)

	resp, err := svc.Submit(context.Background(), attendance.SubmitUploadRequest{
		CompanyID: "company-1",
		BranchID:  "branch-1",
		DeviceID:  "device-1",
		Format:    string(attendance.BatchFormatDelimited),
		Payload:   []byte("1001,Budi,FP,in,2025-03-03 09:00\n"),
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "device-1", resp.DeviceID)
	assert.Equal(t, attendance.UploadStatusPending, repo.created[0].Status)
	assert.Equal(t, "company-1", repo.created[0].CompanyID)
}

func TestUploadService_SubmitValidation(t *testing.T) {
	repo := &fakeUploadRepo{}
	svc := NewUploadService(repo)

	_, err := svc.Submit(context.Background(), attendance.SubmitUploadRequest{Format: "pdf"})

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 3)
	assert.Empty(t, repo.created)
}

func TestUploadService_SubmitRejectsUnparseable(t *testing.T) {
	repo := &fakeUploadRepo{}
	svc := NewUploadService(repo)

	_, err := svc.Submit(context.Background(), attendance.SubmitUploadRequest{
		BranchID: "branch-1",
		Format:   string(attendance.BatchFormatEvents),
		Payload:  []byte("not json"),
	})
	assert.ErrorIs(t, err, attendance.ErrUnparseableBatch)
	assert.Empty(t, repo.created)
}
