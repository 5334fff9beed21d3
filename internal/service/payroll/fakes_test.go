package payroll

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/master/branch"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
)

type fakeBranchRepo struct {
	branches map[string]branch.Branch
}

func (f *fakeBranchRepo) GetByID(ctx context.Context, id string, companyID string) (branch.Branch, error) {
	b, ok := f.branches[id]
	if !ok || b.CompanyID != companyID {
		return branch.Branch{}, branch.ErrBranchNotFound
	}
	return b, nil
}

type fakeEmployeeRepo struct {
	employees []employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	for _, e := range f.employees {
		if e.ID == id && e.CompanyID == companyID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) ListActiveByBranch(ctx context.Context, branchID string, companyID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.employees {
		if e.BranchID == branchID && e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeDirectoryRepo struct {
	directory attendance.IdentifierDirectory
}

func (f *fakeDirectoryRepo) GetDirectory(ctx context.Context, branchID string, companyID string) (attendance.IdentifierDirectory, error) {
	return f.directory, nil
}

type fakeShiftRepo struct {
	shifts []schedule.ShiftDefinition
}

func (f *fakeShiftRepo) ListByCompany(ctx context.Context, companyID string) ([]schedule.ShiftDefinition, error) {
	return f.shifts, nil
}

func (f *fakeShiftRepo) GetByID(ctx context.Context, id string, companyID string) (schedule.ShiftDefinition, error) {
	for _, s := range f.shifts {
		if s.ID == id {
			return s, nil
		}
	}
	return schedule.ShiftDefinition{}, schedule.ErrShiftNotFound
}

type fakeHolidayRepo struct {
	holidays []schedule.Holiday
}

func (f *fakeHolidayRepo) ListBetween(ctx context.Context, companyID string, start, end time.Time) ([]schedule.Holiday, error) {
	return f.holidays, nil
}

type fakeCustomShiftRepo struct{}

func (fakeCustomShiftRepo) ListBetween(ctx context.Context, companyID string, employeeIDs []string, start, end time.Time) ([]schedule.CustomShiftAssignment, error) {
	return nil, nil
}

type fakeOverrideRepo struct{}

func (fakeOverrideRepo) ListBetween(ctx context.Context, companyID string, employeeIDs []string, start, end time.Time) ([]schedule.EmployeeDateOverride, error) {
	return nil, nil
}

type fakeLeaveRepo struct {
	records []leave.Record
}

func (f *fakeLeaveRepo) ListBetween(ctx context.Context, companyID string, employeeIDs []string, start, end time.Time) ([]leave.Record, error) {
	return f.records, nil
}

type fakeRuleRepo struct {
	cfg *payroll.AttendanceRuleConfig
}

func (f *fakeRuleRepo) GetByCompanyID(ctx context.Context, companyID string) (payroll.AttendanceRuleConfig, error) {
	if f.cfg == nil {
		return payroll.AttendanceRuleConfig{}, payroll.ErrRuleConfigMissing
	}
	return *f.cfg, nil
}

type fakeRunRepo struct {
	runs []payroll.PayrollRun
	err  error
}

func (f *fakeRunRepo) Create(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	if f.err != nil {
		return payroll.PayrollRun{}, f.err
	}
	f.runs = append(f.runs, run)
	return run, nil
}

func (f *fakeRunRepo) GetByID(ctx context.Context, id string, companyID string) (payroll.PayrollRun, error) {
	for _, r := range f.runs {
		if r.ID == id && r.CompanyID == companyID {
			return r, nil
		}
	}
	return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
}

func (f *fakeRunRepo) List(ctx context.Context, companyID string, filter payroll.RunFilter) ([]payroll.PayrollRun, int64, error) {
	var out []payroll.PayrollRun
	for _, r := range f.runs {
		if r.CompanyID == companyID {
			out = append(out, r)
		}
	}
	total := int64(len(out))
	from := (filter.Page - 1) * filter.Limit
	if from >= len(out) {
		return []payroll.PayrollRun{}, total, nil
	}
	to := min(from+filter.Limit, len(out))
	return out[from:to], total, nil
}

type fakeUploadStore struct {
	pending   []attendance.Upload
	processed map[string]string
	failed    map[string]string
}

func newFakeUploadStore(uploads ...attendance.Upload) *fakeUploadStore {
	return &fakeUploadStore{
		pending:   uploads,
		processed: make(map[string]string),
		failed:    make(map[string]string),
	}
}

func (f *fakeUploadStore) Create(ctx context.Context, upload attendance.Upload) (attendance.Upload, error) {
	f.pending = append(f.pending, upload)
	return upload, nil
}

func (f *fakeUploadStore) GetByID(ctx context.Context, id string, companyID string) (attendance.Upload, error) {
	return attendance.Upload{}, attendance.ErrUploadNotFound
}

func (f *fakeUploadStore) ListPending(ctx context.Context, limit int) ([]attendance.Upload, error) {
	var out []attendance.Upload
	for _, u := range f.pending {
		if _, done := f.processed[u.ID]; done {
			continue
		}
		if _, done := f.failed[u.ID]; done {
			continue
		}
		out = append(out, u)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeUploadStore) MarkProcessed(ctx context.Context, id string, runID string) error {
	f.processed[id] = runID
	return nil
}

func (f *fakeUploadStore) MarkFailed(ctx context.Context, id string, reason string) error {
	f.failed[id] = reason
	return nil
}
