package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/master/branch"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	"github.com/go-chi/jwtauth/v5"
)

type scheduleServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	branchRepo   branch.BranchRepository
	loader       *SnapshotLoader
	defaultLoc   *time.Location
}

func NewScheduleService(
	employeeRepo employee.EmployeeRepository,
	branchRepo branch.BranchRepository,
	loader *SnapshotLoader,
	defaultLoc *time.Location,
) schedule.ScheduleService {
	return &scheduleServiceImpl{
		employeeRepo: employeeRepo,
		branchRepo:   branchRepo,
		loader:       loader,
		defaultLoc:   defaultLoc,
	}
}

// GetEffectiveShift implements schedule.ScheduleService.
func (s *scheduleServiceImpl) GetEffectiveShift(ctx context.Context, req schedule.EffectiveShiftRequest) (schedule.EffectiveShift, error) {
	if err := req.Validate(); err != nil {
		return schedule.EffectiveShift{}, err
	}

	companyID := req.CompanyID
	if companyID == "" {
		_, claims, err := jwtauth.FromContext(ctx)
		if err != nil {
			return schedule.EffectiveShift{}, fmt.Errorf("failed to extract claims from context: %w", err)
		}
		id, ok := claims["company_id"].(string)
		if !ok || id == "" {
			return schedule.EffectiveShift{}, fmt.Errorf("company_id claim is missing or invalid")
		}
		companyID = id
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, companyID)
	if err != nil {
		return schedule.EffectiveShift{}, err
	}

	br, err := s.branchRepo.GetByID(ctx, emp.BranchID, companyID)
	if err != nil {
		return schedule.EffectiveShift{}, err
	}
	loc := br.LocationOr(s.defaultLoc)

	day, _ := time.ParseInLocation("2006-01-02", req.Date, loc)
	snap, err := s.loader.Load(ctx, companyID, loc, []employee.Employee{emp}, day, day)
	if err != nil {
		return schedule.EffectiveShift{}, err
	}

	return Resolve(emp.ID, req.Date, snap)
}
