package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/master/branch"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	attendancesvc "github.com/cmlabs-hris/hris-payroll-engine/internal/service/attendance"
	schedulesvc "github.com/cmlabs-hris/hris-payroll-engine/internal/service/schedule"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Options controls how the batch service prepares engine input.
type Options struct {
	// IncludeRoster summarises active employees without punches as well.
	IncludeRoster bool
	// DefaultRulesWhenMissing substitutes payroll.DefaultRuleConfig for
	// companies that never saved attendance rules.
	DefaultRulesWhenMissing bool
	// DefaultLocation applies to branches without a usable timezone.
	DefaultLocation *time.Location
}

var _ payroll.PayrollService = (*PayrollServiceImpl)(nil)

type PayrollServiceImpl struct {
	engine        *Engine
	loader        *schedulesvc.SnapshotLoader
	employeeRepo  employee.EmployeeRepository
	branchRepo    branch.BranchRepository
	directoryRepo attendance.IdentifierDirectoryRepository
	leaveRepo     leave.Repository
	ruleRepo      payroll.RuleConfigRepository
	runRepo       payroll.RunRepository
	opts          Options
}

func NewPayrollService(
	engine *Engine,
	loader *schedulesvc.SnapshotLoader,
	employeeRepo employee.EmployeeRepository,
	branchRepo branch.BranchRepository,
	directoryRepo attendance.IdentifierDirectoryRepository,
	leaveRepo leave.Repository,
	ruleRepo payroll.RuleConfigRepository,
	runRepo payroll.RunRepository,
	opts Options,
) *PayrollServiceImpl {
	return &PayrollServiceImpl{
		engine:        engine,
		loader:        loader,
		employeeRepo:  employeeRepo,
		branchRepo:    branchRepo,
		directoryRepo: directoryRepo,
		leaveRepo:     leaveRepo,
		ruleRepo:      ruleRepo,
		runRepo:       runRepo,
		opts:          opts,
	}
}

// Helper to get company_id from JWT context
func getCompanyIDFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", fmt.Errorf("company_id claim is missing or invalid")
	}
	return companyID, nil
}

// ========== BATCHES ==========

// ProcessBatch implements payroll.PayrollService.
func (s *PayrollServiceImpl) ProcessBatch(ctx context.Context, req payroll.ProcessBatchRequest) (payroll.PayrollRunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	companyID := req.CompanyID
	if companyID == "" {
		id, err := getCompanyIDFromContext(ctx)
		if err != nil {
			return payroll.PayrollRunResponse{}, err
		}
		companyID = id
	}

	var records []attendance.RawRecord
	var err error
	if len(req.Events) > 0 {
		records, err = attendancesvc.EventsToRecords(req.Events)
	} else {
		records, err = attendancesvc.ParseBatch(attendance.BatchFormat(req.Format), req.Payload)
	}
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	start, _ := time.Parse(attendance.DateLayout, req.PeriodStart)
	end, _ := time.Parse(attendance.DateLayout, req.PeriodEnd)

	source := req.Source
	if source == "" {
		source = payroll.RunSourceAPI
	}

	run, err := s.Run(ctx, payroll.Batch{
		CompanyID:   companyID,
		BranchID:    req.BranchID,
		PeriodStart: start,
		PeriodEnd:   end,
		Records:     records,
	}, source)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}
	return payroll.NewPayrollRunResponse(run), nil
}

// Run loads the settings snapshot for the batch, executes the engine and
// stores the result. A batch without a period takes it from its punches.
func (s *PayrollServiceImpl) Run(ctx context.Context, batch payroll.Batch, source payroll.RunSource) (payroll.PayrollRun, error) {
	if batch.BranchID == "" {
		return payroll.PayrollRun{}, payroll.ErrBranchRequired
	}
	if len(batch.Records) == 0 {
		return payroll.PayrollRun{}, attendance.ErrEmptyBatch
	}

	br, err := s.branchRepo.GetByID(ctx, batch.BranchID, batch.CompanyID)
	if err != nil {
		return payroll.PayrollRun{}, err
	}
	loc := br.LocationOr(s.opts.DefaultLocation)

	if batch.PeriodStart.IsZero() || batch.PeriodEnd.IsZero() {
		first, last, ok := s.engine.Span(batch.Records, loc)
		if !ok {
			return payroll.PayrollRun{}, fmt.Errorf("%w: no readable timestamps to derive the period from", attendance.ErrUnparseableBatch)
		}
		batch.PeriodStart, batch.PeriodEnd = first, last
	}
	if batch.PeriodEnd.Before(batch.PeriodStart) {
		return payroll.PayrollRun{}, payroll.ErrInvalidPeriod
	}

	input, err := s.loadInput(ctx, batch, loc)
	if err != nil {
		return payroll.PayrollRun{}, err
	}

	result, err := s.engine.Run(ctx, input)
	if err != nil {
		return payroll.PayrollRun{}, err
	}

	run, err := s.runRepo.Create(ctx, payroll.PayrollRun{
		ID:          uuid.New().String(),
		CompanyID:   batch.CompanyID,
		BranchID:    batch.BranchID,
		PeriodStart: batch.PeriodStart,
		PeriodEnd:   batch.PeriodEnd,
		Source:      source,
		RecordCount: len(batch.Records),
		Result:      result,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to store payroll run: %w", err)
	}

	slog.Info("Payroll run stored", "run_id", run.ID, "branch_id", run.BranchID, "source", run.Source)
	return run, nil
}

func (s *PayrollServiceImpl) loadInput(ctx context.Context, batch payroll.Batch, loc *time.Location) (EngineInput, error) {
	employees, err := s.employeeRepo.ListActiveByBranch(ctx, batch.BranchID, batch.CompanyID)
	if err != nil {
		return EngineInput{}, fmt.Errorf("failed to load employees: %w", err)
	}

	directory, err := s.directoryRepo.GetDirectory(ctx, batch.BranchID, batch.CompanyID)
	if err != nil {
		return EngineInput{}, fmt.Errorf("failed to load identifier directory: %w", err)
	}

	snap, err := s.loader.Load(ctx, batch.CompanyID, loc, employees, batch.PeriodStart, batch.PeriodEnd)
	if err != nil {
		return EngineInput{}, err
	}

	employeeIDs := make([]string, 0, len(employees))
	wages := make(map[string]decimal.Decimal, len(employees))
	for _, e := range employees {
		employeeIDs = append(employeeIDs, e.ID)
		wages[e.ID] = e.Wage()
	}

	leaves, err := s.leaveRepo.ListBetween(ctx, batch.CompanyID, employeeIDs, batch.PeriodStart, batch.PeriodEnd)
	if err != nil {
		return EngineInput{}, fmt.Errorf("failed to load leave records: %w", err)
	}

	var rules *payroll.AttendanceRuleConfig
	cfg, err := s.ruleRepo.GetByCompanyID(ctx, batch.CompanyID)
	switch {
	case err == nil:
		rules = &cfg
	case errors.Is(err, payroll.ErrRuleConfigMissing):
		if s.opts.DefaultRulesWhenMissing {
			def := payroll.DefaultRuleConfig(batch.CompanyID)
			rules = &def
		}
	default:
		return EngineInput{}, fmt.Errorf("failed to load attendance rules: %w", err)
	}

	input := EngineInput{
		Batch:     batch,
		Directory: directory,
		Snapshot:  snap,
		Leaves:    leave.NewBook(leaves),
		Rules:     rules,
		Wages:     wages,
	}
	if s.opts.IncludeRoster {
		input.Roster = employeeIDs
	}
	return input, nil
}

// ========== RUNS ==========

func (s *PayrollServiceImpl) GetRun(ctx context.Context, id string) (payroll.PayrollRunResponse, error) {
	companyID, err := getCompanyIDFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	run, err := s.runRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}
	return payroll.NewPayrollRunResponse(run), nil
}

func (s *PayrollServiceImpl) ListRuns(ctx context.Context, filter payroll.RunFilter) (payroll.ListPayrollRunResponse, error) {
	companyID, err := getCompanyIDFromContext(ctx)
	if err != nil {
		return payroll.ListPayrollRunResponse{}, err
	}
	filter.Normalize()

	runs, total, err := s.runRepo.List(ctx, companyID, filter)
	if err != nil {
		return payroll.ListPayrollRunResponse{}, err
	}

	items := make([]payroll.PayrollRunListItem, 0, len(runs))
	for _, r := range runs {
		items = append(items, payroll.NewPayrollRunListItem(r))
	}

	return payroll.ListPayrollRunResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Runs:       items,
	}, nil
}
