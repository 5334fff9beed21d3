package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/config"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/device"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-payroll-engine/internal/service/attendance"
	deviceService "github.com/cmlabs-hris/hris-payroll-engine/internal/service/device"
	payrollService "github.com/cmlabs-hris/hris-payroll-engine/internal/service/payroll"
	scheduleService "github.com/cmlabs-hris/hris-payroll-engine/internal/service/schedule"
)

// Services holds the wired services shared by the api, worker and CLI binaries.
type Services struct {
	Payroll  *payrollService.PayrollServiceImpl
	Schedule schedule.ScheduleService
	Device   device.DeviceService
	Upload   attendance.UploadService
	Uploads  *payrollService.UploadProcessor
}

func NewServices(cfg *config.Config, db *database.DB) (*Services, error) {
	overrides, err := attendanceService.ParseDirectionOverrides(cfg.Engine.DirectionOverrides)
	if err != nil {
		return nil, fmt.Errorf("invalid DIRECTION_OVERRIDES: %w", err)
	}
	directions, err := attendanceService.NewDirectionMapper(overrides)
	if err != nil {
		return nil, fmt.Errorf("invalid DIRECTION_OVERRIDES: %w", err)
	}

	employeeRepo := postgresql.NewEmployeeRepository(db)
	branchRepo := postgresql.NewBranchRepository(db)
	directoryRepo := postgresql.NewIdentifierDirectoryRepository(db)
	workScheduleRepo := postgresql.NewWorkScheduleRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	employeeScheduleAssignmentRepo := postgresql.NewEmployeeScheduleAssignmentRepository(db)
	employeeOverrideRepo := postgresql.NewEmployeeOverrideRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	payrollSettingsRepo := postgresql.NewPayrollSettingsRepository(db)
	payrollRunRepo := postgresql.NewPayrollRunRepository(db)
	uploadRepo := postgresql.NewAttendanceUploadRepository(db)
	deviceRepo := postgresql.NewDeviceRepository(db)

	loader := scheduleService.NewSnapshotLoader(workScheduleRepo, holidayRepo, employeeScheduleAssignmentRepo, employeeOverrideRepo)
	engine := payrollService.NewEngine(directions, payrollService.EngineOptions{
		Workers:          cfg.Engine.Workers,
		TimestampLayouts: cfg.Engine.TimestampLayouts,
	})

	payrollSvc := payrollService.NewPayrollService(
		engine,
		loader,
		employeeRepo,
		branchRepo,
		directoryRepo,
		leaveRequestRepo,
		payrollSettingsRepo,
		payrollRunRepo,
		payrollService.Options{
			IncludeRoster:           cfg.Engine.IncludeRoster,
			DefaultRulesWhenMissing: cfg.Engine.DefaultRules,
			DefaultLocation:         cfg.Location(),
		},
	)

	return &Services{
		Payroll:  payrollSvc,
		Schedule: scheduleService.NewScheduleService(employeeRepo, branchRepo, loader, cfg.Location()),
		Device:   deviceService.NewDeviceService(deviceRepo),
		Upload:   attendanceService.NewUploadService(uploadRepo),
		Uploads:  payrollService.NewUploadProcessor(uploadRepo, payrollSvc, cfg.Worker.UploadBatchSize),
	}, nil
}

// NewLogger installs a JSON slog logger at the configured level as the default.
func NewLogger(app config.AppConfig, component string) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(app.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).With(
		slog.String("app", "hris-payroll-engine"),
		slog.String("component", component),
		slog.String("version", app.Version),
		slog.String("env", app.Env),
	)
	slog.SetDefault(logger)
	return logger
}
