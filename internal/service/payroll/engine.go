package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	attendancesvc "github.com/cmlabs-hris/hris-payroll-engine/internal/service/attendance"
	schedulesvc "github.com/cmlabs-hris/hris-payroll-engine/internal/service/schedule"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// EngineOptions tunes the batch engine.
type EngineOptions struct {
	// Workers bounds per-employee fan-out; values below 1 mean 1.
	Workers          int
	TimestampLayouts []string
}

// Engine reconciles a raw batch against an immutable settings snapshot.
// It performs no I/O and keeps no state between runs.
type Engine struct {
	directions *attendancesvc.DirectionMapper
	layouts    []string
	workers    int
}

func NewEngine(directions *attendancesvc.DirectionMapper, opts EngineOptions) *Engine {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		directions: directions,
		layouts:    opts.TimestampLayouts,
		workers:    workers,
	}
}

// EngineInput is one batch plus the reference data fetched for it.
type EngineInput struct {
	Batch     payroll.Batch
	Directory attendance.IdentifierDirectory
	Snapshot  *schedule.Snapshot
	Leaves    leave.Book
	// Rules is nil when the company has no rule configuration.
	Rules *payroll.AttendanceRuleConfig
	Wages map[string]decimal.Decimal
	// Roster lists employees to summarise even when they have no punches.
	Roster []string
}

type employeeOutcome struct {
	summary  *payroll.PayrollSummary
	warnings []attendance.PairingWarning
	err      error
}

// Run executes the whole pipeline. Only structural problems and cancellation
// are returned as errors; record and employee failures are collected in the
// result.
func (e *Engine) Run(ctx context.Context, in EngineInput) (payroll.BatchResult, error) {
	if err := validateBatch(in); err != nil {
		return payroll.BatchResult{}, err
	}

	started := time.Now()
	batch := in.Batch
	loc := in.Snapshot.Location
	periodStart := batch.PeriodStart.Format(attendance.DateLayout)
	periodEnd := batch.PeriodEnd.Format(attendance.DateLayout)

	slog.Info("Payroll batch started",
		"branch_id", batch.BranchID,
		"period_start", periodStart,
		"period_end", periodEnd,
		"records", len(batch.Records),
	)

	normalizer := attendancesvc.NewNormalizer(e.directions, loc, e.layouts)
	events, rejected := normalizer.Normalize(batch.Records, in.Directory)
	events, outOfPeriod := attendancesvc.FilterPeriod(events, loc, periodStart, periodEnd)

	byEmployee := make(map[string][]attendance.PunchEvent)
	for _, ev := range events {
		byEmployee[ev.EmployeeID] = append(byEmployee[ev.EmployeeID], ev)
	}
	for _, id := range in.Roster {
		if _, ok := byEmployee[id]; !ok {
			byEmployee[id] = nil
		}
	}
	employeeIDs := make([]string, 0, len(byEmployee))
	for id := range byEmployee {
		employeeIDs = append(employeeIDs, id)
	}
	sort.Strings(employeeIDs)

	days := periodDays(batch.PeriodStart, batch.PeriodEnd)
	outcomes := make([]employeeOutcome, len(employeeIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, id := range employeeIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = e.computeEmployee(id, byEmployee[id], days, in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return payroll.BatchResult{}, fmt.Errorf("payroll batch cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return payroll.BatchResult{}, fmt.Errorf("payroll batch cancelled: %w", err)
	}

	result := payroll.BatchResult{
		BranchID:            batch.BranchID,
		PeriodStart:         periodStart,
		PeriodEnd:           periodEnd,
		Summaries:           []payroll.PayrollSummary{},
		NormalizationErrors: rejected,
		PairingWarnings:     outOfPeriod,
		EmployeeErrors:      []payroll.EmployeeError{},
	}
	if result.NormalizationErrors == nil {
		result.NormalizationErrors = []attendance.NormalizationError{}
	}

	for i, id := range employeeIDs {
		out := outcomes[i]
		result.PairingWarnings = append(result.PairingWarnings, out.warnings...)
		if out.err != nil {
			result.EmployeeErrors = append(result.EmployeeErrors, payroll.EmployeeError{EmployeeID: id, Err: out.err})
			slog.Warn("Payroll computation failed for employee", "employee_id", id, "error", out.err)
			continue
		}
		result.Summaries = append(result.Summaries, *out.summary)
	}
	sortWarnings(result.PairingWarnings)

	slog.Info("Payroll batch completed",
		"branch_id", batch.BranchID,
		"employees", len(result.Summaries),
		"employee_errors", len(result.EmployeeErrors),
		"normalization_errors", len(result.NormalizationErrors),
		"pairing_warnings", len(result.PairingWarnings),
		"duration", time.Since(started),
	)

	return result, nil
}

func (e *Engine) computeEmployee(employeeID string, events []attendance.PunchEvent, days []time.Time, in EngineInput) employeeOutcome {
	sessions, warnings := attendancesvc.Pair(employeeID, events, in.Snapshot.Location)

	if in.Rules == nil {
		return employeeOutcome{warnings: warnings, err: payroll.ErrRuleConfigMissing}
	}

	byDate := make(map[string][]attendance.WorkSession)
	for _, s := range sessions {
		byDate[s.Date] = append(byDate[s.Date], s)
	}

	wage, ok := in.Wages[employeeID]
	if !ok {
		wage = decimal.NewFromInt(1)
	}

	metrics := make([]payroll.DailyAttendanceMetric, 0, len(days))
	for _, day := range days {
		date := day.Format(attendance.DateLayout)

		shift, err := schedulesvc.Resolve(employeeID, date, in.Snapshot)
		if err != nil {
			return employeeOutcome{warnings: warnings, err: err}
		}

		var leaveRecord *leave.Record
		if r, ok := in.Leaves.Lookup(employeeID, date); ok {
			leaveRecord = &r
		}

		metrics = append(metrics, ComputeDailyMetric(DayInput{
			EmployeeID: employeeID,
			Date:       date,
			Sessions:   byDate[date],
			Shift:      shift,
			Leave:      leaveRecord,
			Rules:      *in.Rules,
			HourlyWage: wage,
		}))
	}

	summary := Aggregate(employeeID, metrics,
		in.Batch.PeriodStart.Format(attendance.DateLayout),
		in.Batch.PeriodEnd.Format(attendance.DateLayout))
	return employeeOutcome{summary: &summary, warnings: warnings}
}

// Span reports the first and last local dates of the parseable timestamps in
// records, for batches that arrive without an explicit period.
func (e *Engine) Span(records []attendance.RawRecord, loc *time.Location) (time.Time, time.Time, bool) {
	normalizer := attendancesvc.NewNormalizer(e.directions, loc, e.layouts)
	return normalizer.Span(records)
}

func validateBatch(in EngineInput) error {
	b := in.Batch
	if b.BranchID == "" {
		return payroll.ErrBranchRequired
	}
	if b.PeriodStart.IsZero() || b.PeriodEnd.IsZero() || b.PeriodEnd.Before(b.PeriodStart) {
		return payroll.ErrInvalidPeriod
	}
	if len(b.Records) == 0 {
		return attendance.ErrEmptyBatch
	}
	if !in.Snapshot.HasShifts() {
		return schedule.ErrConfigurationMissing
	}
	return nil
}

// periodDays lists every calendar date from start to end inclusive.
func periodDays(start, end time.Time) []time.Time {
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	var days []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func sortWarnings(warnings []attendance.PairingWarning) {
	sort.SliceStable(warnings, func(i, j int) bool {
		a, b := warnings[i], warnings[j]
		if a.EmployeeID != b.EmployeeID {
			return a.EmployeeID < b.EmployeeID
		}
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.Kind < b.Kind
	})
}
