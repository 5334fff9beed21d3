package payroll

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	attendancesvc "github.com/cmlabs-hris/hris-payroll-engine/internal/service/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBatch = `No,Name,Mode,In/Out,Date-Time
1001,Budi,FP,in,2025-03-03 09:10:00
1001,Budi,FP,out,2025-03-03 17:30:00
1002,Sari,Card,in,2025-03-03 08:55:00
1002,Sari,Card,out,2025-03-03 17:00:00
1002,Sari,Card,in,2025-03-04 09:05:00
9999,Ghost,FP,in,2025-03-03 09:00:00
1001,Budi,FP,in,2025-03-05 13:10:00
1001,Budi,FP,out,2025-03-05 17:00:00
`

func testEngine(t *testing.T) *Engine {
	t.Helper()
	directions, err := attendancesvc.NewDirectionMapper(nil)
	require.NoError(t, err)
	return NewEngine(directions, EngineOptions{Workers: 4})
}

func testSnapshot(t *testing.T, employeeShifts map[string]string) *schedule.Snapshot {
	t.Helper()
	snap, err := schedule.NewSnapshot(schedule.SnapshotInput{
		Location: time.UTC,
		Shifts: []schedule.ShiftDefinition{{
			ID:          "shift-office",
			Name:        "Office",
			StartTime:   schedule.TimeOfDay(9 * 60),
			EndTime:     schedule.TimeOfDay(17 * 60),
			WorkingDays: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		}},
		EmployeeShifts: employeeShifts,
		Holidays:       []schedule.Holiday{{ID: "h1", Date: "2025-03-06", Description: "Company day"}},
	})
	require.NoError(t, err)
	return snap
}

func testInput(t *testing.T) EngineInput {
	t.Helper()
	records, err := attendancesvc.ParseDelimited(strings.NewReader(sampleBatch))
	require.NoError(t, err)

	rules := testRules()
	return EngineInput{
		Batch: payroll.Batch{
			CompanyID:   "company-1",
			BranchID:    "branch-1",
			PeriodStart: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
			PeriodEnd:   time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
			Records:     records,
		},
		Directory: attendance.IdentifierDirectory{"1001": "emp-1", "1002": "emp-2"},
		Snapshot:  testSnapshot(t, map[string]string{"emp-1": "shift-office", "emp-2": "shift-office"}),
		Leaves: leave.NewBook([]leave.Record{
			{EmployeeID: "emp-2", Date: "2025-03-05", Status: leave.StatusSanctioned, LeaveType: "annual"},
		}),
		Rules: &rules,
	}
}

func findSummary(t *testing.T, result payroll.BatchResult, employeeID string) payroll.PayrollSummary {
	t.Helper()
	for _, s := range result.Summaries {
		if s.EmployeeID == employeeID {
			return s
		}
	}
	t.Fatalf("no summary for %s", employeeID)
	return payroll.PayrollSummary{}
}

func TestEngine_Run(t *testing.T) {
	result, err := testEngine(t).Run(context.Background(), testInput(t))
	require.NoError(t, err)

	require.Len(t, result.Summaries, 2)
	assert.Empty(t, result.EmployeeErrors)
	assert.Equal(t, "2025-03-03", result.PeriodStart)
	assert.Equal(t, "2025-03-07", result.PeriodEnd)

	require.Len(t, result.NormalizationErrors, 1)
	assert.Equal(t, attendance.ReasonUnresolvedIdentifier, result.NormalizationErrors[0].Reason)
	assert.Equal(t, "9999", result.NormalizationErrors[0].RawRecord.Identifier)

	budi := findSummary(t, result, "emp-1")
	require.Len(t, budi.DailyMetrics, 5)
	assert.Equal(t, payroll.DayStatusPresent, budi.DailyMetrics[0].Status)
	assert.Equal(t, 500, budi.DailyMetrics[0].WorkedMinutes)
	assert.Equal(t, payroll.DayStatusAbsent, budi.DailyMetrics[1].Status, "no punches on a work day")
	assert.Equal(t, payroll.DayStatusAbsent, budi.DailyMetrics[2].Status, "250 minutes late")
	assert.Equal(t, payroll.DayStatusHoliday, budi.DailyMetrics[3].Status)
	assert.Equal(t, 3, budi.StatusCounts.Absent)

	sari := findSummary(t, result, "emp-2")
	assert.Equal(t, payroll.DayStatusMissingPunch, sari.DailyMetrics[1].Status)
	assert.Equal(t, payroll.DayStatusLeave, sari.DailyMetrics[2].Status)

	require.Len(t, result.PairingWarnings, 1)
	assert.Equal(t, attendance.WarningMissingPunch, result.PairingWarnings[0].Kind)
	assert.Equal(t, "emp-2", result.PairingWarnings[0].EmployeeID)
}

func TestEngine_Idempotent(t *testing.T) {
	engine := testEngine(t)

	first, err := engine.Run(context.Background(), testInput(t))
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), testInput(t))
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestEngine_PartialFailure(t *testing.T) {
	in := testInput(t)
	in.Snapshot = testSnapshot(t, map[string]string{"emp-1": "shift-office", "emp-2": "shift-removed"})

	result, err := testEngine(t).Run(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, result.Summaries, 1)
	assert.Equal(t, "emp-1", result.Summaries[0].EmployeeID)
	require.Len(t, result.EmployeeErrors, 1)
	assert.Equal(t, "emp-2", result.EmployeeErrors[0].EmployeeID)
	assert.ErrorIs(t, result.EmployeeErrors[0], schedule.ErrConfigurationMissing)
}

func TestEngine_MissingRulesFailEveryEmployee(t *testing.T) {
	in := testInput(t)
	in.Rules = nil

	result, err := testEngine(t).Run(context.Background(), in)
	require.NoError(t, err)

	assert.Empty(t, result.Summaries)
	require.Len(t, result.EmployeeErrors, 2)
	for _, e := range result.EmployeeErrors {
		assert.ErrorIs(t, e, payroll.ErrRuleConfigMissing)
	}
}

func TestEngine_Roster(t *testing.T) {
	in := testInput(t)
	in.Roster = []string{"emp-1", "emp-2", "emp-3"}
	in.Snapshot = testSnapshot(t, map[string]string{"emp-1": "shift-office", "emp-2": "shift-office", "emp-3": "shift-office"})

	result, err := testEngine(t).Run(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, result.Summaries, 3)
	absent := findSummary(t, result, "emp-3")
	assert.Equal(t, 4, absent.StatusCounts.Absent)
	assert.Equal(t, 1, absent.StatusCounts.Holiday)
}

func TestEngine_OutOfPeriodEvents(t *testing.T) {
	in := testInput(t)
	in.Batch.PeriodEnd = time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)

	result, err := testEngine(t).Run(context.Background(), in)
	require.NoError(t, err)

	var outOfPeriod []attendance.PairingWarning
	for _, w := range result.PairingWarnings {
		if w.Kind == attendance.WarningOutOfPeriod {
			outOfPeriod = append(outOfPeriod, w)
		}
	}
	require.Len(t, outOfPeriod, 1)
	assert.Equal(t, "emp-1", outOfPeriod[0].EmployeeID)
	assert.Equal(t, "2025-03-05", outOfPeriod[0].Date)
}

func TestEngine_StructuralErrors(t *testing.T) {
	engine := testEngine(t)

	in := testInput(t)
	in.Batch.BranchID = ""
	_, err := engine.Run(context.Background(), in)
	assert.ErrorIs(t, err, payroll.ErrBranchRequired)

	in = testInput(t)
	in.Batch.PeriodEnd = in.Batch.PeriodStart.AddDate(0, 0, -1)
	_, err = engine.Run(context.Background(), in)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)

	in = testInput(t)
	in.Batch.Records = nil
	_, err = engine.Run(context.Background(), in)
	assert.ErrorIs(t, err, attendance.ErrEmptyBatch)

	in = testInput(t)
	empty, snapErr := schedule.NewSnapshot(schedule.SnapshotInput{Location: time.UTC})
	require.NoError(t, snapErr)
	in.Snapshot = empty
	_, err = engine.Run(context.Background(), in)
	assert.ErrorIs(t, err, schedule.ErrConfigurationMissing)
}

func TestEngine_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testEngine(t).Run(ctx, testInput(t))
	assert.ErrorIs(t, err, context.Canceled)
}
