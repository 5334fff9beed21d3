package payroll

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func at(hour, min int) time.Time {
	return time.Date(2025, 3, 3, hour, min, 0, 0, time.UTC)
}

func closedSession(entry, exit time.Time) attendance.WorkSession {
	return attendance.WorkSession{
		EmployeeID:     "emp-1",
		Date:           "2025-03-03",
		EntryTime:      entry,
		ExitTime:       &exit,
		EntryDirection: attendance.DirectionIn,
	}
}

func openSession(entry time.Time) attendance.WorkSession {
	return attendance.WorkSession{
		EmployeeID:     "emp-1",
		Date:           "2025-03-03",
		EntryTime:      entry,
		EntryDirection: attendance.DirectionIn,
	}
}

func officeDay(grace int) schedule.EffectiveShift {
	return schedule.EffectiveShift{
		Date:         "2025-03-03",
		StartTime:    schedule.TimeOfDay(9 * 60),
		EndTime:      schedule.TimeOfDay(17 * 60),
		Start:        at(9, 0),
		End:          at(17, 0),
		IsWorkDay:    true,
		GraceMinutes: grace,
		Source:       schedule.SourceRecurringSchedule,
	}
}

func testRules() payroll.AttendanceRuleConfig {
	return payroll.AttendanceRuleConfig{
		CompanyID: "company-1",
		LateDeduction: payroll.LateDeductionRule{
			Enabled:                 true,
			Mode:                    payroll.DeductionModeFixed,
			RatePerMinute:           decimal.RequireFromString("0.01"),
			HalfDayThresholdMinutes: 60,
			AbsentThresholdMinutes:  240,
		},
		OvertimeRate:      decimal.NewFromInt(1),
		PayRoundingPlaces: 2,
	}
}

func TestComputeDailyMetric_NormalDay(t *testing.T) {
	m := ComputeDailyMetric(DayInput{
		EmployeeID: "emp-1",
		Date:       "2025-03-03",
		Sessions:   []attendance.WorkSession{closedSession(at(9, 10), at(17, 30))},
		Shift:      officeDay(0),
		Rules:      testRules(),
		HourlyWage: decimal.NewFromInt(1),
	})

	assert.Equal(t, 500, m.WorkedMinutes)
	assert.Equal(t, 10, m.LateMinutes)
	assert.Equal(t, 30, m.OvertimeMinutes)
	assert.Equal(t, payroll.DayStatusPresent, m.Status)
	assert.Equal(t, "0.10", m.DeductionAmount.StringFixed(2))
	// 500/60 + 30/60*1 - 0.10
	assert.Equal(t, "8.73", m.FinalPay.StringFixed(2))
}

func TestComputeDailyMetric_MissingPunch(t *testing.T) {
	m := ComputeDailyMetric(DayInput{
		EmployeeID: "emp-1",
		Date:       "2025-03-03",
		Sessions:   []attendance.WorkSession{openSession(at(9, 5))},
		Shift:      officeDay(0),
		Rules:      testRules(),
	})

	assert.Equal(t, payroll.DayStatusMissingPunch, m.Status)
	assert.Equal(t, 0, m.WorkedMinutes)
	assert.Equal(t, 0, m.OvertimeMinutes)
	assert.Len(t, m.Sessions, 1)
}

func TestComputeDailyMetric_OpenSessionKeepsOtherSessions(t *testing.T) {
	m := ComputeDailyMetric(DayInput{
		EmployeeID: "emp-1",
		Date:       "2025-03-03",
		Sessions: []attendance.WorkSession{
			closedSession(at(9, 0), at(12, 0)),
			openSession(at(13, 0)),
		},
		Shift: officeDay(0),
		Rules: testRules(),
	})

	assert.Equal(t, payroll.DayStatusMissingPunch, m.Status)
	assert.Equal(t, 180, m.WorkedMinutes)
	assert.Equal(t, 0, m.LateMinutes)
}

func TestComputeDailyMetric_AbsentDueToLateness(t *testing.T) {
	m := ComputeDailyMetric(DayInput{
		EmployeeID: "emp-1",
		Date:       "2025-03-03",
		Sessions:   []attendance.WorkSession{closedSession(at(13, 10), at(17, 0))},
		Shift:      officeDay(0),
		Rules:      testRules(),
	})

	assert.Equal(t, 250, m.LateMinutes)
	assert.Equal(t, payroll.DayStatusAbsent, m.Status)
}

func TestComputeDailyMetric_OpenSessionIsNotCharged(t *testing.T) {
	m := ComputeDailyMetric(DayInput{
		EmployeeID: "emp-1",
		Date:       "2025-03-03",
		Sessions:   []attendance.WorkSession{openSession(at(9, 30))},
		Shift:      officeDay(0),
		Rules:      testRules(),
	})

	assert.Equal(t, payroll.DayStatusMissingPunch, m.Status)
	assert.Equal(t, 0, m.LateMinutes)
	assert.True(t, m.DeductionAmount.IsZero())
	assert.True(t, m.FinalPay.IsZero())
}

func TestComputeDailyMetric_MissingPunchOutranksLateness(t *testing.T) {
	m := ComputeDailyMetric(DayInput{
		EmployeeID: "emp-1",
		Date:       "2025-03-03",
		Sessions: []attendance.WorkSession{
			closedSession(at(13, 10), at(17, 0)),
			openSession(at(18, 0)),
		},
		Shift: officeDay(0),
		Rules: testRules(),
	})

	assert.Equal(t, payroll.DayStatusMissingPunch, m.Status)
	assert.Equal(t, 250, m.LateMinutes)
	assert.Equal(t, "2.50", m.DeductionAmount.StringFixed(2))
	assert.Equal(t, 230, m.WorkedMinutes)
}

func TestComputeDailyMetric_LatenessFromFirstClosedSession(t *testing.T) {
	m := ComputeDailyMetric(DayInput{
		EmployeeID: "emp-1",
		Date:       "2025-03-03",
		Sessions: []attendance.WorkSession{
			closedSession(at(9, 20), at(17, 0)),
			openSession(at(17, 30)),
		},
		Shift: officeDay(0),
		Rules: testRules(),
	})

	assert.Equal(t, 20, m.LateMinutes)
	assert.Equal(t, "0.20", m.DeductionAmount.StringFixed(2))
	assert.Equal(t, payroll.DayStatusMissingPunch, m.Status)
}

func TestComputeDailyMetric_HalfDay(t *testing.T) {
	m := ComputeDailyMetric(DayInput{
		EmployeeID: "emp-1",
		Date:       "2025-03-03",
		Sessions:   []attendance.WorkSession{closedSession(at(10, 30), at(17, 0))},
		Shift:      officeDay(0),
		Rules:      testRules(),
	})

	assert.Equal(t, 90, m.LateMinutes)
	assert.Equal(t, payroll.DayStatusHalfDay, m.Status)
}

func TestComputeDailyMetric_SanctionedLeaveOverridesPenalty(t *testing.T) {
	sessions := []attendance.WorkSession{closedSession(at(13, 10), at(17, 0))}

	m := ComputeDailyMetric(DayInput{
		EmployeeID: "emp-1",
		Date:       "2025-03-03",
		Sessions:   sessions,
		Shift:      officeDay(0),
		Leave:      &leave.Record{EmployeeID: "emp-1", Date: "2025-03-03", Status: leave.StatusSanctioned, LeaveType: "sick"},
		Rules:      testRules(),
	})

	assert.Equal(t, payroll.DayStatusLeave, m.Status)
	assert.Equal(t, "sick", m.LeaveType)
	assert.True(t, m.DeductionAmount.IsZero())
	assert.Equal(t, 0, m.WorkedMinutes)
	assert.Equal(t, 0, m.LateMinutes)

	pending := ComputeDailyMetric(DayInput{
		EmployeeID: "emp-1",
		Date:       "2025-03-03",
		Sessions:   sessions,
		Shift:      officeDay(0),
		Leave:      &leave.Record{EmployeeID: "emp-1", Date: "2025-03-03", Status: leave.StatusPending},
		Rules:      testRules(),
	})
	assert.Equal(t, payroll.DayStatusAbsent, pending.Status)
	assert.False(t, pending.DeductionAmount.IsZero())
}

func TestComputeDailyMetric_NonWorkingDay(t *testing.T) {
	shift := officeDay(0)
	shift.IsWorkDay = false
	shift.Source = schedule.SourceHoliday

	m := ComputeDailyMetric(DayInput{
		EmployeeID: "emp-1",
		Date:       "2025-03-03",
		Shift:      shift,
		Rules:      testRules(),
	})
	assert.Equal(t, payroll.DayStatusHoliday, m.Status)
	assert.True(t, m.FinalPay.IsZero())
	assert.NotNil(t, m.Sessions)

	worked := ComputeDailyMetric(DayInput{
		EmployeeID: "emp-1",
		Date:       "2025-03-03",
		Sessions:   []attendance.WorkSession{closedSession(at(10, 0), at(13, 0))},
		Shift:      shift,
		Rules:      testRules(),
	})
	assert.Equal(t, payroll.DayStatusHoliday, worked.Status)
	assert.Equal(t, 0, worked.LateMinutes)
	assert.True(t, worked.DeductionAmount.IsZero())
	assert.Equal(t, "3.00", worked.FinalPay.StringFixed(2))
}

func TestComputeDailyMetric_AbsentWithoutPunches(t *testing.T) {
	m := ComputeDailyMetric(DayInput{
		EmployeeID: "emp-1",
		Date:       "2025-03-03",
		Shift:      officeDay(0),
		Rules:      testRules(),
	})
	assert.Equal(t, payroll.DayStatusAbsent, m.Status)
	assert.True(t, m.FinalPay.IsZero())
}

func TestComputeDailyMetric_Grace(t *testing.T) {
	cases := []struct {
		entry time.Time
		want  int
	}{
		{at(9, 4), 0},
		{at(9, 5), 0},
		{at(9, 6), 6},
	}
	for _, c := range cases {
		m := ComputeDailyMetric(DayInput{
			EmployeeID: "emp-1",
			Date:       "2025-03-03",
			Sessions:   []attendance.WorkSession{closedSession(c.entry, at(17, 0))},
			Shift:      officeDay(5),
			Rules:      testRules(),
		})
		assert.Equal(t, c.want, m.LateMinutes, "entry %s", c.entry.Format("15:04"))
	}
}

func TestComputeDailyMetric_PercentageDeduction(t *testing.T) {
	rules := testRules()
	rules.LateDeduction.Mode = payroll.DeductionModePercentage
	rules.LateDeduction.RatePerMinute = decimal.NewFromInt(50)

	in := DayInput{
		EmployeeID: "emp-1",
		Date:       "2025-03-03",
		Sessions:   []attendance.WorkSession{closedSession(at(9, 10), at(17, 0))},
		Shift:      officeDay(0),
		Rules:      rules,
		HourlyWage: decimal.NewFromInt(60),
	}

	// 10 minutes * 50% of 1.00 per minute
	m := ComputeDailyMetric(in)
	assert.Equal(t, "5.00", m.DeductionAmount.StringFixed(2))

	in.Rules.LateDeduction.MaxDeductionMinutes = 4
	m = ComputeDailyMetric(in)
	assert.Equal(t, "2.00", m.DeductionAmount.StringFixed(2))
}

func TestComputeDailyMetric_DeductionDisabled(t *testing.T) {
	rules := testRules()
	rules.LateDeduction.Enabled = false

	m := ComputeDailyMetric(DayInput{
		EmployeeID: "emp-1",
		Date:       "2025-03-03",
		Sessions:   []attendance.WorkSession{closedSession(at(13, 10), at(17, 0))},
		Shift:      officeDay(0),
		Rules:      rules,
	})
	assert.True(t, m.DeductionAmount.IsZero())
	assert.Equal(t, payroll.DayStatusAbsent, m.Status, "thresholds still classify the day")
}

func TestComputeDailyMetric_OvertimeOnlyAfterShiftEnd(t *testing.T) {
	m := ComputeDailyMetric(DayInput{
		EmployeeID: "emp-1",
		Date:       "2025-03-03",
		Sessions: []attendance.WorkSession{
			closedSession(at(9, 0), at(16, 0)),
			closedSession(at(18, 0), at(19, 30)),
		},
		Shift: officeDay(0),
		Rules: testRules(),
	})
	assert.Equal(t, 90, m.OvertimeMinutes)
	assert.Equal(t, 510, m.WorkedMinutes)
}
