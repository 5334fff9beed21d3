package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	"github.com/shopspring/decimal"
)

var (
	sixty   = decimal.NewFromInt(60)
	hundred = decimal.NewFromInt(100)
)

// DayInput is everything needed to compute one employee-day.
type DayInput struct {
	EmployeeID string
	Date       string
	Sessions   []attendance.WorkSession
	Shift      schedule.EffectiveShift
	Leave      *leave.Record
	Rules      payroll.AttendanceRuleConfig
	// HourlyWage scales pay and percentage deductions.
	HourlyWage decimal.Decimal
}

// ComputeDailyMetric derives the attendance metric for one employee-day.
// It never fails: anomalies surface as the returned status.
func ComputeDailyMetric(in DayInput) payroll.DailyAttendanceMetric {
	sessions := in.Sessions
	if sessions == nil {
		sessions = []attendance.WorkSession{}
	}

	m := payroll.DailyAttendanceMetric{
		EmployeeID:      in.EmployeeID,
		Date:            in.Date,
		EffectiveShift:  in.Shift,
		Sessions:        sessions,
		DeductionAmount: decimal.Zero,
		FinalPay:        decimal.Zero,
	}

	if in.Leave != nil && in.Leave.IsSanctioned() {
		m.Status = payroll.DayStatusLeave
		m.LeaveType = in.Leave.LeaveType
		return m
	}

	places := in.Rules.PayRoundingPlaces
	wage := in.HourlyWage
	if wage.IsZero() {
		wage = decimal.NewFromInt(1)
	}

	m.WorkedMinutes = workedMinutes(sessions)

	// Time worked on a rest day or holiday is paid but never penalised.
	if !in.Shift.IsWorkDay {
		m.Status = payroll.DayStatusHoliday
		m.FinalPay = dayPay(m.WorkedMinutes, 0, in.Rules.OvertimeRate, wage, decimal.Zero).Round(places)
		return m
	}

	if len(sessions) == 0 {
		m.Status = payroll.DayStatusAbsent
		return m
	}

	m.OvertimeMinutes = overtimeMinutes(sessions, in.Shift.End)
	if first, ok := firstClosedSession(sessions); ok {
		m.LateMinutes = lateMinutes(first.EntryTime, in.Shift)
	}
	m.DeductionAmount = lateDeduction(m.LateMinutes, in.Rules.LateDeduction, wage).Round(places)
	m.Status = dayStatus(m.LateMinutes, hasOpenSession(sessions), in.Rules.LateDeduction)
	m.FinalPay = dayPay(m.WorkedMinutes, m.OvertimeMinutes, in.Rules.OvertimeRate, wage, m.DeductionAmount).Round(places)

	return m
}

func workedMinutes(sessions []attendance.WorkSession) int {
	total := 0
	for _, s := range sessions {
		total += s.DurationMinutes()
	}
	return total
}

// overtimeMinutes counts closed-session time past the scheduled end.
func overtimeMinutes(sessions []attendance.WorkSession, shiftEnd time.Time) int {
	total := 0
	for _, s := range sessions {
		if s.IsOpen() || !s.ExitTime.After(shiftEnd) {
			continue
		}
		from := shiftEnd
		if s.EntryTime.After(from) {
			from = s.EntryTime
		}
		total += int(s.ExitTime.Sub(from).Minutes())
	}
	return total
}

// lateMinutes measures the day's first closed entry against the scheduled start.
// Arrivals within the grace window are on time; later arrivals are late by the
// full distance from the start.
func lateMinutes(firstEntry time.Time, shift schedule.EffectiveShift) int {
	deadline := shift.Start.Add(time.Duration(shift.GraceMinutes) * time.Minute)
	if !firstEntry.After(deadline) {
		return 0
	}
	return int(firstEntry.Sub(shift.Start).Minutes())
}

func lateDeduction(late int, rule payroll.LateDeductionRule, wage decimal.Decimal) decimal.Decimal {
	if !rule.Enabled || late <= 0 {
		return decimal.Zero
	}

	minutes := late
	if rule.MaxDeductionMinutes > 0 && minutes > rule.MaxDeductionMinutes {
		minutes = rule.MaxDeductionMinutes
	}
	chargeable := decimal.NewFromInt(int64(minutes))

	if rule.Mode == payroll.DeductionModePercentage {
		perMinuteWage := wage.Div(sixty)
		return chargeable.Mul(rule.RatePerMinute.Div(hundred)).Mul(perMinuteWage)
	}
	return chargeable.Mul(rule.RatePerMinute)
}

// dayStatus ranks MissingPunch above Absent above HalfDay above Present.
// A zero threshold disables that rule.
func dayStatus(late int, open bool, rule payroll.LateDeductionRule) payroll.DayStatus {
	switch {
	case open:
		return payroll.DayStatusMissingPunch
	case rule.AbsentThresholdMinutes > 0 && late >= rule.AbsentThresholdMinutes:
		return payroll.DayStatusAbsent
	case rule.HalfDayThresholdMinutes > 0 && late >= rule.HalfDayThresholdMinutes:
		return payroll.DayStatusHalfDay
	default:
		return payroll.DayStatusPresent
	}
}

// dayPay is worked hours plus overtime hours at the overtime rate, scaled by
// the hourly wage, less the deduction. Overtime minutes are already part of
// worked minutes, so overtime is paid as base time plus the premium.
func dayPay(worked, overtime int, overtimeRate, wage, deduction decimal.Decimal) decimal.Decimal {
	base := decimal.NewFromInt(int64(worked)).Div(sixty)
	premium := decimal.NewFromInt(int64(overtime)).Div(sixty).Mul(overtimeRate)
	return base.Add(premium).Mul(wage).Sub(deduction)
}

// firstClosedSession returns the earliest session with both punches. Sessions
// arrive in chronological order.
func firstClosedSession(sessions []attendance.WorkSession) (attendance.WorkSession, bool) {
	for _, s := range sessions {
		if !s.IsOpen() {
			return s, true
		}
	}
	return attendance.WorkSession{}, false
}

func hasOpenSession(sessions []attendance.WorkSession) bool {
	for _, s := range sessions {
		if s.IsOpen() {
			return true
		}
	}
	return false
}
