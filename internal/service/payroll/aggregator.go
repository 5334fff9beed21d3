package payroll

import (
	"sort"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// Aggregate folds daily metrics into a period summary. The result does not
// depend on the order of metrics; an empty list yields an all-zero summary.
func Aggregate(employeeID string, metrics []payroll.DailyAttendanceMetric, periodStart, periodEnd string) payroll.PayrollSummary {
	daily := make([]payroll.DailyAttendanceMetric, len(metrics))
	copy(daily, metrics)
	sort.SliceStable(daily, func(i, j int) bool {
		return daily[i].Date < daily[j].Date
	})

	summary := payroll.PayrollSummary{
		EmployeeID:          employeeID,
		PeriodStart:         periodStart,
		PeriodEnd:           periodEnd,
		TotalWorkedHours:    decimal.Zero,
		TotalOvertimeHours:  decimal.Zero,
		TotalLateDeductions: decimal.Zero,
		TotalPay:            decimal.Zero,
		DailyMetrics:        daily,
	}

	overtimeMinutes := 0
	for _, m := range daily {
		summary.TotalWorkedMinutes += m.WorkedMinutes
		summary.TotalLateMinutes += m.LateMinutes
		overtimeMinutes += m.OvertimeMinutes
		if m.LateMinutes > 0 {
			summary.LateDays++
		}
		summary.TotalLateDeductions = summary.TotalLateDeductions.Add(m.DeductionAmount)
		summary.TotalPay = summary.TotalPay.Add(m.FinalPay)

		switch m.Status {
		case payroll.DayStatusPresent:
			summary.StatusCounts.Present++
		case payroll.DayStatusAbsent:
			summary.StatusCounts.Absent++
		case payroll.DayStatusHalfDay:
			summary.StatusCounts.HalfDay++
		case payroll.DayStatusLeave:
			summary.StatusCounts.Leave++
		case payroll.DayStatusHoliday:
			summary.StatusCounts.Holiday++
		case payroll.DayStatusMissingPunch:
			summary.StatusCounts.MissingPunch++
		}
	}

	summary.TotalWorkedHours = minutesToHours(summary.TotalWorkedMinutes)
	summary.TotalOvertimeHours = minutesToHours(overtimeMinutes)
	return summary
}

func minutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(sixty).Round(2)
}
