package attendance

import (
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
)

// SortEvents orders events by timestamp. Ties are broken by direction (in
// first), device and mode so the result does not depend on input order.
func SortEvents(events []attendance.PunchEvent) []attendance.PunchEvent {
	sorted := make([]attendance.PunchEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if a.Direction != b.Direction {
			return a.Direction == attendance.DirectionIn
		}
		if a.DeviceID != b.DeviceID {
			return a.DeviceID < b.DeviceID
		}
		return a.Mode < b.Mode
	})
	return sorted
}

type employeeDay struct {
	employeeID string
	date       string
}

// FilterPeriod drops events whose local date in loc falls outside [start, end]
// (inclusive ISO dates) and reports one warning per employee and day dropped.
func FilterPeriod(events []attendance.PunchEvent, loc *time.Location, start, end string) ([]attendance.PunchEvent, []attendance.PairingWarning) {
	kept := make([]attendance.PunchEvent, 0, len(events))
	dropped := make(map[employeeDay]int)
	var days []employeeDay

	for _, ev := range events {
		date := ev.Timestamp.In(loc).Format(attendance.DateLayout)
		if date >= start && date <= end {
			kept = append(kept, ev)
			continue
		}
		key := employeeDay{employeeID: ev.EmployeeID, date: date}
		if _, seen := dropped[key]; !seen {
			days = append(days, key)
		}
		dropped[key]++
	}

	sort.Slice(days, func(i, j int) bool {
		if days[i].employeeID != days[j].employeeID {
			return days[i].employeeID < days[j].employeeID
		}
		return days[i].date < days[j].date
	})

	warnings := make([]attendance.PairingWarning, 0, len(days))
	for _, key := range days {
		warnings = append(warnings, attendance.PairingWarning{
			Kind:       attendance.WarningOutOfPeriod,
			EmployeeID: key.employeeID,
			Date:       key.date,
			Message:    fmt.Sprintf("%d punch(es) outside period %s..%s skipped", dropped[key], start, end),
		})
	}
	return kept, warnings
}

// Pair turns one employee's events into work sessions. Events are sorted,
// split by local calendar day in loc, and paired by position within each day:
// 1st and 2nd form a session, 3rd and 4th the next, and so on. Direction labels
// do not affect pairing; sessions never cross midnight.
func Pair(employeeID string, events []attendance.PunchEvent, loc *time.Location) ([]attendance.WorkSession, []attendance.PairingWarning) {
	if loc == nil {
		loc = time.UTC
	}
	sorted := SortEvents(events)

	var sessions []attendance.WorkSession
	var warnings []attendance.PairingWarning

	for start := 0; start < len(sorted); {
		date := sorted[start].Timestamp.In(loc).Format(attendance.DateLayout)
		end := start
		for end < len(sorted) && sorted[end].Timestamp.In(loc).Format(attendance.DateLayout) == date {
			end++
		}

		day := sorted[start:end]
		for i := 0; i < len(day); i += 2 {
			entry := day[i]
			session := attendance.WorkSession{
				EmployeeID:     employeeID,
				Date:           date,
				EntryTime:      entry.Timestamp.In(loc),
				EntryDirection: entry.Direction,
			}

			if i+1 >= len(day) {
				sessions = append(sessions, session)
				warnings = append(warnings, attendance.PairingWarning{
					Kind:       attendance.WarningMissingPunch,
					EmployeeID: employeeID,
					Date:       date,
					Message:    fmt.Sprintf("unmatched punch at %s", session.EntryTime.Format("15:04:05")),
				})
				continue
			}

			exit := day[i+1]
			exitTime := exit.Timestamp.In(loc)
			exitDirection := exit.Direction
			session.ExitTime = &exitTime
			session.ExitDirection = &exitDirection
			sessions = append(sessions, session)

			if entry.Direction != attendance.DirectionIn || exit.Direction != attendance.DirectionOut {
				warnings = append(warnings, attendance.PairingWarning{
					Kind:       attendance.WarningDirectionMismatch,
					EmployeeID: employeeID,
					Date:       date,
					Message: fmt.Sprintf("session %s-%s labelled %s/%s",
						session.EntryTime.Format("15:04:05"), exitTime.Format("15:04:05"), entry.Direction, exit.Direction),
				})
			}
		}

		start = end
	}

	return sessions, warnings
}
