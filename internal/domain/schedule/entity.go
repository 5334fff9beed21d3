package schedule

import (
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is a local wall-clock time expressed as minutes after midnight.
type TimeOfDay int

const minutesPerDay = 24 * 60

// ParseTimeOfDay accepts "15:04" or "15:04:05" (seconds are ignored).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return TimeOfDay(t.Hour()*60 + t.Minute()), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
}

// TimeOfDayFromTime takes the wall clock of t, e.g. a scanned TIME column.
func TimeOfDayFromTime(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (t TimeOfDay) String() string {
	m := int(t) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// On places the time of day on the given calendar date in loc.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, int(t)/60, int(t)%60, 0, 0, loc)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// DateOverride replaces a shift's hours (or working flag) on one ISO date.
type DateOverride struct {
	Start       TimeOfDay `json:"start"`
	End         TimeOfDay `json:"end"`
	IsWorkDay   bool      `json:"is_work_day"`
	Description string    `json:"description,omitempty"`
}

// ShiftDefinition is a recurring named schedule owned by organization settings.
type ShiftDefinition struct {
	ID                   string
	CompanyID            string
	Name                 string
	StartTime            TimeOfDay
	EndTime              TimeOfDay
	WorkingDays          []time.Weekday
	FlexibleGraceMinutes *int
	DateOverrides        map[string]DateOverride // keyed by YYYY-MM-DD
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (s ShiftDefinition) WorksOn(day time.Weekday) bool {
	for _, d := range s.WorkingDays {
		if d == day {
			return true
		}
	}
	return false
}

// ShiftOverride is the shape carried by a one-off custom assignment.
type ShiftOverride struct {
	ShiftID              *string   `json:"shift_id,omitempty"`
	Start                TimeOfDay `json:"start"`
	End                  TimeOfDay `json:"end"`
	IsWorkDay            bool      `json:"is_work_day"`
	FlexibleGraceMinutes *int      `json:"flexible_grace_minutes,omitempty"`
}

// CustomShiftAssignment overrides an employee's recurring shift for exactly one date.
type CustomShiftAssignment struct {
	ID            string
	EmployeeID    string
	Date          string
	ShiftOverride ShiftOverride
	CreatedAt     time.Time
}

// EmployeeDateOverride is an employee-specific exception for one date, e.g.
// working on a public holiday or a swapped rest day.
type EmployeeDateOverride struct {
	ID          string
	EmployeeID  string
	Date        string
	Start       TimeOfDay
	End         TimeOfDay
	IsWorkDay   bool
	Description string
}

type Holiday struct {
	ID          string
	CompanyID   string
	Date        string
	Description string
}

type Source string

const (
	SourceHoliday               Source = "Holiday"
	SourceEmployeeDateOverride  Source = "EmployeeDateOverride"
	SourceCustomShiftAssignment Source = "CustomShiftAssignment"
	SourceScheduleDateOverride  Source = "ScheduleDateOverride"
	SourceRecurringSchedule     Source = "RecurringSchedule"
	SourceUnscheduled           Source = "Unscheduled"
)

// EffectiveShift is the schedule that actually applies to an employee on one date.
// Start and End are absolute instants in the branch timezone; End falls on the
// next calendar day for night shifts.
type EffectiveShift struct {
	Date         string    `json:"date"`
	ShiftID      *string   `json:"shift_id,omitempty"`
	ShiftName    string    `json:"shift_name,omitempty"`
	StartTime    TimeOfDay `json:"start_time"`
	EndTime      TimeOfDay `json:"end_time"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	IsWorkDay    bool      `json:"is_work_day"`
	GraceMinutes int       `json:"grace_minutes"`
	Source       Source    `json:"source"`
	Description  string    `json:"description,omitempty"`
}
