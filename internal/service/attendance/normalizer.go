package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
)

// DefaultTimestampLayouts are tried, in order, for timestamps without a zone.
// RFC3339 values are always accepted first and keep their own offset.
var DefaultTimestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
}

// Normalizer converts raw records into punch events. It holds no state
// between calls and is safe for concurrent use.
type Normalizer struct {
	directions *DirectionMapper
	location   *time.Location
	layouts    []string
}

// NewNormalizer returns a normalizer that reads naive timestamps in loc.
// Empty layouts fall back to DefaultTimestampLayouts.
func NewNormalizer(directions *DirectionMapper, loc *time.Location, layouts []string) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	if len(layouts) == 0 {
		layouts = DefaultTimestampLayouts
	}
	return &Normalizer{directions: directions, location: loc, layouts: layouts}
}

// Normalize resolves every record it can. Records that cannot be used are
// skipped and reported; the returned events keep input order.
func (n *Normalizer) Normalize(records []attendance.RawRecord, dir attendance.IdentifierDirectory) ([]attendance.PunchEvent, []attendance.NormalizationError) {
	events := make([]attendance.PunchEvent, 0, len(records))
	var rejected []attendance.NormalizationError

	reject := func(rec attendance.RawRecord, reason attendance.NormalizationReason, detail string) {
		rejected = append(rejected, attendance.NormalizationError{Reason: reason, Detail: detail, RawRecord: rec})
	}

	for _, rec := range records {
		identifier := strings.TrimSpace(rec.Identifier)
		if identifier == "" {
			reject(rec, attendance.ReasonMissingIdentifier, "")
			continue
		}

		raw := strings.TrimSpace(rec.Timestamp)
		if raw == "" {
			reject(rec, attendance.ReasonMissingTimestamp, "")
			continue
		}
		ts, ok := n.parseTimestamp(raw)
		if !ok {
			reject(rec, attendance.ReasonInvalidTimestamp, raw)
			continue
		}

		direction, reason, ok := n.directions.Resolve(rec.Direction, rec.Mode)
		if !ok {
			reject(rec, reason, rec.Direction)
			continue
		}

		employeeID, ok := dir.Resolve(identifier)
		if !ok {
			reject(rec, attendance.ReasonUnresolvedIdentifier, identifier)
			continue
		}

		events = append(events, attendance.PunchEvent{
			EmployeeID: employeeID,
			Timestamp:  ts,
			Direction:  direction,
			Mode:       strings.TrimSpace(rec.Mode),
			DeviceID:   strings.TrimSpace(rec.DeviceID),
		})
	}

	return events, rejected
}

// Span returns the earliest and latest parseable timestamps in records,
// truncated to their local calendar dates.
func (n *Normalizer) Span(records []attendance.RawRecord) (time.Time, time.Time, bool) {
	var first, last time.Time
	found := false
	for _, rec := range records {
		ts, ok := n.parseTimestamp(strings.TrimSpace(rec.Timestamp))
		if !ok {
			continue
		}
		if !found || ts.Before(first) {
			first = ts
		}
		if !found || ts.After(last) {
			last = ts
		}
		found = true
	}
	if !found {
		return time.Time{}, time.Time{}, false
	}
	return localDate(first.In(n.location)), localDate(last.In(n.location)), true
}

func localDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (n *Normalizer) parseTimestamp(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, true
	}
	for _, layout := range n.layouts {
		if t, err := time.ParseInLocation(layout, raw, n.location); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
