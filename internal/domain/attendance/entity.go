package attendance

import (
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used for day keys.
const DateLayout = "2006-01-02"

type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// RawRecord is one line of a time-clock export before normalization.
// Every field is kept as text so that malformed rows can be reported verbatim.
type RawRecord struct {
	Line       int    `json:"line"`
	Identifier string `json:"identifier"`
	Name       string `json:"name,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Direction  string `json:"direction,omitempty"`
	Timestamp  string `json:"timestamp"`
	DeviceID   string `json:"device_id,omitempty"`
}

// PunchEvent is a normalized clock-in/out event for a resolved employee.
type PunchEvent struct {
	EmployeeID string
	Timestamp  time.Time
	Direction  Direction
	Mode       string
	DeviceID   string
}

// WorkSession is an entry/exit interval on one local calendar day.
// ExitTime is nil for an open session (unmatched punch).
type WorkSession struct {
	EmployeeID string     `json:"employee_id"`
	Date       string     `json:"date"`
	EntryTime  time.Time  `json:"entry_time"`
	ExitTime   *time.Time `json:"exit_time,omitempty"`

	EntryDirection Direction  `json:"entry_direction"`
	ExitDirection  *Direction `json:"exit_direction,omitempty"`
}

func (s WorkSession) IsOpen() bool {
	return s.ExitTime == nil
}

// DurationMinutes returns whole minutes between entry and exit, 0 for open sessions.
func (s WorkSession) DurationMinutes() int {
	if s.ExitTime == nil {
		return 0
	}
	return int(s.ExitTime.Sub(s.EntryTime).Minutes())
}

// IdentifierDirectory maps biometric and card identifiers to employee IDs.
type IdentifierDirectory map[string]string

// Resolve looks up an identifier, ignoring surrounding whitespace.
func (d IdentifierDirectory) Resolve(identifier string) (string, bool) {
	employeeID, ok := d[strings.TrimSpace(identifier)]
	if !ok || employeeID == "" {
		return "", false
	}
	return employeeID, true
}

// StructuredEvent is the API/queue representation of a single punch.
type StructuredEvent struct {
	Identifier string `json:"identifier"`
	Timestamp  string `json:"timestamp"`
	EventType  string `json:"event_type"`
	DeviceID   string `json:"device_id,omitempty"`
}

// ToRawRecord maps a structured event onto the raw record shape. The event
// type is treated as the device mode so that direction inference applies.
func (e StructuredEvent) ToRawRecord(line int) RawRecord {
	return RawRecord{
		Line:       line,
		Identifier: e.Identifier,
		Mode:       e.EventType,
		Timestamp:  e.Timestamp,
		DeviceID:   e.DeviceID,
	}
}

// BatchFormat identifies how a raw attendance payload is encoded.
type BatchFormat string

const (
	BatchFormatDelimited   BatchFormat = "delimited"
	BatchFormatSpreadsheet BatchFormat = "xlsx"
	BatchFormatEvents      BatchFormat = "events"
)

var BatchFormatValues = []string{
	string(BatchFormatDelimited),
	string(BatchFormatSpreadsheet),
	string(BatchFormatEvents),
}

type UploadStatus string

const (
	UploadStatusPending   UploadStatus = "pending"
	UploadStatusProcessed UploadStatus = "processed"
	UploadStatusFailed    UploadStatus = "failed"
)

// Upload is a raw file pushed by a time-clock terminal, processed later.
type Upload struct {
	ID           string
	CompanyID    string
	BranchID     string
	DeviceID     string
	Format       BatchFormat
	Payload      []byte
	Status       UploadStatus
	RunID        *string
	ErrorMessage *string
	CreatedAt    time.Time
	ProcessedAt  *time.Time
}
