package device

import "time"

// Device is a registered time-clock terminal allowed to push attendance files.
type Device struct {
	ID         string
	CompanyID  string
	BranchID   string
	Name       string
	KeyHash    string
	IsActive   bool
	LastSeenAt *time.Time
	CreatedAt  time.Time
}
