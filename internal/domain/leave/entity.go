package leave

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusSanctioned Status = "sanctioned"
	StatusRejected   Status = "rejected"
)

// Record is the leave state of one employee on one calendar date.
type Record struct {
	ID         string
	EmployeeID string
	Date       string
	Status     Status
	LeaveType  string
	CreatedAt  time.Time
}

func (r Record) IsSanctioned() bool {
	return r.Status == StatusSanctioned
}

// Book indexes leave records by employee and date. When several records
// exist for the same day the sanctioned one wins.
type Book map[string]Record

func bookKey(employeeID, date string) string {
	return employeeID + "|" + date
}

func NewBook(records []Record) Book {
	b := make(Book, len(records))
	for _, r := range records {
		key := bookKey(r.EmployeeID, r.Date)
		if existing, ok := b[key]; ok && existing.IsSanctioned() {
			continue
		}
		b[key] = r
	}
	return b
}

// Lookup returns the leave record for the employee on date, if any.
func (b Book) Lookup(employeeID, date string) (Record, bool) {
	r, ok := b[bookKey(employeeID, date)]
	return r, ok
}
