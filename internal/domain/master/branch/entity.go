package branch

import (
	"time"
)

type Branch struct {
	ID        string
	CompanyID string
	Name      string
	Timezone  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location loads the branch timezone, falling back to UTC when it is unknown.
func (b Branch) Location() *time.Location {
	return b.LocationOr(time.UTC)
}

// LocationOr loads the branch timezone, falling back to def when it is unset
// or unknown. A nil def means UTC.
func (b Branch) LocationOr(def *time.Location) *time.Location {
	if def == nil {
		def = time.UTC
	}
	if b.Timezone == "" {
		return def
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return def
	}
	return loc
}
