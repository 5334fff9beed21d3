package attendance

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
)

// defaultOutModes lists the device mode labels that mean the employee is leaving.
// Any other mode is read as an entry.
var defaultOutModes = []string{
	"exit",
	"out",
	"clockout",
	"checkout",
	"signout",
	"breakout",
	"overtimeout",
}

// explicitDirections are the values accepted in a dedicated in/out column.
var explicitDirections = map[string]attendance.Direction{
	"in":       attendance.DirectionIn,
	"i":        attendance.DirectionIn,
	"0":        attendance.DirectionIn,
	"checkin":  attendance.DirectionIn,
	"masuk":    attendance.DirectionIn,
	"out":      attendance.DirectionOut,
	"o":        attendance.DirectionOut,
	"1":        attendance.DirectionOut,
	"checkout": attendance.DirectionOut,
	"pulang":   attendance.DirectionOut,
}

// DirectionMapper turns explicit direction fields and free-text device modes
// into a Direction. Overrides take precedence over the built-in vocabulary in
// both tables.
type DirectionMapper struct {
	explicit map[string]attendance.Direction
	modes    map[string]attendance.Direction
}

// NewDirectionMapper builds the explicit and mode tables from the defaults
// plus overrides, where overrides maps a label to "in" or "out".
func NewDirectionMapper(overrides map[string]string) (*DirectionMapper, error) {
	m := &DirectionMapper{
		explicit: make(map[string]attendance.Direction, len(explicitDirections)+len(overrides)),
		modes:    make(map[string]attendance.Direction, len(defaultOutModes)+len(overrides)),
	}
	for label, dir := range explicitDirections {
		m.explicit[label] = dir
	}
	for _, mode := range defaultOutModes {
		m.modes[mode] = attendance.DirectionOut
	}
	for label, value := range overrides {
		dir, ok := explicitDirections[normalizeLabel(value)]
		if !ok {
			return nil, fmt.Errorf("direction override %q: unknown direction %q", label, value)
		}
		m.explicit[normalizeLabel(label)] = dir
		m.modes[normalizeLabel(label)] = dir
	}
	return m, nil
}

// ParseDirectionOverrides reads "mode=dir,mode=dir" pairs as found in config.
func ParseDirectionOverrides(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		mode, dir, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(mode) == "" {
			return nil, fmt.Errorf("invalid direction override %q, expected mode=in|out", pair)
		}
		out[strings.TrimSpace(mode)] = strings.TrimSpace(dir)
	}
	return out, nil
}

// FromExplicit parses a dedicated direction field.
func (m *DirectionMapper) FromExplicit(value string) (attendance.Direction, bool) {
	dir, ok := m.explicit[normalizeLabel(value)]
	return dir, ok
}

// FromMode infers the direction from a device mode label.
func (m *DirectionMapper) FromMode(mode string) attendance.Direction {
	if dir, ok := m.modes[normalizeLabel(mode)]; ok {
		return dir
	}
	return attendance.DirectionIn
}

// Resolve prefers the explicit field and falls back to the mode table. An
// unrecognised explicit label is read through the mode table when the record
// has no mode, so the punch is kept and positional pairing stays aligned.
// It returns a normalization reason only when both fields are blank.
func (m *DirectionMapper) Resolve(explicit, mode string) (attendance.Direction, attendance.NormalizationReason, bool) {
	if strings.TrimSpace(explicit) != "" {
		if dir, ok := m.FromExplicit(explicit); ok {
			return dir, "", true
		}
		if strings.TrimSpace(mode) == "" {
			return m.FromMode(explicit), "", true
		}
		return m.FromMode(mode), "", true
	}
	if strings.TrimSpace(mode) == "" {
		return "", attendance.ReasonMissingDirection, false
	}
	return m.FromMode(mode), "", true
}

// normalizeLabel lowercases and strips spaces, dashes and underscores so
// "Clock-Out" and "clock_out" both match "clockout".
func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}
