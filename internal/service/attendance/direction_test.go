package attendance

import (
	"testing"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectionMapper_FromMode(t *testing.T) {
	m, err := NewDirectionMapper(nil)
	require.NoError(t, err)

	cases := []struct {
		mode string
		want attendance.Direction
	}{
		{"exit", attendance.DirectionOut},
		{"Clock-Out", attendance.DirectionOut},
		{"check_out", attendance.DirectionOut},
		{"OUT", attendance.DirectionOut},
		{"Overtime Out", attendance.DirectionOut},
		{"FP", attendance.DirectionIn},
		{"card", attendance.DirectionIn},
		{"clockin", attendance.DirectionIn},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, m.FromMode(c.mode), "mode %q", c.mode)
	}
}

func TestDirectionMapper_Overrides(t *testing.T) {
	overrides, err := ParseDirectionOverrides("pulang = out, Break-In=in, exit=in")
	require.NoError(t, err)

	m, err := NewDirectionMapper(overrides)
	require.NoError(t, err)

	assert.Equal(t, attendance.DirectionOut, m.FromMode("Pulang"))
	assert.Equal(t, attendance.DirectionIn, m.FromMode("break in"))
	assert.Equal(t, attendance.DirectionIn, m.FromMode("exit"), "override replaces the default vocabulary")
}

func TestDirectionMapper_InvalidOverride(t *testing.T) {
	_, err := NewDirectionMapper(map[string]string{"lunch": "sideways"})
	assert.Error(t, err)

	_, err = ParseDirectionOverrides("lunch")
	assert.Error(t, err)
}

func TestDirectionMapper_Resolve(t *testing.T) {
	m, err := NewDirectionMapper(nil)
	require.NoError(t, err)

	dir, _, ok := m.Resolve("O", "FP")
	assert.True(t, ok)
	assert.Equal(t, attendance.DirectionOut, dir, "explicit field wins over mode")

	dir, _, ok = m.Resolve("", "exit")
	assert.True(t, ok)
	assert.Equal(t, attendance.DirectionOut, dir)

	dir, _, ok = m.Resolve("maybe", "exit")
	assert.True(t, ok)
	assert.Equal(t, attendance.DirectionOut, dir, "unknown explicit label falls back to the mode")

	dir, _, ok = m.Resolve("Clock Out", "")
	assert.True(t, ok)
	assert.Equal(t, attendance.DirectionOut, dir, "unknown explicit label is read as a mode")

	_, reason, ok := m.Resolve(" ", "")
	assert.False(t, ok)
	assert.Equal(t, attendance.ReasonMissingDirection, reason)
}

func TestDirectionMapper_OverridesApplyToExplicitField(t *testing.T) {
	m, err := NewDirectionMapper(map[string]string{"C/In": "in", "C/Out": "out", "OT-In": "in"})
	require.NoError(t, err)

	cases := []struct {
		explicit string
		want     attendance.Direction
	}{
		{"C/In", attendance.DirectionIn},
		{"c/out", attendance.DirectionOut},
		{"OT-In", attendance.DirectionIn},
		{"pulang", attendance.DirectionOut},
	}
	for _, c := range cases {
		dir, ok := m.FromExplicit(c.explicit)
		require.True(t, ok, "explicit %q", c.explicit)
		assert.Equal(t, c.want, dir, "explicit %q", c.explicit)
	}
}
