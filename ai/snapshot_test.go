package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/blockfish/color"
	"github.com/domino14/blockfish/matrix"
)

func TestParseSnapshot(t *testing.T) {
	field := make([]bool, 12)
	field[0], field[11] = true, true
	s, err := ParseSnapshot("T", "IJL", field)
	require.NoError(t, err)
	assert.Equal(t, color.T, s.Hold())
	assert.Equal(t, []color.Color{color.I, color.J, color.L}, s.Queue())
	m := s.Matrix()
	assert.True(t, m.Get(0, 0))
	assert.True(t, m.Get(1, 1))
	assert.Equal(t, 2, m.Filled())

	s, err = ParseSnapshot("", "", nil)
	require.NoError(t, err)
	assert.Equal(t, color.None, s.Hold())
	assert.Empty(t, s.Queue())

	for _, bad := range [][2]string{{"x", "I"}, {"TT", "I"}, {"", "IqJ"}} {
		_, err := ParseSnapshot(bad[0], bad[1], nil)
		assert.True(t, errors.Is(err, color.ErrInvalidColor), "%v", bad)
	}
}

func TestSnapshotFromHostIsLenient(t *testing.T) {
	field := make([]bool, matrix.MaxCells+50)
	for i := range field {
		field[i] = i >= matrix.MaxCells
	}
	field[3] = true
	s := SnapshotFromHost("?", "I-J?L", field)
	assert.Equal(t, color.None, s.Hold())
	assert.Equal(t, "IJL", color.QueueString(s.Queue()))
	assert.Equal(t, 1, s.Matrix().Filled())
}

func TestSnapshotIsImmutable(t *testing.T) {
	q := []color.Color{color.S, color.Z}
	m := matrix.New(10)
	s := NewSnapshot(color.None, q, m)
	q[0] = color.O
	m.Set(0, 0)
	got := s.Queue()
	got[1] = color.O
	s.Matrix().Set(5, 5)

	assert.Equal(t, []color.Color{color.S, color.Z}, s.Queue())
	assert.Equal(t, 0, s.Matrix().Filled())
}
