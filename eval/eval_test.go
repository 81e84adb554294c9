package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/domino14/blockfish/matrix"
)

func TestMeasureEmpty(t *testing.T) {
	f := Measure(matrix.New(10))
	assert.Equal(t, Features{}, f)
}

func TestMeasureHolesAndWells(t *testing.T) {
	m := matrix.FromRows(10,
		"#########.",
		"#.#######.",
		"#########.",
	)
	f := Measure(m)
	assert.Equal(t, 3, f.Height)
	assert.Equal(t, 1, f.Holes)
	assert.Equal(t, 1, f.RowsWithHoles)
	// 4 empty cells -> 1 piece, plus one buried row
	assert.Equal(t, 2, f.PieceEstimate)
	// column 9 is three deep against the left neighbour and the wall
	assert.Equal(t, 1, f.IDependencies)
}

func TestWellsNeedBothSides(t *testing.T) {
	// a lone tall column does not make its neighbours wells against the
	// open side
	m := matrix.FromRows(10,
		"#.........",
		"#.........",
		"#.........",
	)
	assert.Equal(t, 0, Measure(m).IDependencies)
}

func TestWeightedScore(t *testing.T) {
	m := matrix.FromRows(10,
		"#########.",
		"#.#######.",
		"#########.",
	)
	w := NewWeighted(Parameters{RowFactor: 1, PieceEstimateFactor: 10, IDependencyFactor: 100, PiecePenalty: 1000})
	assert.Equal(t, int64(3+20+100+2000), w.Score(m, 2))

	d := NewWeighted(DefaultParameters())
	assert.Less(t, d.Score(matrix.New(10), 1), d.Score(m, 1))
}
