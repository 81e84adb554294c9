package matrix

import (
	"testing"

	"github.com/matryer/is"
)

func TestFromCellsRowMajor(t *testing.T) {
	is := is.New(t)
	cells := make([]bool, 30)
	cells[0] = true  // row 0 col 0
	cells[13] = true // row 1 col 3
	cells[29] = true // row 2 col 9
	m := FromCells(10, cells)
	is.Equal(m.Rows(), 3)
	is.True(m.Get(0, 0))
	is.True(m.Get(1, 3))
	is.True(m.Get(2, 9))
	is.Equal(m.Filled(), 3)
}

func TestFromCellsTruncates(t *testing.T) {
	is := is.New(t)
	cells := make([]bool, 1000)
	for i := range cells {
		cells[i] = i >= 395
	}
	m := FromCells(10, cells)
	// Only indices 395..399 survive; they are all in row 39.
	is.Equal(m.Rows(), 40)
	is.Equal(m.Filled(), 5)
	for c := 5; c < 10; c++ {
		is.True(m.Get(39, c))
	}

	short := FromCells(10, cells[:395])
	is.Equal(short.Rows(), 0)
	is.True(FromCells(10, cells[:400]).Equal(m))
}

func TestSetIgnoresOutOfRange(t *testing.T) {
	is := is.New(t)
	m := New(10)
	m.Set(-1, 0)
	m.Set(0, 10)
	m.Set(MaxRows, 0)
	is.Equal(m.Filled(), 0)
	is.Equal(m.Rows(), 0)
}

func TestFitsAndLockClearsLines(t *testing.T) {
	is := is.New(t)
	m := FromRows(10,
		"#########.",
		"#########.",
	)
	vertI := []uint16{1, 1, 1, 1}
	is.True(!m.Fits(vertI, 1, 0, 8))
	is.True(m.Fits(vertI, 1, 0, 9))
	is.True(!m.Fits(vertI, 1, 0, 10))
	is.True(!m.Fits(vertI, 1, -1, 9))
	is.True(!m.Fits(vertI, 1, MaxRows-3, 9))

	after, cleared := m.Lock(vertI, 0, 9)
	is.Equal(cleared, 2)
	is.Equal(after.Rows(), 2)
	is.Equal(after.Row(0), uint16(1<<9))
	is.Equal(after.Row(1), uint16(1<<9))
	// the original is untouched
	is.Equal(m.Rows(), 2)
	is.Equal(m.Row(0), uint16(0x1ff))
}

func TestHeightsAndString(t *testing.T) {
	is := is.New(t)
	m := FromRows(4,
		".#..",
		"##.#",
	)
	is.Equal(m.Heights(), []int{1, 2, 0, 1})
	is.Equal(m.String(), "|.#..|\n|##.#|\n+----+\n")
	is.True(m.Clone().Equal(m))
	is.Equal(FromCells(4, m.Cells()).String(), m.String())
}
