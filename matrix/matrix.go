// Package matrix holds the playfield occupancy grid. Row 0 is the bottom row;
// each row is a bitmask with bit c set when column c is filled.
package matrix

import (
	"fmt"
	"math/bits"
	"strings"
)

const (
	// MaxCells is the most cells a host-supplied grid may describe. Anything
	// past it is dropped without error.
	MaxCells = 400
	// MaxRows is the height of the playfield. Pieces may not extend past it.
	MaxRows = 40
	// MaxCols is the widest grid a row bitmask can hold.
	MaxCols = 16
	// StandardCols is the width used by hosts.
	StandardCols = 10
)

// Matrix is a fixed-width occupancy grid. Trailing empty rows are never
// stored, so Rows() is the stack height.
type Matrix struct {
	cols int
	rows []uint16
}

// New creates an empty matrix with the given number of columns.
func New(cols int) *Matrix {
	if cols <= 0 || cols > MaxCols {
		panic(fmt.Sprintf("matrix width %d out of range", cols))
	}
	return &Matrix{cols: cols}
}

// FromCells builds a matrix from a flat, row-major cell list, starting at
// the bottom row. Index i maps to row i/cols, column i%cols. Indices at or
// past MaxCells are ignored.
func FromCells(cols int, cells []bool) *Matrix {
	m := New(cols)
	n := min(len(cells), MaxCells)
	for i := 0; i < n; i++ {
		if cells[i] {
			m.Set(i/cols, i%cols)
		}
	}
	return m
}

// FromRows builds a matrix from a picture, top row first, where '.' or ' '
// is empty and anything else is filled. Mostly useful in tests.
func FromRows(cols int, picture ...string) *Matrix {
	m := New(cols)
	for i, line := range picture {
		row := len(picture) - 1 - i
		for col, ch := range line {
			if ch != '.' && ch != ' ' {
				m.Set(row, col)
			}
		}
	}
	return m
}

func (m *Matrix) Cols() int {
	return m.cols
}

// Rows returns the number of rows up to and including the highest filled
// cell.
func (m *Matrix) Rows() int {
	return len(m.rows)
}

// Row returns the bitmask for a row; rows above the stack are empty.
func (m *Matrix) Row(r int) uint16 {
	if r < 0 || r >= len(m.rows) {
		return 0
	}
	return m.rows[r]
}

func (m *Matrix) full() uint16 {
	return uint16(1)<<m.cols - 1
}

// Set fills a cell. Out-of-range coordinates are ignored.
func (m *Matrix) Set(row, col int) {
	if row < 0 || row >= MaxRows || col < 0 || col >= m.cols {
		return
	}
	for len(m.rows) <= row {
		m.rows = append(m.rows, 0)
	}
	m.rows[row] |= 1 << col
}

// Get reports whether a cell is filled. Cells outside the grid read as
// empty; use Fits for collision tests.
func (m *Matrix) Get(row, col int) bool {
	if col < 0 || col >= m.cols {
		return false
	}
	return m.Row(row)&(1<<col) != 0
}

// Fits reports whether a piece with the given row masks (bottom row first,
// each at most width wide) can sit with its bottom-left corner at (row, col)
// without leaving the grid or overlapping filled cells.
func (m *Matrix) Fits(masks []uint16, width, row, col int) bool {
	if col < 0 || col+width > m.cols || row < 0 || row+len(masks) > MaxRows {
		return false
	}
	for i, mask := range masks {
		if m.Row(row+i)&(mask<<col) != 0 {
			return false
		}
	}
	return true
}

// Lock returns a new matrix with the piece placed at (row, col) and any
// completed rows removed, along with the number of rows cleared. The caller
// must have checked Fits.
func (m *Matrix) Lock(masks []uint16, row, col int) (*Matrix, int) {
	top := max(len(m.rows), row+len(masks))
	placed := make([]uint16, top)
	copy(placed, m.rows)
	for i, mask := range masks {
		placed[row+i] |= mask << col
	}
	full := m.full()
	out := &Matrix{cols: m.cols, rows: placed[:0]}
	cleared := 0
	for _, r := range placed {
		if r == full {
			cleared++
			continue
		}
		out.rows = append(out.rows, r)
	}
	out.trim()
	return out, cleared
}

func (m *Matrix) trim() {
	n := len(m.rows)
	for n > 0 && m.rows[n-1] == 0 {
		n--
	}
	m.rows = m.rows[:n]
}

// Clone returns an independent copy.
func (m *Matrix) Clone() *Matrix {
	rows := make([]uint16, len(m.rows))
	copy(rows, m.rows)
	return &Matrix{cols: m.cols, rows: rows}
}

// Equal reports whether two matrices have the same width and cells.
func (m *Matrix) Equal(o *Matrix) bool {
	if m.cols != o.cols || len(m.rows) != len(o.rows) {
		return false
	}
	for i := range m.rows {
		if m.rows[i] != o.rows[i] {
			return false
		}
	}
	return true
}

// Heights returns the height of each column: one past its highest filled
// cell, or 0 when the column is empty.
func (m *Matrix) Heights() []int {
	h := make([]int, m.cols)
	for r := len(m.rows) - 1; r >= 0; r-- {
		for c := 0; c < m.cols; c++ {
			if h[c] == 0 && m.rows[r]&(1<<c) != 0 {
				h[c] = r + 1
			}
		}
	}
	return h
}

// Filled counts filled cells.
func (m *Matrix) Filled() int {
	n := 0
	for _, r := range m.rows {
		n += bits.OnesCount16(r)
	}
	return n
}

// Cells flattens the matrix back into row-major order, bottom row first.
func (m *Matrix) Cells() []bool {
	cells := make([]bool, len(m.rows)*m.cols)
	for r, bitsRow := range m.rows {
		for c := 0; c < m.cols; c++ {
			cells[r*m.cols+c] = bitsRow&(1<<c) != 0
		}
	}
	return cells
}

// String draws the matrix top row first.
func (m *Matrix) String() string {
	var sb strings.Builder
	for r := len(m.rows) - 1; r >= 0; r-- {
		sb.WriteByte('|')
		for c := 0; c < m.cols; c++ {
			if m.rows[r]&(1<<c) != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteString("|\n")
	}
	sb.WriteByte('+')
	sb.WriteString(strings.Repeat("-", m.cols))
	sb.WriteString("+\n")
	return sb.String()
}
