// Package movegen finds every distinct resting placement a piece can reach
// from its spawn position, along with the shortest input sequence that gets
// it there.
package movegen

import (
	"github.com/domino14/blockfish/color"
	"github.com/domino14/blockfish/input"
	"github.com/domino14/blockfish/matrix"
	"github.com/domino14/blockfish/shapetable"
)

// Placement is a locked position for a piece. Row and Col locate the
// bottom-left corner of the orientation's tight bounding box.
type Placement struct {
	Color       color.Color
	Orientation int
	Row         int
	Col         int
	// Inputs realizes the placement from spawn and always ends in a hard
	// drop. It does not include a hold.
	Inputs []input.Input

	orient *shapetable.Orientation
}

// Apply locks the placement into m, returning the resulting matrix and the
// number of rows it cleared. m is not modified.
func (p *Placement) Apply(m *matrix.Matrix) (*matrix.Matrix, int) {
	return m.Lock(p.orient.Masks(), p.Row, p.Col)
}

// Cells lists the absolute (row, column) cells the piece occupies.
func (p *Placement) Cells() []shapetable.Offset {
	cells := p.orient.Cells()
	for i := range cells {
		cells[i].Row += p.Row
		cells[i].Col += p.Col
	}
	return cells
}

type state struct {
	orientation int
	row         int
	col         int
}

type placementKey struct {
	canonical int
	row       int
	col       int
}

type node struct {
	st     state
	parent int
	in     input.Input
}

// Generator searches placements. A Generator keeps scratch space between
// calls and is not safe for concurrent use; give each goroutine its own.
type Generator struct {
	table     *shapetable.ShapeTable
	canonical map[color.Color][]int

	nodes   []node
	visited map[state]struct{}
	found   map[placementKey]struct{}
}

// NewGenerator creates a generator for pieces from a shape table.
func NewGenerator(table *shapetable.ShapeTable) *Generator {
	gen := &Generator{
		table:     table,
		canonical: make(map[color.Color][]int),
		visited:   make(map[state]struct{}),
		found:     make(map[placementKey]struct{}),
	}
	for _, c := range table.Colors() {
		shape, _ := table.Shape(c)
		gen.canonical[c] = canonicalOrientations(shape)
	}
	return gen
}

// canonicalOrientations maps each orientation to the first orientation
// that occupies exactly the same cells, so that for example the two
// horizontal S orientations produce one placement, not two.
func canonicalOrientations(shape *shapetable.Shape) []int {
	n := shape.NumOrientations()
	canon := make([]int, n)
	for i := 0; i < n; i++ {
		canon[i] = i
		oi := shape.Orientation(i)
		for j := 0; j < i; j++ {
			oj := shape.Orientation(j)
			if oi.Width() == oj.Width() && sameMasks(oi.Masks(), oj.Masks()) {
				canon[i] = canon[j]
				break
			}
		}
	}
	return canon
}

func sameMasks(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var moveInputs = []input.Input{
	input.Left, input.Right, input.CW, input.CCW, input.Flip, input.SoftDrop,
}

// GenAll returns every distinct placement of c on m, in breadth-first
// discovery order, so each placement carries a shortest input sequence.
// It returns nil if the piece cannot spawn.
func (gen *Generator) GenAll(m *matrix.Matrix, c color.Color) []Placement {
	shape, ok := gen.table.Shape(c)
	if !ok {
		return nil
	}
	canon := gen.canonical[c]
	gen.reset()

	spawn := state{orientation: 0, row: shape.Spawn().Row, col: shape.Spawn().Col}
	if !gen.fits(m, shape, spawn) {
		return nil
	}
	gen.push(spawn, -1, 0)

	var plays []Placement
	for head := 0; head < len(gen.nodes); head++ {
		cur := gen.nodes[head].st

		landed := gen.drop(m, shape, cur)
		key := placementKey{canonical: canon[landed.orientation], row: landed.row, col: landed.col}
		if _, seen := gen.found[key]; !seen {
			gen.found[key] = struct{}{}
			plays = append(plays, Placement{
				Color:       c,
				Orientation: landed.orientation,
				Row:         landed.row,
				Col:         landed.col,
				Inputs:      append(gen.path(head), input.HardDrop),
				orient:      shape.Orientation(landed.orientation),
			})
		}

		for _, in := range moveInputs {
			next, ok := gen.step(m, shape, cur, in)
			if !ok {
				continue
			}
			if _, seen := gen.visited[next]; seen {
				continue
			}
			gen.push(next, head, in)
		}
	}
	return plays
}

func (gen *Generator) reset() {
	gen.nodes = gen.nodes[:0]
	clear(gen.visited)
	clear(gen.found)
}

func (gen *Generator) push(st state, parent int, in input.Input) {
	gen.visited[st] = struct{}{}
	gen.nodes = append(gen.nodes, node{st: st, parent: parent, in: in})
}

func (gen *Generator) path(idx int) []input.Input {
	var rev []input.Input
	for ; gen.nodes[idx].parent >= 0; idx = gen.nodes[idx].parent {
		rev = append(rev, gen.nodes[idx].in)
	}
	out := make([]input.Input, len(rev), len(rev)+2)
	for i, in := range rev {
		out[len(rev)-1-i] = in
	}
	return out
}

func (gen *Generator) fits(m *matrix.Matrix, shape *shapetable.Shape, st state) bool {
	o := shape.Orientation(st.orientation)
	return m.Fits(o.Masks(), o.Width(), st.row, st.col)
}

func (gen *Generator) drop(m *matrix.Matrix, shape *shapetable.Shape, st state) state {
	for {
		below := st
		below.row--
		if !gen.fits(m, shape, below) {
			return st
		}
		st = below
	}
}

func (gen *Generator) step(m *matrix.Matrix, shape *shapetable.Shape, st state, in input.Input) (state, bool) {
	switch in {
	case input.Left, input.Right:
		next := st
		if in == input.Left {
			next.col--
		} else {
			next.col++
		}
		return next, gen.fits(m, shape, next)
	case input.SoftDrop:
		next := gen.drop(m, shape, st)
		return next, next != st
	case input.CW, input.CCW, input.Flip:
		rot := shapetable.RotateCW
		switch in {
		case input.CCW:
			rot = shapetable.RotateCCW
		case input.Flip:
			rot = shapetable.RotateFlip
		}
		tr := shape.Orientation(st.orientation).Transition(rot)
		if tr == nil {
			return st, false
		}
		for _, off := range tr.Offsets() {
			next := state{orientation: tr.To(), row: st.row + off.Row, col: st.col + off.Col}
			if gen.fits(m, shape, next) {
				return next, true
			}
		}
	}
	return st, false
}
