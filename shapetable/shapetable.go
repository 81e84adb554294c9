// Package shapetable compiles a ruleset into lookup tables the search can
// query in constant time: tight bitmasks for every orientation, spawn
// positions, and rotation transitions with kick offsets already adjusted
// for each orientation's bounding box.
//
// A ShapeTable is never modified after it is built, so one table can be
// shared by any number of concurrently running analyses.
package shapetable

import (
	"errors"

	"github.com/domino14/blockfish/color"
)

var ErrInvalidRuleset = errors.New("invalid ruleset")

// Rotation is a rotation input.
type Rotation int

const (
	RotateCW Rotation = iota
	RotateCCW
	RotateFlip
	numRotations
)

// Rotations lists the rotation kinds in the order the search tries them.
var Rotations = [numRotations]Rotation{RotateCW, RotateCCW, RotateFlip}

// Offset is a (row, column) displacement. Rows grow upward.
type Offset struct {
	Row int
	Col int
}

// Transition is the result of rotating out of one orientation.
type Transition struct {
	to      int
	offsets []Offset
}

// To is the destination orientation.
func (t Transition) To() int { return t.to }

// Offsets lists the positional adjustments to try, in order. Each applies
// to the bottom-left corner of the piece's tight bounding box.
func (t Transition) Offsets() []Offset { return t.offsets }

// Orientation is one rotation state of a piece, reduced to its tight
// bounding box.
type Orientation struct {
	masks []uint16
	width int
	// position of the tight box inside the ruleset's drawing box
	boxOffset   Offset
	transitions [numRotations]*Transition
}

// Masks returns the row bitmasks, bottom row first. Callers must not modify
// the returned slice.
func (o *Orientation) Masks() []uint16 { return o.masks }

func (o *Orientation) Width() int  { return o.width }
func (o *Orientation) Height() int { return len(o.masks) }

// Transition returns the transition for a rotation, or nil if the rotation
// does not change this piece (for example, any rotation of an O piece).
func (o *Orientation) Transition(r Rotation) *Transition {
	return o.transitions[r]
}

// Cells lists the filled cells relative to the bottom-left corner of the
// tight bounding box.
func (o *Orientation) Cells() []Offset {
	var cells []Offset
	for r, mask := range o.masks {
		for c := 0; c < o.width; c++ {
			if mask&(1<<c) != 0 {
				cells = append(cells, Offset{Row: r, Col: c})
			}
		}
	}
	return cells
}

// Shape is the compiled form of one piece kind.
type Shape struct {
	color        color.Color
	orientations []*Orientation
	spawn        Offset
}

func (s *Shape) Color() color.Color { return s.color }

func (s *Shape) NumOrientations() int { return len(s.orientations) }

func (s *Shape) Orientation(i int) *Orientation { return s.orientations[i] }

// Spawn is where the tight box of orientation 0 starts.
func (s *Shape) Spawn() Offset { return s.spawn }

// ShapeTable maps every color in a ruleset to its compiled shape.
type ShapeTable struct {
	name   string
	colors []color.Color
	shapes map[color.Color]*Shape
}

// Name is the name of the ruleset the table was compiled from.
func (st *ShapeTable) Name() string { return st.name }

// Colors lists the colors in the table, in ruleset order.
func (st *ShapeTable) Colors() []color.Color {
	out := make([]color.Color, len(st.colors))
	copy(out, st.colors)
	return out
}

// Shape looks up a color.
func (st *ShapeTable) Shape(c color.Color) (*Shape, bool) {
	s, ok := st.shapes[c]
	return s, ok
}
