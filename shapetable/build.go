package shapetable

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/domino14/blockfish/color"
	"github.com/domino14/blockfish/matrix"
	"github.com/domino14/blockfish/ruleset"
)

// MaxBoxSize bounds the drawing box a ruleset may use for a piece.
const MaxBoxSize = 8

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRuleset, fmt.Sprintf(format, args...))
}

// Build compiles a ruleset. It fails with ErrInvalidRuleset if the ruleset
// is internally inconsistent; no partial table is ever returned.
func Build(rs *ruleset.Ruleset) (*ShapeTable, error) {
	if rs == nil || len(rs.Pieces) == 0 {
		return nil, invalid("no pieces")
	}
	st := &ShapeTable{
		name:   rs.Name,
		shapes: make(map[color.Color]*Shape, len(rs.Pieces)),
	}
	for idx := range rs.Pieces {
		p := &rs.Pieces[idx]
		shape, err := buildShape(rs, p)
		if err != nil {
			return nil, err
		}
		if _, dupe := st.shapes[shape.color]; dupe {
			return nil, invalid("piece %v defined twice", shape.color)
		}
		st.shapes[shape.color] = shape
		st.colors = append(st.colors, shape.color)
	}
	log.Debug().Str("ruleset", rs.Name).Int("pieces", len(st.colors)).Msg("built-shapetable")
	return st, nil
}

func buildShape(rs *ruleset.Ruleset, p *ruleset.Piece) (*Shape, error) {
	if utf8.RuneCountInString(p.Color) != 1 {
		return nil, invalid("piece color %q must be one character", p.Color)
	}
	r, _ := utf8.DecodeRuneInString(p.Color)
	c, err := color.FromRune(r)
	if err != nil {
		return nil, invalid("piece color %q: %v", p.Color, err)
	}
	if len(p.Shapes) == 0 {
		return nil, invalid("piece %v has no orientations", c)
	}
	boxSize := len(p.Shapes[0])
	if boxSize == 0 || boxSize > MaxBoxSize {
		return nil, invalid("piece %v box size %d out of range", c, boxSize)
	}

	shape := &Shape{color: c}
	cellCount := -1
	for i, drawing := range p.Shapes {
		o, n, err := parseDrawing(drawing, boxSize)
		if err != nil {
			return nil, invalid("piece %v orientation %d: %v", c, i, err)
		}
		if cellCount >= 0 && n != cellCount {
			return nil, invalid("piece %v orientation %d has %d cells, expected %d", c, i, n, cellCount)
		}
		cellCount = n
		shape.orientations = append(shape.orientations, o)
	}

	// The drawing box's top row sits at SpawnRow.
	o0 := shape.orientations[0]
	shape.spawn = Offset{
		Row: p.SpawnRow - (boxSize - 1) + o0.boxOffset.Row,
		Col: p.SpawnCol + o0.boxOffset.Col,
	}
	if shape.spawn.Row < 0 || shape.spawn.Col < 0 ||
		shape.spawn.Row+o0.Height() > matrix.MaxRows {
		return nil, invalid("piece %v spawns outside the playfield", c)
	}

	var kicks ruleset.KickTable
	if p.Kicks != "" {
		var ok bool
		kicks, ok = rs.Kicks[p.Kicks]
		if !ok {
			return nil, invalid("piece %v refers to unknown kick table %q", c, p.Kicks)
		}
		if err := checkKickTable(kicks, len(shape.orientations)); err != nil {
			return nil, invalid("piece %v kick table %q: %v", c, p.Kicks, err)
		}
	}
	n := len(shape.orientations)
	for from, o := range shape.orientations {
		for _, rot := range Rotations {
			to := rotate(from, rot, n)
			if to == from {
				continue
			}
			o.transitions[rot] = makeTransition(o, shape.orientations[to], to,
				kicks[ruleset.TransitionKey(from, to)])
		}
	}
	return shape, nil
}

func rotate(from int, rot Rotation, n int) int {
	switch rot {
	case RotateCW:
		return (from + 1) % n
	case RotateCCW:
		return (from + n - 1) % n
	case RotateFlip:
		return (from + 2) % n
	}
	return from
}

func makeTransition(from, to *Orientation, toIdx int, kicks [][2]int) *Transition {
	if len(kicks) == 0 {
		kicks = [][2]int{{0, 0}}
	}
	t := &Transition{to: toIdx, offsets: make([]Offset, len(kicks))}
	for i, k := range kicks {
		// kicks are (dx, dy)
		t.offsets[i] = Offset{
			Row: to.boxOffset.Row - from.boxOffset.Row + k[1],
			Col: to.boxOffset.Col - from.boxOffset.Col + k[0],
		}
	}
	return t
}

func checkKickTable(kt ruleset.KickTable, n int) error {
	for key, offsets := range kt {
		parts := strings.Split(key, ">")
		if len(parts) != 2 {
			return fmt.Errorf("bad transition %q", key)
		}
		from, err1 := strconv.Atoi(parts[0])
		to, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return fmt.Errorf("bad transition %q", key)
		}
		if from < 0 || to < 0 || from >= n || to >= n {
			return fmt.Errorf("transition %q refers to a missing orientation", key)
		}
		if len(offsets) == 0 {
			return fmt.Errorf("transition %q has no offsets", key)
		}
	}
	return nil
}

// parseDrawing turns a top-row-first picture into a tight orientation and
// returns the number of filled cells.
func parseDrawing(drawing []string, boxSize int) (*Orientation, int, error) {
	if len(drawing) != boxSize {
		return nil, 0, fmt.Errorf("has %d rows, expected %d", len(drawing), boxSize)
	}
	box := make([]uint16, boxSize) // bottom row first
	count := 0
	for i, line := range drawing {
		if utf8.RuneCountInString(line) != boxSize {
			return nil, 0, fmt.Errorf("row %d is not %d wide", i, boxSize)
		}
		row := boxSize - 1 - i
		col := 0
		for _, ch := range line {
			if ch != '.' && ch != ' ' {
				box[row] |= 1 << col
				count++
			}
			col++
		}
	}
	if count == 0 {
		return nil, 0, fmt.Errorf("has no cells")
	}
	lo, hi := -1, -1
	var union uint16
	for r, m := range box {
		if m == 0 {
			continue
		}
		if lo < 0 {
			lo = r
		}
		hi = r
		union |= m
	}
	left := 0
	for union&(1<<left) == 0 {
		left++
	}
	right := boxSize - 1
	for union&(1<<right) == 0 {
		right--
	}
	o := &Orientation{
		width:     right - left + 1,
		boxOffset: Offset{Row: lo, Col: left},
	}
	for r := lo; r <= hi; r++ {
		o.masks = append(o.masks, box[r]>>left)
	}
	return o, count, nil
}
