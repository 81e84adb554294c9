package shapetable

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"

	"github.com/domino14/blockfish/color"
	"github.com/domino14/blockfish/matrix"
)

// FormatVersion is bumped whenever the interchange layout changes.
const FormatVersion = 1

type tableDoc struct {
	Version  int        `json:"version"`
	Name     string     `json:"name"`
	Checksum uint64     `json:"checksum"`
	Shapes   []shapeDoc `json:"shapes"`
}

type shapeDoc struct {
	Color        string           `json:"color"`
	SpawnRow     int              `json:"spawn_row"`
	SpawnCol     int              `json:"spawn_col"`
	Orientations []orientationDoc `json:"orientations"`
}

type orientationDoc struct {
	Masks     []uint16 `json:"masks"`
	Width     int      `json:"width"`
	BoxOffset [2]int   `json:"box_offset"`
	// Indexed by Rotation; null when the rotation is a no-op.
	Transitions [numRotations]*transitionDoc `json:"transitions"`
}

type transitionDoc struct {
	To      int      `json:"to"`
	Offsets [][2]int `json:"offsets"`
}

func (st *ShapeTable) toDoc() *tableDoc {
	doc := &tableDoc{Version: FormatVersion, Name: st.name}
	for _, c := range st.colors {
		s := st.shapes[c]
		sd := shapeDoc{Color: c.String(), SpawnRow: s.spawn.Row, SpawnCol: s.spawn.Col}
		for _, o := range s.orientations {
			od := orientationDoc{
				Masks:     o.masks,
				Width:     o.width,
				BoxOffset: [2]int{o.boxOffset.Row, o.boxOffset.Col},
			}
			for r, t := range o.transitions {
				if t == nil {
					continue
				}
				td := &transitionDoc{To: t.to}
				for _, off := range t.offsets {
					td.Offsets = append(td.Offsets, [2]int{off.Row, off.Col})
				}
				od.Transitions[r] = td
			}
			sd.Orientations = append(sd.Orientations, od)
		}
		doc.Shapes = append(doc.Shapes, sd)
	}
	doc.Checksum = checksum(doc.Shapes)
	return doc
}

func checksum(shapes []shapeDoc) uint64 {
	bts, err := json.Marshal(shapes)
	if err != nil {
		// plain structs of ints and strings always marshal
		panic(err)
	}
	return xxhash.Sum64(bts)
}

// Checksum identifies the table's contents. Two tables with the same
// checksum behave identically.
func (st *ShapeTable) Checksum() uint64 {
	return st.toDoc().Checksum
}

// MarshalJSON encodes the table in its interchange form.
func (st *ShapeTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(st.toDoc())
}

// UnmarshalJSON decodes and validates a table.
func (st *ShapeTable) UnmarshalJSON(data []byte) error {
	doc := &tableDoc{}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRuleset, err)
	}
	built, err := fromDoc(doc)
	if err != nil {
		return err
	}
	*st = *built
	return nil
}

func fromDoc(doc *tableDoc) (*ShapeTable, error) {
	if doc.Version != FormatVersion {
		return nil, invalid("unsupported shape table version %d", doc.Version)
	}
	if sum := checksum(doc.Shapes); sum != doc.Checksum {
		return nil, invalid("checksum mismatch (have %x, computed %x)", doc.Checksum, sum)
	}
	if len(doc.Shapes) == 0 {
		return nil, invalid("no pieces")
	}
	st := &ShapeTable{name: doc.Name, shapes: make(map[color.Color]*Shape, len(doc.Shapes))}
	for _, sd := range doc.Shapes {
		if len(sd.Color) != 1 {
			return nil, invalid("piece color %q must be one character", sd.Color)
		}
		c, err := color.FromRune(rune(sd.Color[0]))
		if err != nil {
			return nil, invalid("piece color %q: %v", sd.Color, err)
		}
		if _, dupe := st.shapes[c]; dupe {
			return nil, invalid("piece %v defined twice", c)
		}
		n := len(sd.Orientations)
		if n == 0 {
			return nil, invalid("piece %v has no orientations", c)
		}
		s := &Shape{color: c, spawn: Offset{Row: sd.SpawnRow, Col: sd.SpawnCol}}
		for i, od := range sd.Orientations {
			if !tightMasks(od.Masks, od.Width) {
				return nil, invalid("piece %v orientation %d is malformed", c, i)
			}
			o := &Orientation{
				masks:     od.Masks,
				width:     od.Width,
				boxOffset: Offset{Row: od.BoxOffset[0], Col: od.BoxOffset[1]},
			}
			for r, td := range od.Transitions {
				if td == nil {
					continue
				}
				if td.To < 0 || td.To >= n || len(td.Offsets) == 0 {
					return nil, invalid("piece %v orientation %d has a bad transition", c, i)
				}
				t := &Transition{to: td.To}
				for _, off := range td.Offsets {
					t.offsets = append(t.offsets, Offset{Row: off[0], Col: off[1]})
				}
				o.transitions[r] = t
			}
			s.orientations = append(s.orientations, o)
		}
		if s.spawn.Row < 0 || s.spawn.Col < 0 ||
			s.spawn.Row+s.orientations[0].Height() > matrix.MaxRows {
			return nil, invalid("piece %v spawns outside the playfield", c)
		}
		st.shapes[c] = s
		st.colors = append(st.colors, c)
	}
	return st, nil
}

// tightMasks reports whether masks describe a cell box exactly width wide,
// with no cells outside it and no empty rows at its bottom or top.
func tightMasks(masks []uint16, width int) bool {
	if len(masks) == 0 || width <= 0 || width > MaxBoxSize {
		return false
	}
	if masks[0] == 0 || masks[len(masks)-1] == 0 {
		return false
	}
	var union uint16
	for _, m := range masks {
		if m>>width != 0 {
			return false
		}
		union |= m
	}
	return union&1 != 0 && union&(1<<(width-1)) != 0
}

// Write encodes the table to w.
func (st *ShapeTable) Write(w io.Writer) error {
	return json.NewEncoder(w).Encode(st.toDoc())
}

// Read decodes a table previously produced by Write.
func Read(r io.Reader) (*ShapeTable, error) {
	doc := &tableDoc{}
	if err := json.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRuleset, err)
	}
	return fromDoc(doc)
}

// Save writes the table to a file, gzipped if the name ends in .gz.
func (st *ShapeTable) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if !strings.HasSuffix(path, ".gz") {
		if err := st.Write(f); err != nil {
			return err
		}
		return f.Close()
	}
	gz := gzip.NewWriter(f)
	if err := st.Write(gz); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	return f.Close()
}

// Open loads a table written by Save.
func Open(path string) (*ShapeTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	st, err := Read(r)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Str("ruleset", st.name).Msg("loaded-shapetable")
	return st, nil
}
