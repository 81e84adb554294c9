package shapetable

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/blockfish/color"
	"github.com/domino14/blockfish/ruleset"
)

func guideline(t *testing.T) *ShapeTable {
	st, err := Build(ruleset.Guideline())
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func TestBuildGuideline(t *testing.T) {
	is := is.New(t)
	st := guideline(t)
	is.Equal(st.Colors(), color.All())

	i, ok := st.Shape(color.I)
	is.True(ok)
	is.Equal(i.NumOrientations(), 4)
	flat := i.Orientation(0)
	is.Equal(flat.Masks(), []uint16{0xf})
	is.Equal(flat.Width(), 4)
	is.Equal(i.Spawn(), Offset{Row: 20, Col: 3})
	vert := i.Orientation(1)
	is.Equal(vert.Masks(), []uint16{1, 1, 1, 1})
	is.Equal(vert.Height(), 4)

	// Rotating a flat I clockwise moves its tight box from box column 0,
	// box row 2 to box column 2, box row 0.
	tr := flat.Transition(RotateCW)
	is.Equal(tr.To(), 1)
	is.Equal(tr.Offsets()[0], Offset{Row: -2, Col: 2})
	// second SRS I kick for 0>1 is (-2, 0)
	is.Equal(tr.Offsets()[1], Offset{Row: -2, Col: 0})

	o, ok := st.Shape(color.O)
	is.True(ok)
	is.Equal(o.NumOrientations(), 1)
	is.True(o.Orientation(0).Transition(RotateCW) == nil)
	is.True(o.Orientation(0).Transition(RotateFlip) == nil)

	tShape, _ := st.Shape(color.T)
	is.Equal(tShape.Orientation(0).Masks(), []uint16{0x7, 0x2})
	is.Equal(len(tShape.Orientation(0).Cells()), 4)
	is.Equal(tShape.Orientation(0).Transition(RotateFlip).To(), 2)
	is.Equal(tShape.Orientation(3).Transition(RotateCW).To(), 0)
	is.Equal(tShape.Orientation(0).Transition(RotateCCW).To(), 3)
}

func TestBuildRejectsInconsistentRulesets(t *testing.T) {
	mutations := map[string]func(rs *ruleset.Ruleset){
		"no pieces":           func(rs *ruleset.Ruleset) { rs.Pieces = nil },
		"no orientations":     func(rs *ruleset.Ruleset) { rs.Pieces[2].Shapes = nil },
		"bad color":           func(rs *ruleset.Ruleset) { rs.Pieces[0].Color = "Q" },
		"long color":          func(rs *ruleset.Ruleset) { rs.Pieces[0].Color = "II" },
		"duplicate color":     func(rs *ruleset.Ruleset) { rs.Pieces[1].Color = "I" },
		"empty orientation":   func(rs *ruleset.Ruleset) { rs.Pieces[5].Shapes[1] = []string{"...", "...", "..."} },
		"cell count mismatch": func(rs *ruleset.Ruleset) { rs.Pieces[5].Shapes[1] = []string{".T.", ".TT", "..."} },
		"ragged box":          func(rs *ruleset.Ruleset) { rs.Pieces[5].Shapes[1] = []string{".T.", ".TT"} },
		"unknown kicks":       func(rs *ruleset.Ruleset) { rs.Pieces[5].Kicks = "nope" },
		"spawn off field":     func(rs *ruleset.Ruleset) { rs.Pieces[5].SpawnRow = 80 },
		"kick out of range": func(rs *ruleset.Ruleset) {
			rs.Kicks["jlstz"]["0>7"] = [][2]int{{0, 0}}
		},
		"empty kick list": func(rs *ruleset.Ruleset) {
			rs.Kicks["jlstz"]["0>1"] = nil
		},
	}
	for name, mutate := range mutations {
		rs := ruleset.Guideline()
		mutate(rs)
		st, err := Build(rs)
		assert.Nil(t, st, name)
		assert.True(t, errors.Is(err, ErrInvalidRuleset), name)
	}
	_, err := Build(nil)
	assert.ErrorIs(t, err, ErrInvalidRuleset)
}

func TestSerializationRoundTrip(t *testing.T) {
	is := is.New(t)
	st := guideline(t)

	var buf bytes.Buffer
	is.NoErr(st.Write(&buf))
	back, err := Read(&buf)
	is.NoErr(err)
	is.Equal(back.Checksum(), st.Checksum())
	is.Equal(back.Name(), "guideline")

	js, err := json.Marshal(st)
	is.NoErr(err)
	viaJSON := &ShapeTable{}
	is.NoErr(json.Unmarshal(js, viaJSON))
	is.Equal(viaJSON.Checksum(), st.Checksum())

	tShape, _ := viaJSON.Shape(color.T)
	orig, _ := st.Shape(color.T)
	is.Equal(tShape.Orientation(1).Transition(RotateCW).Offsets(),
		orig.Orientation(1).Transition(RotateCW).Offsets())

	dir := t.TempDir()
	for _, name := range []string{"srs.json", "srs.json.gz"} {
		path := filepath.Join(dir, name)
		is.NoErr(st.Save(path))
		loaded, err := Open(path)
		is.NoErr(err)
		is.Equal(loaded.Checksum(), st.Checksum())
	}
}

func TestReadRejectsTampering(t *testing.T) {
	is := is.New(t)
	st := guideline(t)
	doc := st.toDoc()
	doc.Shapes[0].SpawnCol = 5
	bts, err := json.Marshal(doc)
	is.NoErr(err)
	_, err = Read(bytes.NewReader(bts))
	is.True(errors.Is(err, ErrInvalidRuleset))

	_, err = Read(bytes.NewReader([]byte("not json")))
	is.True(errors.Is(err, ErrInvalidRuleset))
}

func TestReadRejectsMalformedMasks(t *testing.T) {
	is := is.New(t)
	st := guideline(t)
	cases := map[string]func(width int, masks []uint16) []uint16{
		"cell past width": func(width int, masks []uint16) []uint16 {
			out := append([]uint16(nil), masks...)
			out[0] |= 1 << width
			return out
		},
		"empty top row": func(_ int, masks []uint16) []uint16 {
			return append(append([]uint16(nil), masks...), 0)
		},
		"empty bottom row": func(_ int, masks []uint16) []uint16 {
			return append([]uint16{0}, masks...)
		},
		"narrower than width": func(_ int, masks []uint16) []uint16 {
			out := make([]uint16, len(masks))
			for i, m := range masks {
				out[i] = m << 1
			}
			return out
		},
	}
	for name, tamper := range cases {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			doc := st.toDoc()
			od := &doc.Shapes[0].Orientations[0]
			if name == "narrower than width" {
				// keep the shifted cells inside the declared width
				od.Width++
			}
			od.Masks = tamper(od.Width, od.Masks)
			doc.Checksum = checksum(doc.Shapes)
			bts, err := json.Marshal(doc)
			is.NoErr(err)
			_, err = Read(bytes.NewReader(bts))
			is.True(errors.Is(err, ErrInvalidRuleset))
		})
	}
	// the untouched table still loads
	_, err := Read(bytes.NewReader(mustJSON(t, st)))
	is.NoErr(err)
}

func mustJSON(t *testing.T, st *ShapeTable) []byte {
	t.Helper()
	bts, err := json.Marshal(st)
	if err != nil {
		t.Fatal(err)
	}
	return bts
}
