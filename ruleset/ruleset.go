// Package ruleset describes a game variant's pieces: their shapes in every
// orientation, where they spawn, and which kicks are tried when they rotate.
// A Ruleset is plain data; shapetable compiles it into the form the search
// uses.
package ruleset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Ruleset is a complete variant description.
type Ruleset struct {
	Name   string               `json:"name" yaml:"name"`
	Pieces []Piece              `json:"pieces" yaml:"pieces"`
	Kicks  map[string]KickTable `json:"kicks" yaml:"kicks"`
}

// Piece describes one piece kind. Every orientation is drawn in the same
// square box, top row first, with '.' for empty cells. Rotating clockwise
// moves from orientation i to i+1.
type Piece struct {
	Color  string     `json:"color" yaml:"color"`
	Shapes [][]string `json:"shapes" yaml:"shapes"`
	// SpawnCol is the column of the box's left edge at spawn.
	SpawnCol int `json:"spawn_col" yaml:"spawn_col"`
	// SpawnRow is the row of the box's top edge at spawn (row 0 is the
	// bottom of the playfield).
	SpawnRow int `json:"spawn_row" yaml:"spawn_row"`
	// Kicks names an entry in Ruleset.Kicks. Empty means no kicks: a
	// rotation only succeeds in place.
	Kicks string `json:"kicks,omitempty" yaml:"kicks,omitempty"`
}

// KickTable maps a transition written "from>to" (orientation indices) to the
// offsets tried in order. Offsets are [dx, dy] with dy pointing up.
type KickTable map[string][][2]int

// TransitionKey is the KickTable key for a rotation between orientations.
func TransitionKey(from, to int) string {
	return fmt.Sprintf("%d>%d", from, to)
}

// Parse decodes a ruleset. format is "json" or "yaml".
func Parse(data []byte, format string) (*Ruleset, error) {
	rs := &Ruleset{}
	var err error
	switch strings.ToLower(format) {
	case "json":
		err = json.Unmarshal(data, rs)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, rs)
	default:
		return nil, fmt.Errorf("unsupported ruleset format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding ruleset: %w", err)
	}
	return rs, nil
}

// Load reads a ruleset file; the format follows the file extension.
func Load(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, strings.TrimPrefix(filepath.Ext(path), "."))
}

// Named returns a built-in ruleset by name.
func Named(name string) (*Ruleset, error) {
	switch strings.ToLower(name) {
	case "", "guideline", "srs":
		return Guideline(), nil
	}
	return nil, fmt.Errorf("no built-in ruleset named %q", name)
}
