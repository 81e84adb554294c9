// Package color identifies the kinds of pieces in play. A Color is the
// one-character name of a tetromino; it does not describe how the piece is
// drawn.
package color

import (
	"errors"
	"fmt"
)

// Color is a piece identity. The zero value, None, means "no piece" and is
// used for an empty hold slot.
type Color byte

const (
	None Color = 0
	I    Color = 'I'
	J    Color = 'J'
	L    Color = 'L'
	O    Color = 'O'
	S    Color = 'S'
	T    Color = 'T'
	Z    Color = 'Z'
)

// Alphabet lists every recognized piece character, in canonical order.
const Alphabet = "IJLOSTZ"

var ErrInvalidColor = errors.New("invalid color")

// All returns the seven piece colors in canonical order.
func All() []Color {
	return []Color{I, J, L, O, S, T, Z}
}

// FromRune converts a piece character into a Color.
func FromRune(r rune) (Color, error) {
	switch c := Color(r); c {
	case I, J, L, O, S, T, Z:
		if r > 0x7f {
			break
		}
		return c, nil
	}
	return None, fmt.Errorf("%w: %q", ErrInvalidColor, r)
}

// Rune returns the character for this color. None has no character and
// returns 0.
func (c Color) Rune() rune {
	return rune(c)
}

// Valid reports whether c is one of the seven pieces.
func (c Color) Valid() bool {
	_, err := FromRune(rune(c))
	return c != None && err == nil
}

func (c Color) String() string {
	if c == None {
		return "-"
	}
	return string(rune(c))
}

// ParseQueue converts a string like "IJLT" into a queue of colors. Any
// unrecognized character is an error.
func ParseQueue(s string) ([]Color, error) {
	q := make([]Color, 0, len(s))
	for _, r := range s {
		c, err := FromRune(r)
		if err != nil {
			return nil, err
		}
		q = append(q, c)
	}
	return q, nil
}

// FilterQueue is the lenient form of ParseQueue: unrecognized characters are
// skipped rather than rejected.
func FilterQueue(s string) []Color {
	q := make([]Color, 0, len(s))
	for _, r := range s {
		if c, err := FromRune(r); err == nil {
			q = append(q, c)
		}
	}
	return q
}

// QueueString is the inverse of ParseQueue.
func QueueString(q []Color) string {
	bts := make([]byte, len(q))
	for i, c := range q {
		bts[i] = byte(c)
	}
	return string(bts)
}
