// Package input defines the discrete controller actions that make up a move.
package input

import (
	"fmt"
	"strings"
)

// Input is one controller action. The numeric value of each constant is its
// wire code; hosts store these numbers, so they must never be renumbered.
type Input uint8

const (
	Left     Input = 1
	Right    Input = 2
	CW       Input = 3
	CCW      Input = 4
	Flip     Input = 5
	HardDrop Input = 6
	SoftDrop Input = 7
	Hold     Input = 8
)

var names = map[Input]string{
	Left:     "left",
	Right:    "right",
	CW:       "cw",
	CCW:      "ccw",
	Flip:     "flip",
	HardDrop: "hd",
	SoftDrop: "sd",
	Hold:     "hold",
}

// All lists every input in wire-code order.
func All() []Input {
	return []Input{Left, Right, CW, CCW, Flip, HardDrop, SoftDrop, Hold}
}

// Code is the stable wire code for the input.
func (i Input) Code() int {
	return int(i)
}

// FromCode converts a wire code back into an Input.
func FromCode(code int) (Input, error) {
	in := Input(code)
	if _, ok := names[in]; !ok || code < 0 || code > 255 {
		return 0, fmt.Errorf("unknown input code %d", code)
	}
	return in, nil
}

func (i Input) String() string {
	if n, ok := names[i]; ok {
		return n
	}
	return fmt.Sprintf("input(%d)", uint8(i))
}

// Codes converts a sequence of inputs into wire codes.
func Codes(ins []Input) []int {
	codes := make([]int, len(ins))
	for idx, in := range ins {
		codes[idx] = in.Code()
	}
	return codes
}

// SequenceString renders an input sequence for display, e.g. "left left cw hd".
func SequenceString(ins []Input) string {
	parts := make([]string, len(ins))
	for idx, in := range ins {
		parts[idx] = in.String()
	}
	return strings.Join(parts, " ")
}
