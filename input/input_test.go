package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// These numbers are part of the wire format.
func TestWireCodes(t *testing.T) {
	expected := map[Input]int{
		Left: 1, Right: 2, CW: 3, CCW: 4, Flip: 5, HardDrop: 6, SoftDrop: 7, Hold: 8,
	}
	for in, code := range expected {
		assert.Equal(t, code, in.Code(), in.String())
		back, err := FromCode(code)
		assert.NoError(t, err)
		assert.Equal(t, in, back)
	}
	assert.Len(t, All(), len(expected))
}

func TestFromCodeRejectsUnknown(t *testing.T) {
	for _, code := range []int{0, 9, -1, 256} {
		_, err := FromCode(code)
		assert.Error(t, err)
	}
}

func TestSequenceString(t *testing.T) {
	assert.Equal(t, "hold left cw hd", SequenceString([]Input{Hold, Left, CW, HardDrop}))
	assert.Equal(t, []int{8, 1, 3, 6}, Codes([]Input{Hold, Left, CW, HardDrop}))
}
