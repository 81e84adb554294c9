package zobrist

import (
	"lukechampine.com/frand"

	"github.com/domino14/blockfish/color"
	"github.com/domino14/blockfish/matrix"
)

const bignum = 1<<63 - 2

// seed fixes the key tables so hashes are identical across runs and
// processes.
var seed = [32]byte{'b', 'l', 'o', 'c', 'k', 'f', 'i', 's', 'h'}

// Zobrist hashes a search state: the playfield, the held piece and how far
// into the preview queue the search has consumed.
// https://en.wikipedia.org/wiki/Zobrist_hashing
type Zobrist struct {
	cellTable [matrix.MaxRows][matrix.MaxCols]uint64
	holdTable [256]uint64
	depthSalt uint64
}

// New creates a hasher with the fixed key tables.
func New() *Zobrist {
	z := &Zobrist{}
	rng := frand.NewCustom(seed[:], 1024, 12)
	for r := range z.cellTable {
		for c := range z.cellTable[r] {
			z.cellTable[r][c] = rng.Uint64n(bignum) + 1
		}
	}
	for _, c := range color.All() {
		z.holdTable[c] = rng.Uint64n(bignum) + 1
	}
	z.depthSalt = rng.Uint64n(bignum) + 1
	return z
}

// https://stackoverflow.com/a/12996028/1737333
func hashUint64(x uint64) uint64 {
	x = (x ^ (x >> 30)) * uint64(0xbf58476d1ce4e5b9)
	x = (x ^ (x >> 27)) * uint64(0x94d049bb133111eb)
	x = x ^ (x >> 31)
	return x
}

// Hash computes the key of a state from scratch.
func (z *Zobrist) Hash(m *matrix.Matrix, hold color.Color, queueIdx int) uint64 {
	key := uint64(0)
	for r := 0; r < m.Rows(); r++ {
		key ^= z.row(r, m.Row(r))
	}
	key ^= z.holdTable[hold]
	key ^= hashUint64(uint64(queueIdx) ^ z.depthSalt)
	return key
}

// row returns the contribution of one row's cells.
func (z *Zobrist) row(r int, mask uint16) uint64 {
	key := uint64(0)
	for c := 0; mask != 0; c++ {
		if mask&1 != 0 {
			key ^= z.cellTable[r][c]
		}
		mask >>= 1
	}
	return key
}
