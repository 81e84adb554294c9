// Package eval scores board states for the search. Lower scores are better.
//
// The default evaluator is a weighted sum of a few board features, the
// weights coming straight from the session configuration. Nothing outside
// this package depends on the formula, so it can be replaced by any other
// Evaluator.
package eval

import (
	"math/bits"

	"github.com/domino14/blockfish/matrix"
)

// Evaluator scores a board reached after placing piecesPlaced pieces.
// Implementations must be deterministic and safe for concurrent use.
type Evaluator interface {
	Score(m *matrix.Matrix, piecesPlaced int) int64
}

// Parameters are the tunable weights of the default evaluator.
type Parameters struct {
	RowFactor           int64 `json:"row_factor" yaml:"row_factor" mapstructure:"row_factor"`
	PieceEstimateFactor int64 `json:"piece_estimate_factor" yaml:"piece_estimate_factor" mapstructure:"piece_estimate_factor"`
	IDependencyFactor   int64 `json:"i_dependency_factor" yaml:"i_dependency_factor" mapstructure:"i_dependency_factor"`
	PiecePenalty        int64 `json:"piece_penalty" yaml:"piece_penalty" mapstructure:"piece_penalty"`
}

// DefaultParameters are the weights a fresh session starts with.
func DefaultParameters() Parameters {
	return Parameters{
		RowFactor:           5,
		PieceEstimateFactor: 8,
		IDependencyFactor:   10,
		PiecePenalty:        10,
	}
}

// Features are the raw board measurements the weighted evaluator combines.
type Features struct {
	// Height is the number of rows up to the highest filled cell.
	Height int
	// Holes counts empty cells with a filled cell somewhere above them.
	Holes int
	// RowsWithHoles counts rows containing at least one hole.
	RowsWithHoles int
	// PieceEstimate approximates how many more pieces it takes to clear
	// everything on the board.
	PieceEstimate int
	// IDependencies counts wells three or more cells deep, which only an I
	// piece can fill cleanly.
	IDependencies int
}

// Measure computes the features of a board.
func Measure(m *matrix.Matrix) Features {
	f := Features{Height: m.Rows()}
	cols := m.Cols()
	full := uint16(1)<<cols - 1

	// covered holds the columns that have a filled cell above the current row.
	var covered uint16
	emptyCells := 0
	for r := m.Rows() - 1; r >= 0; r-- {
		row := m.Row(r)
		holes := covered &^ row
		if holes != 0 {
			f.RowsWithHoles++
			f.Holes += bits.OnesCount16(holes)
		}
		covered |= row
		emptyCells += bits.OnesCount16(full &^ row)
	}
	// Every empty cell below the surface must be filled by some piece
	// before its row clears; buried rows cost at least one more piece each
	// to dig out.
	f.PieceEstimate = (emptyCells+3)/4 + f.RowsWithHoles

	heights := m.Heights()
	for c := 0; c < cols; c++ {
		left, right := matrix.MaxRows, matrix.MaxRows
		if c > 0 {
			left = heights[c-1]
		}
		if c < cols-1 {
			right = heights[c+1]
		}
		if min(left, right)-heights[c] >= 3 && min(left, right) != matrix.MaxRows {
			f.IDependencies++
		}
	}
	return f
}

// Weighted is the default evaluator.
type Weighted struct {
	Params Parameters
}

// NewWeighted creates the default evaluator with the given weights.
func NewWeighted(p Parameters) *Weighted {
	return &Weighted{Params: p}
}

func (w *Weighted) Score(m *matrix.Matrix, piecesPlaced int) int64 {
	f := Measure(m)
	return w.Params.RowFactor*int64(f.Height) +
		w.Params.PieceEstimateFactor*int64(f.PieceEstimate) +
		w.Params.IDependencyFactor*int64(f.IDependencies) +
		w.Params.PiecePenalty*int64(piecesPlaced)
}
