package ai

import (
	"fmt"

	"github.com/domino14/blockfish/color"
	"github.com/domino14/blockfish/matrix"
)

// HostWidth is the playfield width of snapshots coming from a host.
const HostWidth = matrix.StandardCols

// Snapshot is one decision point: the playfield, the held piece and the
// preview queue, current piece first. It never changes after creation.
type Snapshot struct {
	hold   color.Color
	queue  []color.Color
	matrix *matrix.Matrix
}

// NewSnapshot copies its arguments into a snapshot. A nil matrix means an
// empty standard-width field.
func NewSnapshot(hold color.Color, queue []color.Color, m *matrix.Matrix) *Snapshot {
	if m == nil {
		m = matrix.New(HostWidth)
	}
	return &Snapshot{
		hold:   hold,
		queue:  append([]color.Color(nil), queue...),
		matrix: m.Clone(),
	}
}

// ParseSnapshot builds a snapshot from host values, rejecting any piece
// character outside the alphabet. An empty hold string means no hold. The
// field is read row-major from the bottom row, ten cells per row, and cells
// past matrix.MaxCells are ignored.
func ParseSnapshot(hold, next string, field []bool) (*Snapshot, error) {
	h := color.None
	if hold != "" {
		if len(hold) != 1 {
			return nil, fmt.Errorf("hold %q: %w", hold, color.ErrInvalidColor)
		}
		var err error
		if h, err = color.FromRune(rune(hold[0])); err != nil {
			return nil, err
		}
	}
	queue, err := color.ParseQueue(next)
	if err != nil {
		return nil, err
	}
	return &Snapshot{hold: h, queue: queue, matrix: matrix.FromCells(HostWidth, field)}, nil
}

// SnapshotFromHost is the lenient form of ParseSnapshot used by scripting
// hosts: unknown queue characters are skipped and an unknown hold counts
// as no hold.
func SnapshotFromHost(hold, next string, field []bool) *Snapshot {
	h := color.None
	if len(hold) == 1 {
		if c, err := color.FromRune(rune(hold[0])); err == nil {
			h = c
		}
	}
	return &Snapshot{hold: h, queue: color.FilterQueue(next), matrix: matrix.FromCells(HostWidth, field)}
}

// Hold is the held piece, color.None if there is none.
func (s *Snapshot) Hold() color.Color { return s.hold }

// Queue returns a copy of the preview queue.
func (s *Snapshot) Queue() []color.Color {
	return append([]color.Color(nil), s.queue...)
}

// Matrix returns a copy of the playfield.
func (s *Snapshot) Matrix() *matrix.Matrix { return s.matrix.Clone() }

func (s *Snapshot) String() string {
	return fmt.Sprintf("hold=%v queue=%s\n%v", s.hold, color.QueueString(s.queue), s.matrix)
}
