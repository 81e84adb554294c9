package ai

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/domino14/blockfish/color"
	"github.com/domino14/blockfish/eval"
	"github.com/domino14/blockfish/input"
	"github.com/domino14/blockfish/movegen"
	"github.com/domino14/blockfish/shapetable"
)

var (
	ErrJobNotReady  = errors.New("analysis is not ready")
	ErrUnknownMove  = errors.New("move does not belong to this analysis")
	ErrJobDiscarded = errors.New("analysis was discarded")
)

// Unlimited passed as maxInputs keeps the whole input sequence. Any other
// negative value does the same.
const Unlimited = -1

// State is where an Analysis is in its lifecycle.
type State int32

const (
	Created State = iota
	Running
	Ready
	Discarded
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case Ready:
		return "ready"
	case Discarded:
		return "discarded"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Move identifies one root placement of an Analysis. It means nothing to
// any other Analysis.
type Move struct {
	job   uint64
	index int
}

// Suggestion is the outward form of a move. Rating is lower for better
// moves; Inputs realize the move from spawn and end in a hard drop unless
// truncated.
type Suggestion struct {
	Rating int64         `json:"rating"`
	Inputs []input.Input `json:"inputs"`
}

// Stats is the effort a search spent.
type Stats struct {
	// Iterations counts expanded nodes.
	Iterations uint64 `json:"iterations"`
	// Nodes counts generated nodes, root moves included.
	Nodes     uint64        `json:"nodes"`
	TimeTaken time.Duration `json:"time_taken"`
}

type rootMove struct {
	placement movegen.Placement
	inputs    []input.Input
	rating    int64
}

type result struct {
	moves []rootMove
	stats *Stats
}

// Analysis is one search job. It is created Running by AI.Analyze and
// becomes Ready once the search converges or spends its budget. All
// methods are safe for concurrent use.
type Analysis struct {
	id        uint64
	snapshot  *Snapshot
	cfg       Config
	table     *shapetable.ShapeTable
	evaluator eval.Evaluator

	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.RWMutex
	state  State
	result *result
}

func newAnalysis(id uint64, s *Snapshot, cfg Config, table *shapetable.ShapeTable, ev eval.Evaluator) *Analysis {
	return &Analysis{
		id:        id,
		snapshot:  s,
		cfg:       cfg,
		table:     table,
		evaluator: ev,
		done:      make(chan struct{}),
		state:     Created,
	}
}

func (a *Analysis) start() {
	ctx, cancel := context.WithCancel(context.Background())
	a.mu.Lock()
	a.cancel = cancel
	a.state = Running
	a.mu.Unlock()
	jobsStarted.Inc()
	jobsRunning.Inc()

	go func() {
		defer close(a.done)
		defer cancel()
		defer jobsRunning.Dec()
		res := newSearch(a.id, a.snapshot, a.cfg, a.table, a.evaluator).run(ctx)

		a.mu.Lock()
		defer a.mu.Unlock()
		if a.state == Discarded {
			return
		}
		a.result = res
		a.state = Ready
	}()
}

// ID is the job's serial number, unique within the process.
func (a *Analysis) ID() uint64 { return a.id }

// Snapshot is the position being analyzed.
func (a *Analysis) Snapshot() *Snapshot { return a.snapshot }

// Config is the configuration the job was started with.
func (a *Analysis) Config() Config { return a.cfg }

// State reports the current lifecycle state.
func (a *Analysis) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Wait blocks until the job is Ready. It fails with ErrJobDiscarded if the
// job is discarded first, or with the context's error if ctx ends first.
func (a *Analysis) Wait(ctx context.Context) error {
	select {
	case <-a.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.state == Discarded {
		return ErrJobDiscarded
	}
	return nil
}

// Discard abandons the job. A running search is stopped and its results
// are dropped; every later query fails with ErrJobDiscarded.
func (a *Analysis) Discard() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == Discarded {
		return
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.state = Discarded
	a.result = nil
	jobsDiscarded.Inc()
}

// ready returns the result if queries are allowed. Callers hold a.mu.
func (a *Analysis) ready() (*result, error) {
	switch a.state {
	case Ready:
		return a.result, nil
	case Discarded:
		return nil, ErrJobDiscarded
	}
	return nil, ErrJobNotReady
}

func (a *Analysis) lookup(res *result, m Move) (*rootMove, error) {
	if m.job != a.id || m.index < 0 || m.index >= len(res.moves) {
		return nil, ErrUnknownMove
	}
	return &res.moves[m.index], nil
}

// AllMoves lists every distinct placement reachable this turn. The order
// carries no meaning; rank with Cmp.
func (a *Analysis) AllMoves() ([]Move, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	res, err := a.ready()
	if err != nil {
		return nil, err
	}
	moves := make([]Move, len(res.moves))
	for i := range res.moves {
		moves[i] = Move{job: a.id, index: i}
	}
	return moves, nil
}

// Cmp orders two moves, negative when ma is the better move. Moves with
// equal ratings are ordered by discovery, so Cmp is a strict total order
// and returns zero only when ma and mb are the same move.
func (a *Analysis) Cmp(ma, mb Move) (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	res, err := a.ready()
	if err != nil {
		return 0, err
	}
	x, err := a.lookup(res, ma)
	if err != nil {
		return 0, err
	}
	y, err := a.lookup(res, mb)
	if err != nil {
		return 0, err
	}
	switch {
	case x.rating < y.rating:
		return -1, nil
	case x.rating > y.rating:
		return 1, nil
	}
	return ma.index - mb.index, nil
}

// Suggestion reports a move's rating and at most maxInputs of its inputs.
// A negative maxInputs keeps them all.
func (a *Analysis) Suggestion(m Move, maxInputs int) (Suggestion, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	res, err := a.ready()
	if err != nil {
		return Suggestion{}, err
	}
	rm, err := a.lookup(res, m)
	if err != nil {
		return Suggestion{}, err
	}
	n := len(rm.inputs)
	if maxInputs >= 0 && maxInputs < n {
		n = maxInputs
	}
	return Suggestion{Rating: rm.rating, Inputs: slices.Clone(rm.inputs[:n])}, nil
}

// Placement reports where a move locks its piece.
func (a *Analysis) Placement(m Move) (movegen.Placement, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	res, err := a.ready()
	if err != nil {
		return movegen.Placement{}, err
	}
	rm, err := a.lookup(res, m)
	if err != nil {
		return movegen.Placement{}, err
	}
	p := rm.placement
	p.Inputs = slices.Clone(p.Inputs)
	return p, nil
}

// Stats reports the search effort. It is nil when there were no moves.
func (a *Analysis) Stats() (*Stats, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	res, err := a.ready()
	if err != nil {
		return nil, err
	}
	if res.stats == nil {
		return nil, nil
	}
	st := *res.stats
	return &st, nil
}

// RankedMoves collects every move and sorts them best first with Cmp.
func (a *Analysis) RankedMoves() ([]Move, error) {
	moves, err := a.AllMoves()
	if err != nil {
		return nil, err
	}
	var cmpErr error
	slices.SortStableFunc(moves, func(x, y Move) int {
		c, err := a.Cmp(x, y)
		if err != nil && cmpErr == nil {
			cmpErr = err
		}
		return c
	})
	if cmpErr != nil {
		return nil, cmpErr
	}
	return moves, nil
}

// Ranked returns the suggestions of every move, best first.
func (a *Analysis) Ranked(maxInputs int) ([]Suggestion, error) {
	moves, err := a.RankedMoves()
	if err != nil {
		return nil, err
	}
	sugs := make([]Suggestion, 0, len(moves))
	for _, m := range moves {
		s, err := a.Suggestion(m, maxInputs)
		if err != nil {
			return nil, err
		}
		sugs = append(sugs, s)
	}
	return sugs, nil
}

// Best returns the best-rated move. ok is false when there are no moves.
func (a *Analysis) Best() (m Move, ok bool, err error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	res, err := a.ready()
	if err != nil {
		return Move{}, false, err
	}
	best := -1
	for i := range res.moves {
		if best < 0 || res.moves[i].rating < res.moves[best].rating {
			best = i
		}
	}
	if best < 0 {
		return Move{}, false, nil
	}
	return Move{job: a.id, index: best}, true, nil
}

// Play returns the position after making m, along with the number of lines
// it clears. The queue of the new snapshot is what remains of the analyzed
// queue; hosts append newly revealed pieces themselves.
func (a *Analysis) Play(m Move) (*Snapshot, int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	res, err := a.ready()
	if err != nil {
		return nil, 0, err
	}
	rm, err := a.lookup(res, m)
	if err != nil {
		return nil, 0, err
	}
	s := a.snapshot
	hold, queue := s.hold, s.queue[1:]
	if len(rm.inputs) > 0 && rm.inputs[0] == input.Hold {
		if hold == color.None {
			// the next piece came up and was played; the current one is held
			queue = s.queue[2:]
		}
		hold = s.queue[0]
	}
	field, cleared := rm.placement.Apply(s.matrix)
	return &Snapshot{hold: hold, queue: slices.Clone(queue), matrix: field}, cleared, nil
}
