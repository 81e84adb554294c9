package ai

import (
	"container/heap"
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/blockfish/color"
	"github.com/domino14/blockfish/eval"
	"github.com/domino14/blockfish/input"
	"github.com/domino14/blockfish/matrix"
	"github.com/domino14/blockfish/movegen"
	"github.com/domino14/blockfish/shapetable"
	"github.com/domino14/blockfish/zobrist"
)

// hasher is read-only after creation and shared by every search.
var hasher = zobrist.New()

// node is a position reached by placing pieces from the snapshot.
type node struct {
	m      *matrix.Matrix
	hold   color.Color
	next   int // queue index of the next piece to place
	pieces int
	root   int
	score  int64
	seq    uint64
}

// frontier is a min-heap on (score, seq).
type frontier []*node

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].score != f[j].score {
		return f[i].score < f[j].score
	}
	return f[i].seq < f[j].seq
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)   { *f = append(*f, x.(*node)) }
func (f *frontier) Pop() any {
	old := *f
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*f = old[:len(old)-1]
	return n
}

// branch is one way to take the next turn: place the current piece, or
// hold and place the other one.
type branch struct {
	piece color.Color
	hold  color.Color // held piece afterwards
	next  int         // queue index afterwards
	held  bool
}

func branches(queue []color.Color, hold color.Color, next int) []branch {
	if next >= len(queue) {
		return nil
	}
	cur := queue[next]
	bs := []branch{{piece: cur, hold: hold, next: next + 1}}
	switch {
	case hold == color.None && next+1 < len(queue):
		// holding into an empty slot brings up the following piece
		bs = append(bs, branch{piece: queue[next+1], hold: cur, next: next + 2, held: true})
	case hold != color.None && hold != cur:
		bs = append(bs, branch{piece: hold, hold: cur, next: next + 1, held: true})
	}
	return bs
}

type search struct {
	job       uint64
	snapshot  *Snapshot
	cfg       Config
	table     *shapetable.ShapeTable
	evaluator eval.Evaluator
	gen       *movegen.Generator

	seen       map[uint64]struct{}
	frontier   frontier
	seq        uint64
	nodes      uint64
	iterations uint64
	moves      []rootMove
}

func newSearch(job uint64, s *Snapshot, cfg Config, table *shapetable.ShapeTable, ev eval.Evaluator) *search {
	return &search{
		job:       job,
		snapshot:  s,
		cfg:       cfg,
		table:     table,
		evaluator: ev,
		gen:       movegen.NewGenerator(table),
		seen:      make(map[uint64]struct{}),
	}
}

// rootPlacements generates each root branch on its own goroutine and
// merges them in branch order.
func (s *search) rootPlacements(ctx context.Context, bs []branch) ([][]movegen.Placement, error) {
	out := make([][]movegen.Placement, len(bs))
	g, ctx := errgroup.WithContext(ctx)
	for i, b := range bs {
		i, b := i, b
		gen := s.gen
		if i > 0 {
			gen = movegen.NewGenerator(s.table)
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = gen.GenAll(s.snapshot.matrix, b.piece)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *search) run(ctx context.Context) *result {
	start := time.Now()
	logger := log.With().Uint64("job", s.job).Logger()

	root := &node{m: s.snapshot.matrix, hold: s.snapshot.hold}
	bs := branches(s.snapshot.queue, root.hold, root.next)
	plays, err := s.rootPlacements(ctx, bs)
	if err != nil {
		logger.Debug().Err(err).Msg("analysis-canceled")
		searchOutcome.WithLabelValues("canceled").Inc()
		return &result{}
	}
	for bi, b := range bs {
		for i := range plays[bi] {
			p := plays[bi][i]
			inputs := p.Inputs
			if b.held {
				inputs = append([]input.Input{input.Hold}, inputs...)
			}
			s.moves = append(s.moves, rootMove{placement: p, inputs: inputs, rating: math.MaxInt64})
			s.add(s.child(root, b, &p, len(s.moves)-1))
		}
	}
	if len(s.moves) == 0 {
		logger.Debug().Msg("analysis-no-moves")
		searchOutcome.WithLabelValues("no-moves").Inc()
		return &result{}
	}

	outcome := "converged"
	for s.frontier.Len() > 0 {
		if s.nodes >= uint64(s.cfg.SearchLimit) {
			outcome = "budget"
			break
		}
		select {
		case <-ctx.Done():
			logger.Debug().Err(ctx.Err()).Uint64("nodes", s.nodes).Msg("analysis-canceled")
			searchOutcome.WithLabelValues("canceled").Inc()
			return &result{}
		default:
		}
		n := heap.Pop(&s.frontier).(*node)
		s.iterations++
		s.expand(n)
	}
	// release the rest of the tree
	s.frontier = nil
	s.seen = nil

	took := time.Since(start)
	searchOutcome.WithLabelValues(outcome).Inc()
	searchNodes.Observe(float64(s.nodes))
	searchDuration.Observe(took.Seconds())
	logger.Debug().Uint64("nodes", s.nodes).Uint64("iterations", s.iterations).
		Int("moves", len(s.moves)).Dur("took", took).Str("outcome", outcome).
		Msg("analysis-finished")

	return &result{
		moves: s.moves,
		stats: &Stats{Iterations: s.iterations, Nodes: s.nodes, TimeTaken: took},
	}
}

func (s *search) child(parent *node, b branch, p *movegen.Placement, root int) *node {
	m, _ := p.Apply(parent.m)
	n := &node{m: m, hold: b.hold, next: b.next, pieces: parent.pieces + 1, root: root}
	n.score = s.evaluator.Score(m, n.pieces)
	return n
}

// add records a generated node. Every node counts towards its root move's
// rating, but a position already reached some other way is not searched
// again.
func (s *search) add(n *node) {
	s.nodes++
	if rm := &s.moves[n.root]; n.score < rm.rating {
		rm.rating = n.score
	}
	h := hasher.Hash(n.m, n.hold, n.next)
	if _, dupe := s.seen[h]; dupe {
		return
	}
	s.seen[h] = struct{}{}
	s.seq++
	n.seq = s.seq
	heap.Push(&s.frontier, n)
}

// expand generates the children of n until the node budget runs out.
func (s *search) expand(n *node) {
	limit := uint64(s.cfg.SearchLimit)
	for _, b := range branches(s.snapshot.queue, n.hold, n.next) {
		plays := s.gen.GenAll(n.m, b.piece)
		for i := range plays {
			if s.nodes >= limit {
				return
			}
			s.add(s.child(n, b, &plays[i], n.root))
		}
	}
}
