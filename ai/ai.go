// Package ai runs asynchronous placement searches for a falling-block
// stacking game.
//
// An AI session pairs a Config with a shape table. Each call to Analyze
// starts an independent Analysis job in its own goroutine; callers Wait on
// it and then query the ranked moves:
//
//	job := session.Analyze(snapshot)
//	if err := job.Wait(ctx); err != nil { ... }
//	best, err := job.Ranked(ai.Unlimited)
//
// Results are deterministic for a given snapshot, config and shape table.
package ai

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/domino14/blockfish/eval"
	"github.com/domino14/blockfish/shapetable"
)

var jobSerial atomic.Uint64

// EvaluatorFactory builds the scoring policy for one job from the job's
// weights.
type EvaluatorFactory func(p Parameters) eval.Evaluator

// Option customizes a session.
type Option func(*AI)

// WithEvaluator replaces the default weighted evaluator.
func WithEvaluator(f EvaluatorFactory) Option {
	return func(ai *AI) {
		ai.newEvaluator = f
	}
}

// AI is a session: one configuration and one shape table, shared by every
// analysis it starts.
type AI struct {
	sync.RWMutex
	cfg          Config
	table        *shapetable.ShapeTable
	newEvaluator EvaluatorFactory
}

// New creates a session. The shape table must be non-empty.
func New(cfg Config, table *shapetable.ShapeTable, opts ...Option) (*AI, error) {
	if table == nil || len(table.Colors()) == 0 {
		return nil, fmt.Errorf("creating session: %w: empty shape table", shapetable.ErrInvalidRuleset)
	}
	ai := &AI{
		cfg:   cfg,
		table: table,
		newEvaluator: func(p Parameters) eval.Evaluator {
			return eval.NewWeighted(p)
		},
	}
	for _, opt := range opts {
		opt(ai)
	}
	return ai, nil
}

// Config returns a copy of the session configuration.
func (ai *AI) Config() Config {
	ai.RLock()
	defer ai.RUnlock()
	return ai.cfg
}

// SetConfig replaces the configuration. Jobs already started keep the one
// they began with.
func (ai *AI) SetConfig(cfg Config) {
	ai.Lock()
	defer ai.Unlock()
	ai.cfg = cfg
}

// ShapeTable is the session's shape table.
func (ai *AI) ShapeTable() *shapetable.ShapeTable {
	return ai.table
}

// Analyze starts searching a snapshot and returns at once with a Running
// job. A nil snapshot is an empty field with nothing to place.
func (ai *AI) Analyze(s *Snapshot) *Analysis {
	if s == nil {
		s = NewSnapshot(0, nil, nil)
	}
	ai.RLock()
	cfg := ai.cfg
	newEvaluator := ai.newEvaluator
	ai.RUnlock()

	job := newAnalysis(jobSerial.Add(1), s, cfg, ai.table, newEvaluator(cfg.Parameters))
	log.Debug().Uint64("job", job.id).Uint("search-limit", cfg.SearchLimit).
		Int("queue", len(s.queue)).Msg("analysis-created")
	job.start()
	return job
}
