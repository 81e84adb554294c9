// bench plays self-play games from random 7-bag sequences and reports
// search speed and survival.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/domino14/blockfish/ai"
	"github.com/domino14/blockfish/cache"
	"github.com/domino14/blockfish/color"
	"github.com/domino14/blockfish/config"
	"github.com/domino14/blockfish/matrix"
	"github.com/domino14/blockfish/stats"
)

// Games end when the stack reaches this height.
const topOutRows = 20

type bag struct {
	rng    *frand.RNG
	pieces []color.Color
	next   []color.Color
}

func (b *bag) draw() color.Color {
	if len(b.next) == 0 {
		b.next = slices.Clone(b.pieces)
		b.rng.Shuffle(len(b.next), func(i, j int) {
			b.next[i], b.next[j] = b.next[j], b.next[i]
		})
	}
	c := b.next[0]
	b.next = b.next[1:]
	return c
}

type gameResult struct {
	placed    int
	lines     int
	toppedOut bool
	moveTimes []float64
}

type benchmark struct {
	svc     *ai.AI
	pieces  int
	preview int
	seed    string
}

func (bm *benchmark) rng(game int) *frand.RNG {
	if bm.seed == "" {
		return frand.New()
	}
	var seed [32]byte
	copy(seed[:], fmt.Sprintf("%s/%d", bm.seed, game))
	return frand.NewCustom(seed[:], 1024, 12)
}

func (bm *benchmark) play(ctx context.Context, game int) (*gameResult, error) {
	b := &bag{rng: bm.rng(game), pieces: bm.svc.ShapeTable().Colors()}
	var queue []color.Color
	for len(queue) <= bm.preview {
		queue = append(queue, b.draw())
	}
	hold := color.None
	field := matrix.New(ai.HostWidth)
	res := &gameResult{}

	for res.placed < bm.pieces {
		start := time.Now()
		job := bm.svc.Analyze(ai.NewSnapshot(hold, queue, field))
		if err := job.Wait(ctx); err != nil {
			job.Discard()
			return nil, err
		}
		m, ok, err := job.Best()
		if err != nil {
			return nil, err
		}
		if !ok {
			res.toppedOut = true
			break
		}
		next, cleared, err := job.Play(m)
		if err != nil {
			return nil, err
		}
		res.moveTimes = append(res.moveTimes, float64(time.Since(start).Microseconds())/1000)

		hold, queue, field = next.Hold(), next.Queue(), next.Matrix()
		for len(queue) <= bm.preview {
			queue = append(queue, b.draw())
		}
		res.placed++
		res.lines += cleared
		if field.Rows() >= topOutRows {
			res.toppedOut = true
			break
		}
	}
	log.Debug().Int("game", game).Int("placed", res.placed).Int("lines", res.lines).
		Bool("topped-out", res.toppedOut).Msg("game-finished")
	return res, nil
}

func main() {
	games := flag.Int("games", 8, "number of games")
	pieces := flag.Int("pieces", 100, "pieces per game")
	preview := flag.Int("preview", 5, "preview pieces visible after the current one")
	threads := flag.Int("threads", runtime.NumCPU(), "games played at once")
	seed := flag.String("seed", "", "seed for the piece sequence; random if empty")
	limit := flag.Uint("search-limit", ai.DefaultSearchLimit, "nodes generated per move")
	rulesetPath := flag.String("ruleset", "", "ruleset file; built-in guideline if empty")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigSearchLimit, *limit)
	cfg.Set(config.ConfigRulesetPath, *rulesetPath)
	cfg.Set(config.ConfigDebug, *debug)
	cfg.SetupLogging(os.Stderr)

	table, err := cache.ShapeTable(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("loading-shapetable")
	}
	svc, err := ai.New(cfg.AIConfig(), table)
	if err != nil {
		log.Fatal().Err(err).Msg("creating-ai")
	}
	bm := &benchmark{svc: svc, pieces: *pieces, preview: *preview, seed: *seed}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var mu sync.Mutex
	moveTimes := &stats.Summary{}
	lines := &stats.Summary{}
	placed := &stats.Summary{}
	toppedOut := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, *threads))
	began := time.Now()
	for i := 0; i < *games; i++ {
		i := i
		g.Go(func() error {
			res, err := bm.play(gctx, i)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, t := range res.moveTimes {
				moveTimes.Push(t)
			}
			lines.Push(float64(res.lines))
			placed.Push(float64(res.placed))
			if res.toppedOut {
				toppedOut++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("benchmark-failed")
	}

	fmt.Printf("games: %d  topped out: %d  wall time: %v\n", lines.Count(), toppedOut, time.Since(began).Round(time.Millisecond))
	fmt.Printf("pieces/game: %.1f ± %.1f\n", placed.Mean(), placed.ConfidenceInterval(95))
	fmt.Printf("lines/game:  %.1f ± %.1f\n", lines.Mean(), lines.ConfidenceInterval(95))
	if moveTimes.Count() == 0 {
		return
	}
	fmt.Printf("move time ms: mean %.2f  p50 %.2f  p90 %.2f  p99 %.2f  max %.2f\n",
		moveTimes.Mean(), moveTimes.Quantile(0.5), moveTimes.Quantile(0.9),
		moveTimes.Quantile(0.99), moveTimes.Max())
	hist := histogram.Hist(15, moveTimes.Samples())
	if err := histogram.Fprint(os.Stdout, hist, histogram.Linear(40)); err != nil {
		log.Err(err).Msg("printing-histogram")
	}
}
