package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/domino14/blockfish/ai"
	"github.com/domino14/blockfish/bot"
	"github.com/domino14/blockfish/color"
	"github.com/domino14/blockfish/config"
	"github.com/domino14/blockfish/input"
	"github.com/domino14/blockfish/matrix"
)

const defaultTop = 10

var errNoAnalysis = errors.New("nothing analyzed yet; run analyze first")

func (sc *ShellController) display() string {
	return fmt.Sprintf("hold: %v  queue: %s\n%v", sc.hold, color.QueueString(sc.queue), sc.field)
}

// positionChanged drops results that no longer describe the position.
func (sc *ShellController) positionChanged() {
	if sc.lastJob != nil {
		sc.lastJob.Discard()
	}
	sc.lastJob = nil
	sc.lastRanked = nil
}

func (sc *ShellController) setHold(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: hold <piece>, or hold - for none")
	}
	h := color.None
	if cmd.args[0] != "-" {
		if len(cmd.args[0]) != 1 {
			return nil, fmt.Errorf("hold %q: %w", cmd.args[0], color.ErrInvalidColor)
		}
		var err error
		if h, err = color.FromRune(rune(strings.ToUpper(cmd.args[0])[0])); err != nil {
			return nil, err
		}
	}
	sc.hold = h
	sc.positionChanged()
	return msg(sc.display()), nil
}

func (sc *ShellController) setQueue(cmd *shellcmd) (*Response, error) {
	q, err := color.ParseQueue(strings.ToUpper(strings.Join(cmd.args, "")))
	if err != nil {
		return nil, err
	}
	sc.queue = q
	sc.positionChanged()
	return msg(sc.display()), nil
}

// row <n> <cells> sets row n, counted from the bottom, to a picture like
// "####.#####".
func (sc *ShellController) setRow(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 2 {
		return nil, errors.New("usage: row <n> <cells>")
	}
	r, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if r < 0 || r >= matrix.MaxRows {
		return nil, fmt.Errorf("row %d out of range", r)
	}
	picture := cmd.args[1]
	if len(picture) != ai.HostWidth {
		return nil, fmt.Errorf("row needs %d cells, got %d", ai.HostWidth, len(picture))
	}
	cells := sc.field.Cells()
	if need := (r + 1) * ai.HostWidth; len(cells) < need {
		cells = append(cells, make([]bool, need-len(cells))...)
	}
	for c, ch := range picture {
		cells[r*ai.HostWidth+c] = ch != '.' && ch != ' '
	}
	sc.field = matrix.FromCells(ai.HostWidth, cells)
	sc.positionChanged()
	return msg(sc.display()), nil
}

func (sc *ShellController) clear(cmd *shellcmd) (*Response, error) {
	sc.field = matrix.New(ai.HostWidth)
	sc.hold = color.None
	sc.queue = nil
	sc.positionChanged()
	return msg(sc.display()), nil
}

var configFields = []string{
	"search_limit", "row_factor", "piece_estimate_factor", "i_dependency_factor", "piece_penalty",
}

func configField(cfg *ai.Config, name string) (*int64, error) {
	switch name {
	case "row_factor":
		return &cfg.Parameters.RowFactor, nil
	case "piece_estimate_factor":
		return &cfg.Parameters.PieceEstimateFactor, nil
	case "i_dependency_factor":
		return &cfg.Parameters.IDependencyFactor, nil
	case "piece_penalty":
		return &cfg.Parameters.PiecePenalty, nil
	}
	return nil, fmt.Errorf("unknown config field %q; have %s", name, strings.Join(configFields, ", "))
}

func (sc *ShellController) configure(cmd *shellcmd) (*Response, error) {
	cfg := sc.svc.Config()
	switch len(cmd.args) {
	case 0:
		var sb strings.Builder
		fmt.Fprintf(&sb, "search_limit = %d\n", cfg.SearchLimit)
		for _, name := range configFields[1:] {
			f, _ := configField(&cfg, name)
			fmt.Fprintf(&sb, "%s = %d\n", name, *f)
		}
		return msg(strings.TrimSuffix(sb.String(), "\n")), nil
	case 2:
	default:
		return nil, errors.New("usage: config [<field> <value>]")
	}
	name, value := cmd.args[0], cmd.args[1]
	if name == "search_limit" {
		n, err := strconv.ParseUint(value, 10, 0)
		if err != nil {
			return nil, err
		}
		cfg.SearchLimit = uint(n)
	} else {
		f, err := configField(&cfg, name)
		if err != nil {
			return nil, err
		}
		if *f, err = strconv.ParseInt(value, 10, 64); err != nil {
			return nil, err
		}
	}
	sc.svc.SetConfig(cfg)
	return msg(fmt.Sprintf("set %s to %s", name, value)), nil
}

func (sc *ShellController) snapshot() *ai.Snapshot {
	return ai.NewSnapshot(sc.hold, sc.queue, sc.field)
}

func formatStats(st *ai.Stats) string {
	if st == nil {
		return "no moves"
	}
	return fmt.Sprintf("iterations: %d  nodes: %d  time: %v", st.Iterations, st.Nodes, st.TimeTaken)
}

func formatSuggestion(rank int, rating int64, inputs []input.Input) string {
	return fmt.Sprintf("%3d. %6d  %s", rank, rating, input.SequenceString(inputs))
}

// topOption reads -top, the number of moves to list.
func topOption(cmd *shellcmd) (int, error) {
	top, err := cmd.options.IntDefault("top", defaultTop)
	if err != nil {
		return 0, err
	}
	if top < 1 {
		return 0, fmt.Errorf("-top must be at least 1, got %d", top)
	}
	return top, nil
}

func (sc *ShellController) analyze(ctx context.Context, cmd *shellcmd) (*Response, error) {
	top, err := topOption(cmd)
	if err != nil {
		return nil, err
	}
	maxInputs, err := cmd.options.IntDefault("max-inputs", ai.Unlimited)
	if err != nil {
		return nil, err
	}
	sc.positionChanged()
	job := sc.svc.Analyze(sc.snapshot())
	if err := job.Wait(ctx); err != nil {
		job.Discard()
		return nil, err
	}
	moves, err := job.RankedMoves()
	if err != nil {
		job.Discard()
		return nil, err
	}
	sc.lastJob, sc.lastRanked = job, moves

	st, err := job.Stats()
	if err != nil {
		return nil, err
	}
	lines := []string{formatStats(st)}
	for i, m := range moves[:min(top, len(moves))] {
		sg, err := job.Suggestion(m, maxInputs)
		if err != nil {
			return nil, err
		}
		lines = append(lines, formatSuggestion(i+1, sg.Rating, sg.Inputs))
	}
	return msg(strings.Join(lines, "\n")), nil
}

// play [n] makes the n-th best move of the last analysis, 1 by default,
// and advances the queue.
func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if sc.lastJob == nil {
		return nil, errNoAnalysis
	}
	rank := 1
	if len(cmd.args) > 0 {
		var err error
		if rank, err = strconv.Atoi(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	if rank < 1 || rank > len(sc.lastRanked) {
		return nil, fmt.Errorf("no move ranked %d (have %d)", rank, len(sc.lastRanked))
	}
	m := sc.lastRanked[rank-1]
	p, err := sc.lastJob.Placement(m)
	if err != nil {
		return nil, err
	}
	sg, err := sc.lastJob.Suggestion(m, ai.Unlimited)
	if err != nil {
		return nil, err
	}
	next, cleared, err := sc.lastJob.Play(m)
	if err != nil {
		return nil, err
	}
	sc.hold, sc.queue, sc.field = next.Hold(), next.Queue(), next.Matrix()
	sc.positionChanged()

	return msg(fmt.Sprintf("played %v: %s (%d cleared)\n%s",
		p.Color, input.SequenceString(sg.Inputs), cleared, sc.display())), nil
}

func (sc *ShellController) analyzeRemote(ctx context.Context, cmd *shellcmd) (*Response, error) {
	top, err := topOption(cmd)
	if err != nil {
		return nil, err
	}
	if sc.remote == nil {
		nc, err := bot.Connect(ctx, sc.config.GetString(config.ConfigNatsURL))
		if err != nil {
			return nil, err
		}
		sc.remote = bot.NewClient(nc, sc.config.GetString(config.ConfigBotChannel))
	}
	cfg := sc.svc.Config()
	resp, err := sc.remote.RequestAnalysis(ctx, &bot.AnalysisRequest{
		Hold:   lo.Ternary(sc.hold == color.None, "", sc.hold.String()),
		Next:   color.QueueString(sc.queue),
		Field:  sc.field.Cells(),
		TopN:   top,
		Config: &cfg,
	})
	if err != nil {
		return nil, err
	}
	var st *ai.Stats
	if resp.Stats != nil {
		st = &ai.Stats{
			Iterations: resp.Stats.Iterations,
			Nodes:      resp.Stats.Nodes,
			TimeTaken:  time.Duration(resp.Stats.TimeTakenMs) * time.Millisecond,
		}
	}
	lines := []string{"remote " + formatStats(st)}
	for i, s := range resp.Suggestions {
		ins, err := s.DecodeInputs()
		if err != nil {
			return nil, err
		}
		lines = append(lines, formatSuggestion(i+1, s.Rating, ins))
	}
	return msg(strings.Join(lines, "\n")), nil
}
