package shell

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/blockfish/color"
	"github.com/domino14/blockfish/config"
	"github.com/domino14/blockfish/ruleset"
	"github.com/domino14/blockfish/shapetable"
)

func newTestController(t *testing.T) *ShellController {
	t.Helper()
	st, err := shapetable.Build(ruleset.Guideline())
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigSearchLimit, 300)
	sc, err := newController(cfg, st, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	return sc
}

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	cmd, err := extractFields(`analyze -top 3 -max-inputs 5`)
	is.NoErr(err)
	is.Equal(cmd.cmd, "analyze")
	is.Equal(len(cmd.args), 0)
	is.Equal(cmd.options["top"], "3")
	is.Equal(cmd.options["max-inputs"], "5")

	cmd, err = extractFields(`row 0 "####.#####"`)
	is.NoErr(err)
	is.Equal(cmd.args, []string{"0", "####.#####"})

	cmd, err = extractFields("hold -")
	is.NoErr(err)
	is.Equal(cmd.args, []string{"-"})

	_, err = extractFields("analyze -top")
	is.Equal(err, errWrongOptionSyntax)

	_, err = extractFields("   ")
	is.Equal(err, errNoData)
}

func TestEditPosition(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	sc := newTestController(t)

	_, err := sc.Execute(ctx, "queue tij")
	is.NoErr(err)
	is.Equal(sc.queue, []color.Color{color.T, color.I, color.J})

	_, err = sc.Execute(ctx, "hold s")
	is.NoErr(err)
	is.Equal(sc.hold, color.S)

	_, err = sc.Execute(ctx, "hold -")
	is.NoErr(err)
	is.Equal(sc.hold, color.None)

	_, err = sc.Execute(ctx, "hold X")
	is.True(err != nil)

	_, err = sc.Execute(ctx, "row 1 ####.#####")
	is.NoErr(err)
	is.Equal(sc.field.Rows(), 2)
	is.Equal(sc.field.Filled(), 9)
	is.True(!sc.field.Get(1, 4))

	_, err = sc.Execute(ctx, "row 0 ###")
	is.True(err != nil)

	_, err = sc.Execute(ctx, "clear")
	is.NoErr(err)
	is.Equal(sc.field.Filled(), 0)
	is.Equal(len(sc.queue), 0)
}

func TestConfigCommand(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	sc := newTestController(t)

	r, err := sc.Execute(ctx, "config")
	is.NoErr(err)
	is.True(strings.Contains(r.message, "search_limit = 300"))

	_, err = sc.Execute(ctx, "config row_factor 7")
	is.NoErr(err)
	is.Equal(sc.svc.Config().Parameters.RowFactor, int64(7))

	_, err = sc.Execute(ctx, "config search_limit 50")
	is.NoErr(err)
	is.Equal(sc.svc.Config().SearchLimit, uint(50))

	_, err = sc.Execute(ctx, "config nonsense 1")
	is.True(err != nil)
}

func TestAnalyzeAndPlay(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	sc := newTestController(t)

	_, err := sc.Execute(ctx, "play")
	is.Equal(err, errNoAnalysis)

	_, err = sc.Execute(ctx, "queue I")
	is.NoErr(err)
	r, err := sc.Execute(ctx, "analyze -top 3")
	is.NoErr(err)
	lines := strings.Split(r.message, "\n")
	is.Equal(len(lines), 4)
	is.True(strings.HasPrefix(lines[0], "iterations:"))
	is.Equal(len(sc.lastRanked), 17)

	_, err = sc.Execute(ctx, "play 99")
	is.True(err != nil)

	_, err = sc.Execute(ctx, "play")
	is.NoErr(err)
	is.Equal(len(sc.queue), 0)
	is.Equal(sc.field.Filled(), 4)
	is.True(sc.lastJob == nil)
}

func TestAnalyzeWithNoQueue(t *testing.T) {
	is := is.New(t)
	sc := newTestController(t)
	r, err := sc.Execute(context.Background(), "analyze")
	is.NoErr(err)
	is.Equal(r.message, "no moves")
}

func TestScript(t *testing.T) {
	is := is.New(t)
	sc := newTestController(t)
	path := filepath.Join(t.TempDir(), "s.lua")
	err := os.WriteFile(path, []byte(`
local out = blockfish_exec("queue OT")
if not string.find(out, "queue: OT") then error("bad queue: " .. out) end
local bad = blockfish_exec("frobnicate")
if string.sub(bad, 1, 6) ~= "ERROR:" then error("expected an error") end
`), 0o644)
	is.NoErr(err)

	_, err = sc.Execute(context.Background(), "script "+path)
	is.NoErr(err)
	is.Equal(sc.queue, []color.Color{color.O, color.T})
}

func TestHelp(t *testing.T) {
	is := is.New(t)
	sc := newTestController(t)
	r, err := sc.Execute(context.Background(), "help")
	is.NoErr(err)
	is.True(strings.Contains(r.message, "analyze"))
	_, err = sc.Execute(context.Background(), "help inputs")
	is.NoErr(err)
	_, err = sc.Execute(context.Background(), "help nothing")
	is.True(err != nil)
}

func TestCompleter(t *testing.T) {
	is := is.New(t)
	c := NewShellCompleter(newTestController(t))

	matches, n := c.Do([]rune("ana"), 3)
	is.Equal(n, 3)
	is.Equal(matches, [][]rune{[]rune("lyze")})

	matches, _ = c.Do([]rune("analyze -m"), 10)
	is.Equal(matches, [][]rune{[]rune("ax-inputs")})

	matches, _ = c.Do([]rune("hold "), 5)
	is.Equal(len(matches), 8)
}

func TestAnalyzeRejectsBadTop(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	sc := newTestController(t)
	_, err := sc.Execute(ctx, "queue I")
	is.NoErr(err)
	for _, line := range []string{"analyze -top -1", "analyze -top 0", "remote -top -3"} {
		_, err = sc.Execute(ctx, line)
		is.True(err != nil)
	}
	r, err := sc.Execute(ctx, "analyze -top 1")
	is.NoErr(err)
	is.Equal(len(strings.Split(r.message, "\n")), 2)
}
