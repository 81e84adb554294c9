package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/blockfish/ai"
	"github.com/domino14/blockfish/bot"
	"github.com/domino14/blockfish/color"
	"github.com/domino14/blockfish/config"
	"github.com/domino14/blockfish/matrix"
	"github.com/domino14/blockfish/shapetable"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errQuit              = errors.New("quit")
)

// ShellController holds the position being edited and the session used to
// analyze it.
type ShellController struct {
	l   *readline.Instance
	out io.Writer

	config *config.Config
	svc    *ai.AI

	hold  color.Color
	queue []color.Color
	field *matrix.Matrix

	lastJob    *ai.Analysis
	lastRanked []ai.Move

	remote *bot.Client
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

type Response struct {
	message string
}

func (r *Response) String() string {
	return r.message
}

func msg(message string) *Response {
	return &Response{message: message}
}

type CmdOptions map[string]string

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v, ok := c[key]
	if !ok {
		return defaultI, nil
	}
	return strconv.Atoi(v)
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func newController(cfg *config.Config, table *shapetable.ShapeTable, out io.Writer) (*ShellController, error) {
	svc, err := ai.New(cfg.AIConfig(), table)
	if err != nil {
		return nil, err
	}
	return &ShellController{
		out:    out,
		config: cfg,
		svc:    svc,
		field:  matrix.New(ai.HostWidth),
	}, nil
}

// NewShellController creates an interactive shell on the terminal.
func NewShellController(cfg *config.Config, table *shapetable.ShapeTable) (*ShellController, error) {
	sc, err := newController(cfg, table, os.Stdout)
	if err != nil {
		return nil, err
	}
	sc.l, err = readline.NewEx(&readline.Config{
		Prompt:          "\033[36mblockfish>\033[0m ",
		HistoryFile:     "/tmp/blockfish_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, err
	}
	sc.out = sc.l.Stdout()
	return sc, nil
}

func (sc *ShellController) showMessage(msg string) {
	io.WriteString(sc.out, msg)
	io.WriteString(sc.out, "\n")
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// extractFields splits a line into a command, its positional arguments and
// its -key value options.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := &shellcmd{cmd: fields[0], options: CmdOptions{}}
	for i := 1; i < len(fields); i++ {
		f := fields[i]
		if !strings.HasPrefix(f, "-") || f == "-" {
			cmd.args = append(cmd.args, f)
			continue
		}
		if i+1 >= len(fields) {
			return nil, errWrongOptionSyntax
		}
		cmd.options[strings.TrimPrefix(f, "-")] = fields[i+1]
		i++
	}
	return cmd, nil
}

// Execute runs one command line.
func (sc *ShellController) Execute(ctx context.Context, line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "help":
		return sc.help(cmd)
	case "exit", "bye":
		return nil, errQuit
	case "hold":
		return sc.setHold(cmd)
	case "queue":
		return sc.setQueue(cmd)
	case "row":
		return sc.setRow(cmd)
	case "clear":
		return sc.clear(cmd)
	case "show":
		return msg(sc.display()), nil
	case "config":
		return sc.configure(cmd)
	case "analyze":
		return sc.analyze(ctx, cmd)
	case "play":
		return sc.play(cmd)
	case "remote":
		return sc.analyzeRemote(ctx, cmd)
	case "script":
		return sc.script(ctx, cmd)
	}
	return nil, fmt.Errorf("unrecognized command %q; try help", cmd.cmd)
}

func (sc *ShellController) Loop(ctx context.Context, sig chan os.Signal) {
	defer sc.l.Close()
	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		resp, err := sc.Execute(ctx, line)
		if errors.Is(err, errQuit) {
			sig <- syscall.SIGINT
			break
		}
		if err != nil {
			sc.showError(err)
			continue
		}
		if resp != nil && resp.message != "" {
			sc.showMessage(resp.message)
		}
	}
	if sc.remote != nil {
		sc.remote.Close()
	}
	log.Debug().Msg("exiting-readline-loop")
}
