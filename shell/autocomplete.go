package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"

	"github.com/domino14/blockfish/color"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"analyze": {
		Options: []string{"-top", "-max-inputs"},
	},
	"remote": {
		Options: []string{"-top"},
	},
	"config": {
		Args: configFields,
	},
	"help": {
		Args: []string{"config", "inputs", "script"},
	},
}

var commandNames = []string{
	"help", "hold", "queue", "row", "clear", "show", "config",
	"analyze", "play", "remote", "script", "exit",
}

// pieceNames lists the pieces the session's shape table knows about.
func (c *ShellCompleter) pieceNames() []string {
	return lo.Map(c.sc.svc.ShapeTable().Colors(), func(p color.Color, _ int) string {
		return p.String()
	})
}

// Do implements the readline.AutoComplete interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		// unbalanced quotes while typing
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		argIdx := len(fields) - 1
		if endsWithSpace {
			argIdx = len(fields)
		}

		switch {
		case cmdName == "hold" && argIdx == 1:
			completions = append(c.pieceNames(), "-")
		case cmdName == "config" && argIdx > 1:
			// values are free-form
		default:
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
