package shell

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/domino14/blockfish/luamod"
)

const shellGlobal = "blockfish_shell"

func getShell(L *lua.LState) *ShellController {
	ud, ok := L.GetGlobal(shellGlobal).(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

// Exec runs a shell command line from Lua and returns its output, or a
// string starting with "ERROR: " when the command fails.
func Exec(L *lua.LState) int {
	line := L.CheckString(1)
	sc := getShell(L)
	ctx := L.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	r, err := sc.Execute(ctx, line)
	if err != nil {
		log.Err(err).Str("line", line).Msg("error-executing-script-command")
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	if r == nil {
		L.Push(lua.LString(""))
		return 1
	}
	L.Push(lua.LString(r.message))
	return 1
}

// script <file> runs a Lua file with the blockfish and json modules
// available and blockfish_exec bound to this shell.
func (sc *ShellController) script(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("need arguments for script")
	}
	filepath := cmd.args[0]

	L := luamod.NewState()
	defer L.Close()
	L.SetContext(ctx)

	lsc := L.NewUserData()
	lsc.Value = sc
	L.SetGlobal(shellGlobal, lsc)
	L.SetGlobal("blockfish_exec", L.NewFunction(Exec))

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return nil, nil
}
