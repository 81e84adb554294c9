// Package luamod exposes the engine to Lua scripts as the "blockfish"
// module:
//
//	local bf = require("blockfish")
//	local svc = bf.init(bf.default_config(), bf.builtin_rs())
//	local stats, suggestions = svc:analyze({hold = "T", next = "IJL", field = {...}})
//
// Suggestions come back best first with complete input sequences, encoded
// with the stable input ids. The "json" module is preloaded alongside.
package luamod

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"

	"github.com/domino14/blockfish/ai"
	"github.com/domino14/blockfish/input"
	"github.com/domino14/blockfish/ruleset"
	"github.com/domino14/blockfish/shapetable"
)

const (
	ModuleName = "blockfish"

	serviceTypeName  = "blockfish.service"
	configTypeName   = "blockfish.config"
	rulesetTypeName  = "blockfish.rs"
	serviceConfigKey = "config"
)

// Preload registers the blockfish and json modules with L.
func Preload(L *lua.LState) {
	L.PreloadModule(ModuleName, Loader)
	luajson.Preload(L)
}

// NewState creates a Lua state with the modules preloaded.
func NewState() *lua.LState {
	L := lua.NewState()
	Preload(L)
	return L
}

// RunFile runs a script in a fresh state.
func RunFile(ctx context.Context, path string) error {
	L := NewState()
	defer L.Close()
	L.SetContext(ctx)
	if err := L.DoFile(path); err != nil {
		log.Err(err).Str("script", path).Msg("lua-script-failed")
		return err
	}
	return nil
}

// Loader builds the module table.
func Loader(L *lua.LState) int {
	registerTypes(L)
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"init":            luaInit,
		"default_config":  luaDefaultConfig,
		"new_rs":          luaNewRS,
		"builtin_rs":      luaBuiltinRS,
		"load_shapetable": luaLoadShapetable,
	})
	L.Push(mod)
	return 1
}

func registerTypes(L *lua.LState) {
	cmt := L.NewTypeMetatable(configTypeName)
	L.SetField(cmt, "__index", L.NewFunction(configGet))
	L.SetField(cmt, "__newindex", L.NewFunction(configSet))

	smt := L.NewTypeMetatable(serviceTypeName)
	L.SetField(smt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"analyze":        serviceAnalyze,
		serviceConfigKey: serviceConfig,
	}))
	L.SetField(smt, "__newindex", L.NewFunction(serviceSetConfig))

	L.NewTypeMetatable(rulesetTypeName)
}

func newUserData(L *lua.LState, value interface{}, typeName string) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = value
	L.SetMetatable(ud, L.GetTypeMetatable(typeName))
	return ud
}

func checkConfig(L *lua.LState, n int) *ai.Config {
	ud := L.CheckUserData(n)
	if cfg, ok := ud.Value.(*ai.Config); ok {
		return cfg
	}
	L.ArgError(n, "config expected")
	return nil
}

func checkService(L *lua.LState, n int) *ai.AI {
	ud := L.CheckUserData(n)
	if svc, ok := ud.Value.(*ai.AI); ok {
		return svc
	}
	L.ArgError(n, "service expected")
	return nil
}

func checkShapeTable(L *lua.LState, n int) *shapetable.ShapeTable {
	ud := L.CheckUserData(n)
	if st, ok := ud.Value.(*shapetable.ShapeTable); ok {
		return st
	}
	L.ArgError(n, "rotation system expected")
	return nil
}

func luaInit(L *lua.LState) int {
	cfg := checkConfig(L, 1)
	st := checkShapeTable(L, 2)
	svc, err := ai.New(*cfg, st)
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	L.Push(newUserData(L, svc, serviceTypeName))
	return 1
}

func luaDefaultConfig(L *lua.LState) int {
	cfg := ai.DefaultConfig()
	L.Push(newUserData(L, &cfg, configTypeName))
	return 1
}

func pushShapeTable(L *lua.LState, st *shapetable.ShapeTable, err error) int {
	if err != nil {
		L.RaiseError("invalid ruleset: %v", err)
		return 0
	}
	L.Push(newUserData(L, st, rulesetTypeName))
	return 1
}

// new_rs(json) compiles a ruleset given as a JSON string.
func luaNewRS(L *lua.LState) int {
	rs, err := ruleset.Parse([]byte(L.CheckString(1)), "json")
	if err != nil {
		return pushShapeTable(L, nil, err)
	}
	st, err := shapetable.Build(rs)
	return pushShapeTable(L, st, err)
}

func luaBuiltinRS(L *lua.LState) int {
	rs, err := ruleset.Named(L.OptString(1, ""))
	if err != nil {
		return pushShapeTable(L, nil, err)
	}
	st, err := shapetable.Build(rs)
	return pushShapeTable(L, st, err)
}

func luaLoadShapetable(L *lua.LState) int {
	st, err := shapetable.Open(L.CheckString(1))
	return pushShapeTable(L, st, err)
}

func configGet(L *lua.LState) int {
	cfg := checkConfig(L, 1)
	switch key := L.CheckString(2); key {
	case "search_limit":
		L.Push(lua.LNumber(cfg.SearchLimit))
	case "row_factor":
		L.Push(lua.LNumber(cfg.Parameters.RowFactor))
	case "piece_estimate_factor":
		L.Push(lua.LNumber(cfg.Parameters.PieceEstimateFactor))
	case "i_dependency_factor":
		L.Push(lua.LNumber(cfg.Parameters.IDependencyFactor))
	case "piece_penalty":
		L.Push(lua.LNumber(cfg.Parameters.PiecePenalty))
	default:
		L.Push(lua.LNil)
	}
	return 1
}

func configSet(L *lua.LState) int {
	cfg := checkConfig(L, 1)
	key := L.CheckString(2)
	value := L.CheckInt64(3)
	switch key {
	case "search_limit":
		if value < 0 {
			L.ArgError(3, "search_limit must not be negative")
			return 0
		}
		cfg.SearchLimit = uint(value)
	case "row_factor":
		cfg.Parameters.RowFactor = value
	case "piece_estimate_factor":
		cfg.Parameters.PieceEstimateFactor = value
	case "i_dependency_factor":
		cfg.Parameters.IDependencyFactor = value
	case "piece_penalty":
		cfg.Parameters.PiecePenalty = value
	default:
		L.ArgError(2, fmt.Sprintf("unknown config field %q", key))
	}
	return 0
}

// service:config() returns a copy of the session config.
func serviceConfig(L *lua.LState) int {
	cfg := checkService(L, 1).Config()
	L.Push(newUserData(L, &cfg, configTypeName))
	return 1
}

// service.config = cfg replaces the session config.
func serviceSetConfig(L *lua.LState) int {
	svc := checkService(L, 1)
	if key := L.CheckString(2); key != serviceConfigKey {
		L.ArgError(2, fmt.Sprintf("cannot set %q", key))
		return 0
	}
	svc.SetConfig(*checkConfig(L, 3))
	return 0
}

func serviceAnalyze(L *lua.LState) int {
	svc := checkService(L, 1)
	snap := snapshotFromTable(L.CheckTable(2))

	ctx := L.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	job := svc.Analyze(snap)
	defer job.Discard()
	if err := job.Wait(ctx); err != nil {
		L.RaiseError("analysis: %v", err)
		return 0
	}
	stats, err := job.Stats()
	if err != nil {
		L.RaiseError("analysis: %v", err)
		return 0
	}
	ranked, err := job.Ranked(ai.Unlimited)
	if err != nil {
		L.RaiseError("analysis: %v", err)
		return 0
	}
	L.Push(statsTable(L, stats))
	L.Push(suggestionsTable(L, ranked))
	return 2
}

// snapshotFromTable reads {hold = "T", next = "IJL", field = {true, ...}}.
// Like the host constructor it never fails: unknown pieces are dropped and
// the field is cut off at the matrix capacity.
func snapshotFromTable(tbl *lua.LTable) *ai.Snapshot {
	hold := lua.LVAsString(tbl.RawGetString("hold"))
	next := lua.LVAsString(tbl.RawGetString("next"))
	var field []bool
	if ft, ok := tbl.RawGetString("field").(*lua.LTable); ok {
		field = make([]bool, ft.Len())
		for i := range field {
			field[i] = lua.LVAsBool(ft.RawGetInt(i + 1))
		}
	}
	return ai.SnapshotFromHost(hold, next, field)
}

func statsTable(L *lua.LState, st *ai.Stats) lua.LValue {
	if st == nil {
		return lua.LNil
	}
	tbl := L.NewTable()
	tbl.RawSetString("iterations", lua.LNumber(st.Iterations))
	tbl.RawSetString("nodes", lua.LNumber(st.Nodes))
	tbl.RawSetString("time_taken_ms", lua.LNumber(st.TimeTaken.Milliseconds()))
	return tbl
}

func suggestionsTable(L *lua.LState, sugs []ai.Suggestion) *lua.LTable {
	out := L.NewTable()
	for _, s := range sugs {
		tbl := L.NewTable()
		tbl.RawSetString("rating", lua.LNumber(s.Rating))
		inputs := L.NewTable()
		for _, code := range input.Codes(s.Inputs) {
			inputs.Append(lua.LNumber(code))
		}
		tbl.RawSetString("inputs", inputs)
		out.Append(tbl)
	}
	return out
}
