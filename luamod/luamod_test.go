package luamod

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/domino14/blockfish/ruleset"
	"github.com/domino14/blockfish/shapetable"
)

func runScript(t *testing.T, script string, out interface{}) {
	t.Helper()
	L := NewState()
	defer L.Close()
	require.NoError(t, L.DoString(script))
	require.NoError(t, json.Unmarshal([]byte(L.GetGlobal("result").String()), out))
}

func TestAnalyzeEmptyBoard(t *testing.T) {
	var got struct {
		Count   int   `json:"count"`
		Last    int   `json:"last"`
		Nodes   int   `json:"nodes"`
		Limit   int   `json:"limit"`
		Ratings []int `json:"ratings"`
	}
	runScript(t, `
		local bf = require("blockfish")
		local json = require("json")
		local cfg = bf.default_config()
		cfg.search_limit = 100
		local svc = bf.init(cfg, bf.builtin_rs())
		local field = {}
		for i = 1, 200 do field[i] = false end
		local stats, sugs = svc:analyze({hold = "", next = "I", field = field})
		local best = sugs[1].inputs
		local ratings = {}
		for i, s in ipairs(sugs) do ratings[i] = s.rating end
		result = json.encode({
			count = #sugs,
			last = best[#best],
			nodes = stats.nodes,
			limit = svc:config().search_limit,
			ratings = ratings,
		})
	`, &got)

	assert.Equal(t, 17, got.Count)
	assert.Equal(t, 6, got.Last)
	assert.Equal(t, 17, got.Nodes)
	assert.Equal(t, 100, got.Limit)
	assert.IsNonDecreasing(t, got.Ratings)
}

func TestConfigFields(t *testing.T) {
	var got map[string]int64
	runScript(t, `
		local bf = require("blockfish")
		local json = require("json")
		local svc = bf.init(bf.default_config(), bf.builtin_rs("srs"))
		local cfg = svc:config()
		cfg.row_factor = -3
		cfg.piece_estimate_factor = 4
		cfg.i_dependency_factor = 5
		cfg.piece_penalty = 6
		cfg.search_limit = 7
		local before = svc:config().row_factor
		svc.config = cfg
		local after = svc:config()
		result = json.encode({
			before = before,
			row_factor = after.row_factor,
			piece_estimate_factor = after.piece_estimate_factor,
			i_dependency_factor = after.i_dependency_factor,
			piece_penalty = after.piece_penalty,
			search_limit = after.search_limit,
		})
	`, &got)
	assert.Equal(t, map[string]int64{
		"before":                5,
		"row_factor":            -3,
		"piece_estimate_factor": 4,
		"i_dependency_factor":   5,
		"piece_penalty":         6,
		"search_limit":          7,
	}, got)
}

func TestLenientSnapshot(t *testing.T) {
	var got struct {
		HasStats bool `json:"has_stats"`
		Count    int  `json:"count"`
		Held     int  `json:"held"`
	}
	runScript(t, `
		local bf = require("blockfish")
		local json = require("json")
		local cfg = bf.default_config()
		cfg.search_limit = 0
		local svc = bf.init(cfg, bf.builtin_rs())
		local stats, sugs = svc:analyze({hold = "x", next = "?O-", field = {}})
		local held = 0
		for _, s in ipairs(sugs) do
			if s.inputs[1] == 8 then held = held + 1 end
		end
		local none_stats, none = svc:analyze({hold = "T", next = "", field = {}})
		result = json.encode({has_stats = stats ~= nil and none_stats == nil and #none == 0, count = #sugs, held = held})
	`, &got)
	assert.True(t, got.HasStats)
	assert.Equal(t, 9, got.Count)
	assert.Equal(t, 0, got.Held)
}

func TestNewRS(t *testing.T) {
	bts, err := json.Marshal(ruleset.Guideline())
	require.NoError(t, err)

	L := NewState()
	defer L.Close()
	L.SetGlobal("rs_json", lua.LString(string(bts)))
	require.NoError(t, L.DoString(`
		local bf = require("blockfish")
		local svc = bf.init(bf.default_config(), bf.new_rs(rs_json))
		local _, sugs = svc:analyze({hold = "", next = "T", field = {}})
		count = #sugs
	`))
	assert.Equal(t, "34", L.GetGlobal("count").String())

	err = L.DoString(`require("blockfish").new_rs("{\"pieces\": []}")`)
	assert.ErrorContains(t, err, "invalid ruleset")

	err = L.DoString(`require("blockfish").init(1, 2)`)
	assert.Error(t, err)
}

func TestLoadShapetableAndRunFile(t *testing.T) {
	dir := t.TempDir()
	st, err := shapetable.Build(ruleset.Guideline())
	require.NoError(t, err)
	tablePath := filepath.Join(dir, "guideline.json")
	require.NoError(t, st.Save(tablePath))

	script := filepath.Join(dir, "run.lua")
	require.NoError(t, os.WriteFile(script, []byte(`
		local bf = require("blockfish")
		local svc = bf.init(bf.default_config(), bf.load_shapetable("`+tablePath+`"))
		local _, sugs = svc:analyze({next = "O"})
		assert(#sugs == 9, "expected nine O placements")
	`), 0o644))
	require.NoError(t, RunFile(context.Background(), script))

	bad := filepath.Join(dir, "bad.lua")
	require.NoError(t, os.WriteFile(bad, []byte(`error("nope")`), 0o644))
	assert.Error(t, RunFile(context.Background(), bad))
}
