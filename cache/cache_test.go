package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/blockfish/config"
	"github.com/domino14/blockfish/ruleset"
	"github.com/domino14/blockfish/shapetable"
)

func TestLoadCachesSuccessOnly(t *testing.T) {
	is := is.New(t)
	CreateGlobalObjectCache()
	cfg := config.DefaultConfig()

	calls := 0
	boom := errors.New("boom")
	failing := func(*config.Config, string) (interface{}, error) {
		calls++
		return nil, boom
	}
	_, err := Load(cfg, "k", failing)
	is.True(errors.Is(err, boom))

	ok := func(_ *config.Config, key string) (interface{}, error) {
		calls++
		return key + "!", nil
	}
	for i := 0; i < 3; i++ {
		obj, err := Load(cfg, "k", ok)
		is.NoErr(err)
		is.Equal(obj, "k!")
	}
	is.Equal(calls, 2)
}

func TestShapeTableDefault(t *testing.T) {
	is := is.New(t)
	CreateGlobalObjectCache()
	cfg := config.DefaultConfig()
	a, err := ShapeTable(cfg)
	is.NoErr(err)
	b, err := ShapeTable(cfg)
	is.NoErr(err)
	is.True(a == b)
	is.Equal(a.Name(), ruleset.Guideline().Name)
}

func TestShapeTableFromFiles(t *testing.T) {
	is := is.New(t)
	CreateGlobalObjectCache()
	dir := t.TempDir()

	st, err := shapetable.Build(ruleset.Guideline())
	is.NoErr(err)
	tablePath := filepath.Join(dir, "table.json.gz")
	is.NoErr(st.Save(tablePath))

	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigShapetablePath, tablePath)
	loaded, err := ShapeTable(cfg)
	is.NoErr(err)
	is.Equal(loaded.Checksum(), st.Checksum())

	// a ruleset file only counts when no table is configured
	rsPath := filepath.Join(dir, "rs.json")
	is.NoErr(os.WriteFile(rsPath, []byte("{}"), 0o644))
	cfg.Set(config.ConfigRulesetPath, rsPath)
	again, err := ShapeTable(cfg)
	is.NoErr(err)
	is.True(again == loaded)

	cfg.Set(config.ConfigShapetablePath, "")
	_, err = ShapeTable(cfg)
	is.True(errors.Is(err, shapetable.ErrInvalidRuleset))

	cfg.Set(config.ConfigShapetablePath, filepath.Join(dir, "missing.json"))
	_, err = ShapeTable(cfg)
	is.True(errors.Is(err, os.ErrNotExist))
}
